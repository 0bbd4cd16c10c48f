// Package api exposes the StudyCast pipeline over HTTP. It parses multipart
// submissions, reports task progress, accepts cancellation requests and
// maps domain errors to status codes without leaking internal detail.
package api

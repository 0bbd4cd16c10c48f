// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Request- and task-scoped values (trace id, task id) and
// scoped loggers travel in the context; ContextHandler copies the ids onto every record.
package logger

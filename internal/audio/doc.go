// Package audio turns a two-speaker dialogue script into one narrated audio file.
//
// ParseSegments splits the script into ordered per-voice segments. A Backend
// synthesizes one segment at a time, either through a hosted speech API
// (RemoteBackend) or a local piper executable (LocalBackend). The Synthesizer
// drives the backend over every segment under an explicit FailurePolicy, and
// the Assembler joins the resulting clips with ffmpeg without re-encoding.
// A Publisher turns the final file into the reference handed to clients.
package audio

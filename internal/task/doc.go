// Package task tracks the lifecycle of pipeline tasks.
//
// A Registry holds one volatile TaskState per task id and enforces the stage
// machine on every transition. A Gate turns "caller disconnected" or
// "cancelled through the registry" into ErrCancelled at polling points chosen
// by the pipeline. A Sweeper removes finished tasks once they have been
// queryable for the configured retention window.
//
// Nothing here persists across restarts, and queue positions are advisory:
// all tasks run independently of their rank.
package task

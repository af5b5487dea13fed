// Package handler provides the Handler interface, the sink a logger hands
// finished telemetry records to, and its built-in implementations.
//
// Handlers run synchronously or asynchronously. In async mode records are
// sent to a bounded channel and processed by a background goroutine, which
// keeps the logging call fast even under slow I/O.
//
// When the async queue is full, each handler applies a per-severity
// OverflowPolicy: DropNewest (default for Verbose, Information and Warning),
// DropOldest, or Block with a configurable timeout (default for Error and
// Critical). Blocked records that time out are delivered synchronously, so
// error records are never silently dropped.
//
// Built-in handlers:
//
//   - ConsoleHandler writes formatted records to any io.Writer (default: stdout).
//   - FileHandler appends formatted records to a file with size or age
//     based rotation and backup cleanup.
//   - MultiHandler fans out a single record to multiple child handlers.
//   - TelemetryHandler batches records and forwards them to a Client,
//     flushing when a batch is full, on an interval, and on Close.
//
// Handlers track dropped, blocked, processed and failed counts via the
// Stats type, which can be queried at runtime for monitoring.
package handler

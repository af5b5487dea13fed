// Package core defines the shared types used across insightslog.
//
// It provides the host-side Level scale and the telemetry-side Severity
// scale together with the mapping between them, the EventID attached to
// a log call, the ErrorInfo derived from a Go error, and the ordered
// PropertyBag that becomes the custom dimensions of a telemetry record.
//
// Entry is the finished telemetry record handed to a handler. Entries
// are pooled via sync.Pool: a handler that consumes entries synchronously
// reports CanRecycleEntry so the logger can return them with PutEntry.
// The PropertyBag referenced by an entry is never pooled; every log call
// builds a fresh one.
//
// Stringify renders values the same way regardless of locale, so that
// property values and rendered messages are stable across hosts.
package core

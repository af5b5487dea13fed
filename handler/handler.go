package handler

import (
	"github.com/cockroachdb/errors"

	"github.com/philipp01105/insightslog/core"
)

// ErrClosed is returned by handlers that no longer accept entries.
var ErrClosed = errors.New("handler: closed")

// Handler defines the interface for telemetry sinks
type Handler interface {
	// Handle processes a finished telemetry record
	Handle(entry *core.Entry) error

	// Close closes the handler and releases resources
	Close() error
}

// StatsProvider is implemented by handlers that track queue statistics.
type StatsProvider interface {
	Stats() Snapshot
}

// Recycler is implemented by handlers that consume entries synchronously,
// allowing the caller to return them to the pool once Handle returns.
type Recycler interface {
	CanRecycleEntry() bool
}

// CanRecycle reports whether entries handed to h may be pooled after Handle.
func CanRecycle(h Handler) bool {
	rc, ok := h.(Recycler)
	return ok && rc.CanRecycleEntry()
}

package core

import (
	"sync"
	"time"
)

// Kind selects the shape of a telemetry record.
type Kind uint8

const (
	// TraceKind records carry a rendered message
	TraceKind Kind = iota
	// ExceptionKind records carry an ErrorInfo and a record id
	ExceptionKind
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case TraceKind:
		return "trace"
	case ExceptionKind:
		return "exception"
	default:
		return "unknown"
	}
}

// Entry is a finished telemetry record with all its metadata
type Entry struct {
	Time       time.Time
	Kind       Kind
	Severity   Severity
	Message    string
	Exception  *ErrorInfo
	ID         string
	Category   string
	Properties *PropertyBag
}

// entryPool is a pool of Entry objects to reduce allocations
var entryPool = sync.Pool{
	New: func() interface{} {
		return &Entry{}
	},
}

// GetEntry retrieves an Entry from the pool
func GetEntry() *Entry {
	e := entryPool.Get().(*Entry)
	*e = Entry{}
	return e
}

// PutEntry returns an Entry to the pool
func PutEntry(e *Entry) {
	if e == nil {
		return
	}
	// Drop references so pooled entries do not pin bags or errors
	*e = Entry{}
	entryPool.Put(e)
}

// Trace converts a trace entry into the telemetry client payload.
func (e *Entry) Trace() TraceTelemetry {
	return TraceTelemetry{
		Message:    e.Message,
		Severity:   e.Severity,
		Properties: e.Properties,
	}
}

// ExceptionTelemetry converts an exception entry into the telemetry client payload.
func (e *Entry) ExceptionTelemetry() ExceptionTelemetry {
	return ExceptionTelemetry{
		Exception:  e.Exception,
		ID:         e.ID,
		Severity:   e.Severity,
		Properties: e.Properties,
	}
}

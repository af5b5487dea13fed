package handler

import (
	"sync/atomic"

	"github.com/philipp01105/insightslog/core"
)

// OverflowPolicy defines how to handle full async queues
type OverflowPolicy int

const (
	// DropNewest drops the newest entry when queue is full
	DropNewest OverflowPolicy = iota
	// DropOldest drops the oldest entry when queue is full
	DropOldest
	// Block blocks the caller until space is available (with timeout)
	Block
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// ParseOverflowPolicy converts a policy name to an OverflowPolicy.
// Unknown names yield DropNewest.
func ParseOverflowPolicy(s string) OverflowPolicy {
	switch s {
	case "DropOldest", "drop_oldest":
		return DropOldest
	case "Block", "block":
		return Block
	default:
		return DropNewest
	}
}

// DefaultSeverityPolicy returns the default severity-based overflow policies
func DefaultSeverityPolicy() map[core.Severity]OverflowPolicy {
	return map[core.Severity]OverflowPolicy{
		core.Verbose:     DropNewest, // Drop verbose records when full
		core.Information: DropNewest,
		core.Warning:     DropNewest,
		core.Error:       Block, // Block for errors (with timeout)
		core.Critical:    Block,
	}
}

// severities lists every severity tracked by Stats.
var severities = [...]core.Severity{core.Verbose, core.Information, core.Warning, core.Error, core.Critical}

// Stats tracks handler statistics
type Stats struct {
	// dropped holds one atomic counter per severity
	dropped [len(severities)]atomic.Uint64
	// blocked counts times a caller blocked due to a full queue
	blocked atomic.Uint64
	// processed counts records handed to the output
	processed atomic.Uint64
	// failed counts records the output rejected
	failed atomic.Uint64
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{}
}

// IncrementDropped atomically increments the dropped counter for a severity
func (s *Stats) IncrementDropped(sev core.Severity) {
	if sev < 0 || int(sev) >= len(s.dropped) {
		sev = core.Verbose
	}
	s.dropped[sev].Add(1)
}

// IncrementBlocked atomically increments the blocked counter
func (s *Stats) IncrementBlocked() {
	s.blocked.Add(1)
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	s.processed.Add(1)
}

// AddProcessed adds n to the processed counter
func (s *Stats) AddProcessed(n int) {
	s.processed.Add(uint64(n))
}

// AddFailed adds n to the failed counter
func (s *Stats) AddFailed(n int) {
	s.failed.Add(uint64(n))
}

// GetDropped returns the dropped count for a severity
func (s *Stats) GetDropped(sev core.Severity) uint64 {
	if sev < 0 || int(sev) >= len(s.dropped) {
		return 0
	}
	return s.dropped[sev].Load()
}

// GetTotalDropped returns the total dropped across all severities
func (s *Stats) GetTotalDropped() uint64 {
	var total uint64
	for i := range s.dropped {
		total += s.dropped[i].Load()
	}
	return total
}

// Reset resets all counters to zero
func (s *Stats) Reset() {
	for i := range s.dropped {
		s.dropped[i].Store(0)
	}
	s.blocked.Store(0)
	s.processed.Store(0)
	s.failed.Store(0)
}

// Snapshot is a point-in-time copy of handler statistics
type Snapshot struct {
	DroppedTotal   map[core.Severity]uint64
	BlockedTotal   uint64
	ProcessedTotal uint64
	FailedTotal    uint64
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	dropped := make(map[core.Severity]uint64, len(severities))
	for _, sev := range severities {
		dropped[sev] = s.GetDropped(sev)
	}
	return Snapshot{
		DroppedTotal:   dropped,
		BlockedTotal:   s.blocked.Load(),
		ProcessedTotal: s.processed.Load(),
		FailedTotal:    s.failed.Load(),
	}
}

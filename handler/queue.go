package handler

import (
	"sync"
	"time"

	"github.com/philipp01105/insightslog/core"
)

// queue is the bounded async queue shared by the async handlers. It applies
// the per-severity OverflowPolicy when the channel is full.
type queue struct {
	ch           chan *core.Entry
	policy       map[core.Severity]OverflowPolicy
	blockTimeout time.Duration
	stats        *Stats

	// direct delivers an entry synchronously when a Block wait times out
	direct func(*core.Entry) error
	// rejected handles entries that arrive after shutdown
	rejected func(*core.Entry) error

	mu     sync.RWMutex // held for reading while pushing, for writing on shutdown
	closed bool
	done   chan struct{}
}

func newQueue(size int, policy map[core.Severity]OverflowPolicy, blockTimeout time.Duration, stats *Stats) *queue {
	return &queue{
		ch:           make(chan *core.Entry, size),
		policy:       policy,
		blockTimeout: blockTimeout,
		stats:        stats,
		done:         make(chan struct{}),
	}
}

// push sends entry to the queue with overflow policy handling.
func (q *queue) push(entry *core.Entry) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return q.rejected(entry)
	}

	// Get overflow policy for this severity
	policy, ok := q.policy[entry.Severity]
	if !ok {
		policy = DropNewest // Default if not specified
	}

	switch policy {
	case Block:
		select {
		case q.ch <- entry:
			return nil
		default:
		}
		// Queue full, wait with timeout
		timer := time.NewTimer(q.blockTimeout)
		defer timer.Stop()
		select {
		case q.ch <- entry:
			return nil
		case <-timer.C:
			// Timeout - fall back to synchronous delivery
			q.stats.IncrementBlocked()
			return q.direct(entry)
		}

	case DropOldest:
		select {
		case q.ch <- entry:
			return nil
		default:
		}
		// Queue full - try to drop oldest
		select {
		case old := <-q.ch:
			q.stats.IncrementDropped(old.Severity)
		default:
		}
		select {
		case q.ch <- entry:
			return nil
		default:
			// Still full, drop this one
			q.stats.IncrementDropped(entry.Severity)
			return nil
		}

	default:
		select {
		case q.ch <- entry:
			return nil
		default:
			// Queue full - drop this entry
			q.stats.IncrementDropped(entry.Severity)
			return nil
		}
	}
}

// shutdown stops accepting entries and wakes the worker. It reports false
// when the queue was already shut down.
func (q *queue) shutdown() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.closed = true
	close(q.done)
	return true
}

// drain hands every queued entry to fn until the queue is empty or the
// deadline passes.
func (q *queue) drain(deadline time.Duration, fn func(*core.Entry)) {
	timeout := time.After(deadline)
	for {
		select {
		case entry := <-q.ch:
			fn(entry)
		case <-timeout:
			return
		default:
			return
		}
	}
}

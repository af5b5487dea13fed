package options

import (
	"sync"
	"sync/atomic"
)

// Monitor is an in-process Source. Set replaces the current options and
// notifies every subscriber synchronously, in subscription order.
type Monitor struct {
	current atomic.Pointer[Options]

	mu        sync.Mutex
	nextID    uint64
	listeners []listener
}

type listener struct {
	id uint64
	fn func(Options)
}

// NewMonitor creates a monitor holding initial.
func NewMonitor(initial Options) *Monitor {
	m := &Monitor{}
	m.current.Store(&initial)
	return m
}

// Current implements Source.
func (m *Monitor) Current() Options {
	return *m.current.Load()
}

// OnChange implements Source.
func (m *Monitor) OnChange(fn func(Options)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { m.remove(id) })
	}
}

// Set publishes o to all subscribers.
func (m *Monitor) Set(o Options) {
	m.current.Store(&o)

	m.mu.Lock()
	snapshot := make([]listener, len(m.listeners))
	copy(snapshot, m.listeners)
	m.mu.Unlock()

	for _, l := range snapshot {
		l.fn(o)
	}
}

// Update applies fn to a copy of the current options and publishes it.
func (m *Monitor) Update(fn func(*Options)) {
	o := m.Current()
	fn(&o)
	m.Set(o)
}

// Subscribers returns the number of active subscriptions.
func (m *Monitor) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

func (m *Monitor) remove(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.listeners {
		if l.id == id {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return
		}
	}
}

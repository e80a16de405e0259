package sse

import (
	"log"
	"sync"
)

const defaultBuffer = 64

// Manager fans a job's progress events out to any number of SSE
// subscribers. Delivery is fire-and-forget from the producer's side:
// publishing never blocks, and a slow or vanished subscriber only loses
// its own events.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan interface{}]struct{}
}

// NewManager creates a new SSE Manager
func NewManager() *Manager {
	return &Manager{
		subscribers: make(map[string]map[chan interface{}]struct{}),
	}
}

// Subscribe registers a listener for one job's events. The returned
// cancel func must be called when the listener goes away; it closes the
// channel.
func (m *Manager) Subscribe(jobID string) (<-chan interface{}, func()) {
	ch := make(chan interface{}, defaultBuffer)

	m.mu.Lock()
	if m.subscribers[jobID] == nil {
		m.subscribers[jobID] = make(map[chan interface{}]struct{})
	}
	m.subscribers[jobID][ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if subs, ok := m.subscribers[jobID]; ok {
			if _, live := subs[ch]; live {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(m.subscribers, jobID)
			}
		}
	}
	return ch, cancel
}

// Publish delivers an event to every live subscriber of a job, dropping
// it for subscribers whose buffer is full.
func (m *Manager) Publish(jobID string, event interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for ch := range m.subscribers[jobID] {
		select {
		case ch <- event:
		default:
			log.Printf("[SSE] dropping event for slow subscriber of job %s", jobID)
		}
	}
}

// Close ends the stream for all of a job's subscribers, typically after
// the terminal event has been published.
func (m *Manager) Close(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ch := range m.subscribers[jobID] {
		close(ch)
	}
	delete(m.subscribers, jobID)
}

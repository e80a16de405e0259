package sse

import "testing"

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	m := NewManager()
	events, cancel := m.Subscribe("job-1")
	defer cancel()

	m.Publish("job-1", "first")
	m.Publish("job-1", "second")

	if got := <-events; got != "first" {
		t.Errorf("got %v, want first", got)
	}
	if got := <-events; got != "second" {
		t.Errorf("got %v, want second", got)
	}
}

func TestPublishIsScopedToJob(t *testing.T) {
	m := NewManager()
	a, cancelA := m.Subscribe("job-a")
	defer cancelA()
	_, cancelB := m.Subscribe("job-b")
	defer cancelB()

	m.Publish("job-b", "for b only")
	m.Close("job-b")

	select {
	case got, ok := <-a:
		if ok {
			t.Errorf("job-a received job-b's event: %v", got)
		}
	default:
	}
}

func TestCloseEndsAllSubscribers(t *testing.T) {
	m := NewManager()
	events, cancel := m.Subscribe("job-1")

	m.Publish("job-1", "last")
	m.Close("job-1")

	if got := <-events; got != "last" {
		t.Errorf("got %v, want last", got)
	}
	if _, ok := <-events; ok {
		t.Error("channel should be closed after Close")
	}

	// Cancel after Close must be a no-op, not a double close.
	cancel()
}

func TestPublishNeverBlocks(t *testing.T) {
	m := NewManager()
	_, cancel := m.Subscribe("job-1")
	defer cancel()

	// Nobody is draining; publishing far past the buffer must return.
	for i := 0; i < defaultBuffer*3; i++ {
		m.Publish("job-1", i)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	m := NewManager()
	m.Publish("ghost-job", "nobody listening")
	m.Close("ghost-job")
}

package tcellsink

import (
	"time"

	"github.com/vitrineterm/vitrine/pkg/termsrc"
)

// EventSource adapts a blocking Backend.PollEvent into the bounded-wait
// shape pkg/input.RawEventSource expects. tcell's PollEvent call has no
// timeout parameter, so a single reader goroutine drains it continuously
// into a buffered channel; PollEvent here just waits on that channel with
// a deadline.
type EventSource struct {
	backend *Backend
	events  chan termsrc.Event
	done    chan struct{}
}

// NewEventSource starts the reader goroutine and returns an adapter ready
// for Manager.Run. Call Close when the backend is torn down so the reader
// goroutine can exit once Backend.Fini unblocks its pending PollEvent.
func NewEventSource(b *Backend) *EventSource {
	es := &EventSource{
		backend: b,
		events:  make(chan termsrc.Event, 256),
		done:    make(chan struct{}),
	}
	go es.pump()
	return es
}

func (es *EventSource) pump() {
	for {
		ev := es.backend.PollEvent()
		if ev == nil {
			close(es.events)
			return
		}
		select {
		case es.events <- ev:
		case <-es.done:
			return
		}
	}
}

// PollEvent waits up to timeout for the next event. ok is false on a
// timeout or once the backend has shut down.
func (es *EventSource) PollEvent(timeout time.Duration) (termsrc.Event, bool) {
	select {
	case ev, ok := <-es.events:
		return ev, ok
	case <-time.After(timeout):
		return nil, false
	}
}

// Close stops the adapter from forwarding further events. It does not
// call Backend.Fini — callers own the backend's lifecycle.
func (es *EventSource) Close() {
	close(es.done)
}

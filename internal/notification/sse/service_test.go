package sse

import (
	"testing"

	"showings_backend/platform/logger"
)

func TestBroadcastReachesEveryClient(t *testing.T) {
	svc := New(logger.New("test"))

	a := &client{events: make(chan Event, 4)}
	b := &client{events: make(chan Event, 4)}
	svc.addClient(a)
	svc.addClient(b)

	svc.Broadcast(Event{Type: EventLeadUpdated})

	for _, cl := range []*client{a, b} {
		select {
		case event := <-cl.events:
			if event.Type != EventLeadUpdated {
				t.Errorf("event.Type = %s", event.Type)
			}
		default:
			t.Fatal("client did not receive the broadcast")
		}
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	svc := New(logger.New("test"))

	cl := &client{events: make(chan Event, 1)}
	svc.addClient(cl)

	svc.Broadcast(Event{Type: EventCallDispatched})
	svc.Broadcast(Event{Type: EventCallCompleted}) // dropped, must not block

	if got := len(cl.events); got != 1 {
		t.Errorf("buffered events = %d, want 1", got)
	}
}

func TestRemoveClient(t *testing.T) {
	svc := New(logger.New("test"))

	cl := &client{events: make(chan Event, 1)}
	svc.addClient(cl)
	svc.removeClient(cl)

	if svc.ClientCount() != 0 {
		t.Errorf("ClientCount = %d after removal", svc.ClientCount())
	}
	if _, open := <-cl.events; open {
		t.Error("removed client's channel should be closed")
	}

	// removing twice must not panic on a closed channel
	svc.removeClient(cl)
}

func TestClose(t *testing.T) {
	svc := New(logger.New("test"))
	svc.addClient(&client{events: make(chan Event, 1)})
	svc.addClient(&client{events: make(chan Event, 1)})

	svc.Close()

	if svc.ClientCount() != 0 {
		t.Errorf("ClientCount = %d after close", svc.ClientCount())
	}
}

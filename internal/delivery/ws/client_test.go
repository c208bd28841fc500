package ws

import (
	"testing"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
)

func TestClient_EnqueueNonBlocking(t *testing.T) {
	hub := newTestHub(newMemStore(), newMemDirectory("alice"))
	c := newMockClient(hub, "alice")

	// Fill the buffer completely; every enqueue must return instead of
	// blocking, and overflow must report the drop.
	for i := 0; i < domain.SendBufferSize; i++ {
		if !c.Enqueue([]byte("x")) {
			t.Fatalf("Enqueue %d should succeed within buffer capacity", i)
		}
	}
	if c.Enqueue([]byte("overflow")) {
		t.Error("Enqueue on a full buffer must report a drop")
	}

	// Draining one slot makes room again.
	<-c.send
	if !c.Enqueue([]byte("y")) {
		t.Error("Enqueue should succeed after the buffer drains")
	}
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	hub := newTestHub(newMemStore(), newMemDirectory("alice"))
	c := newMockClient(hub, "alice")

	c.Close()
	c.Close() // must not panic

	select {
	case <-c.Context().Done():
	default:
		t.Error("Close must cancel the connection context")
	}
}

func TestClient_DispatchInvalidPayloadIgnored(t *testing.T) {
	hub := newTestHub(newMemStore(), newMemDirectory("alice", "bob"))
	c := newMockClient(hub, "alice")
	mustConnect(t, hub, c)
	drainEvents(t, c)

	// Garbage payloads are dropped without a response.
	c.dispatch(domain.Op{Type: domain.OpSendMessage, Payload: []byte(`{broken`)})
	c.dispatch(domain.Op{Type: domain.OpType("unknown"), Payload: []byte(`{}`)})

	if events := drainEvents(t, c); len(events) != 0 {
		t.Errorf("Expected no events for invalid operations, got %d", len(events))
	}
}

func TestClient_DispatchSendSurfacesStoreFailure(t *testing.T) {
	msgs := newMemStore()
	msgs.failAppend = true
	hub := newTestHub(msgs, newMemDirectory("alice", "bob"))

	c := newMockClient(hub, "alice")
	mustConnect(t, hub, c)
	drainEvents(t, c)

	c.dispatch(domain.Op{
		Type:    domain.OpSendMessage,
		Payload: []byte(`{"receiver":"bob","content":"hi"}`),
	})

	events := eventsOfType(drainEvents(t, c), domain.EventError)
	if len(events) != 1 {
		t.Fatalf("Expected 1 error event, got %d", len(events))
	}
}

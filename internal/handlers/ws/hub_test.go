package ws

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// newTestClient builds a client with no underlying connection. The write loop
// is never started, so published payloads accumulate in the send buffer.
func newTestClient(userID uint) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

func drain(c *Client) [][]byte {
	var result [][]byte
	for {
		select {
		case payload := <-c.send:
			result = append(result, payload)
		default:
			return result
		}
	}
}

func TestPublishReachesOnlySubscribers(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(1)
	bob := newTestClient(2)
	carol := newTestClient(3)

	hub.Register(alice)
	hub.Register(bob)
	hub.Register(carol)

	hub.Subscribe(alice, "conversation:1")
	hub.Subscribe(bob, "conversation:1")
	hub.Subscribe(carol, "conversation:2")

	hub.Publish("conversation:1", []byte("hello"))

	for _, c := range []*Client{alice, bob} {
		got := drain(c)
		if len(got) != 1 || string(got[0]) != "hello" {
			t.Errorf("user %d expected [hello], got %q", c.UserID, got)
		}
	}
	if got := drain(carol); len(got) != 0 {
		t.Errorf("user 3 must not receive events for a channel it never joined, got %q", got)
	}
}

func TestPublishPreservesOrder(t *testing.T) {
	hub := NewHub()
	client := newTestClient(1)
	hub.Register(client)
	hub.Subscribe(client, "user:1")

	for i := 0; i < 5; i++ {
		hub.Publish("user:1", []byte(fmt.Sprintf("event-%d", i)))
	}

	got := drain(client)
	if len(got) != 5 {
		t.Fatalf("expected 5 events, got %d", len(got))
	}
	for i, payload := range got {
		if want := fmt.Sprintf("event-%d", i); string(payload) != want {
			t.Errorf("event %d out of order: got %q, want %q", i, payload, want)
		}
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	hub := NewHub()
	client := newTestClient(1)
	hub.Register(client)

	hub.Subscribe(client, "conversation:1")
	hub.Subscribe(client, "conversation:1")

	if got := hub.Subscribers("conversation:1"); got != 1 {
		t.Errorf("double-join must not duplicate membership, got %d subscribers", got)
	}

	hub.Publish("conversation:1", []byte("once"))
	if got := drain(client); len(got) != 1 {
		t.Errorf("expected exactly 1 delivery, got %d", len(got))
	}
}

func TestSubscribeUnregisteredClientIsNoop(t *testing.T) {
	hub := NewHub()
	stranger := newTestClient(9)

	hub.Subscribe(stranger, "conversation:1")

	if got := hub.Subscribers("conversation:1"); got != 0 {
		t.Errorf("unregistered client must not join channels, got %d subscribers", got)
	}
}

func TestUnregisterLeavesAllChannels(t *testing.T) {
	hub := NewHub()
	leaving := newTestClient(1)
	staying := newTestClient(2)

	hub.Register(leaving)
	hub.Register(staying)
	hub.Subscribe(leaving, "user:1")
	hub.Subscribe(leaving, "conversation:1")
	hub.Subscribe(staying, "conversation:1")

	hub.Unregister(leaving)

	if got := hub.Count(); got != 1 {
		t.Errorf("expected 1 tracked connection, got %d", got)
	}
	if got := hub.Subscribers("user:1"); got != 0 {
		t.Errorf("user channel should be empty, got %d", got)
	}
	if got := hub.Subscribers("conversation:1"); got != 1 {
		t.Errorf("conversation channel should keep the remaining client, got %d", got)
	}

	hub.Publish("conversation:1", []byte("after"))
	if got := drain(staying); len(got) != 1 {
		t.Errorf("remaining subscriber expected 1 event, got %d", len(got))
	}
	if got := drain(leaving); len(got) != 0 {
		t.Errorf("unregistered client must receive nothing, got %d events", len(got))
	}
}

func TestPublishDropsClosedClients(t *testing.T) {
	hub := NewHub()
	healthy := newTestClient(1)
	broken := newTestClient(2)

	hub.Register(healthy)
	hub.Register(broken)
	hub.Subscribe(healthy, "conversation:1")
	hub.Subscribe(broken, "conversation:1")

	// Simulate a dead connection: the client is closed but still registered.
	broken.Close()

	hub.Publish("conversation:1", []byte("still flowing"))

	if got := drain(healthy); len(got) != 1 {
		t.Errorf("healthy client expected 1 event, got %d", len(got))
	}
	if got := hub.Count(); got != 1 {
		t.Errorf("failed sender should have been unregistered, count=%d", got)
	}
	if got := hub.Subscribers("conversation:1"); got != 1 {
		t.Errorf("channel should only keep the healthy client, got %d", got)
	}
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	hub := NewHub()
	phone := newTestClient(1)
	laptop := newTestClient(1)

	hub.Register(phone)
	hub.Register(laptop)
	hub.Subscribe(phone, "user:1")
	hub.Subscribe(laptop, "user:1")

	hub.Publish("user:1", []byte("ping"))

	if got := drain(phone); len(got) != 1 {
		t.Errorf("phone expected 1 event, got %d", len(got))
	}
	if got := drain(laptop); len(got) != 1 {
		t.Errorf("laptop expected 1 event, got %d", len(got))
	}

	// Dropping one connection must not affect the other.
	hub.Unregister(phone)
	hub.Publish("user:1", []byte("still here"))
	if got := drain(laptop); len(got) != 1 {
		t.Errorf("laptop expected 1 event after phone left, got %d", len(got))
	}
}

func TestUserConnectionCounting(t *testing.T) {
	hub := NewHub()
	phone := newTestClient(1)
	laptop := newTestClient(1)
	other := newTestClient(2)

	hub.Register(phone)
	hub.Register(laptop)
	hub.Register(other)

	if got := hub.UserConnections(1); got != 2 {
		t.Errorf("user 1 expected 2 connections, got %d", got)
	}
	if got := hub.UserConnections(2); got != 1 {
		t.Errorf("user 2 expected 1 connection, got %d", got)
	}

	// One device leaving must not zero the user's count.
	hub.Unregister(phone)
	if got := hub.UserConnections(1); got != 1 {
		t.Errorf("user 1 expected 1 connection after phone left, got %d", got)
	}

	hub.Unregister(laptop)
	if got := hub.UserConnections(1); got != 0 {
		t.Errorf("user 1 expected 0 connections after all left, got %d", got)
	}
	if got := hub.UserConnections(2); got != 1 {
		t.Errorf("user 2's count must be unaffected, got %d", got)
	}
}

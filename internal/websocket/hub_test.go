package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, room string) *Client {
	return &Client{
		hub:  hub,
		room: room,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "beach-party")
	c2 := mockClient(hub, "beach-party")

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.RoomCount("beach-party"); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.RoomCount("beach-party"); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.RoomCount("beach-party"); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "beach-party")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.RoomCount("beach-party"); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastScopedToRoom(t *testing.T) {
	hub := NewHub(slog.Default())

	watching := mockClient(hub, "beach-party")
	elsewhere := mockClient(hub, "game-night")
	hub.Register(watching)
	hub.Register(elsewhere)

	msg := NewMessage("rsvp", "created", 42, map[string]any{"guest_name": "Nora"})
	hub.Broadcast("beach-party", msg)

	select {
	case data := <-watching.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "rsvp_created" {
			t.Errorf("type = %s, want rsvp_created", got.Type)
		}
		if got.ID != 42 {
			t.Errorf("id = %d, want 42", got.ID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}

	select {
	case <-elsewhere.send:
		t.Fatal("client in another room received the broadcast")
	default:
	}

	hub.Unregister(watching)
	hub.Unregister(elsewhere)
}

func TestBroadcastEmptyRoom(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast("nobody-home", NewMessage("rsvp", "created", 1, nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, "beach-party")
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast("beach-party", NewMessage("rsvp", "created", int64(i), nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast("beach-party", NewMessage("rsvp", "created", 999, nil))

	count := 0
drain:
	for {
		select {
		case <-c.send:
			count++
		default:
			break drain
		}
	}
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("rsvp", "created", 5, nil)
	if msg.Type != "rsvp_created" {
		t.Errorf("type = %s, want rsvp_created", msg.Type)
	}
	if msg.Entity != "rsvp" || msg.Action != "created" || msg.ID != 5 {
		t.Errorf("got %+v", msg)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, "beach-party")
			hub.Register(c)
			hub.Broadcast("beach-party", NewMessage("rsvp", "created", 0, nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.RoomCount("beach-party"); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, topic string) *Client {
	return &Client{
		hub:   hub,
		topic: topic,
		send:  make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, TopicKitchen)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[TopicKitchen] == nil {
		t.Fatal("topic room not created")
	}
	if !hub.rooms[TopicKitchen][client] {
		t.Fatal("client not registered in topic room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, TopicOrders)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if hub.Subscribers(TopicOrders) != 0 {
		t.Fatal("room not cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Fatal("send channel should be closed")
	}
}

func TestBroadcastToSingleTopic(t *testing.T) {
	hub := startHub(t)

	kitchen := mockClient(hub, TopicKitchen)
	dashboard := mockClient(hub, TopicOrders)
	hub.register <- kitchen
	hub.register <- dashboard
	time.Sleep(10 * time.Millisecond)

	payload := json.RawMessage(`{"order_number":7}`)
	hub.BroadcastToTopic(TopicKitchen, Event{Type: "order.created", Payload: payload})

	select {
	case msg := <-kitchen.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != "order.created" {
			t.Errorf("expected type 'order.created', got '%s'", received.Type)
		}
		if string(received.Payload) != string(payload) {
			t.Errorf("expected payload '%s', got '%s'", payload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("kitchen client did not receive message")
	}

	select {
	case <-dashboard.send:
		t.Fatal("dashboard client should not receive kitchen-only message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToMultipleClientsInSameTopic(t *testing.T) {
	hub := startHub(t)

	clients := []*Client{
		mockClient(hub, TopicOrders),
		mockClient(hub, TopicOrders),
		mockClient(hub, TopicOrders),
	}
	for _, c := range clients {
		hub.register <- c
	}
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToTopic(TopicOrders, Event{Type: "order.updated", Payload: json.RawMessage(`{}`)})

	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "order.updated" {
				t.Errorf("client%d: expected type 'order.updated', got '%s'", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := startHub(t)

	slow := &Client{hub: hub, topic: TopicOrders, send: make(chan []byte)}
	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToTopic(TopicOrders, Event{Type: "order.updated", Payload: json.RawMessage(`{}`)})
	time.Sleep(10 * time.Millisecond)

	if n := hub.Subscribers(TopicOrders); n != 0 {
		t.Fatalf("expected slow client to be dropped, still %d subscribers", n)
	}
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := mockClient(hub, TopicKitchen)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-client.send; ok {
		t.Fatal("client channel should be closed on shutdown")
	}
}

func TestServeWS(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	t.Run("Unknown topic", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "?topic=bar")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("Receives broadcast", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?topic=kitchen", nil)
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for hub.Subscribers(TopicKitchen) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		hub.BroadcastToTopic(TopicKitchen, Event{Type: "order.created", Payload: json.RawMessage(`{"order_number":3}`)})

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if !strings.Contains(string(msg), `"order.created"`) {
			t.Fatalf("unexpected message: %s", msg)
		}
	})
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/burgerboard/api/internal/enum"
	"github.com/burgerboard/api/internal/ws"
)

// Broadcaster is satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToTopic(topic string, event ws.Event)
}

// HubPublisher forwards events to connected boards. The kitchen topic gets
// everything except dispatch, which only concerns the front counter.
type HubPublisher struct {
	hub Broadcaster
}

func NewHubPublisher(hub Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := ws.Event{Type: e.Type, Payload: payload}
	p.hub.BroadcastToTopic(ws.TopicOrders, msg)
	if e.Type != enum.EventOrderDispatched {
		p.hub.BroadcastToTopic(ws.TopicKitchen, msg)
	}
	return nil
}

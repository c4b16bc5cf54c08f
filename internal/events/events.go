package events

import (
	"context"
	"time"

	"github.com/burgerboard/api/internal/logger"
	"github.com/burgerboard/api/internal/metrics"
	"github.com/burgerboard/api/internal/order"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one committed order mutation. Order is nil for deletions.
// Consumers key on OrderID and apply events as upserts or deletes.
type Event struct {
	Type        string       `json:"type"`
	OrderID     uuid.UUID    `json:"order_id"`
	OrderNumber int32        `json:"order_number"`
	Order       *order.Order `json:"order,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// New builds an event carrying the full order document.
func New(eventType string, o order.Order) Event {
	return Event{
		Type:        eventType,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Order:       &o,
		OccurredAt:  time.Now().UTC(),
	}
}

// Deleted builds the event for a removed order.
func Deleted(eventType string, id uuid.UUID, number int32) Event {
	return Event{
		Type:        eventType,
		OrderID:     id,
		OrderNumber: number,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher delivers events to one sink.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type sink struct {
	name string
	pub  Publisher
}

// Fanout publishes every event to all registered sinks. Sink failures are
// logged and counted; they never reach the caller, because the mutation
// they describe is already committed.
type Fanout struct {
	sinks []sink
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers a sink under name. Nil publishers are ignored.
func (f *Fanout) Add(name string, p Publisher) *Fanout {
	if p != nil {
		f.sinks = append(f.sinks, sink{name: name, pub: p})
	}
	return f
}

func (f *Fanout) Publish(ctx context.Context, e Event) {
	metrics.OrdersTotal.WithLabelValues(e.Type).Inc()
	for _, s := range f.sinks {
		if err := s.pub.Publish(ctx, e); err != nil {
			metrics.EventPublishFailures.WithLabelValues(s.name).Inc()
			logger.FromCtx(ctx).Error("publish order event",
				zap.String("sink", s.name),
				zap.String("type", e.Type),
				zap.Int32("order_number", e.OrderNumber),
				zap.Error(err),
			)
		}
	}
}

// Package events carries order lifecycle events over RabbitMQ.
package events

import (
	"context"
	"sync"
	"time"

	"bakeryapi/models"
	"bakeryapi/orders"

	"github.com/shopspring/decimal"
)

// Type is the routing key of an event on the orders exchange.
type Type string

const (
	OrderPlaced           Type = "order.placed"
	OrderStatusChanged    Type = "order.status_changed"
	OrderPaymentSubmitted Type = "order.payment_submitted"
)

// OrderEvent is the JSON body published for every order change.
type OrderEvent struct {
	Type          Type                 `json:"type"`
	OrderID       uint                 `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	CustomerID    uint                 `json:"customer_id"`
	OwnerID       uint                 `json:"owner_id"`
	Status        orders.Status        `json:"status"`
	PaymentStatus orders.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewOrderEvent(t Type, o models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:          t,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		OwnerID:       o.OwnerID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		OccurredAt:    at.UTC(),
	}
}

// Publisher sends order events. Publishing is best effort: callers log
// failures and carry on because the order itself is already committed.
type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (r *Recorder) Publish(_ context.Context, e OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderEvent(nil), r.events...)
}

package events

import (
	"context"
	"fmt"
	"sync"

	"bakeryapi/orders"

	"github.com/sirupsen/logrus"
)

// Notification is a message for one user derived from an order event.
type Notification struct {
	UserID  uint
	Message string
}

// NotificationsFor decides who hears about an event and what they are told.
func NotificationsFor(e OrderEvent) []Notification {
	switch e.Type {
	case OrderPlaced:
		return []Notification{
			{UserID: e.OwnerID, Message: fmt.Sprintf("New order %s for %s", e.OrderNumber, e.TotalAmount.StringFixed(2))},
			{UserID: e.CustomerID, Message: fmt.Sprintf("Order %s received", e.OrderNumber)},
		}
	case OrderPaymentSubmitted:
		return []Notification{
			{UserID: e.OwnerID, Message: fmt.Sprintf("Payment submitted for order %s", e.OrderNumber)},
		}
	case OrderStatusChanged:
		msg := fmt.Sprintf("Order %s is now %s", e.OrderNumber, e.Status)
		switch e.PaymentStatus {
		case orders.PaymentVerified:
			msg += ", payment verified"
		case orders.PaymentRejected:
			msg += ", payment rejected"
		}
		out := []Notification{{UserID: e.CustomerID, Message: msg}}
		if e.Status == orders.StatusCancelled {
			out = append(out, Notification{UserID: e.OwnerID, Message: fmt.Sprintf("Order %s was cancelled", e.OrderNumber)})
		}
		return out
	}
	return nil
}

// Notifier delivers notifications by logging them and keeps per-type
// counters for the shutdown summary.
type Notifier struct {
	Log logrus.FieldLogger

	mu     sync.Mutex
	counts map[Type]int64
}

func (n *Notifier) Handle(_ context.Context, e OrderEvent) error {
	if e.OrderNumber == "" {
		return fmt.Errorf("event %q has no order number", e.Type)
	}
	for _, note := range NotificationsFor(e) {
		n.Log.WithFields(logrus.Fields{
			"user_id":      note.UserID,
			"order_number": e.OrderNumber,
			"type":         e.Type,
		}).Info(note.Message)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.counts == nil {
		n.counts = make(map[Type]int64)
	}
	n.counts[e.Type]++
	return nil
}

// Counts returns a copy of the per-type counters.
func (n *Notifier) Counts() map[Type]int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[Type]int64, len(n.counts))
	for k, v := range n.counts {
		out[k] = v
	}
	return out
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// HandlerFunc processes one decoded event. Returning an error requeues the
// delivery once; a second failure drops it.
type HandlerFunc func(ctx context.Context, e OrderEvent) error

// Consumer reads order events from a durable queue bound to the exchange.
type Consumer struct {
	Conn     *amqp.Connection
	Exchange string
	Queue    string
	Prefetch int
	Log      logrus.FieldLogger
}

// Setup declares the exchange and the queue and binds every order.* key.
func (c *Consumer) Setup() error {
	ch, err := c.Conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := DeclareExchange(ch, c.Exchange); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(c.Queue, "order.#", c.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Run starts workers consumers, each on its own channel, and blocks until
// ctx is cancelled or a worker fails.
func (c *Consumer) Run(ctx context.Context, workers int, h HandlerFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		id := i
		g.Go(func() error { return c.worker(ctx, id, h) })
	}
	return g.Wait()
}

func (c *Consumer) worker(ctx context.Context, id int, h HandlerFunc) error {
	log := c.Log.WithField("worker", id)

	ch, err := c.Conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d: channel: %w", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(c.Prefetch, 0, false); err != nil {
		return fmt.Errorf("worker %d: qos: %w", id, err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, fmt.Sprintf("order-worker-%d", id), false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("worker %d: consume: %w", id, err)
	}

	log.Info("start consuming")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("worker %d: delivery channel closed", id)
			}
			handle(ctx, log, d.Body, d.Redelivered, d, h)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// handle decodes body and acks, requeues or drops the delivery.
func handle(ctx context.Context, log logrus.FieldLogger, body []byte, redelivered bool, ack acknowledger, h HandlerFunc) {
	var e OrderEvent
	if err := json.Unmarshal(body, &e); err != nil {
		log.WithError(err).Warn("dropping malformed event")
		_ = ack.Nack(false, false)
		return
	}

	if err := h(ctx, e); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"type":         e.Type,
			"order_number": e.OrderNumber,
			"redelivered":  redelivered,
		}).Error("handle event")
		_ = ack.Nack(false, !redelivered)
		return
	}
	_ = ack.Ack(false)
}

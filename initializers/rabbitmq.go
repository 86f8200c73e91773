package initializers

import (
	"context"
	"fmt"
	"time"

	"bakeryapi/config"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// DialRabbitMQ connects to the broker, retrying like ConnectToDB.
func DialRabbitMQ(ctx context.Context, cfg config.RabbitMQConfig, log *logrus.Logger) (*amqp.Connection, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.DialTimeout

	var conn *amqp.Connection
	dial := func() error {
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithField("retry_in", wait).Warn("rabbitmq not ready")
	}
	if err := backoff.RetryNotify(dial, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	log.Info("connected to rabbitmq")
	return conn, nil
}

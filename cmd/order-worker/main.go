// Command order-worker consumes order events from RabbitMQ and turns them
// into customer and bakery notifications.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"bakeryapi/config"
	"bakeryapi/events"
	"bakeryapi/initializers"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default $BAKERY_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := cfg.NewLogger()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("worker stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	if !cfg.RabbitMQ.Enabled() {
		return errors.New("rabbitmq.url is required for the order worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := initializers.DialRabbitMQ(ctx, cfg.RabbitMQ, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumer := &events.Consumer{
		Conn:     conn,
		Exchange: cfg.RabbitMQ.Exchange,
		Queue:    cfg.RabbitMQ.Queue,
		Prefetch: cfg.RabbitMQ.Prefetch,
		Log:      log,
	}
	if err := consumer.Setup(); err != nil {
		return err
	}

	notifier := &events.Notifier{Log: log}
	log.WithFields(logrus.Fields{
		"queue":   cfg.RabbitMQ.Queue,
		"workers": cfg.RabbitMQ.Workers,
	}).Info("order worker started")

	err = consumer.Run(ctx, cfg.RabbitMQ.Workers, notifier.Handle)

	summary := logrus.Fields{}
	for t, n := range notifier.Counts() {
		summary[string(t)] = n
	}
	log.WithFields(summary).Info("order worker summary")
	return err
}

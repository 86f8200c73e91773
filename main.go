package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bakeryapi/auth"
	"bakeryapi/config"
	"bakeryapi/events"
	"bakeryapi/handlers"
	"bakeryapi/initializers"
	"bakeryapi/middleware"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
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
		log.WithError(err).Fatal("api stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := initializers.ConnectToDB(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.Database.AutoMigrate {
		if err := initializers.Migrate(db); err != nil {
			return err
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.Enabled() {
		conn, err := initializers.DialRabbitMQ(ctx, cfg.RabbitMQ, log)
		if err != nil {
			return err
		}
		defer conn.Close()

		pub, err := events.NewAMQPPublisher(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			return err
		}
		defer pub.Close()
		publisher = pub
	} else {
		log.Warn("rabbitmq not configured, order events are dropped")
	}

	var oauth auth.OAuthProvider
	if cfg.Google.Enabled() {
		oauth = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}

	h := handlers.NewHandler(
		store.NewGormStore(db),
		publisher,
		auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		auth.NewHasher(cfg.Auth.BcryptCost),
		oauth,
		log,
		handlers.Options{
			FrontendURL:     cfg.FrontendURL,
			WebhookSecret:   cfg.Payment.WebhookSecret,
			AdvertDailyRate: cfg.Adverts.DailyRate,
			ResetTokenTTL:   cfg.Auth.ResetTokenTTL,
			LoginPerMinute:  cfg.Auth.LoginPerMinute,
			LoginBurst:      cfg.Auth.LoginBurst,
		},
	)

	r := h.Router(
		middleware.RequestLogger(log),
		middleware.CORSMiddleware(cfg.HTTP.CORSOrigins),
	)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

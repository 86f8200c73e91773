package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minProductionSecret = 32

// Validate checks that the configuration can start a server.
func (c Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http.addr must be set")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return errors.New("http read and write timeouts must be positive")
	}

	if c.Database.DSN == "" {
		return errors.New("database.dsn must be set")
	}

	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if c.Production() && len(c.JWT.Secret) < minProductionSecret {
		return fmt.Errorf("jwt.secret must be at least %d characters in production", minProductionSecret)
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.LoginPerMinute <= 0 || c.Auth.LoginBurst <= 0 {
		return errors.New("auth.login_per_minute and auth.login_burst must be positive")
	}

	u, err := url.Parse(c.FrontendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid frontend_url %q", c.FrontendURL)
	}

	if c.Google.Enabled() && (c.Google.ClientSecret == "" || c.Google.RedirectURL == "") {
		return errors.New("google.client_secret and google.redirect_url are required when google.client_id is set")
	}

	if c.RabbitMQ.Enabled() {
		if c.RabbitMQ.Exchange == "" || c.RabbitMQ.Queue == "" {
			return errors.New("rabbitmq.exchange and rabbitmq.queue must be set")
		}
		if c.RabbitMQ.Workers < 1 || c.RabbitMQ.Prefetch < 1 {
			return errors.New("rabbitmq.workers and rabbitmq.prefetch must be at least 1")
		}
	}

	if c.Production() && c.Payment.WebhookSecret == "" {
		return errors.New("payment.webhook_secret must be set in production")
	}

	if !c.Adverts.DailyRate.IsPositive() {
		return errors.New("adverts.daily_rate must be positive")
	}
	return nil
}

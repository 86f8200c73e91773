package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// applyEnvOverrides overrides config values with BAKERY_* variables.
// Malformed values are an error so a bad deployment fails at startup.
func applyEnvOverrides(cfg *Config) error {
	setString(&cfg.Env, "BAKERY_ENV")
	setString(&cfg.LogLevel, "BAKERY_LOG_LEVEL")
	setString(&cfg.FrontendURL, "BAKERY_FRONTEND_URL")

	setString(&cfg.HTTP.Addr, "BAKERY_HTTP_ADDR")
	if v := os.Getenv("BAKERY_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	setString(&cfg.Database.DSN, "BAKERY_DATABASE_DSN")
	setString(&cfg.JWT.Secret, "BAKERY_JWT_SECRET")
	setString(&cfg.Google.ClientID, "BAKERY_GOOGLE_CLIENT_ID")
	setString(&cfg.Google.ClientSecret, "BAKERY_GOOGLE_CLIENT_SECRET")
	setString(&cfg.Google.RedirectURL, "BAKERY_GOOGLE_REDIRECT_URL")
	setString(&cfg.RabbitMQ.URL, "BAKERY_RABBITMQ_URL")
	setString(&cfg.Payment.WebhookSecret, "BAKERY_PAYMENT_WEBHOOK_SECRET")

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"BAKERY_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"BAKERY_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"BAKERY_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"BAKERY_HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"BAKERY_DATABASE_DIAL_TIMEOUT", &cfg.Database.DialTimeout},
		{"BAKERY_JWT_TTL", &cfg.JWT.TTL},
		{"BAKERY_RESET_TOKEN_TTL", &cfg.Auth.ResetTokenTTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		t, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, v, err)
		}
		*d.dst = t
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"BAKERY_DATABASE_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns},
		{"BAKERY_BCRYPT_COST", &cfg.Auth.BcryptCost},
		{"BAKERY_LOGIN_PER_MINUTE", &cfg.Auth.LoginPerMinute},
		{"BAKERY_RABBITMQ_WORKERS", &cfg.RabbitMQ.Workers},
		{"BAKERY_RABBITMQ_PREFETCH", &cfg.RabbitMQ.Prefetch},
	}
	for _, i := range ints {
		v := os.Getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", i.key, v, err)
		}
		*i.dst = n
	}

	if v := os.Getenv("BAKERY_DATABASE_AUTO_MIGRATE"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid BAKERY_DATABASE_AUTO_MIGRATE %q: %w", v, err)
		}
		cfg.Database.AutoMigrate = b
	}

	if v := os.Getenv("BAKERY_ADVERT_DAILY_RATE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid BAKERY_ADVERT_DAILY_RATE %q: %w", v, err)
		}
		cfg.Adverts.DailyRate = d
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseBool accepts "true", "1", "yes", "on" and their negatives.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
}

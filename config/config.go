// Package config loads the server and worker configuration from a YAML
// file and BAKERY_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env         string `yaml:"env"`
	LogLevel    string `yaml:"log_level"`
	FrontendURL string `yaml:"frontend_url"`

	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Google   GoogleConfig   `yaml:"google"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Payment  PaymentConfig  `yaml:"payment"`
	Adverts  AdvertConfig   `yaml:"adverts"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"` // total time spent retrying the first connection
	AutoMigrate  bool          `yaml:"auto_migrate"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	BcryptCost     int           `yaml:"bcrypt_cost"`
	LoginPerMinute int           `yaml:"login_per_minute"`
	LoginBurst     int           `yaml:"login_burst"`
	ResetTokenTTL  time.Duration `yaml:"reset_token_ttl"`
}

// GoogleConfig is optional; the /auth/google routes answer 503 when
// ClientID is empty.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

func (g GoogleConfig) Enabled() bool { return g.ClientID != "" }

// RabbitMQConfig is optional; with no URL order events are dropped.
type RabbitMQConfig struct {
	URL         string        `yaml:"url"`
	Exchange    string        `yaml:"exchange"`
	Queue       string        `yaml:"queue"`
	Workers     int           `yaml:"workers"`
	Prefetch    int           `yaml:"prefetch"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

func (r RabbitMQConfig) Enabled() bool { return r.URL != "" }

type PaymentConfig struct {
	WebhookSecret string `yaml:"webhook_secret"`
}

type AdvertConfig struct {
	DailyRate decimal.Decimal `yaml:"daily_rate"`
}

// Default returns the development defaults. The DSN and JWT secret have no
// usable default and must come from the file or the environment.
func Default() Config {
	return Config{
		Env:         EnvDevelopment,
		LogLevel:    "info",
		FrontendURL: "http://localhost:5173",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			MaxOpenConns: 20,
			MaxIdleConns: 5,
			DialTimeout:  30 * time.Second,
			AutoMigrate:  true,
		},
		JWT: JWTConfig{TTL: 24 * time.Hour},
		Auth: AuthConfig{
			BcryptCost:     10,
			LoginPerMinute: 10,
			LoginBurst:     5,
			ResetTokenTTL:  time.Hour,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange:    "bakery.orders",
			Queue:       "bakery.order-notifications",
			Workers:     2,
			Prefetch:    10,
			DialTimeout: 30 * time.Second,
		},
		Adverts: AdvertConfig{DailyRate: decimal.NewFromInt(50)},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Path returns the config file path from flagValue or BAKERY_CONFIG.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("BAKERY_CONFIG")
}

func (c Config) Production() bool { return c.Env == EnvProduction }

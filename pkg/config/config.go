package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from COFFEESHOP_* environment variables.
type Config struct {
	App    App
	DB     DB
	Redis  Redis
	JWT    JWT
	PubSub PubSub
	Cache  Cache
}

type App struct {
	Name            string        `envconfig:"APP_NAME" default:"coffeeshop-api"`
	Env             string        `envconfig:"APP_ENV" default:"development"`
	Port            int           `envconfig:"PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
}

type DB struct {
	DSN          string        `envconfig:"DB_DSN"`
	Host         string        `envconfig:"DB_HOST" default:"localhost"`
	Port         int           `envconfig:"DB_PORT" default:"5432"`
	User         string        `envconfig:"DB_USER" default:"postgres"`
	Password     string        `envconfig:"DB_PASSWORD"`
	Name         string        `envconfig:"DB_NAME" default:"coffeeshop"`
	SSLMode      string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	MaxLifetime  time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	AutoMigrate  bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
}

type JWT struct {
	Secret   string        `envconfig:"JWT_SECRET"`
	Issuer   string        `envconfig:"JWT_ISSUER" default:"coffeeshop"`
	Audience string        `envconfig:"JWT_AUDIENCE" default:"coffeeshop-admin"`
	TTL      time.Duration `envconfig:"JWT_TTL" default:"12h"`
}

type PubSub struct {
	ProjectID       string `envconfig:"PUBSUB_PROJECT_ID"`
	OrderTopic      string `envconfig:"PUBSUB_ORDER_TOPIC" default:"order-events"`
	OrderSub        string `envconfig:"PUBSUB_ORDER_SUBSCRIPTION" default:"order-events-worker"`
	Enabled         bool   `envconfig:"PUBSUB_ENABLED" default:"false"`
	EmulatorOnBlank bool   `envconfig:"PUBSUB_EMULATOR_ON_BLANK" default:"false"`
}

type Cache struct {
	ActivePromotionsTTL time.Duration `envconfig:"CACHE_ACTIVE_PROMOTIONS_TTL" default:"60s"`
}

// Load reads configuration from the environment using the COFFEESHOP prefix.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("COFFEESHOP", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	cfg.DB.ensureDSN()
	return &cfg, nil
}

func (d *DB) ensureDSN() {
	if d.DSN != "" {
		return
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (a App) IsProduction() bool {
	return a.Env == "production"
}

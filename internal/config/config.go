package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	Timezone       string `mapstructure:"APP_TIMEZONE"`
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`

	// Database
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	MigrateOnStart bool   `mapstructure:"MIGRATE_ON_START"`

	// Redis is optional: empty disables the shared rate limiter store,
	// the active-event cache and the event queue.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Kafka is optional: empty disables the comanda event stream.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Rate limits (requests per minute per client IP)
	RateLimitLectura   int `mapstructure:"RATE_LIMIT_LECTURA"`
	RateLimitEscritura int `mapstructure:"RATE_LIMIT_ESCRITURA"`
	RateLimitLogin     int `mapstructure:"RATE_LIMIT_LOGIN"`

	// CORSOrigins lists the front ends allowed to call the API; empty allows any.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	// Business
	NombreLocal string `mapstructure:"NOMBRE_LOCAL"`
}

var keys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL", "APP_TIMEZONE", "WORKER_POOL_SIZE",
	"DATABASE_URL", "MIGRATE_ON_START", "REDIS_URL",
	"KAFKA_BROKERS", "KAFKA_TOPIC",
	"JWT_SECRET", "JWT_EXPIRATION_HOURS",
	"RATE_LIMIT_LECTURA", "RATE_LIMIT_ESCRITURA", "RATE_LIMIT_LOGIN",
	"CORS_ORIGINS", "NOMBRE_LOCAL",
}

// Load reads configuration from environment variables (and optional .env file)
// and validates it. A missing secret is a startup error, never a runtime one.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every key is bound
	// explicitly even when it has no default.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "America/Argentina/Buenos_Aires")
	v.SetDefault("WORKER_POOL_SIZE", 2)
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("KAFKA_TOPIC", "comandas.eventos")
	v.SetDefault("JWT_EXPIRATION_HOURS", 12)
	v.SetDefault("RATE_LIMIT_LECTURA", 600)
	v.SetDefault("RATE_LIMIT_ESCRITURA", 120)
	v.SetDefault("RATE_LIMIT_LOGIN", 20)
	v.SetDefault("NOMBRE_LOCAL", "Comandas")

	// Optional .env file for local development, missing is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL es obligatorio"))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET es obligatorio"))
	} else if c.IsProduction() && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET debe tener al menos 32 caracteres en produccion"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT fuera de rango: %d", c.Port))
	}
	if c.JWTExpirationHours <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_HOURS debe ser positivo"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE invalida %q: %w", c.Timezone, err))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Location returns the venue's time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Brokers splits KAFKA_BROKERS ("host1:9092,host2:9092").
func (c *Config) Brokers() []string { return splitLista(c.KafkaBrokers) }

// Origins splits CORS_ORIGINS ("https://barra.local,https://caja.local").
func (c *Config) Origins() []string { return splitLista(c.CORSOrigins) }

func splitLista(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

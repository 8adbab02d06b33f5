// Package config loads service settings: defaults, then an optional YAML
// file named by STOREFRONT_CONFIG, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Redis struct {
	// Addr empty keeps sessions in process memory and disables the cart cache.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Database struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	MigrationsPath string `yaml:"migrations_path"`
}

type Config struct {
	ServiceName            string        `yaml:"service_name"`
	HTTPPort               string        `yaml:"http_port"`
	APIBaseURL             string        `yaml:"api_base_url"`
	RequestTimeout         time.Duration `yaml:"request_timeout"`
	ShutdownTimeout        time.Duration `yaml:"shutdown_timeout"`
	Redis                  Redis         `yaml:"redis"`
	SessionTTL             time.Duration `yaml:"session_ttl"`
	KafkaBrokers           []string      `yaml:"kafka_brokers"`
	LedgerDriver           string        `yaml:"ledger_driver"`
	Database               Database      `yaml:"database"`
	LogLevel               string        `yaml:"log_level"`
	LogJSON                bool          `yaml:"log_json"`
	OTLPEndpoint           string        `yaml:"otlp_endpoint"`
	Currency               string        `yaml:"currency"`
	HydrationRedirectDelay time.Duration `yaml:"hydration_redirect_delay"`

	// JWTSecret verifies shopper tokens. Empty identifies shoppers by a
	// fingerprint of their token instead of its claims.
	JWTSecret string `yaml:"jwt_secret"`
}

func Default() *Config {
	return &Config{
		ServiceName:     "storefront-service",
		HTTPPort:        "8080",
		APIBaseURL:      "http://localhost:5000/api",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SessionTTL:      30 * time.Minute,
		LedgerDriver:    LedgerMemory,
		Database: Database{
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			Password:       "postgres",
			Name:           "storefront",
			MigrationsPath: "internal/ledger/migrations",
		},
		LogLevel:               "info",
		LogJSON:                true,
		Currency:               "INR",
		HydrationRedirectDelay: 2 * time.Second,
	}
}

// Load builds the configuration for the process.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.ServiceName = getEnv("OTEL_SERVICE_NAME", c.ServiceName)
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.LedgerDriver = getEnv("LEDGER_DRIVER", c.LedgerDriver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Database.MigrationsPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.Currency = getEnv("CURRENCY", c.Currency)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitList(v)
	}

	var err error
	if c.Redis.DB, err = getEnvInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.Database.Port, err = getEnvInt("DB_PORT", c.Database.Port); err != nil {
		return err
	}
	if c.LogJSON, err = getEnvBool("LOG_JSON", c.LogJSON); err != nil {
		return err
	}
	for key, dst := range map[string]*time.Duration{
		"REQUEST_TIMEOUT":          &c.RequestTimeout,
		"SHUTDOWN_TIMEOUT":         &c.ShutdownTimeout,
		"SESSION_TTL":              &c.SessionTTL,
		"HYDRATION_REDIRECT_DELAY": &c.HydrationRedirectDelay,
	} {
		if *dst, err = getEnvDuration(key, *dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		return fmt.Errorf("%w: http port %q", ErrInvalidConfig, c.HTTPPort)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: api base url is empty", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 || c.ShutdownTimeout <= 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	if c.LedgerDriver != LedgerMemory && c.LedgerDriver != LedgerPostgres {
		return fmt.Errorf("%w: ledger driver %q", ErrInvalidConfig, c.LedgerDriver)
	}
	if c.Currency == "" {
		return fmt.Errorf("%w: currency is empty", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

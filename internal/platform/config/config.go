// Package config provides layered configuration for the bookify server.
//
// Loading order:
//  1. Built-in defaults (memory stores, local addresses)
//  2. YAML config file (explicit path, BOOKIFY_CONFIG env, ./config.yaml)
//  3. Environment variable overrides
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the bookify server.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Domain    DomainConfig    `yaml:"domain"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
}

// ServerConfig holds HTTP server settings. OpsAddr serves /metrics and
// /healthz on a separate listener so the public surface stays small.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`     // default ":8080"
	OpsAddr         string        `yaml:"ops_addr"` // default ":9090"
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DomainConfig holds tenant resolution settings. RootDomain is the apex under
// which clinic subdomains live (e.g. "minapp.se" for clinic1.minapp.se).
type DomainConfig struct {
	RootDomain string `yaml:"root_domain"`
}

// RateLimitConfig guards sensitive endpoints with a sliding window per client.
type RateLimitConfig struct {
	Limit         int           `yaml:"limit"`  // max requests per window
	Window        time.Duration `yaml:"window"` // window length
	GuardedPaths  []string      `yaml:"guarded_paths"`
	SweepInterval time.Duration `yaml:"sweep_interval"` // stale key eviction cadence
}

// AuthConfig holds credential and session settings.
type AuthConfig struct {
	BcryptCost      int           `yaml:"bcrypt_cost"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	VerificationTTL time.Duration `yaml:"verification_ttl"`
	ResetTTL        time.Duration `yaml:"reset_ttl"`
	CSRFSigningKey  string        `yaml:"csrf_signing_key"`
	// ExposeTokens returns raw verification/reset tokens inline in responses.
	// Development only; must stay false in production.
	ExposeTokens bool `yaml:"expose_tokens"`
}

// PostgresConfig holds the database connection. Empty URL selects the
// in-memory stores.
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the session/token cache connection. Empty URL selects the
// in-memory stores.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KafkaConfig holds the audit trail broker. Empty brokers disable publishing.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Defaults returns the built-in configuration suitable for local development.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			OpsAddr:         ":9090",
			ShutdownTimeout: 10 * time.Second,
		},
		Domain: DomainConfig{RootDomain: "minapp.se"},
		RateLimit: RateLimitConfig{
			Limit:  20,
			Window: time.Minute,
			GuardedPaths: []string{
				"/api/v1/auth/login",
				"/api/v1/auth/register",
				"/api/v1/public/bookings",
			},
			SweepInterval: 5 * time.Minute,
		},
		Auth: AuthConfig{
			BcryptCost:      10,
			SessionTTL:      12 * time.Hour,
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        30 * time.Minute,
			CSRFSigningKey:  "dev-csrf-key-change-in-production",
		},
		Kafka: KafkaConfig{Topic: "bookify.audit"},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides, in that order.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if path := discoverConfigFile(configPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("BOOKIFY_CONFIG"); envPath != "" {
		return envPath
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Addr, "BOOKIFY_ADDR")
	setString(&cfg.Server.OpsAddr, "BOOKIFY_OPS_ADDR")
	setString(&cfg.Domain.RootDomain, "BOOKIFY_ROOT_DOMAIN")
	setString(&cfg.Postgres.URL, "BOOKIFY_POSTGRES_URL")
	setString(&cfg.Redis.URL, "BOOKIFY_REDIS_URL")
	setString(&cfg.Auth.CSRFSigningKey, "BOOKIFY_CSRF_SIGNING_KEY")
	setString(&cfg.Kafka.Topic, "BOOKIFY_KAFKA_TOPIC")
	setInt(&cfg.RateLimit.Limit, "BOOKIFY_RATE_LIMIT")
	setInt(&cfg.Auth.BcryptCost, "BOOKIFY_BCRYPT_COST")
	setDuration(&cfg.RateLimit.Window, "BOOKIFY_RATE_WINDOW")
	setDuration(&cfg.Auth.SessionTTL, "BOOKIFY_SESSION_TTL")
	setBool(&cfg.Auth.ExposeTokens, "BOOKIFY_EXPOSE_TOKENS")

	if brokers := os.Getenv("BOOKIFY_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
}

func (c *Config) validate() error {
	if c.Domain.RootDomain == "" {
		return fmt.Errorf("domain.root_domain is required")
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("rate_limit.limit must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31")
	}
	if c.Auth.CSRFSigningKey == "" {
		return fmt.Errorf("auth.csrf_signing_key is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}

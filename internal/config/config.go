// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN for the audit store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used to verify
	// access tokens minted by the family app. This service never signs tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the expected iss claim (e.g. "nestling-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim (e.g. "nestling-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// AuditMaxValueLen caps each stored change value at this many runes; longer
	// strings are cut and marked with an ellipsis. 0 selects the built-in default.
	AuditMaxValueLen int `mapstructure:"AUDIT_MAX_VALUE_LEN"`
	// AuditAccessPolicy is inline Rego text or a path to a .rego file; empty
	// selects the built-in policy (admins and guardians may view).
	AuditAccessPolicy string `mapstructure:"AUDIT_ACCESS_POLICY"`
	// AuthzURL is the family app's authorization endpoint base URL used to
	// resolve guardianship (e.g. http://app.internal:4000). Empty disables it.
	AuthzURL string `mapstructure:"AUTHZ_URL"`
	// Env is the application environment (e.g. "dev", "production"). In dev
	// the server falls back to a static subject source when AUTHZ_URL is unset.
	Env string `mapstructure:"APP_ENV"`

	// Queue transport (optional). When Kafka brokers are set, recorded events
	// can flow through Kafka to the worker instead of being written directly.
	// KafkaBrokers is a comma-separated list of broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events (default nestling-audit).
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "nestling-auth")
	v.SetDefault("JWT_AUDIENCE", "nestling-api")
	v.SetDefault("AUDIT_MAX_VALUE_LEN", 1000)
	v.SetDefault("AUDIT_ACCESS_POLICY", "")
	v.SetDefault("AUTHZ_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "nestling-audit")
	v.SetDefault("KAFKA_GROUP_ID", "nestling-audit-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.AuditMaxValueLen < 0 {
		return nil, errors.New("config: AUDIT_MAX_VALUE_LEN must not be negative")
	}

	return &cfg, nil
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if queue transport is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

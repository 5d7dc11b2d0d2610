// Copyright (c) 2026 Backalley. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Hasher) via constructors.
  - Zero Hidden State: No global variables are used to store config.

Fields tagged `required` make missing secrets a startup failure rather than a
runtime one: an unset PASSWORD_PEPPER must never let the process serve traffic.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Backalley API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis), the alternate session store backend.
	RedisURL string `env:"REDIS_URL,required"`

	// SessionBackend selects the durable session store: postgres or redis.
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"postgres"`

	// PasswordPepper is the process-wide secret concatenated to every password
	// before hashing. It lives outside the credential store on purpose.
	PasswordPepper string `env:"PASSWORD_PEPPER,required"`

	// SessionTTL is the fixed validity window of a session token.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// InviteQuota is the invite allowance granted to every new author.
	InviteQuota int `env:"INVITE_QUOTA" envDefault:"3"`

	// PostCooldown is the window within which identical repeated content
	// from the same author is suppressed.
	PostCooldown time.Duration `env:"POST_COOLDOWN" envDefault:"30s"`

	// Object Storage (Cloudflare R2 / S3-compatible)
	S3Bucket          string `env:"S3_BUCKET"        envDefault:"backalley"`
	S3Region          string `env:"S3_REGION"        envDefault:"auto"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// S3PublicBaseURL is the public CDN prefix under which uploaded objects
	// become reachable after a pre-signed PUT completes.
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTSecret      = "your-secret-key-change-in-production"
	defaultSharedPassword = "secret"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds the whole application configuration.
// It is populated from environment variables.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Notifier NotifierConfig
	Limit    RateLimitConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

// StoreConfig selects the catalog store backend.
// Postgres connection details live in LoadDatabaseConfig.
type StoreConfig struct {
	Driver   string // postgres, memory
	SeedDemo bool   // load the demo catalog into the memory store
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// AuthConfig controls login.
// Every account shares one password; lockout kicks in after MaxFailedAttempts.
type AuthConfig struct {
	SharedPassword    string
	MaxFailedAttempts int
	AttemptWindow     time.Duration
	LockoutDuration   time.Duration
}

type NotifierConfig struct {
	Channel          string // redis pub/sub channel
	SubscriberBuffer int
	Heartbeat        time.Duration
}

// RateLimitConfig is the per-client-IP limit on /graphql. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// WorkerConfig configures cmd/worker.
type WorkerConfig struct {
	Concurrency int
	HealthPort  string
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "4000"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			SeedDemo: getEnvBool("SEED_DEMO", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Auth: AuthConfig{
			SharedPassword:    getEnv("AUTH_SHARED_PASSWORD", defaultSharedPassword),
			MaxFailedAttempts: getEnvInt("AUTH_MAX_FAILED_ATTEMPTS", 5),
			AttemptWindow:     getEnvDuration("AUTH_ATTEMPT_WINDOW", 15*time.Minute),
			LockoutDuration:   getEnvDuration("AUTH_LOCKOUT_DURATION", 15*time.Minute),
		},
		Notifier: NotifierConfig{
			Channel:          getEnv("NOTIFIER_CHANNEL", "library:book-added"),
			SubscriberBuffer: getEnvInt("NOTIFIER_SUBSCRIBER_BUFFER", 64),
			Heartbeat:        getEnvDuration("NOTIFIER_HEARTBEAT", 30*time.Second),
		},
		Limit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst: getEnvInt("RATE_LIMIT_BURST", 40),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
			HealthPort:  getEnv("WORKER_HEALTH_PORT", "9999"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for values that must never reach production.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Notifier.SubscriberBuffer <= 0 {
		return fmt.Errorf("NOTIFIER_SUBSCRIBER_BUFFER must be positive")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Auth.SharedPassword == defaultSharedPassword {
			return fmt.Errorf("AUTH_SHARED_PASSWORD must be set in production")
		}
		if c.Store.Driver == StoreDriverMemory {
			return fmt.Errorf("memory store is not allowed in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

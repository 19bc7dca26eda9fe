package config

import (
	"errors"  // Validation errors
	"fmt"     // Error formatting
	"strconv" // Day suffix parsing
	"strings" // String manipulation
	"time"    // Token lifetimes

	"github.com/caarlos0/env/v11" // Environment variable parsing
	"github.com/joho/godotenv"    // For loading .env files
)

// Application stages
const (
	StageDev        = "dev"
	StageProduction = "production"
	StageTest       = "test"
)

// MinJWTSecretLength is the shortest signing secret the service accepts
const MinJWTSecretLength = 32

// Config holds the application configuration
type Config struct {
	AppStage string `env:"APP_STAGE" envDefault:"dev"` // dev, production or test
	AppPort  string `env:"APP_PORT" envDefault:"3000"` // Application port

	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`      // mysql or sqlite
	DBUser     string `env:"DB_USER"`                           // Database user
	DBPassword string `env:"DB_PASSWORD"`                       // Database password
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`    // Database host
	DBPort     string `env:"DB_PORT" envDefault:"3306"`         // Database port
	DBName     string `env:"DB_NAME" envDefault:"habits"`       // Database name
	DBPath     string `env:"DB_PATH" envDefault:"habits.db"`    // SQLite database file
	DBPoolMin  int    `env:"DATABASE_POOL_MIN" envDefault:"2"`  // Idle connections kept open
	DBPoolMax  int    `env:"DATABASE_POOL_MAX" envDefault:"10"` // Maximum open connections

	JWTSecret             string `env:"JWT_SECRET"`                                // JWT secret key
	JWTExpiresIn          string `env:"JWT_EXPIRES_IN" envDefault:"7d"`            // Access token lifetime
	RefreshTokenSecret    string `env:"REFRESH_TOKEN_SECRET"`                      // Accepted but unused: refresh tokens are not issued
	RefreshTokenExpiresIn string `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"30d"` // Accepted but unused
	BcryptRounds          int    `env:"BCRYPT_ROUNDS" envDefault:"12"`             // bcrypt cost factor

	LogLevel string `env:"LOG_LEVEL"` // error, warn, info, debug or trace

	RedisAddr string `env:"REDIS_ADDR"` // Redis server address, empty disables caching
	RedisPass string `env:"REDIS_PASS"` // Redis password
	RedisDB   int    `env:"REDIS_DB"`   // Redis database number

	TrustedProxies []string `env:"TRUSTED_PROXIES" envDefault:"127.0.0.1" envSeparator:","` // Proxies gin trusts for client IPs

	IsProd   bool          `env:"-"` // Is production environment
	TokenTTL time.Duration `env:"-"` // Parsed JWTExpiresIn
}

// LoadConfig loads configuration from the environment (and a .env file if present)
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finalize derives computed fields and validates the result
func (c *Config) finalize() error {
	c.IsProd = c.AppStage == StageProduction
	if c.LogLevel == "" {
		c.LogLevel = "debug"
		if c.IsProd {
			c.LogLevel = "info"
		}
	}
	ttl, err := ParseTTL(c.JWTExpiresIn)
	if err != nil {
		return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	c.TokenTTL = ttl
	return c.Validate()
}

// Validate checks the values the service cannot run without
func (c *Config) Validate() error {
	var errs []error
	switch c.AppStage {
	case StageDev, StageProduction, StageTest:
	default:
		errs = append(errs, fmt.Errorf("APP_STAGE must be one of dev, production, test (got %q)", c.AppStage))
	}
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be mysql or sqlite (got %q)", c.DBDriver))
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength))
	}
	if c.RefreshTokenSecret != "" && len(c.RefreshTokenSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_SECRET must be at least %d characters", MinJWTSecretLength))
	}
	if c.BcryptRounds < 10 || c.BcryptRounds > 20 {
		errs = append(errs, errors.New("BCRYPT_ROUNDS must be between 10 and 20"))
	}
	if c.DBPoolMin < 0 || c.DBPoolMax <= 0 || c.DBPoolMin > c.DBPoolMax {
		errs = append(errs, errors.New("DATABASE_POOL_MIN/MAX must satisfy 0 <= min <= max and max > 0"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	return errors.Join(errs...)
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	// Setup Data Source Name (DSN) for MySQL
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// ParseTTL parses a Go duration, additionally accepting a day suffix such as "7d"
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

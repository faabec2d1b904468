package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported storage drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver" env:"DB_DRIVER"`

		Mongo struct {
			URI            string `yaml:"uri" env:"MONGO_URI"`
			Database       string `yaml:"database" env:"MONGO_DATABASE"`
			ConnectTimeout string `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT"`
		} `yaml:"mongo"`

		Postgres struct {
			Host            string `yaml:"host" env:"DB_HOST"`
			Port            string `yaml:"port" env:"DB_PORT"`
			User            string `yaml:"user" env:"DB_USER"`
			Password        string `yaml:"password" env:"DB_PASSWORD"`
			DBName          string `yaml:"dbname" env:"DB_NAME"`
			SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
			MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
			MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
			// MigrationsDir overrides the embedded SQL migrations when set
			MigrationsDir string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		} `yaml:"postgres"`
	} `yaml:"database"`

	Session struct {
		Driver     string `yaml:"driver" env:"SESSION_DRIVER"`
		Secret     string `yaml:"secret" env:"SESSION_SECRET"`
		CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
		MaxAge     string `yaml:"max_age" env:"SESSION_MAX_AGE"`
		Secure     bool   `yaml:"secure" env:"SESSION_SECURE"`
		Issuer     string `yaml:"issuer" env:"SESSION_ISSUER"`

		Redis struct {
			Addr     string `yaml:"addr" env:"REDIS_ADDR"`
			Password string `yaml:"password" env:"REDIS_PASSWORD"`
			DB       int    `yaml:"db" env:"REDIS_DB"`
			Prefix   string `yaml:"prefix" env:"REDIS_PREFIX"`
		} `yaml:"redis"`
	} `yaml:"session"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	// Seed creates a bootstrap account on startup when Email is set.
	Seed struct {
		Email    string `yaml:"email" env:"SEED_EMAIL"`
		Password string `yaml:"password" env:"SEED_PASSWORD"`
		Name     string `yaml:"name" env:"SEED_NAME"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from .env, a YAML file and environment variables,
// in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "5555"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"

	// Database defaults
	config.Database.Driver = DriverMongo
	config.Database.Mongo.URI = "mongodb://localhost:27017"
	config.Database.Mongo.Database = "kelibin"
	config.Database.Mongo.ConnectTimeout = "10s"
	config.Database.Postgres.Host = "localhost"
	config.Database.Postgres.Port = "5432"
	config.Database.Postgres.User = "postgres"
	config.Database.Postgres.Password = "postgres"
	config.Database.Postgres.DBName = "kelibin"
	config.Database.Postgres.SSLMode = "disable"
	config.Database.Postgres.MaxOpenConns = 20
	config.Database.Postgres.MaxIdleConns = 5
	config.Database.Postgres.ConnMaxLifetime = "1h"

	// Session defaults
	config.Session.Driver = DriverMemory
	config.Session.CookieName = "secretaria.sid"
	config.Session.MaxAge = "24h"
	config.Session.Issuer = "secretaria"
	config.Session.Redis.Addr = "localhost:6379"
	config.Session.Redis.Prefix = "sess:"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverMongo:
		if config.Database.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required")
		}
	case DriverPostgres:
		if config.Database.Postgres.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	switch config.Session.Driver {
	case DriverRedis:
		if config.Session.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis session driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported session driver %q", config.Session.Driver)
	}

	if config.Session.Secret == "" {
		if config.IsProduction() {
			return fmt.Errorf("session secret is required in production mode")
		}
		config.Session.Secret = "development-only-session-secret"
	}

	durations := map[string]string{
		"server read timeout":    config.Server.ReadTimeout,
		"server write timeout":   config.Server.WriteTimeout,
		"session max age":        config.Session.MaxAge,
		"mongo connect timeout":  config.Database.Mongo.ConnectTimeout,
		"postgres conn lifetime": config.Database.Postgres.ConnMaxLifetime,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Seed.Email != "" && config.Seed.Password == "" {
		return fmt.Errorf("seed password is required when seed email is set")
	}

	return nil
}

// IsProduction reports whether the server runs in release mode
func (c *Config) IsProduction() bool {
	mode := strings.ToLower(c.Server.Mode)
	return mode == "production" || mode == "release"
}

// SessionMaxAge returns the parsed session lifetime
func (c *Config) SessionMaxAge() time.Duration {
	return mustDuration(c.Session.MaxAge, 24*time.Hour)
}

// ReadTimeout returns the parsed HTTP read timeout
func (c *Config) ReadTimeout() time.Duration {
	return mustDuration(c.Server.ReadTimeout, 15*time.Second)
}

// WriteTimeout returns the parsed HTTP write timeout
func (c *Config) WriteTimeout() time.Duration {
	return mustDuration(c.Server.WriteTimeout, 15*time.Second)
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	pg := c.Database.Postgres
	sslMode := pg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		pg.User,
		pg.Password,
		pg.Host,
		pg.Port,
		pg.DBName,
		sslMode,
	)
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

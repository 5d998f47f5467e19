package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported session stores
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

type Config struct {
	DBDriver   string `env:"DB_DRIVER" env-default:"sqlite"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"3306"`
	DBUser     string `env:"DB_USER" env-default:"taskuser"`
	DBPassword string `env:"DB_PASSWORD" env-default:"taskpassword"`
	DBName     string `env:"DB_NAME" env-default:"task_management"`
	DBPath     string `env:"DB_PATH" env-default:"dashboard.db"`

	SessionStore  string `env:"SESSION_STORE" env-default:"cookie"`
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     string `env:"REDIS_PORT" env-default:"6379"`
	SessionSecret string `env:"SESSION_SECRET" env-default:"default-secret-key-change-me"`

	GinMode  string `env:"GIN_MODE" env-default:"debug"`
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	PageSize          int           `env:"PAGE_SIZE" env-default:"10"`
	SearchDebounce    time.Duration `env:"SEARCH_DEBOUNCE" env-default:"300ms"`
	ViewIdleTimeout   time.Duration `env:"VIEW_IDLE_TIMEOUT" env-default:"30m"`
	ViewSweepSchedule string        `env:"VIEW_SWEEP_SCHEDULE" env-default:"@every 1m"`

	SeedFile string `env:"SEED_FILE"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cleanenv cannot express as tags
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.SessionStore {
	case SessionStoreCookie, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}

	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}

	return nil
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// RedisAddr returns the host:port pair of the session redis
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

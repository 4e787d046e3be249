// Package config loads service settings from configs/config.yml (viper) and
// lets TASKS_* environment variables override individual keys.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

const envPrefix = "TASKS_"

// Supported values for enumerated settings.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionBackendMemory = "memory"
	SessionBackendSQL    = "sql"

	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

type Config struct {
	Port    string  `mapstructure:"port" env:"PORT"`
	Log     Log     `mapstructure:"log" envPrefix:"LOG_"`
	DB      DB      `mapstructure:"db" envPrefix:"DB_"`
	Session Session `mapstructure:"session" envPrefix:"SESSION_"`
	Auth    Auth    `mapstructure:"auth" envPrefix:"AUTH_"`
	Server  Server  `mapstructure:"server" envPrefix:"SERVER_"`
}

type Log struct {
	Level  string `mapstructure:"level" env:"LEVEL"`
	Format string `mapstructure:"format" env:"FORMAT"`
}

// DB selects the relational store. DSN is a file path for sqlite.
type DB struct {
	Driver string `mapstructure:"driver" env:"DRIVER"`
	DSN    string `mapstructure:"dsn" env:"DSN"`
}

type Session struct {
	Backend         string        `mapstructure:"backend" env:"BACKEND"`
	Secret          string        `mapstructure:"secret" env:"SECRET"`
	CookieName      string        `mapstructure:"cookie_name" env:"COOKIE_NAME"`
	Secure          bool          `mapstructure:"secure" env:"SECURE"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT"`
	AbsoluteTimeout time.Duration `mapstructure:"absolute_timeout" env:"ABSOLUTE_TIMEOUT"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval" env:"SWEEP_INTERVAL"`
}

// Auth configures the password hasher. Cost is the bcrypt cost or the
// argon2id time parameter, depending on Algorithm.
type Auth struct {
	Algorithm string `mapstructure:"algorithm" env:"ALGORITHM"`
	Cost      int    `mapstructure:"cost" env:"COST"`
}

type Server struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"READ_HEADER_TIMEOUT"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "app.db")
	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.cookie_name", "sid")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.absolute_timeout", 24*time.Hour)
	v.SetDefault("session.sweep_interval", time.Minute)
	v.SetDefault("auth.algorithm", AlgorithmBcrypt)
	v.SetDefault("auth.cost", 10)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads config.yml from the given directories (default "configs").
// A missing file is not an error; defaults and environment still apply.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{"configs"}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}

	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendSQL:
	default:
		return fmt.Errorf("unsupported session.backend %q", c.Session.Backend)
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret is required")
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}

	switch c.Auth.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("unsupported auth.algorithm %q", c.Auth.Algorithm)
	}
	if c.Auth.Cost <= 0 {
		return fmt.Errorf("auth.cost must be positive, got %d", c.Auth.Cost)
	}
	return nil
}

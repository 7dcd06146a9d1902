// Package config loads the directory service settings from a YAML file,
// with environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gartstein/directory/internal/directory/db"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given.
var DefaultPath = filepath.Join("internal", "directory", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort     int           `yaml:"GRPC_PORT" env:"GRPC_PORT"`
	HTTPPort     int           `yaml:"HTTP_PORT" env:"HTTP_PORT"`
	DBDriver     string        `yaml:"DB_DRIVER" env:"DB_DRIVER"`
	DBHost       string        `yaml:"DB_HOST" env:"DB_HOST"`
	DBPort       int           `yaml:"DB_PORT" env:"DB_PORT"`
	DBUser       string        `yaml:"DB_USER" env:"DB_USER"`
	DBPassword   string        `yaml:"DB_PASSWORD" env:"DB_PASSWORD"`
	DBName       string        `yaml:"DB_NAME" env:"DB_NAME"`
	DBSSLMode    string        `yaml:"DB_SSLMODE" env:"DB_SSLMODE"`
	SQLitePath   string        `yaml:"SQLITE_PATH" env:"SQLITE_PATH"`
	KafkaBrokers []string      `yaml:"KAFKA_BROKERS" env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `yaml:"TOPIC" env:"TOPIC"`
	RefreshTopic string        `yaml:"REFRESH_TOPIC" env:"REFRESH_TOPIC"`
	RefreshGroup string        `yaml:"REFRESH_GROUP" env:"REFRESH_GROUP"`
	LoadTimeout  time.Duration `yaml:"LOAD_TIMEOUT" env:"LOAD_TIMEOUT"`
}

// Default returns the settings used for keys absent from both the file
// and the environment.
func Default() Config {
	return Config{
		GRPCPort:     50051,
		HTTPPort:     8080,
		DBDriver:     db.DriverPostgres,
		DBHost:       "localhost",
		DBPort:       5432,
		DBSSLMode:    "disable",
		SQLitePath:   "directory.db",
		Topic:        "directory-events",
		RefreshTopic: "directory-refresh",
		RefreshGroup: "directory",
		LoadTimeout:  10 * time.Second,
	}
}

// Load reads the YAML file at path, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("invalid config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.GRPCPort <= 0 || c.HTTPPort <= 0 {
		return fmt.Errorf("invalid config: ports must be positive")
	}
	if c.LoadTimeout < 0 {
		return fmt.Errorf("invalid config: negative LOAD_TIMEOUT")
	}
	return nil
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// DB returns the record store settings.
func (c *Config) DB() *db.Config {
	return &db.Config{
		Driver:     c.DBDriver,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SSLMode:    c.DBSSLMode,
		SQLitePath: c.SQLitePath,
	}
}

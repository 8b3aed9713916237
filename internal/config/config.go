package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"metadactyl/internal/datastore"
	"metadactyl/internal/naming"
	"metadactyl/internal/store"
)

// Environment variables read by Load.
const (
	EnvConfigFile     = "METADACTYL_CONFIG"
	EnvStoreType      = "METADACTYL_STORE_TYPE"
	EnvConnString     = "DB_CONN_STRING"
	EnvPostgresDriver = "METADACTYL_PG_DRIVER"
	EnvSQLitePath     = "METADACTYL_SQLITE_PATH"
	EnvMockDataPath   = "METADACTYL_MOCK_DATA_PATH"
	EnvNamingStrategy = "METADACTYL_NAMING_STRATEGY"
	EnvLogQueries     = "METADACTYL_LOG_QUERIES"
)

const (
	defaultConnString   = "postgres://localhost:5432/postgres?sslmode=disable"
	defaultSQLitePath   = "metadactyl.db"
	defaultMockDataPath = "data/mocks"
)

// Config is the application configuration. Values come from an optional YAML
// file and are overridden by environment variables.
type Config struct {
	Store struct {
		Type             string `yaml:"type"`
		ConnectionString string `yaml:"connection_string"`
		Driver           string `yaml:"driver"`
		SQLitePath       string `yaml:"sqlite_path"`
		MockDataPath     string `yaml:"mock_data_path"`
		LogQueries       bool   `yaml:"log_queries"`
	} `yaml:"store"`
	Naming struct {
		Strategy string `yaml:"strategy"`
	} `yaml:"naming"`
}

// Load reads the file named by METADACTYL_CONFIG, if any, then applies the
// environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	override(&cfg.Store.Type, EnvStoreType)
	override(&cfg.Store.ConnectionString, EnvConnString)
	override(&cfg.Store.Driver, EnvPostgresDriver)
	override(&cfg.Store.SQLitePath, EnvSQLitePath)
	override(&cfg.Store.MockDataPath, EnvMockDataPath)
	override(&cfg.Naming.Strategy, EnvNamingStrategy)
	if v := os.Getenv(EnvLogQueries); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvLogQueries, err)
		}
		cfg.Store.LogQueries = b
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config YAML: %w", err)
	}
	return nil
}

func override(field *string, env string) {
	if v := os.Getenv(env); v != "" {
		*field = v
	}
}

// DataStore converts the store section into a datastore.Config, filling in defaults.
func (c *Config) DataStore() datastore.Config {
	config := datastore.Config{LogQueries: c.Store.LogQueries}

	switch strings.ToLower(c.Store.Type) {
	case "mock":
		config.Type = datastore.MockStore
		config.MockDataPath = orDefault(c.Store.MockDataPath, defaultMockDataPath)
	case "sqlite":
		config.Type = datastore.SQLiteStore
		config.SQLitePath = orDefault(c.Store.SQLitePath, defaultSQLitePath)
	case "postgresql", "postgres", "db", "":
		config.Type = datastore.PostgreSQLStore
		config.ConnectionString = orDefault(c.Store.ConnectionString, defaultConnString)
		config.PostgresDriver = postgresDriver(c.Store.Driver)
	default:
		// Left as-is so NewDataStore reports the unsupported type.
		config.Type = datastore.Type(c.Store.Type)
	}

	return config
}

// NamingStrategy returns the configured naming strategy, defaulting to suffix.
func (c *Config) NamingStrategy() naming.Strategy {
	if c.Naming.Strategy == "" {
		return naming.SuffixStrategy
	}
	return naming.Strategy(strings.ToLower(c.Naming.Strategy))
}

// IsMockMode returns true if running in mock mode
func (c *Config) IsMockMode() bool {
	return strings.EqualFold(c.Store.Type, "mock")
}

// postgresDriver maps the configured driver name to a database/sql driver. lib/pq is the default.
func postgresDriver(name string) string {
	if strings.EqualFold(name, store.DriverPgx) {
		return store.DriverPgx
	}
	return store.DriverPostgres
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

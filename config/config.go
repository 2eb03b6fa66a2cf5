// Package config holds the runtime settings of a neopersist deployment: how to reach
// Neo4j and how the mapping layer behaves. Settings come from a YAML file, the
// environment, or both (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Neo4j describes the connection to the database.
type Neo4j struct {
	// URI of the instance, e.g. "neo4j://localhost:7687" or "bolt+s://host:7687".
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Database is the target database. Empty uses the server default.
	Database string `yaml:"database"`
	// MaxConnectionPoolSize limits the driver pool. Zero keeps the driver default.
	MaxConnectionPoolSize        int           `yaml:"maxConnectionPoolSize"`
	ConnectionAcquisitionTimeout time.Duration `yaml:"connectionAcquisitionTimeout"`
	ConnectTimeout               time.Duration `yaml:"connectTimeout"`
}

// Mapping tunes the object-graph mapping layer.
type Mapping struct {
	// Depth is the default relationship depth loaded with each entity.
	Depth int `yaml:"depth"`
}

// Config contains runtime settings for neopersist.
type Config struct {
	LogLevel string  `yaml:"logLevel"`
	Neo4j    Neo4j   `yaml:"neo4j"`
	Mapping  Mapping `yaml:"mapping"`
}

// Default returns a configuration pointing at a local single instance.
func Default() Config {
	return Config{
		LogLevel: "info",
		Neo4j: Neo4j{
			URI:                          "neo4j://localhost:7687",
			Username:                     "neo4j",
			Database:                     "neo4j",
			ConnectionAcquisitionTimeout: time.Minute,
			ConnectTimeout:               5 * time.Second,
		},
		Mapping: Mapping{Depth: 1},
	}
}

// Load populates the configuration from environment variables on top of Default.
func Load() (Config, error) {
	cfg := Default()
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFile reads a YAML file on top of Default and then applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup("NEOPERSIST_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("NEO4J_URI"); ok && v != "" {
		cfg.Neo4j.URI = v
	}
	if v, ok := lookup("NEO4J_USERNAME"); ok && v != "" {
		cfg.Neo4j.Username = v
	}
	if v, ok := lookup("NEO4J_PASSWORD"); ok && v != "" {
		cfg.Neo4j.Password = v
	}
	if v, ok := lookup("NEO4J_DATABASE"); ok && v != "" {
		cfg.Neo4j.Database = v
	}
	if v, ok := lookup("NEO4J_MAX_POOL_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: NEO4J_MAX_POOL_SIZE must be an integer, got %q", ErrInvalidConfig, v)
		}
		cfg.Neo4j.MaxConnectionPoolSize = n
	}
	if v, ok := lookup("NEOPERSIST_DEPTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: NEOPERSIST_DEPTH must be an integer, got %q", ErrInvalidConfig, v)
		}
		cfg.Mapping.Depth = n
	}
	return nil
}

// Validate checks that the configuration can be used to open a driver.
func (c Config) Validate() error {
	var missing []string
	if c.Neo4j.URI == "" {
		missing = append(missing, "neo4j.uri")
	}
	if c.Neo4j.Username == "" {
		missing = append(missing, "neo4j.username")
	}
	if c.Neo4j.Password == "" {
		missing = append(missing, "neo4j.password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required settings: %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	if c.Neo4j.MaxConnectionPoolSize < 0 {
		return fmt.Errorf("%w: neo4j.maxConnectionPoolSize must not be negative", ErrInvalidConfig)
	}
	if c.Mapping.Depth < 0 {
		return fmt.Errorf("%w: mapping.depth must not be negative", ErrInvalidConfig)
	}
	return nil
}

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultTable     = "TodoTable"
	DefaultAddr      = "127.0.0.1:3000"
	DefaultAPIPrefix = "/api"
)

// Config represents the main configuration for todo.
type Config struct {
	LogDir string       `toml:"log_dir"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`
}

// StoreConfig represents configuration for the item store backing the todo table.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type  string `toml:"type"`  // "dynamodb" (default), "sqlite", or "memory"
	Table string `toml:"table"` // defaults to TodoTable

	// DynamoDB-specific fields (only used when Type == "dynamodb").
	// The environment variable "local" set to "true" selects LocalEndpoint.
	LocalEndpoint string `toml:"local_endpoint,omitempty"`
	Region        string `toml:"region,omitempty"` // region for the local endpoint and fallback for AWS

	// SQLite-specific fields (only used when Type == "sqlite")
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// ServerConfig holds the HTTP server settings for `todo serve`.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	APIPrefix string `toml:"api_prefix"`
}

// ClientConfig holds the settings used by commands that call a running server.
type ClientConfig struct {
	BaseURL string `toml:"base_url"` // derived from server.addr when empty
}

// NewConfig creates a new Config rooted at baseDir with default values.
func NewConfig(baseDir string) *Config {
	cfg := &Config{
		LogDir: filepath.Join(baseDir, "log"),
		Store: StoreConfig{
			Type: "dynamodb",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in fields left empty in a config file.
func (c *Config) ApplyDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = "dynamodb"
	}
	if c.Store.Table == "" {
		c.Store.Table = DefaultTable
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.APIPrefix == "" {
		c.Server.APIPrefix = DefaultAPIPrefix
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

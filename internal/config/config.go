package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"jasypt-go/internal/jasypt"
)

// Config represents the jasypt tool configuration.
type Config struct {
	Prefix    string         `toml:"prefix"` // property prefix, defaults to "jasypt.encryptor"
	LogDir    string         `toml:"log_dir"`
	Sources   []SourceConfig `toml:"sources"`
	Resources ResourceConfig `toml:"resources"`
	Database  DatabaseConfig `toml:"database"`
}

// SourceConfig represents one property source. Sources are consulted in
// order; the first one holding a key wins. Inline command-line properties
// always take precedence over every configured source.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SourceConfig struct {
	Type string `toml:"type"` // "env", "file" or "database"

	// File-specific fields (only used when Type == "file")
	Path string `toml:"path,omitempty"`

	// Database-specific fields (only used when Type == "database")
	Application string `toml:"application,omitempty"`
	Profile     string `toml:"profile,omitempty"`
}

// ResourceConfig controls how private-key locations are loaded.
type ResourceConfig struct {
	ClasspathDirs   []string `toml:"classpath_dirs"`              // search path for "classpath:" locations
	AgeIdentityFile string   `toml:"age_identity_file,omitempty"` // X25519 identities for ".age" locations
	S3              S3Config `toml:"s3"`
}

// S3Config holds settings for "s3://" locations. Empty credentials fall back
// to the default AWS credential chain.
type S3Config struct {
	Region       string `toml:"region,omitempty"`
	Endpoint     string `toml:"endpoint,omitempty"`
	AccessKey    string `toml:"access_key,omitempty"`
	SecretKey    string `toml:"secret_key,omitempty"`
	UsePathStyle bool   `toml:"use_path_style,omitempty"`
}

// DatabaseConfig represents configuration for the property store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a new Config rooted at baseDir. Properties are read from
// the environment first, then from the property store.
func NewConfig(baseDir string) *Config {
	return &Config{
		Prefix: jasypt.DefaultPrefix,
		LogDir: filepath.Join(baseDir, "log"),
		Sources: []SourceConfig{
			{Type: "env"},
			{Type: "database", Application: "application", Profile: "default"},
		},
		Resources: ResourceConfig{
			ClasspathDirs:   []string{filepath.Join(baseDir, "keys")},
			AgeIdentityFile: filepath.Join(baseDir, "age", "identity.txt"),
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
	}
}

// NewStandaloneConfig returns the config used when no config file exists:
// properties come from the environment only, the property store lives in
// memory and nothing is logged to disk.
func NewStandaloneConfig() *Config {
	return &Config{
		Prefix:   jasypt.DefaultPrefix,
		Sources:  []SourceConfig{{Type: "env"}},
		Database: DatabaseConfig{Type: "memory"},
	}
}

// UsesDatabase reports whether any source reads from the property store.
func (c *Config) UsesDatabase() bool {
	for _, s := range c.Sources {
		if s.Type == "database" {
			return true
		}
	}
	return false
}

// PropertyPrefix returns the configured prefix or the default.
func (c *Config) PropertyPrefix() string {
	if c.Prefix == "" {
		return jasypt.DefaultPrefix
	}
	return c.Prefix
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
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
// The file may end up holding S3 credentials, so it is created 0600.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
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

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the main configuration for vshield. Everything here has a
// working default; a missing config file is not an error.
type Config struct {
	BaseDir  string         `toml:"base_dir"`
	LogDir   string         `toml:"log_dir"`
	Tool     ToolConfig     `toml:"tool"`
	Rules    RulesConfig    `toml:"rules"`
	Database DatabaseConfig `toml:"database"`
	Delivery DeliveryConfig `toml:"delivery"`
}

// ToolConfig describes the external protection tool invocation.
type ToolConfig struct {
	Binary         string `toml:"binary"`          // tool binary, default "vcs"
	Method         string `toml:"method"`          // default "auto3protect"
	TimeoutSeconds int    `toml:"timeout_seconds"` // default 300
}

// RulesConfig holds baseline classification patterns. Patterns given on
// the command line are appended to these.
type RulesConfig struct {
	ExcludeFiles  []string `toml:"exclude_files"`
	ExcludeDirs   []string `toml:"exclude_dirs"`
	CopyOnlyFiles []string `toml:"copy_only_files"`
	CopyOnlyDirs  []string `toml:"copy_only_dirs"`
}

// DatabaseConfig configures the run-history store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "none"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// DeliveryConfig configures the optional delivery backend used by the
// deliver command.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DeliveryConfig struct {
	Type string `toml:"type"` // "filesystem", "s3", or "memory"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Tool: ToolConfig{
			Binary:         "vcs",
			Method:         "auto3protect",
			TimeoutSeconds: 300,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
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

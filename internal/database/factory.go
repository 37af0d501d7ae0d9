package database

import (
	"fmt"
	"os"
	"path/filepath"

	"vshield-go/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Type {
	case "", "none":
		return NopStore{}, nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite database requires data_dir to be set")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "vshield.db"))
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// Package config loads CLI settings from .sqlorm.yaml, SQLORM_* variables
// and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem config and schema files are read from.
var AppFs = afero.NewOsFs()

// FileName is the config file written by Save.
const FileName = ".sqlorm.yaml"

// Config holds the CLI settings.
type Config struct {
	SchemaPath string
	Provider   string
	// Driver is the database/sql driver for sqlite: sqlite3 (cgo) or sqlite
	// (pure Go).
	Driver      string
	DatabaseURL string
	Preserve    bool
	History     bool
}

// Load reads the configuration. A missing config file is not an error.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// .env never overrides the environment; .env.local does.
	if _, err := AppFs.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return nil, fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	cfg := &Config{
		SchemaPath:  v.GetString("schema_path"),
		Provider:    v.GetString("provider"),
		Driver:      v.GetString("driver"),
		DatabaseURL: v.GetString("database_url"),
		Preserve:    v.GetBool("preserve"),
		History:     v.GetBool("history"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// Save writes cfg to dir/.sqlorm.yaml.
func Save(cfg *Config, dir string) error {
	v := viper.New()
	v.SetFs(AppFs)
	v.Set("schema_path", cfg.SchemaPath)
	v.Set("provider", cfg.Provider)
	v.Set("driver", cfg.Driver)
	v.Set("preserve", cfg.Preserve)
	v.Set("history", cfg.History)
	if cfg.DatabaseURL != "" {
		v.Set("database_url", cfg.DatabaseURL)
	}
	if err := AppFs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return v.WriteConfigAs(filepath.Join(dir, FileName))
}

func newViper() (*viper.Viper, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(".sqlorm")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "sqlorm"))

	v.SetEnvPrefix("SQLORM")
	v.AutomaticEnv()

	v.SetDefault("schema_path", "schema.sqlorm")
	v.SetDefault("provider", "sqlite")
	v.SetDefault("driver", "sqlite3")
	v.SetDefault("database_url", "")
	v.SetDefault("preserve", true)
	v.SetDefault("history", false)
	return v, nil
}

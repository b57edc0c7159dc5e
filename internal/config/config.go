// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	HTTPAddr       string `mapstructure:"HTTP_ADDR"`
	GithubAPIURL   string `mapstructure:"GITHUB_API_URL"`
	GithubOrg      string `mapstructure:"GITHUB_ORG"`
	GithubToken    string `mapstructure:"GITHUB_TOKEN"`
	PageSize       int    `mapstructure:"PAGE_SIZE"`
	ListMode       string `mapstructure:"LIST_MODE"`
	CacheBackend   string `mapstructure:"CACHE_BACKEND"`
	DBURL          string `mapstructure:"DB_URL"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
}

const (
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"
)

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Every key needs a default so that AutomaticEnv picks it up during Unmarshal.
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com/")
	v.SetDefault("GITHUB_ORG", "godaddy")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("PAGE_SIZE", 30)
	v.SetDefault("LIST_MODE", "paged")
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("DB_URL", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GithubOrg == "" {
		return errors.New("GITHUB_ORG is a required configuration field")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100, got %d", c.PageSize)
	}
	switch c.ListMode {
	case "paged", "all":
	default:
		return fmt.Errorf("LIST_MODE must be \"paged\" or \"all\", got %q", c.ListMode)
	}
	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendPostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required when CACHE_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheBackendMemory, CacheBackendPostgres, c.CacheBackend)
	}
	return nil
}

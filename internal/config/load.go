package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables the loader reads, e.g.
// FLASHDECK_SERVER_PORT or FLASHDECK_STORE_KIND.
const envPrefix = "FLASHDECK"

// Load configuration from environment variables and optionally a config
// file. Environment variables take precedence over values from config
// files, which take precedence over defaults.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults give a runnable server with the durable file backend.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("store.kind", "file")
	v.SetDefault("store.file_path", "data/flashdeck.json")
	v.SetDefault("store.backups_dir", "data/backups")
	v.SetDefault("store.max_backups", 10)
	v.SetDefault("store.sqlite_path", "data/flashdeck.db")
	v.SetDefault("store.database_url", "")

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables: FLASHDECK_ prefix, dots become underscores.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Store  StoreConfig  `mapstructure:"store"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig selects and parameterizes the storage backend.
type StoreConfig struct {
	// Kind selects the backend: file (default), memory, sqlite, or postgres.
	Kind string `mapstructure:"kind" validate:"required,oneof=file memory sqlite postgres"`

	// FilePath is the snapshot file of the file backend.
	FilePath string `mapstructure:"file_path" validate:"required_if=Kind file"`

	// BackupsDir is where the file backend keeps its rotating backups.
	BackupsDir string `mapstructure:"backups_dir" validate:"required_if=Kind file"`

	// MaxBackups is the backup retention count; values below 1 are raised
	// to 1 by the file backend.
	MaxBackups int `mapstructure:"max_backups" validate:"gte=0"`

	// SQLitePath is the database file of the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Kind sqlite"`

	// DatabaseURL is the connection string of the postgres backend.
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Kind postgres"`
}

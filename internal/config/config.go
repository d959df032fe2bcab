package config

import "time"

// Store drivers accepted by StoreConfig.Driver.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Store  StoreConfig  `mapstructure:"store"  validate:"required"`
	Task   TaskConfig   `mapstructure:"task"   validate:"required"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// StoreConfig selects and configures the document backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=file memory postgres sqlite"`
	// Path is the JSON file for the file driver and the database file for sqlite.
	Path string `mapstructure:"path" validate:"required_if=Driver file,required_if=Driver sqlite"`
	URL  string `mapstructure:"url"  validate:"required_if=Driver postgres,omitempty,url"`
	// AutoMigrate applies pending migrations on startup for SQL drivers.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// TaskConfig contains settings for deferred task completion.
type TaskConfig struct {
	// DefaultDelay applies when a task carries no positive amount.
	DefaultDelay time.Duration `mapstructure:"default_delay" validate:"gte=0"`
	// Collection is the path segment used when building monitor URLs.
	Collection string `mapstructure:"collection" validate:"required,alphanum"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required_if=Enabled true,omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lt=44640"`
}

// TokenLifetime returns the configured session lifetime.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CRUD_SERVER_PORT.
const EnvPrefix = "CRUD"

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the file.
// An empty path means no file is read; a missing file at a given path is an error.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every
	// key without a default has to be bound explicitly.
	for _, key := range []string{"store.url", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Default returns the configuration Load produces with no file or environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Store: StoreConfig{
			Driver:      DriverFile,
			Path:        "db.json",
			AutoMigrate: true,
		},
		Task: TaskConfig{
			DefaultDelay: 15 * time.Second,
			Collection:   "items",
		},
		Auth: AuthConfig{
			TokenLifetimeMinutes: 60,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.auto_migrate", d.Store.AutoMigrate)

	v.SetDefault("task.default_delay", d.Task.DefaultDelay)
	v.SetDefault("task.collection", d.Task.Collection)

	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.token_lifetime_minutes", d.Auth.TokenLifetimeMinutes)
}

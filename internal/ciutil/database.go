package ciutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/strefethen/crud-example/internal/redact"
)

// Defaults of the postgres service container in CI.
const (
	StandardCIUser     = "postgres"
	StandardCIPassword = "postgres"
	StandardCIPort     = "5432"
	StandardCIDatabase = "crud_test"
	StandardCIOptions  = "sslmode=disable"
)

// TestDatabaseURL returns the postgres URL for integration tests, or "" when
// none is configured. In CI, local URLs are completed with the service
// container defaults.
func TestDatabaseURL(logger *slog.Logger) string {
	dbURL := GetEnvWithFallbacks([]string{EnvTestDatabaseURL, EnvDatabaseURL, EnvStoreURL}, "", logger)
	if dbURL == "" || !IsCI() {
		return dbURL
	}

	standardized, err := standardizeDatabaseURL(dbURL)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to standardize database URL",
				"error", err,
				"url", redact.DatabaseURL(dbURL))
		}
		return dbURL
	}
	if standardized != dbURL && logger != nil {
		logger.Info("Standardized database URL for CI",
			"original", redact.DatabaseURL(dbURL),
			"standardized", redact.DatabaseURL(standardized))
	}
	return standardized
}

// standardizeDatabaseURL fills in credentials, port, database name and
// options for URLs pointing at the local service container. Remote hosts are
// left alone.
func standardizeDatabaseURL(dbURL string) (string, error) {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return dbURL, nil
	}

	host := parsed.Hostname()
	if host != "" && host != "localhost" && host != "127.0.0.1" {
		return dbURL, nil
	}
	if host == "" {
		host = "localhost"
	}

	out := *parsed
	if parsed.User == nil {
		out.User = url.UserPassword(StandardCIUser, StandardCIPassword)
	}
	if parsed.Port() == "" {
		out.Host = host + ":" + StandardCIPort
	}
	if strings.TrimPrefix(parsed.Path, "/") == "" {
		out.Path = "/" + StandardCIDatabase
	}
	if parsed.RawQuery == "" {
		out.RawQuery = StandardCIOptions
	}
	return out.String(), nil
}

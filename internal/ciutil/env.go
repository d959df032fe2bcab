package ciutil

import (
	"log/slog"
	"os"

	"github.com/strefethen/crud-example/internal/redact"
)

// Environment variables read by this package.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// EnvTestDatabaseURL is the preferred name for the integration database.
	EnvTestDatabaseURL = "CRUD_TEST_DB_URL"
	// EnvDatabaseURL is accepted as a fallback.
	EnvDatabaseURL = "DATABASE_URL"
	// EnvStoreURL is what the server itself reads for the postgres driver.
	EnvStoreURL = "CRUD_STORE_URL"
)

// IsCI reports whether a known CI provider variable is set.
func IsCI() bool {
	for _, name := range []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// GetEnvWithFallbacks returns the first non-empty variable in names, or
// defaultValue. Using anything but names[0] logs a warning.
func GetEnvWithFallbacks(names []string, defaultValue string, logger *slog.Logger) string {
	for i, name := range names {
		val := os.Getenv(name)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("Using fallback environment variable",
				"used_var", name,
				"preferred_var", names[0],
				"value", redact.DatabaseURL(val))
		}
		return val
	}
	return defaultValue
}

// Package logger configures the slog JSON handler for the server and carries
// request-scoped loggers (with trace and request ids) through a context.
package logger

// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. It provides typed
// settings for the HTTP server, the document store backend, task scheduling
// and optional session authentication.
package config

// Package ciutil detects CI environments and resolves the database URL that
// integration tests run against.
package ciutil

// Package testdb provides database helpers for integration tests. Tests
// using it are skipped unless a test database URL is configured.
package testdb

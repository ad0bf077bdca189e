// Package postgres provides the PostgreSQL implementation of task.Store used
// by the "postgres" backend. It owns the connection setup over the pgx
// database/sql driver, the embedded goose migrations that create the tasks
// table, and the mapping of PostgreSQL errors to task errors.
package postgres

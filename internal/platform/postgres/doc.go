// Package postgres stores the item document as a single JSONB row in
// PostgreSQL, using the pgx driver through database/sql.
package postgres

// Package sqlite stores the item document in a single row of a SQLite
// database using the mattn/go-sqlite3 driver.
package sqlite

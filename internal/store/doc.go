// Package store owns the persisted document holding the item and task
// collections. The whole document is loaded with ReadAll and rewritten with
// Write; Update and View wrap those calls in a single mutual-exclusion scope
// so that read-modify-write sequences never interleave. Where the bytes live
// is decided by a Backend (memory, JSON file, Postgres, SQLite).
package store

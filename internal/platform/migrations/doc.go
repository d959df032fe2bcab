// Package migrations embeds the SQL schema for the relational document
// backends and applies it with goose.
package migrations

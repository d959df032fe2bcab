// Package jsonfile persists the item document as a single JSON file on disk.
package jsonfile

// Package domain contains the catalog entities (items and the tasks queued
// against them), the closed set of task kinds, and the pure validation rules
// applied to caller input before anything is persisted.
package domain

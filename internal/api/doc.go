// Package api exposes items and tasks over HTTP. It decodes and validates
// requests, calls the item and task services and maps their errors onto the
// JSON error envelope. Task status can also be followed over a websocket.
package api

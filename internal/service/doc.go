// Package service contains the application use cases for items and their
// tasks. Services coordinate domain validation, the document store and the
// task scheduler; HTTP concerns stay in internal/api.
//
// Error handling follows one rule: domain errors (validation failures and
// missing entities) are returned unchanged so callers can match them with
// errors.Is, while storage failures are wrapped in *ServiceError with the
// operation that failed.
package service

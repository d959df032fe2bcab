// Package task completes deferred item tasks. Each task is given a one-shot
// timer when it is created, and the timer flips the persisted status from
// PENDING to COMPLETED once the task's delay has elapsed. Pending tasks left
// over from a previous run are re-armed by Recover at startup.
package task

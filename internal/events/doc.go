// Package events lets components react to task state changes without the
// scheduler knowing about them.
//
// The scheduler emits a TaskEvent once a change is persisted; handlers such
// as websocket watchers register with an InMemoryEventEmitter and remove
// themselves when done.
package events

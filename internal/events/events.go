// Package events fans sync lifecycle events out to live subscribers, most
// notably websocket clients of the daemon.
package events

import "time"

// Type identifies an event.
type Type string

// Event types.
const (
	TypeSyncStarted   Type = "sync.started"
	TypeSyncCompleted Type = "sync.completed"
	TypeSyncFailed    Type = "sync.failed"
	TypeModesChanged  Type = "modes.changed"
)

// Event is published for every sync and watched change.
type Event struct {
	Type     Type      `json:"type"`
	Time     time.Time `json:"time"`
	Strategy string    `json:"strategy,omitempty"`
	Target   string    `json:"target,omitempty"`
	DryRun   bool      `json:"dry_run,omitempty"`
	Modes    []string  `json:"modes,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Publisher accepts events. *Hub implements it.
type Publisher interface {
	Publish(Event)
}

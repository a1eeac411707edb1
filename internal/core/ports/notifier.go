package ports

import (
	"context"
	"time"
)

// Event kinds published on the notification topic.
const (
	EventUserRegistered   = "user_registered"
	EventUserLogin        = "user_login"
	EventBookAdded        = "book_added"
	EventRequestSubmitted = "request_submitted"
	EventRequestApproved  = "request_approved"
)

// Event is a best-effort notification about a state change. It is emitted
// after the triggering mutation has been durably persisted; delivery failure
// is logged and counted, never surfaced to the caller.
type Event struct {
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	Key     string    `json:"-"` // shard key: events with the same key are published in order
	At      time.Time `json:"at"`
}

// Notifier publishes a single event to the notification channel.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

// EventSink is what the core services emit into. The production
// implementation is an async sharded dispatcher draining into a Notifier.
type EventSink interface {
	Emit(e Event)
}

package realtime

import "encoding/json"

// EventType mirrors the change kind reported by the backend's feed.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one row change delivered by the backend. New carries the row after
// the change (insert/update); Old carries it before (update/delete).
type Event struct {
	Table  string          `json:"table"`
	Type   EventType       `json:"type"`
	UserID string          `json:"user_id,omitempty"`
	New    json.RawMessage `json:"new,omitempty"`
	Old    json.RawMessage `json:"old,omitempty"`
}

// Feed hands out change subscriptions per logical table. An empty userID
// subscribes to all rows of the table (used for the global catalogue feed);
// otherwise only events for that user's rows are delivered.
type Feed interface {
	// Subscribe returns a channel of events and a cancel function. The
	// channel is closed when the subscription is cancelled or the feed
	// shuts down.
	Subscribe(table, userID string) (<-chan Event, func())
}

// Package events announces sync results on NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Type names the kind of an event; it is appended to the configured subject.
type Type string

const (
	PagePublished Type = "published"
	PageDeleted   Type = "deleted"
	RunCompleted  Type = "run"
)

// Event is the JSON message published for every change.
type Event struct {
	Type      Type      `json:"type"`
	RunID     string    `json:"run_id"`
	Mode      string    `json:"mode,omitempty"`
	NotionID  string    `json:"notion_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Slug      string    `json:"slug,omitempty"`
	Category  string    `json:"category,omitempty"`
	Path      string    `json:"path,omitempty"`
	Written   int       `json:"written,omitempty"`
	Deleted   int       `json:"deleted,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event; used when NATS is disabled.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Subject returns the subject an event is published on.
func Subject(base string, t Type) string {
	return base + "." + string(t)
}

func encode(e Event) ([]byte, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return json.Marshal(e)
}

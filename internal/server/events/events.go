// Package events publishes domain events (registrations, logins, account
// lifecycle, clip changes) to a message broker.
package events

import (
	"context"
	"time"
)

// Routing keys.
const (
	UserRegistered           = "user.registered"
	UserLoggedIn             = "user.logged_in"
	AccountDeletionRequested = "account.deletion_requested"
	AccountDeletionCancelled = "account.deletion_cancelled"
	AccountDeleted           = "account.deleted"
	ClipCreated              = "clip.created"
	ClipDeleted              = "clip.deleted"
)

// Event is the body of every published message.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	ClipID     string    `json:"clip_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends events. Callers treat publishing as best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type NoopPublisher struct{}

func NewNoop() Publisher { return NoopPublisher{} }

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

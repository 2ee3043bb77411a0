package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Exchange is the topic exchange all domain events are published to
const Exchange = "technician-finder.events"

// Routing keys
const (
	RKUserCreated = "user.created"
)

// UserCreated is published after a user profile document is created
type UserCreated struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher sends an event payload under a routing key
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Handler processes one delivered event body
type Handler func(ctx context.Context, routingKey string, body []byte) error

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Decode unmarshals an event body into T. Decode failures are permanent.
func Decode[T any](body []byte) (T, error) {
	var t T
	if err := json.Unmarshal(body, &t); err != nil {
		var zero T
		return zero, Permanent(fmt.Errorf("decode payload failed: %w", err))
	}
	return t, nil
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks a handler error as not worth retrying; the delivery is dropped
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Package domain declares the ports the booking core consumes. Concrete
// implementations live in storage, notify and events.
package domain

import (
	"context"

	"cabanas/internal/models"
)

// Persister is the durable-storage port. Save has replace-all semantics:
// every call persists the entire collection and the free-text notes,
// never an increment.
type Persister interface {
	Load(ctx context.Context) (bookings []models.Booking, notes string, err error)
	Save(ctx context.Context, bookings []models.Booking, notes string) error
}

// EventPublisher fans booking lifecycle events out to in-process consumers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier delivers user-facing messages about booking changes. Failures are
// logged by callers, never surfaced to the user action that triggered them.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// SeedSource supplies the initial dataset when durable storage is empty.
type SeedSource interface {
	Load(ctx context.Context) ([]models.Booking, error)
}

// Package gcal integrates with the appointment calendar. The production
// implementation targets Google Calendar; an in-memory implementation backs
// demo mode and tests.
package gcal

import (
	"context"
	"time"

	"leadrunner/internal/domain"
)

// Gateway is the calendar contract consumed by the availability engine and
// the booking handler.
type Gateway interface {
	// Authenticate establishes API access. Failure here is fatal at startup.
	Authenticate(ctx context.Context) error

	// CheckAvailability reports true iff no existing event overlaps
	// [start, end), using half-open interval semantics.
	CheckAvailability(ctx context.Context, start, end time.Time) (bool, error)

	// CreateEvent inserts the event and returns the gateway-assigned ID.
	CreateEvent(ctx context.Context, event *domain.CalendarEvent) (string, error)

	// UpdateEvent replaces the stored event with the given one.
	UpdateEvent(ctx context.Context, eventID string, event *domain.CalendarEvent) error

	// DeleteEvent removes the event.
	DeleteEvent(ctx context.Context, eventID string) error
}

package gcal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadrunner/internal/domain"
	"leadrunner/platform/apperr"
)

// MemoryCalendar is an in-memory Gateway used in demo mode when no Google
// credentials are configured, and by tests.
type MemoryCalendar struct {
	mu     sync.Mutex
	events map[string]*domain.CalendarEvent
}

// NewMemoryCalendar creates an empty in-memory calendar.
func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{
		events: make(map[string]*domain.CalendarEvent),
	}
}

// Authenticate always succeeds.
func (m *MemoryCalendar) Authenticate(_ context.Context) error { return nil }

// CheckAvailability reports whether any stored event overlaps [start, end).
func (m *MemoryCalendar) CheckAvailability(_ context.Context, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, event := range m.events {
		if event.Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}

// CreateEvent stores the event and returns a generated ID.
func (m *MemoryCalendar) CreateEvent(_ context.Context, event *domain.CalendarEvent) (string, error) {
	if err := event.Validate(); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "invalid calendar event", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	stored := *event
	stored.ID = id
	m.events[id] = &stored
	return id, nil
}

// UpdateEvent replaces the stored event.
func (m *MemoryCalendar) UpdateEvent(_ context.Context, eventID string, event *domain.CalendarEvent) error {
	if err := event.Validate(); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid calendar event", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[eventID]; !ok {
		return apperr.NotFound("calendar event " + eventID)
	}
	stored := *event
	stored.ID = eventID
	m.events[eventID] = &stored
	return nil
}

// DeleteEvent removes the event.
func (m *MemoryCalendar) DeleteEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[eventID]; !ok {
		return apperr.NotFound("calendar event " + eventID)
	}
	delete(m.events, eventID)
	return nil
}

// Len returns the number of stored events.
func (m *MemoryCalendar) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

var _ Gateway = (*MemoryCalendar)(nil)

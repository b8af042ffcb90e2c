package domain

import (
	"fmt"
	"time"
)

// CalendarEvent is a scheduled appointment. ID is empty until the calendar
// gateway assigns one on creation.
type CalendarEvent struct {
	ID          string    `json:"id,omitempty"`
	LeadID      string    `json:"lead_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Attendees   []string  `json:"attendees"`
}

// Validate enforces the end-after-start invariant.
func (e *CalendarEvent) Validate() error {
	if !e.End.After(e.Start) {
		return fmt.Errorf("calendar event end %s must be after start %s", e.End, e.Start)
	}
	return nil
}

// Duration returns the event length.
func (e *CalendarEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Overlaps reports whether [e.Start, e.End) intersects [start, end),
// using half-open interval semantics.
func (e *CalendarEvent) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}

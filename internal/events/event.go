// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadrunner/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadContacted is published after the first automated response to a lead.
type LeadContacted struct {
	BaseEvent
	LeadID      string `json:"leadId"`
	Intent      string `json:"intent"`
	ServiceType string `json:"serviceType"`
}

func (e LeadContacted) EventName() string { return "leads.lead.contacted" }

// QuoteSent is published when a quote has been delivered to a lead.
type QuoteSent struct {
	BaseEvent
	LeadID string  `json:"leadId"`
	Price  float64 `json:"price"`
}

func (e QuoteSent) EventName() string { return "leads.quote.sent" }

// SlotsOffered is published when meeting time suggestions were sent.
type SlotsOffered struct {
	BaseEvent
	LeadID string      `json:"leadId"`
	Slots  []time.Time `json:"slots"`
}

func (e SlotsOffered) EventName() string { return "leads.slots.offered" }

// =============================================================================
// Booking Domain Events
// =============================================================================

// BookingConfirmed is published when a calendar event was created for a lead.
type BookingConfirmed struct {
	BaseEvent
	LeadID   string    `json:"leadId"`
	EventID  string    `json:"eventId"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Title    string    `json:"title"`
}

func (e BookingConfirmed) EventName() string { return "bookings.booking.confirmed" }

// =============================================================================
// Message Domain Events
// =============================================================================

// MessageHandled is published after a customer message has been dispatched.
type MessageHandled struct {
	BaseEvent
	MessageID string `json:"messageId"`
	LeadID    string `json:"leadId"`
	Intent    string `json:"intent"`
}

func (e MessageHandled) EventName() string { return "messages.message.handled" }

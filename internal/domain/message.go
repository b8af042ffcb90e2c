package domain

import "time"

// MessageType classifies a marketplace communication.
type MessageType string

const (
	MessageTypeLead                MessageType = "LEAD"
	MessageTypeMessage             MessageType = "MESSAGE"
	MessageTypeQuoteRequest        MessageType = "QUOTE_REQUEST"
	MessageTypeBookingConfirmation MessageType = "BOOKING_CONFIRMATION"
)

// SenderBusiness tags messages authored by our side of the conversation.
// Such messages must never re-enter the routing pipeline.
const SenderBusiness = "business"

// Message is a single communication tied to exactly one lead.
type Message struct {
	ID        string         `json:"id" validate:"required"`
	LeadID    string         `json:"lead_id" validate:"required"`
	Sender    string         `json:"sender"`
	Content   string         `json:"content"`
	Type      MessageType    `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// IsFromBusiness reports whether we authored this message ourselves.
func (m *Message) IsFromBusiness() bool {
	return m.Sender == SenderBusiness
}

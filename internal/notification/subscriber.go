package notification

import (
	"context"
	"fmt"

	"leadrunner/internal/events"
	"leadrunner/platform/logger"
)

// Subscriber turns domain events into operator notifications.
type Subscriber struct {
	sender Sender
	log    *logger.Logger
}

// NewSubscriber creates a notification subscriber.
func NewSubscriber(sender Sender, log *logger.Logger) *Subscriber {
	return &Subscriber{sender: sender, log: log}
}

// Register attaches the subscriber to the event bus.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(events.BookingConfirmed{}.EventName(), events.HandlerFunc(s.onBookingConfirmed))
	bus.Subscribe(events.QuoteSent{}.EventName(), events.HandlerFunc(s.onQuoteSent))
}

func (s *Subscriber) onBookingConfirmed(ctx context.Context, event events.Event) error {
	booking, ok := event.(events.BookingConfirmed)
	if !ok {
		return nil
	}

	subject := fmt.Sprintf("New booking: %s", booking.Title)
	body := fmt.Sprintf(
		"A booking was confirmed automatically.\n\nLead: %s\nEvent: %s\nStarts: %s\nEnds: %s\n",
		booking.LeadID,
		booking.EventID,
		booking.StartsAt.Format("Mon, 02 Jan 2006 15:04"),
		booking.EndsAt.Format("Mon, 02 Jan 2006 15:04"),
	)
	return s.sender.Send(ctx, subject, body)
}

func (s *Subscriber) onQuoteSent(ctx context.Context, event events.Event) error {
	quote, ok := event.(events.QuoteSent)
	if !ok {
		return nil
	}

	subject := fmt.Sprintf("Quote sent to lead %s", quote.LeadID)
	body := fmt.Sprintf("A quote of $%.2f was sent automatically to lead %s.\n", quote.Price, quote.LeadID)
	return s.sender.Send(ctx, subject, body)
}

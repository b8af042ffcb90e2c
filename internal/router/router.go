package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadrunner/internal/domain"
	"leadrunner/internal/events"
	"leadrunner/platform/config"
	"leadrunner/platform/logger"
)

// bookingDuration is the fixed length of the placeholder booking slot. The
// booking handler does not parse a confirmed time out of message content; it
// books next day 14:00 local. Known limitation, kept deliberately.
const bookingDuration = 2 * time.Hour

// maxOfferedSlots caps the slots formatted into an offer message.
const maxOfferedSlots = 3

// slotTimeFormat renders "Monday, August 25 at 02:00 PM".
const slotTimeFormat = "Monday, January 02 at 03:04 PM"

// Classifier produces analyses and quote text. Never fails: degraded mode
// returns deterministic fallbacks.
type Classifier interface {
	GenerateQuoteResponse(ctx context.Context, lead *domain.Lead, price float64, additionalInfo string) string
}

// SlotSuggester proposes meeting start times.
type SlotSuggester interface {
	SuggestMeetingTimes(ctx context.Context, preferred *time.Time, duration time.Duration) []time.Time
}

// Messenger is the outbound slice of the marketplace gateway.
type Messenger interface {
	SendMessage(ctx context.Context, leadID, content string) error
	UpdateLeadStatus(ctx context.Context, leadID string, status domain.LeadStatus) error
	SendQuote(ctx context.Context, leadID string, price float64, details string) error
}

// EventCreator is the booking slice of the calendar gateway.
type EventCreator interface {
	CreateEvent(ctx context.Context, event *domain.CalendarEvent) (string, error)
}

// LeadResolver looks up a lead to give message handlers context. A miss is
// not an error; handlers degrade to placeholder values.
type LeadResolver interface {
	ResolveLead(ctx context.Context, leadID string) (*domain.Lead, bool)
}

// TaskScheduler enqueues delayed follow-up work. Optional; a nil scheduler
// disables follow-ups.
type TaskScheduler interface {
	ScheduleQuoteFollowUp(ctx context.Context, leadID string, price float64) error
	ScheduleAppointmentReminder(ctx context.Context, leadID, eventID string, startsAt time.Time) error
}

// Router dispatches one classified item to its workflow branch.
type Router struct {
	classifier Classifier
	suggester  SlotSuggester
	messenger  Messenger
	calendar   EventCreator
	resolver   LeadResolver
	scheduler  TaskScheduler
	bus        events.Bus
	cfg        config.BusinessConfig
	log        *logger.Logger
	location   *time.Location
	now        func() time.Time
}

// New creates a workflow router. scheduler may be nil.
func New(
	classifier Classifier,
	suggester SlotSuggester,
	messenger Messenger,
	calendar EventCreator,
	resolver LeadResolver,
	scheduler TaskScheduler,
	bus events.Bus,
	cfg config.BusinessConfig,
	log *logger.Logger,
) *Router {
	loc, err := time.LoadLocation(cfg.GetTimezone())
	if err != nil {
		loc = time.UTC
	}
	return &Router{
		classifier: classifier,
		suggester:  suggester,
		messenger:  messenger,
		calendar:   calendar,
		resolver:   resolver,
		scheduler:  scheduler,
		bus:        bus,
		cfg:        cfg,
		log:        log,
		location:   loc,
		now:        time.Now,
	}
}

// HandleLead dispatches a classified lead to its workflow branch. The caller
// owns ledger marking and the unconditional NEW -> CONTACTED status update
// that follows every lead-level handling.
func (r *Router) HandleLead(ctx context.Context, lead *domain.Lead, analysis domain.Analysis) error {
	intent := ParseIntent(analysis.Intent)
	log := r.log.WithLeadID(lead.ID)

	var err error
	switch intent {
	case IntentQuoteRequest:
		err = r.handleQuoteRequest(ctx, lead, analysis)
	case IntentScheduling:
		err = r.handleSchedulingRequest(ctx, lead)
	default:
		err = r.handleGeneralInquiry(ctx, lead, analysis)
	}
	if err != nil {
		return err
	}

	log.Info("lead handled", "intent", intent.String())
	r.bus.Publish(ctx, events.LeadContacted{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		Intent:      intent.String(),
		ServiceType: lead.ServiceType,
	})
	return nil
}

// HandleMessage dispatches a classified customer message. Callers must never
// pass business-authored messages; the orchestrator filters them out before
// classification.
func (r *Router) HandleMessage(ctx context.Context, msg *domain.Message, analysis domain.Analysis) error {
	intent := ParseIntent(analysis.Intent)
	lead, _ := r.resolveLead(ctx, msg.LeadID)

	var err error
	switch intent {
	case IntentScheduling:
		err = r.handleSchedulingMessage(ctx, msg)
	case IntentBooking:
		err = r.handleBookingConfirmation(ctx, msg, lead)
	case IntentQuestion:
		err = r.sendOrFallback(ctx, msg.LeadID, analysis.SuggestedResponse,
			"Thank you for your question. I'll get back to you shortly with a detailed answer.")
	default:
		err = r.sendOrFallback(ctx, msg.LeadID, analysis.SuggestedResponse,
			"Thank you for your message. I'll review it and get back to you soon.")
	}
	if err != nil {
		return err
	}

	r.bus.Publish(ctx, events.MessageHandled{
		BaseEvent: events.NewBaseEvent(),
		MessageID: msg.ID,
		LeadID:    msg.LeadID,
		Intent:    intent.String(),
	})
	return nil
}

func (r *Router) handleQuoteRequest(ctx context.Context, lead *domain.Lead, analysis domain.Analysis) error {
	price := r.cfg.GetBasePrice()
	if analysis.SuggestedPrice != nil {
		price = *analysis.SuggestedPrice
	}
	if lead.Budget != nil {
		price = lead.Budget.Clamp(price)
	}

	quoteText := r.classifier.GenerateQuoteResponse(ctx, lead, price,
		"Key requirements: "+strings.Join(analysis.KeyRequirements, ", "))

	if err := r.messenger.SendQuote(ctx, lead.ID, price, quoteText); err != nil {
		return fmt.Errorf("send quote to lead %s: %w", lead.ID, err)
	}

	r.bus.Publish(ctx, events.QuoteSent{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Price:     price,
	})
	if r.scheduler != nil {
		if err := r.scheduler.ScheduleQuoteFollowUp(ctx, lead.ID, price); err != nil {
			r.log.Warn("failed to schedule quote follow-up", "lead_id", lead.ID, "error", err)
		}
	}
	return nil
}

func (r *Router) handleSchedulingRequest(ctx context.Context, lead *domain.Lead) error {
	preferred := r.now().Add(7 * 24 * time.Hour)
	if lead.PreferredDate != nil {
		preferred = *lead.PreferredDate
	}

	slots := r.suggester.SuggestMeetingTimes(ctx, &preferred, r.slotDuration())

	var response string
	if len(slots) > 0 {
		response = fmt.Sprintf(`Thank you for your interest in scheduling our %s services!

Based on your preferences, I have the following time slots available:

%s

Please let me know which time works best for you, and I'll confirm the appointment.

Best regards,
%s`,
			strings.ToLower(r.cfg.GetServiceType()),
			r.formatSlots(slots),
			r.cfg.GetBusinessName(),
		)
	} else {
		response = fmt.Sprintf(`Thank you for your scheduling request. I'm currently checking my availability and will get back to you within a few hours with available time slots.

Best regards,
%s`, r.cfg.GetBusinessName())
	}

	if err := r.messenger.SendMessage(ctx, lead.ID, response); err != nil {
		return fmt.Errorf("send slot offer to lead %s: %w", lead.ID, err)
	}

	if len(slots) > 0 {
		offered := slots
		if len(offered) > maxOfferedSlots {
			offered = offered[:maxOfferedSlots]
		}
		r.bus.Publish(ctx, events.SlotsOffered{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Slots:     offered,
		})
	}
	return nil
}

func (r *Router) handleGeneralInquiry(ctx context.Context, lead *domain.Lead, analysis domain.Analysis) error {
	response := analysis.SuggestedResponse
	if strings.TrimSpace(response) == "" {
		response = fmt.Sprintf(`Thank you for your interest in %s!

I'd be happy to discuss your %s needs. Please let me know:
- When you're looking to schedule the service
- Any specific requirements you have
- Your preferred budget range

I'll provide you with a detailed quote and available scheduling options.

Best regards,
%s`,
			r.cfg.GetBusinessName(),
			strings.ToLower(r.cfg.GetServiceType()),
			r.cfg.GetBusinessName(),
		)
	}

	if err := r.messenger.SendMessage(ctx, lead.ID, response); err != nil {
		return fmt.Errorf("send reply to lead %s: %w", lead.ID, err)
	}
	return nil
}

func (r *Router) handleSchedulingMessage(ctx context.Context, msg *domain.Message) error {
	// No preferred-date context here: message content is not parsed for dates.
	slots := r.suggester.SuggestMeetingTimes(ctx, nil, r.slotDuration())

	var response string
	if len(slots) > 0 {
		response = fmt.Sprintf(`I have the following available time slots:

%s

Please confirm which time works best for you, and I'll send you a calendar invitation.`,
			r.formatSlots(slots))
	} else {
		response = "I'm currently checking my schedule and will get back to you shortly with available times."
	}

	if err := r.messenger.SendMessage(ctx, msg.LeadID, response); err != nil {
		return fmt.Errorf("send slot offer to lead %s: %w", msg.LeadID, err)
	}

	if len(slots) > 0 {
		offered := slots
		if len(offered) > maxOfferedSlots {
			offered = offered[:maxOfferedSlots]
		}
		r.bus.Publish(ctx, events.SlotsOffered{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    msg.LeadID,
			Slots:     offered,
		})
	}
	return nil
}

func (r *Router) handleBookingConfirmation(ctx context.Context, msg *domain.Message, lead *domain.Lead) error {
	now := r.now().In(r.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 14, 0, 0, 0, r.location).AddDate(0, 0, 1)
	end := start.Add(bookingDuration)

	var attendees []string
	if lead != nil && lead.Email != "" {
		attendees = []string{lead.Email}
	}

	event := &domain.CalendarEvent{
		LeadID: msg.LeadID,
		Title:  fmt.Sprintf("%s - %s", r.cfg.GetServiceType(), lead.DisplayName()),
		Description: fmt.Sprintf("Lead ID: %s\nService: %s\n\nScheduled automatically from marketplace conversation",
			msg.LeadID, r.cfg.GetServiceType()),
		Start:     start,
		End:       end,
		Attendees: attendees,
	}

	eventID, err := r.calendar.CreateEvent(ctx, event)
	if err != nil || eventID == "" {
		if err != nil {
			r.log.GatewayError("calendar", "create booking event", err)
		}
		return r.send(ctx, msg.LeadID,
			"I'm confirming your appointment and will send you the details shortly.")
	}

	response := fmt.Sprintf(`Great! Your %s appointment has been confirmed for %s.

You'll receive a calendar invitation shortly. If you need to reschedule or have any questions, please don't hesitate to reach out.

Looking forward to working with you!

Best regards,
%s`,
		strings.ToLower(r.cfg.GetServiceType()),
		start.Format(slotTimeFormat),
		r.cfg.GetBusinessName(),
	)

	if err := r.messenger.UpdateLeadStatus(ctx, msg.LeadID, domain.LeadStatusBooked); err != nil {
		r.log.GatewayError("marketplace", "update lead status", err)
	}

	r.bus.Publish(ctx, events.BookingConfirmed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    msg.LeadID,
		EventID:   eventID,
		StartsAt:  start,
		EndsAt:    end,
		Title:     event.Title,
	})
	if r.scheduler != nil {
		if err := r.scheduler.ScheduleAppointmentReminder(ctx, msg.LeadID, eventID, start); err != nil {
			r.log.Warn("failed to schedule appointment reminder", "lead_id", msg.LeadID, "error", err)
		}
	}

	return r.send(ctx, msg.LeadID, response)
}

func (r *Router) resolveLead(ctx context.Context, leadID string) (*domain.Lead, bool) {
	if r.resolver == nil {
		return nil, false
	}
	return r.resolver.ResolveLead(ctx, leadID)
}

func (r *Router) sendOrFallback(ctx context.Context, leadID, response, fallback string) error {
	if strings.TrimSpace(response) == "" {
		response = fallback
	}
	return r.send(ctx, leadID, response)
}

func (r *Router) send(ctx context.Context, leadID, content string) error {
	if err := r.messenger.SendMessage(ctx, leadID, content); err != nil {
		return fmt.Errorf("send reply to lead %s: %w", leadID, err)
	}
	return nil
}

func (r *Router) formatSlots(slots []time.Time) string {
	n := len(slots)
	if n > maxOfferedSlots {
		n = maxOfferedSlots
	}
	lines := make([]string, 0, n)
	for _, slot := range slots[:n] {
		lines = append(lines, "• "+slot.In(r.location).Format(slotTimeFormat))
	}
	return strings.Join(lines, "\n")
}

func (r *Router) slotDuration() time.Duration {
	return time.Duration(r.cfg.GetSlotDurationHours() * float64(time.Hour))
}

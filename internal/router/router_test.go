package router

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"leadrunner/internal/domain"
	"leadrunner/internal/events"
	"leadrunner/platform/logger"
)

type testBusinessConfig struct{}

func (testBusinessConfig) GetBusinessName() string       { return "Acme Photo" }
func (testBusinessConfig) GetServiceType() string        { return "Photography" }
func (testBusinessConfig) GetBasePrice() float64         { return 150 }
func (testBusinessConfig) GetPriceRangeMin() float64     { return 100 }
func (testBusinessConfig) GetPriceRangeMax() float64     { return 500 }
func (testBusinessConfig) GetBusinessHours() (int, int)  { return 9, 17 }
func (testBusinessConfig) GetSlotDurationHours() float64 { return 2 }
func (testBusinessConfig) GetTimezone() string           { return "UTC" }

type fakeClassifier struct{}

func (fakeClassifier) GenerateQuoteResponse(_ context.Context, _ *domain.Lead, price float64, _ string) string {
	return "quote text"
}

type fakeSuggester struct {
	slots []time.Time
}

func (f *fakeSuggester) SuggestMeetingTimes(_ context.Context, _ *time.Time, _ time.Duration) []time.Time {
	return f.slots
}

type sentQuote struct {
	leadID string
	price  float64
}

type fakeMessenger struct {
	messages      map[string][]string
	quotes        []sentQuote
	statusUpdates map[string][]domain.LeadStatus
	sendErr       error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		messages:      make(map[string][]string),
		statusUpdates: make(map[string][]domain.LeadStatus),
	}
}

func (f *fakeMessenger) SendMessage(_ context.Context, leadID, content string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages[leadID] = append(f.messages[leadID], content)
	return nil
}

func (f *fakeMessenger) UpdateLeadStatus(_ context.Context, leadID string, status domain.LeadStatus) error {
	f.statusUpdates[leadID] = append(f.statusUpdates[leadID], status)
	return nil
}

func (f *fakeMessenger) SendQuote(_ context.Context, leadID string, price float64, _ string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.quotes = append(f.quotes, sentQuote{leadID: leadID, price: price})
	f.statusUpdates[leadID] = append(f.statusUpdates[leadID], domain.LeadStatusQuoted)
	return nil
}

type fakeEventCreator struct {
	created []*domain.CalendarEvent
	id      string
	err     error
}

func (f *fakeEventCreator) CreateEvent(_ context.Context, event *domain.CalendarEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, event)
	return f.id, nil
}

type fakeResolver struct {
	leads map[string]*domain.Lead
}

func (f *fakeResolver) ResolveLead(_ context.Context, leadID string) (*domain.Lead, bool) {
	lead, ok := f.leads[leadID]
	return lead, ok
}

type routerFixture struct {
	router    *Router
	messenger *fakeMessenger
	calendar  *fakeEventCreator
	suggester *fakeSuggester
}

func newFixture(t *testing.T) *routerFixture {
	t.Helper()

	log := logger.New("development")
	f := &routerFixture{
		messenger: newFakeMessenger(),
		calendar:  &fakeEventCreator{id: "evt-1"},
		suggester: &fakeSuggester{},
	}
	f.router = New(
		fakeClassifier{},
		f.suggester,
		f.messenger,
		f.calendar,
		&fakeResolver{leads: map[string]*domain.Lead{}},
		nil,
		events.NewInMemoryBus(log),
		testBusinessConfig{},
		log,
	)
	f.router.now = func() time.Time {
		return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	}
	return f
}

func TestHandleLeadQuoteClampedToBudgetMax(t *testing.T) {
	f := newFixture(t)
	suggested := 250.0
	lead := &domain.Lead{
		ID:     "lead-1",
		Name:   "Jane",
		Status: domain.LeadStatusNew,
		Budget: &domain.BudgetRange{Min: 100, Max: 200},
	}

	err := f.router.HandleLead(context.Background(), lead, domain.Analysis{
		Intent:         "quote_request",
		SuggestedPrice: &suggested,
	})
	if err != nil {
		t.Fatalf("HandleLead: %v", err)
	}

	if len(f.messenger.quotes) != 1 {
		t.Fatalf("got %d quotes, want 1", len(f.messenger.quotes))
	}
	if got := f.messenger.quotes[0].price; got != 200 {
		t.Errorf("quoted price = %v, want 200 (clamped to budget max)", got)
	}
}

func TestHandleLeadQuoteDefaultsToBasePrice(t *testing.T) {
	f := newFixture(t)
	lead := &domain.Lead{ID: "lead-1", Status: domain.LeadStatusNew}

	if err := f.router.HandleLead(context.Background(), lead, domain.Analysis{Intent: "quote_request"}); err != nil {
		t.Fatalf("HandleLead: %v", err)
	}

	if len(f.messenger.quotes) != 1 || f.messenger.quotes[0].price != 150 {
		t.Errorf("quotes = %+v, want one at base price 150", f.messenger.quotes)
	}
}

func TestHandleLeadQuoteClampedUpToBudgetMin(t *testing.T) {
	f := newFixture(t)
	suggested := 50.0
	lead := &domain.Lead{
		ID:     "lead-1",
		Budget: &domain.BudgetRange{Min: 100, Max: 200},
	}

	if err := f.router.HandleLead(context.Background(), lead, domain.Analysis{
		Intent:         "quote_request",
		SuggestedPrice: &suggested,
	}); err != nil {
		t.Fatalf("HandleLead: %v", err)
	}

	if f.messenger.quotes[0].price != 100 {
		t.Errorf("quoted price = %v, want 100 (clamped to budget min)", f.messenger.quotes[0].price)
	}
}

func TestHandleLeadSchedulingOffersAtMostThreeSlots(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	f.suggester.slots = []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour), base.Add(3 * time.Hour)}

	lead := &domain.Lead{ID: "lead-1"}
	if err := f.router.HandleLead(context.Background(), lead, domain.Analysis{Intent: "scheduling"}); err != nil {
		t.Fatalf("HandleLead: %v", err)
	}

	sent := f.messenger.messages["lead-1"]
	if len(sent) != 1 {
		t.Fatalf("got %d messages, want 1", len(sent))
	}
	if got := strings.Count(sent[0], "•"); got != 3 {
		t.Errorf("offer lists %d slots, want 3", got)
	}
}

func TestHandleLeadSchedulingNoSlotsSendsHoldingMessage(t *testing.T) {
	f := newFixture(t)
	lead := &domain.Lead{ID: "lead-1"}

	if err := f.router.HandleLead(context.Background(), lead, domain.Analysis{Intent: "scheduling"}); err != nil {
		t.Fatalf("HandleLead: %v", err)
	}

	sent := f.messenger.messages["lead-1"]
	if len(sent) != 1 || !strings.Contains(sent[0], "checking my availability") {
		t.Errorf("expected holding message, got %v", sent)
	}
}

func TestHandleLeadGeneralSendsSuggestedResponseVerbatim(t *testing.T) {
	f := newFixture(t)
	lead := &domain.Lead{ID: "lead-1"}

	if err := f.router.HandleLead(context.Background(), lead, domain.Analysis{
		Intent:            "complaint",
		SuggestedResponse: "We're sorry about the delay.",
	}); err != nil {
		t.Fatalf("HandleLead: %v", err)
	}

	sent := f.messenger.messages["lead-1"]
	if len(sent) != 1 || sent[0] != "We're sorry about the delay." {
		t.Errorf("sent = %v, want the suggested response verbatim", sent)
	}
}

func TestHandleMessageBookingWithoutLeadUsesPlaceholders(t *testing.T) {
	f := newFixture(t)
	msg := &domain.Message{ID: "msg-1", LeadID: "lead-unknown", Sender: "customer"}

	if err := f.router.HandleMessage(context.Background(), msg, domain.Analysis{Intent: "booking"}); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(f.calendar.created) != 1 {
		t.Fatalf("got %d events, want 1", len(f.calendar.created))
	}
	event := f.calendar.created[0]
	if len(event.Attendees) != 0 {
		t.Errorf("attendees = %v, want empty for unresolvable lead", event.Attendees)
	}
	if !strings.Contains(event.Title, "Client") {
		t.Errorf("title = %q, want placeholder Client name", event.Title)
	}

	// Placeholder slot: next day 14:00 local, two hours.
	wantStart := time.Date(2026, 8, 26, 14, 0, 0, 0, time.UTC)
	if !event.Start.Equal(wantStart) {
		t.Errorf("event start = %s, want %s", event.Start, wantStart)
	}
	if event.End.Sub(event.Start) != 2*time.Hour {
		t.Errorf("event duration = %s, want 2h", event.End.Sub(event.Start))
	}

	if got := f.messenger.statusUpdates["lead-unknown"]; len(got) != 1 || got[0] != domain.LeadStatusBooked {
		t.Errorf("status updates = %v, want [BOOKED]", got)
	}
}

func TestHandleMessageBookingWithLeadAddsAttendee(t *testing.T) {
	f := newFixture(t)
	f.router.resolver = &fakeResolver{leads: map[string]*domain.Lead{
		"lead-1": {ID: "lead-1", Name: "Jane", Email: "jane@example.com"},
	}}
	msg := &domain.Message{ID: "msg-1", LeadID: "lead-1", Sender: "customer"}

	if err := f.router.HandleMessage(context.Background(), msg, domain.Analysis{Intent: "booking"}); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	event := f.calendar.created[0]
	if len(event.Attendees) != 1 || event.Attendees[0] != "jane@example.com" {
		t.Errorf("attendees = %v", event.Attendees)
	}
	if !strings.Contains(event.Title, "Jane") {
		t.Errorf("title = %q, want customer name", event.Title)
	}
}

func TestHandleMessageBookingCalendarFailureSendsHoldingMessage(t *testing.T) {
	f := newFixture(t)
	f.calendar.err = errors.New("calendar down")
	msg := &domain.Message{ID: "msg-1", LeadID: "lead-1", Sender: "customer"}

	if err := f.router.HandleMessage(context.Background(), msg, domain.Analysis{Intent: "booking"}); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	sent := f.messenger.messages["lead-1"]
	if len(sent) != 1 || !strings.Contains(sent[0], "confirming your appointment") {
		t.Errorf("sent = %v, want holding message", sent)
	}
	if len(f.messenger.statusUpdates["lead-1"]) != 0 {
		t.Errorf("status updated despite booking failure: %v", f.messenger.statusUpdates["lead-1"])
	}
}

func TestHandleMessageQuestionFallback(t *testing.T) {
	f := newFixture(t)
	msg := &domain.Message{ID: "msg-1", LeadID: "lead-1", Sender: "customer"}

	if err := f.router.HandleMessage(context.Background(), msg, domain.Analysis{Intent: "question"}); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	sent := f.messenger.messages["lead-1"]
	if len(sent) != 1 || !strings.Contains(sent[0], "detailed answer") {
		t.Errorf("sent = %v, want question fallback", sent)
	}
}

func TestParseIntent(t *testing.T) {
	cases := []struct {
		in   string
		want Intent
	}{
		{"quote_request", IntentQuoteRequest},
		{"SCHEDULING", IntentScheduling},
		{" question ", IntentQuestion},
		{"booking", IntentBooking},
		{"complaint", IntentComplaint},
		{"other", IntentOther},
		{"", IntentOther},
		{"buy_now", IntentOther},
	}

	for _, tc := range cases {
		if got := ParseIntent(tc.in); got != tc.want {
			t.Errorf("ParseIntent(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

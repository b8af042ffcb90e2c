package marketplace

import (
	"context"
	"strings"
	"testing"

	"leadrunner/internal/domain"
	"leadrunner/platform/logger"
)

type testMarketplaceConfig struct {
	dir string
}

func (c testMarketplaceConfig) GetMarketplaceBaseURL() string { return "" }
func (c testMarketplaceConfig) GetMarketplaceAPIKey() string  { return "" }
func (c testMarketplaceConfig) GetMockDataDir() string        { return c.dir }
func (c testMarketplaceConfig) IsMarketplaceMock() bool       { return true }

type testBusinessConfig struct{}

func (testBusinessConfig) GetBusinessName() string       { return "Acme Photo" }
func (testBusinessConfig) GetServiceType() string        { return "Photography" }
func (testBusinessConfig) GetBasePrice() float64         { return 150 }
func (testBusinessConfig) GetPriceRangeMin() float64     { return 100 }
func (testBusinessConfig) GetPriceRangeMax() float64     { return 500 }
func (testBusinessConfig) GetBusinessHours() (int, int)  { return 9, 17 }
func (testBusinessConfig) GetSlotDurationHours() float64 { return 2 }
func (testBusinessConfig) GetTimezone() string           { return "UTC" }

func newTestMock(t *testing.T) *MockClient {
	t.Helper()
	mock := NewMockClient(testMarketplaceConfig{dir: t.TempDir()}, testBusinessConfig{}, logger.New("development"))
	if err := mock.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return mock
}

func TestMockClientSeedsLeadsOnFirstRun(t *testing.T) {
	mock := newTestMock(t)

	leads, err := mock.GetNewLeads(context.Background())
	if err != nil {
		t.Fatalf("GetNewLeads: %v", err)
	}
	if len(leads) != mockSampleLeads {
		t.Fatalf("got %d seeded leads, want %d", len(leads), mockSampleLeads)
	}
	for _, lead := range leads {
		if lead.Status != domain.LeadStatusNew {
			t.Errorf("seeded lead %s has status %s, want NEW", lead.ID, lead.Status)
		}
		if lead.Budget == nil {
			t.Errorf("seeded lead %s has no budget range", lead.ID)
		}
	}
}

func TestMockClientStatusUpdateRemovesFromNew(t *testing.T) {
	ctx := context.Background()
	mock := newTestMock(t)

	leads, _ := mock.GetNewLeads(ctx)
	if err := mock.UpdateLeadStatus(ctx, leads[0].ID, domain.LeadStatusContacted); err != nil {
		t.Fatalf("UpdateLeadStatus: %v", err)
	}

	after, _ := mock.GetNewLeads(ctx)
	if len(after) != len(leads)-1 {
		t.Errorf("got %d new leads after update, want %d", len(after), len(leads)-1)
	}
}

func TestMockClientSentMessagesNeverComeBack(t *testing.T) {
	ctx := context.Background()
	mock := newTestMock(t)

	leads, _ := mock.GetNewLeads(ctx)
	if err := mock.SendMessage(ctx, leads[0].ID, "Thanks for reaching out!"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	messages, err := mock.GetNewMessages(ctx, "")
	if err != nil {
		t.Fatalf("GetNewMessages: %v", err)
	}
	for _, msg := range messages {
		if msg.IsFromBusiness() {
			t.Errorf("business-authored message %s returned as new", msg.ID)
		}
	}
}

func TestMockClientSendQuote(t *testing.T) {
	ctx := context.Background()
	mock := newTestMock(t)

	leads, _ := mock.GetNewLeads(ctx)
	if err := mock.SendQuote(ctx, leads[0].ID, 350, "wedding shoot"); err != nil {
		t.Fatalf("SendQuote: %v", err)
	}

	for _, dto := range mock.leads {
		if dto.ID == leads[0].ID && dto.Status != string(domain.LeadStatusQuoted) {
			t.Errorf("lead status = %s, want QUOTED", dto.Status)
		}
	}

	var quote string
	for _, dto := range mock.messages {
		if dto.LeadID == leads[0].ID && dto.Sender == domain.SenderBusiness {
			quote = dto.Content
		}
	}
	if !strings.Contains(quote, "$350.00") {
		t.Errorf("quote message missing price: %q", quote)
	}
}

func TestMockClientStatePersistsAcrossSessions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	log := logger.New("development")

	first := NewMockClient(testMarketplaceConfig{dir: dir}, testBusinessConfig{}, log)
	if err := first.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	leads, _ := first.GetNewLeads(ctx)
	if err := first.UpdateLeadStatus(ctx, leads[0].ID, domain.LeadStatusBooked); err != nil {
		t.Fatalf("UpdateLeadStatus: %v", err)
	}
	if err := first.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	second := NewMockClient(testMarketplaceConfig{dir: dir}, testBusinessConfig{}, log)
	if err := second.Authenticate(ctx); err != nil {
		t.Fatalf("second Authenticate: %v", err)
	}
	after, _ := second.GetNewLeads(ctx)
	if len(after) != len(leads)-1 {
		t.Errorf("got %d new leads after restart, want %d", len(after), len(leads)-1)
	}
}

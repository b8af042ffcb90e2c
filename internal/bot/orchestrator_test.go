package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadrunner/internal/domain"
	"leadrunner/internal/gcal"
	"leadrunner/internal/ledger"
	"leadrunner/platform/logger"
)

type fakeMarketplace struct {
	leads         []domain.Lead
	messages      []domain.Message
	leadsErr      error
	statusUpdates map[string][]domain.LeadStatus
	disconnected  bool
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{statusUpdates: make(map[string][]domain.LeadStatus)}
}

func (f *fakeMarketplace) Authenticate(context.Context) error { return nil }

func (f *fakeMarketplace) GetNewLeads(context.Context) ([]domain.Lead, error) {
	return f.leads, f.leadsErr
}

func (f *fakeMarketplace) GetNewMessages(context.Context, string) ([]domain.Message, error) {
	return f.messages, nil
}

func (f *fakeMarketplace) SendMessage(context.Context, string, string) error { return nil }

func (f *fakeMarketplace) UpdateLeadStatus(_ context.Context, leadID string, status domain.LeadStatus) error {
	f.statusUpdates[leadID] = append(f.statusUpdates[leadID], status)
	return nil
}

func (f *fakeMarketplace) SendQuote(context.Context, string, float64, string) error { return nil }

func (f *fakeMarketplace) Disconnect(context.Context) error {
	f.disconnected = true
	return nil
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) AnalyzeLead(_ context.Context, _ *domain.Lead) domain.Analysis {
	return domain.Analysis{Intent: "quote_request"}
}

func (fakeAnalyzer) AnalyzeMessage(_ context.Context, _ *domain.Message, _ *domain.Lead) domain.Analysis {
	return domain.Analysis{Intent: "question"}
}

type fakeDispatcher struct {
	leadCalls    []string
	messageCalls []string
	failLeads    map[string]bool
	failMessages map[string]bool
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		failLeads:    make(map[string]bool),
		failMessages: make(map[string]bool),
	}
}

func (f *fakeDispatcher) HandleLead(_ context.Context, lead *domain.Lead, _ domain.Analysis) error {
	f.leadCalls = append(f.leadCalls, lead.ID)
	if f.failLeads[lead.ID] {
		return errors.New("handler blew up")
	}
	return nil
}

func (f *fakeDispatcher) HandleMessage(_ context.Context, msg *domain.Message, _ domain.Analysis) error {
	f.messageCalls = append(f.messageCalls, msg.ID)
	if f.failMessages[msg.ID] {
		return errors.New("handler blew up")
	}
	return nil
}

type botFixture struct {
	orch        *Orchestrator
	marketplace *fakeMarketplace
	dispatcher  *fakeDispatcher
	store       *ledger.MemoryStore
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()

	f := &botFixture{
		marketplace: newFakeMarketplace(),
		dispatcher:  newFakeDispatcher(),
		store:       ledger.NewMemoryStore(),
	}
	f.orch = New(
		f.marketplace,
		gcal.NewMemoryCalendar(),
		fakeAnalyzer{},
		f.store,
		time.Minute,
		logger.New("development"),
	)
	f.orch.SetDispatcher(f.dispatcher)
	return f
}

func TestRunCycleProcessesEachItemOnce(t *testing.T) {
	f := newBotFixture(t)
	f.marketplace.leads = []domain.Lead{
		{ID: "lead-1", Status: domain.LeadStatusNew},
		{ID: "lead-2", Status: domain.LeadStatusNew},
	}
	f.marketplace.messages = []domain.Message{
		{ID: "msg-1", LeadID: "lead-1", Sender: "customer"},
	}

	ctx := context.Background()
	f.orch.RunCycle(ctx)
	f.orch.RunCycle(ctx)

	if len(f.dispatcher.leadCalls) != 2 {
		t.Errorf("lead dispatches = %v, want each lead exactly once", f.dispatcher.leadCalls)
	}
	if len(f.dispatcher.messageCalls) != 1 {
		t.Errorf("message dispatches = %v, want msg-1 exactly once", f.dispatcher.messageCalls)
	}
}

func TestRunCycleSkipsBusinessMessages(t *testing.T) {
	f := newBotFixture(t)
	f.marketplace.messages = []domain.Message{
		{ID: "msg-1", LeadID: "lead-1", Sender: domain.SenderBusiness},
		{ID: "msg-2", LeadID: "lead-2", Sender: domain.SenderBusiness},
	}

	f.orch.RunCycle(context.Background())

	if len(f.dispatcher.messageCalls) != 0 {
		t.Errorf("dispatcher invoked %d times for business messages, want 0", len(f.dispatcher.messageCalls))
	}
}

func TestRunCycleIsolatesLeadFailures(t *testing.T) {
	f := newBotFixture(t)
	f.marketplace.leads = []domain.Lead{
		{ID: "lead-bad", Status: domain.LeadStatusNew},
		{ID: "lead-good", Status: domain.LeadStatusNew},
	}
	f.dispatcher.failLeads["lead-bad"] = true

	ctx := context.Background()
	f.orch.RunCycle(ctx)

	if len(f.dispatcher.leadCalls) != 2 {
		t.Fatalf("lead dispatches = %v, want both attempted", f.dispatcher.leadCalls)
	}

	// The failed lead was not marked, so it is retried next cycle.
	f.orch.RunCycle(ctx)
	retries := 0
	for _, id := range f.dispatcher.leadCalls {
		if id == "lead-bad" {
			retries++
		}
	}
	if retries != 2 {
		t.Errorf("lead-bad dispatched %d times across two cycles, want 2", retries)
	}

	seen, _ := f.store.IsProcessed(ctx, "lead-good")
	if !seen {
		t.Error("lead-good not marked processed")
	}
}

func TestRunCycleMarksFailedMessagesProcessed(t *testing.T) {
	f := newBotFixture(t)
	f.marketplace.messages = []domain.Message{
		{ID: "msg-bad", LeadID: "lead-1", Sender: "customer"},
	}
	f.dispatcher.failMessages["msg-bad"] = true

	ctx := context.Background()
	f.orch.RunCycle(ctx)
	f.orch.RunCycle(ctx)

	if len(f.dispatcher.messageCalls) != 1 {
		t.Errorf("message dispatched %d times, want 1 (never retried once dispatched)", len(f.dispatcher.messageCalls))
	}
	seen, _ := f.store.IsProcessed(ctx, "msg-bad")
	if !seen {
		t.Error("failed message not marked processed")
	}
}

func TestRunCycleUpdatesLeadStatusToContacted(t *testing.T) {
	f := newBotFixture(t)
	f.marketplace.leads = []domain.Lead{{ID: "lead-1", Status: domain.LeadStatusNew}}

	f.orch.RunCycle(context.Background())

	got := f.marketplace.statusUpdates["lead-1"]
	if len(got) != 1 || got[0] != domain.LeadStatusContacted {
		t.Errorf("status updates = %v, want [CONTACTED]", got)
	}
}

func TestRunCycleSurvivesGatewayError(t *testing.T) {
	f := newBotFixture(t)
	f.marketplace.leadsErr = errors.New("marketplace unreachable")
	f.marketplace.messages = []domain.Message{
		{ID: "msg-1", LeadID: "lead-1", Sender: "customer"},
	}

	f.orch.RunCycle(context.Background())

	// Lead fetch failed, message processing still ran.
	if len(f.dispatcher.messageCalls) != 1 {
		t.Errorf("message dispatches = %v, want 1", f.dispatcher.messageCalls)
	}
}

func TestResolveLeadReturnsCachedCopy(t *testing.T) {
	f := newBotFixture(t)
	f.marketplace.leads = []domain.Lead{{ID: "lead-1", Name: "Jane", Status: domain.LeadStatusNew}}

	ctx := context.Background()
	f.orch.RunCycle(ctx)

	lead, ok := f.orch.ResolveLead(ctx, "lead-1")
	if !ok || lead.Name != "Jane" {
		t.Errorf("ResolveLead = %v, %v", lead, ok)
	}
	if _, ok := f.orch.ResolveLead(ctx, "lead-unknown"); ok {
		t.Error("ResolveLead returned a lead for an unknown ID")
	}
}

func TestShutdownDisconnects(t *testing.T) {
	f := newBotFixture(t)
	f.orch.Shutdown(context.Background())
	if !f.marketplace.disconnected {
		t.Error("marketplace not disconnected on shutdown")
	}
}

func TestSnapshotCounters(t *testing.T) {
	f := newBotFixture(t)
	f.marketplace.leads = []domain.Lead{{ID: "lead-1", Status: domain.LeadStatusNew}}
	f.marketplace.messages = []domain.Message{
		{ID: "msg-1", LeadID: "lead-1", Sender: "customer"},
	}

	f.orch.RunCycle(context.Background())

	snap := f.orch.Snapshot()
	if snap.Cycles != 1 || snap.LeadsProcessed != 1 || snap.MessagesProcessed != 1 || snap.Failures != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

// Package bot owns the poll loop: fetch new leads and messages, classify,
// route, and record outcomes in the processing ledger.
package bot

import (
	"context"
	"sync"
	"time"

	"leadrunner/internal/domain"
	"leadrunner/internal/gcal"
	"leadrunner/internal/ledger"
	"leadrunner/internal/marketplace"
	"leadrunner/internal/ops"
	"leadrunner/platform/logger"
)

// Analyzer classifies items. It never fails: degraded mode produces the
// deterministic fallback analysis.
type Analyzer interface {
	AnalyzeLead(ctx context.Context, lead *domain.Lead) domain.Analysis
	AnalyzeMessage(ctx context.Context, msg *domain.Message, lead *domain.Lead) domain.Analysis
}

// Dispatcher routes one classified item to its workflow branch.
type Dispatcher interface {
	HandleLead(ctx context.Context, lead *domain.Lead, analysis domain.Analysis) error
	HandleMessage(ctx context.Context, msg *domain.Message, analysis domain.Analysis) error
}

// Orchestrator drives poll cycles. One cycle runs to completion before the
// next fires; items are processed sequentially with per-item error isolation.
type Orchestrator struct {
	marketplace marketplace.Gateway
	calendar    gcal.Gateway
	analyzer    Analyzer
	dispatcher  Dispatcher
	store       ledger.Store
	log         *logger.Logger
	interval    time.Duration
	now         func() time.Time

	mu        sync.Mutex
	leadCache map[string]*domain.Lead
	stats     ops.Snapshot
}

// New creates the orchestrator. The dispatcher is attached separately via
// SetDispatcher because the router needs the orchestrator as lead resolver.
func New(
	mk marketplace.Gateway,
	cal gcal.Gateway,
	analyzer Analyzer,
	store ledger.Store,
	interval time.Duration,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		marketplace: mk,
		calendar:    cal,
		analyzer:    analyzer,
		store:       store,
		log:         log,
		interval:    interval,
		now:         time.Now,
		leadCache:   make(map[string]*domain.Lead),
	}
}

// SetDispatcher attaches the workflow router.
func (o *Orchestrator) SetDispatcher(d Dispatcher) {
	o.dispatcher = d
}

// Initialize authenticates against both gateways. Either failure is fatal:
// the bot cannot usefully run unauthenticated.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	if err := o.marketplace.Authenticate(ctx); err != nil {
		return err
	}
	if err := o.calendar.Authenticate(ctx); err != nil {
		return err
	}
	o.mu.Lock()
	o.stats.StartedAt = o.now()
	o.mu.Unlock()
	o.log.Info("all gateways authenticated")
	return nil
}

// ResolveLead returns a lead seen earlier this process, for message-handler
// context. A miss is normal; handlers degrade to placeholders.
func (o *Orchestrator) ResolveLead(_ context.Context, leadID string) (*domain.Lead, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	lead, ok := o.leadCache[leadID]
	return lead, ok
}

// RunCycle executes one full poll cycle: leads first, then messages. A
// failure on one item is logged and skipped, never aborts the cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	started := o.now()
	leads, leadFailures := o.processNewLeads(ctx)
	messages, msgFailures := o.processNewMessages(ctx)
	failures := leadFailures + msgFailures

	elapsed := o.now().Sub(started)
	o.mu.Lock()
	o.stats.Cycles++
	o.stats.LeadsProcessed += leads
	o.stats.MessagesProcessed += messages
	o.stats.Failures += failures
	o.stats.LastCycleAt = started
	o.stats.LastCycleDuration = elapsed
	o.mu.Unlock()

	o.log.CycleSummary(leads, messages, failures, elapsed)
}

// Run drives recurring cycles until ctx is cancelled. The loop is a single
// goroutine, so cycles never overlap; ticks arriving while a cycle runs are
// coalesced, not queued.
func (o *Orchestrator) Run(ctx context.Context) {
	o.log.Info("bot daemon started", "interval", o.interval)

	o.RunCycle(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("bot daemon stopping")
			return
		case <-ticker.C:
			o.RunCycle(ctx)
		}
	}
}

// Shutdown disconnects from the marketplace and releases the ledger.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	if err := o.marketplace.Disconnect(ctx); err != nil {
		o.log.GatewayError("marketplace", "disconnect", err)
	}
	if err := o.store.Close(); err != nil {
		o.log.Error("failed to close ledger", "error", err)
	}
	o.log.Info("bot shut down")
}

// Snapshot implements ops.StatusProvider.
func (o *Orchestrator) Snapshot() ops.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

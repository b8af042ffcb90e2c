package bot

import (
	"context"

	"leadrunner/internal/domain"
)

// processNewLeads fetches and handles unseen leads. Returns how many were
// handled and how many failed. A lead whose handler fails is not marked
// processed, so it is eligible for retry next cycle.
func (o *Orchestrator) processNewLeads(ctx context.Context) (processed, failures int) {
	leads, err := o.marketplace.GetNewLeads(ctx)
	if err != nil {
		o.log.GatewayError("marketplace", "get new leads", err)
		return 0, 0
	}

	for i := range leads {
		if ctx.Err() != nil {
			return processed, failures
		}
		lead := &leads[i]

		seen, err := o.store.IsProcessed(ctx, lead.ID)
		if err != nil {
			o.log.ItemFailure("lead", lead.ID, err)
			failures++
			continue
		}
		if seen {
			continue
		}

		o.cacheLead(lead)
		log := o.log.WithLeadID(lead.ID)
		log.Info("processing new lead", "customer", lead.DisplayName())

		analysis := o.analyzer.AnalyzeLead(ctx, lead)
		if err := o.dispatcher.HandleLead(ctx, lead, analysis); err != nil {
			o.log.ItemFailure("lead", lead.ID, err)
			failures++
			continue
		}

		if err := o.store.MarkProcessed(ctx, lead.ID, o.now()); err != nil {
			o.log.ItemFailure("lead", lead.ID, err)
			failures++
		}

		// Every handled lead moves NEW -> CONTACTED, regardless of branch.
		if err := o.marketplace.UpdateLeadStatus(ctx, lead.ID, domain.LeadStatusContacted); err != nil {
			o.log.GatewayError("marketplace", "update lead status", err)
		}
		processed++
	}
	return processed, failures
}

// processNewMessages fetches and handles unseen customer messages. Messages
// we authored ourselves never reach the dispatcher. Once dispatched, a
// message is marked processed even if its handler failed; a message is never
// retried.
func (o *Orchestrator) processNewMessages(ctx context.Context) (processed, failures int) {
	messages, err := o.marketplace.GetNewMessages(ctx, "")
	if err != nil {
		o.log.GatewayError("marketplace", "get new messages", err)
		return 0, 0
	}

	for i := range messages {
		if ctx.Err() != nil {
			return processed, failures
		}
		msg := &messages[i]

		if msg.IsFromBusiness() {
			continue
		}

		seen, err := o.store.IsProcessed(ctx, msg.ID)
		if err != nil {
			o.log.ItemFailure("message", msg.ID, err)
			failures++
			continue
		}
		if seen {
			continue
		}

		lead, _ := o.ResolveLead(ctx, msg.LeadID)
		analysis := o.analyzer.AnalyzeMessage(ctx, msg, lead)

		if err := o.dispatcher.HandleMessage(ctx, msg, analysis); err != nil {
			o.log.ItemFailure("message", msg.ID, err)
			failures++
		}

		if err := o.store.MarkProcessed(ctx, msg.ID, o.now()); err != nil {
			o.log.ItemFailure("message", msg.ID, err)
			failures++
			continue
		}
		processed++
	}
	return processed, failures
}

func (o *Orchestrator) cacheLead(lead *domain.Lead) {
	o.mu.Lock()
	defer o.mu.Unlock()
	copied := *lead
	o.leadCache[lead.ID] = &copied
}

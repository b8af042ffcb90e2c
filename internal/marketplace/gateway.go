// Package marketplace integrates with the lead marketplace: fetching leads
// and messages, sending replies and quotes, and updating lead status.
package marketplace

import (
	"context"
	"fmt"
	"strings"

	"leadrunner/internal/domain"
)

// Gateway is the marketplace contract consumed by the orchestrator and the
// workflow router.
type Gateway interface {
	// Authenticate establishes a session. Failure here is fatal at startup.
	Authenticate(ctx context.Context) error

	// GetNewLeads returns leads the marketplace considers new.
	GetNewLeads(ctx context.Context) ([]domain.Lead, error)

	// GetNewMessages returns unread messages, optionally filtered to one lead.
	GetNewMessages(ctx context.Context, leadID string) ([]domain.Message, error)

	// SendMessage delivers a reply to the customer behind the lead.
	SendMessage(ctx context.Context, leadID, content string) error

	// UpdateLeadStatus transitions the lead's marketplace-side status.
	UpdateLeadStatus(ctx context.Context, leadID string, status domain.LeadStatus) error

	// SendQuote composes a formatted quote message, sends it, and on success
	// transitions the lead to QUOTED.
	SendQuote(ctx context.Context, leadID string, price float64, details string) error

	// Disconnect ends the session.
	Disconnect(ctx context.Context) error
}

// buildQuoteMessage formats the standard quote text sent by SendQuote.
func buildQuoteMessage(serviceType, businessName string, price float64, details string) string {
	return fmt.Sprintf(`Thank you for your interest in our %s services!

Based on your requirements, I'm pleased to offer you the following quote:

Price: $%.2f
Details: %s

This quote is valid for the next 7 days. If you have any questions or would like to discuss the details further, please don't hesitate to reach out.

I look forward to working with you!

Best regards,
%s`,
		strings.ToLower(serviceType), price, details, businessName)
}

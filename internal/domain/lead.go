// Package domain provides core business rules for the lead intake bounded context.
package domain

import "time"

// LeadStatus is the lifecycle status of a lead on the marketplace.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusQuoted    LeadStatus = "QUOTED"
	LeadStatusBooked    LeadStatus = "BOOKED"
	LeadStatusCompleted LeadStatus = "COMPLETED"
	LeadStatusDeclined  LeadStatus = "DECLINED"
)

// statusOrder ranks the forward progression of the lifecycle. DECLINED is
// reachable from any non-terminal status and is handled separately.
var statusOrder = map[LeadStatus]int{
	LeadStatusNew:       0,
	LeadStatusContacted: 1,
	LeadStatusQuoted:    2,
	LeadStatusBooked:    3,
	LeadStatusCompleted: 4,
}

// IsValid reports whether s is a known lifecycle status.
func (s LeadStatus) IsValid() bool {
	if s == LeadStatusDeclined {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// IsTerminal reports whether no further automated handling should occur.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusCompleted || s == LeadStatusDeclined
}

// CanTransitionTo reports whether the lifecycle allows moving from s to target.
// Forward moves are allowed (including skips, e.g. NEW directly to BOOKED);
// DECLINED is allowed from any non-terminal status.
func (s LeadStatus) CanTransitionTo(target LeadStatus) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if target == LeadStatusDeclined {
		return true
	}
	return statusOrder[target] > statusOrder[s]
}

// BudgetRange is a customer's declared budget as an ordered pair (Min <= Max).
type BudgetRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp forces price into [Min, Max].
func (b BudgetRange) Clamp(price float64) float64 {
	if price > b.Max {
		return b.Max
	}
	if price < b.Min {
		return b.Min
	}
	return price
}

// Lead is a customer inquiry fetched from the marketplace. The core treats
// fetched copies as immutable values; status changes go back through the
// marketplace gateway, never through local mutation.
type Lead struct {
	ID            string         `json:"id" validate:"required"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string         `json:"phone,omitempty"`
	ServiceType   string         `json:"service_type"`
	Description   string         `json:"description"`
	Budget        *BudgetRange   `json:"budget,omitempty"`
	PreferredDate *time.Time     `json:"preferred_date,omitempty"`
	Location      string         `json:"location,omitempty"`
	Status        LeadStatus     `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// DisplayName returns the customer name, or "Client" when unknown.
func (l *Lead) DisplayName() string {
	if l == nil || l.Name == "" {
		return "Client"
	}
	return l.Name
}

// Package router dispatches classified leads and messages to workflow
// handlers. It holds no persistent state: policy in, side effects out.
package router

import "strings"

// Intent is the closed set of workflow branches. The oracle's intent string
// is parsed into this enum at the boundary; raw strings never reach the
// dispatch logic.
type Intent int

const (
	IntentOther Intent = iota
	IntentQuoteRequest
	IntentScheduling
	IntentQuestion
	IntentBooking
	IntentComplaint
)

var intentNames = map[Intent]string{
	IntentOther:        "other",
	IntentQuoteRequest: "quote_request",
	IntentScheduling:   "scheduling",
	IntentQuestion:     "question",
	IntentBooking:      "booking",
	IntentComplaint:    "complaint",
}

// String returns the oracle-side name of the intent.
func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "other"
}

// ParseIntent maps an oracle intent string to the closed set. Anything
// unrecognized collapses to IntentOther.
func ParseIntent(s string) Intent {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quote_request":
		return IntentQuoteRequest
	case "scheduling":
		return IntentScheduling
	case "question":
		return IntentQuestion
	case "booking":
		return IntentBooking
	case "complaint":
		return IntentComplaint
	default:
		return IntentOther
	}
}

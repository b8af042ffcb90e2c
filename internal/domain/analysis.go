package domain

// Sentiment values produced by the classification oracle.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Urgency values produced by the classification oracle.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// Analysis is the structured output of a classification call. It is a
// transient value, produced fresh per call and never persisted. Intent is
// kept as the oracle's raw string here; the router parses it into a closed
// set before any dispatch decision.
type Analysis struct {
	Sentiment         string   `json:"sentiment"`
	Intent            string   `json:"intent"`
	Urgency           string   `json:"urgency"`
	SuggestedPrice    *float64 `json:"suggested_price,omitempty"`
	KeyRequirements   []string `json:"key_requirements"`
	SuggestedResponse string   `json:"suggested_response"`
	Confidence        float64  `json:"confidence"`
}

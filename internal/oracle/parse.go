package oracle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"leadrunner/internal/domain"
)

// maxLoggedResponse truncates raw oracle output in debug logs.
const maxLoggedResponse = 200

// analysisDefaults supplies per-call schema defaults for missing fields.
type analysisDefaults struct {
	Intent string
}

// parseAnalysis decodes a strict-JSON oracle response into an Analysis.
// Missing optional fields default per the schema; numeric fields are coerced
// from strings when the model quotes them. A malformed payload is an error;
// the adapter converts it to a fallback.
func parseAnalysis(raw string, defaults analysisDefaults) (domain.Analysis, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return domain.Analysis{}, fmt.Errorf("malformed oracle JSON: %w", err)
	}

	analysis := domain.Analysis{
		Sentiment:         coerceString(payload["sentiment"], domain.SentimentNeutral),
		Intent:            coerceString(payload["intent"], defaults.Intent),
		Urgency:           coerceString(payload["urgency"], domain.UrgencyMedium),
		KeyRequirements:   coerceStrings(payload["key_requirements"]),
		SuggestedResponse: coerceString(payload["suggested_response"], ""),
		Confidence:        clamp01(coerceFloat(payload["confidence_score"], 0.8)),
	}

	if v, ok := payload["suggested_price"]; ok && v != nil {
		price := coerceFloat(v, 0)
		if price >= 0 {
			analysis.SuggestedPrice = &price
		}
	}

	return analysis, nil
}

// stripFences removes a markdown code fence wrapper (``` or ```json) that
// some models emit despite the JSON-only instruction.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func coerceString(v any, fallback string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceFloat(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed
		}
	case json.Number:
		if parsed, err := n.Float64(); err == nil {
			return parsed
		}
	}
	return fallback
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package oracle

import (
	"context"
	"fmt"
	"strings"

	"leadrunner/internal/domain"
	"leadrunner/platform/config"
	"leadrunner/platform/logger"
)

const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 1500
	quoteTemperature    = 0.7
	quoteMaxTokens      = 800
)

// Adapter classifies leads and messages and generates quote text. Every
// method returns a usable value: on any oracle failure it falls back to a
// deterministic, locally-computed default so the customer never goes
// unanswered.
type Adapter struct {
	oracle Completer
	cfg    config.BusinessConfig
	log    *logger.Logger
}

// NewAdapter creates a classification adapter.
func NewAdapter(oracle Completer, cfg config.BusinessConfig, log *logger.Logger) *Adapter {
	return &Adapter{oracle: oracle, cfg: cfg, log: log}
}

// AnalyzeLead classifies a customer lead.
func (a *Adapter) AnalyzeLead(ctx context.Context, lead *domain.Lead) domain.Analysis {
	system := fmt.Sprintf(
		"You are an expert business assistant for %s, specializing in %s. Your job is to analyze customer leads and provide structured responses in JSON format. Respond with JSON only, no prose.",
		a.cfg.GetBusinessName(), a.cfg.GetServiceType(),
	)

	raw, err := a.oracle.Complete(ctx, system, a.leadPrompt(lead), analysisTemperature, analysisMaxTokens)
	if err != nil {
		a.log.OracleFallback("analyze lead", err)
		return a.FallbackLeadAnalysis(lead)
	}

	analysis, err := parseAnalysis(raw, analysisDefaults{Intent: "quote_request"})
	if err != nil {
		a.log.OracleFallback("analyze lead", err)
		a.log.Debug("unparseable oracle response", "raw", truncate(raw, maxLoggedResponse))
		return a.FallbackLeadAnalysis(lead)
	}
	return analysis
}

// AnalyzeMessage classifies a customer message, with optional lead context.
func (a *Adapter) AnalyzeMessage(ctx context.Context, msg *domain.Message, lead *domain.Lead) domain.Analysis {
	system := fmt.Sprintf(
		"You are an expert business assistant for %s, specializing in %s. Analyze customer messages and provide structured responses in JSON format. Respond with JSON only, no prose.",
		a.cfg.GetBusinessName(), a.cfg.GetServiceType(),
	)

	raw, err := a.oracle.Complete(ctx, system, a.messagePrompt(msg, lead), analysisTemperature, analysisMaxTokens)
	if err != nil {
		a.log.OracleFallback("analyze message", err)
		return a.FallbackMessageAnalysis()
	}

	analysis, err := parseAnalysis(raw, analysisDefaults{Intent: "question"})
	if err != nil {
		a.log.OracleFallback("analyze message", err)
		a.log.Debug("unparseable oracle response", "raw", truncate(raw, maxLoggedResponse))
		return a.FallbackMessageAnalysis()
	}
	return analysis
}

// GenerateQuoteResponse produces quote text for the given price.
func (a *Adapter) GenerateQuoteResponse(ctx context.Context, lead *domain.Lead, price float64, additionalInfo string) string {
	system := fmt.Sprintf(
		"You are a professional %s business owner writing quotes to potential customers.",
		strings.ToLower(a.cfg.GetServiceType()),
	)

	prompt := fmt.Sprintf(`Generate a professional quote response for a %s business.

Customer: %s
Service requested: %s
Suggested price: $%.2f
Additional information: %s
Business name: %s

The response should be:
- Professional and friendly
- Include the price clearly
- Address specific customer requirements
- Include next steps
- Be concise but complete`,
		strings.ToLower(a.cfg.GetServiceType()),
		lead.DisplayName(),
		lead.Description,
		price,
		additionalInfo,
		a.cfg.GetBusinessName(),
	)

	text, err := a.oracle.Complete(ctx, system, prompt, quoteTemperature, quoteMaxTokens)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			a.log.OracleFallback("generate quote", err)
		}
		return a.FallbackQuoteResponse(lead, price)
	}
	return text
}

// FallbackLeadAnalysis is the degraded-mode lead classification: a pure
// function of the lead and business config.
func (a *Adapter) FallbackLeadAnalysis(lead *domain.Lead) domain.Analysis {
	price := a.cfg.GetBasePrice()
	if lead.Budget != nil {
		price = lead.Budget.Clamp(price)
	}

	return domain.Analysis{
		Sentiment:      domain.SentimentNeutral,
		Intent:         "quote_request",
		Urgency:        domain.UrgencyMedium,
		SuggestedPrice: &price,
		KeyRequirements: []string{
			lead.ServiceType,
		},
		SuggestedResponse: fmt.Sprintf(
			"Thank you for your interest in our %s services. We'd be happy to provide you with a quote.",
			strings.ToLower(a.cfg.GetServiceType()),
		),
		Confidence: 0.5,
	}
}

// FallbackMessageAnalysis is the degraded-mode message classification.
func (a *Adapter) FallbackMessageAnalysis() domain.Analysis {
	return domain.Analysis{
		Sentiment:         domain.SentimentNeutral,
		Intent:            "question",
		Urgency:           domain.UrgencyMedium,
		SuggestedResponse: "Thank you for your message. We'll get back to you shortly.",
		Confidence:        0.5,
	}
}

// FallbackQuoteResponse is the degraded-mode quote text.
func (a *Adapter) FallbackQuoteResponse(lead *domain.Lead, price float64) string {
	return fmt.Sprintf(`Hi %s,

Thank you for your interest in our %s services!

Based on your requirements, I'm pleased to offer you a quote of $%.2f.

Please let me know if you have any questions or would like to discuss the details further.

Best regards,
%s`,
		lead.DisplayName(),
		strings.ToLower(a.cfg.GetServiceType()),
		price,
		a.cfg.GetBusinessName(),
	)
}

func (a *Adapter) leadPrompt(lead *domain.Lead) string {
	budget := "Not specified"
	if lead.Budget != nil {
		budget = fmt.Sprintf("$%.2f - $%.2f", lead.Budget.Min, lead.Budget.Max)
	}
	preferred := "Not specified"
	if lead.PreferredDate != nil {
		preferred = lead.PreferredDate.Format("2006-01-02 15:04")
	}
	location := lead.Location
	if location == "" {
		location = "Not specified"
	}

	return fmt.Sprintf(`Analyze this customer lead and provide a JSON response with the following structure:
{
    "sentiment": "positive|neutral|negative",
    "intent": "quote_request|scheduling|question|complaint|other",
    "urgency": "high|medium|low",
    "suggested_price": float_or_null,
    "key_requirements": ["requirement1", "requirement2"],
    "suggested_response": "Professional response text",
    "confidence_score": float_between_0_and_1
}

Customer Information:
- Name: %s
- Service Category: %s
- Description: %s
- Budget Range: %s
- Preferred Date: %s
- Location: %s

Business Context:
- Service Type: %s
- Base Price: $%.2f
- Price Range: $%.2f - $%.2f

Provide pricing suggestions within our range and craft a professional response.`,
		lead.Name, lead.ServiceType, lead.Description, budget, preferred, location,
		a.cfg.GetServiceType(), a.cfg.GetBasePrice(), a.cfg.GetPriceRangeMin(), a.cfg.GetPriceRangeMax(),
	)
}

func (a *Adapter) messagePrompt(msg *domain.Message, lead *domain.Lead) string {
	leadContext := ""
	if lead != nil {
		leadContext = fmt.Sprintf(`Lead Context:
- Customer: %s
- Service: %s
- Original Request: %s
- Status: %s

`, lead.Name, lead.ServiceType, lead.Description, lead.Status)
	}

	return fmt.Sprintf(`Analyze this customer message and provide a JSON response with the following structure:
{
    "sentiment": "positive|neutral|negative",
    "intent": "quote_request|scheduling|question|complaint|booking|other",
    "urgency": "high|medium|low",
    "suggested_price": float_or_null,
    "key_requirements": ["requirement1", "requirement2"],
    "suggested_response": "Professional response text",
    "confidence_score": float_between_0_and_1
}

Message Details:
- Sender: %s
- Content: %s
- Type: %s

%sBusiness Context:
- Service Type: %s
- Business Name: %s

Craft an appropriate professional response based on the message intent.`,
		msg.Sender, msg.Content, msg.Type, leadContext,
		a.cfg.GetServiceType(), a.cfg.GetBusinessName(),
	)
}

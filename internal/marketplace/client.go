package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"leadrunner/internal/domain"
	"leadrunner/platform/apperr"
	"leadrunner/platform/config"
	"leadrunner/platform/logger"
	"leadrunner/platform/phone"
	"leadrunner/platform/validator"
)

// Client talks to the marketplace REST API. Requests are rate limited to stay
// under the marketplace's per-minute quota.
type Client struct {
	baseURL      string
	apiKey       string
	serviceType  string
	businessName string
	http         *http.Client
	limiter      *rate.Limiter
	validate     *validator.Validator
	log          *logger.Logger
}

// NewClient creates a marketplace API client.
func NewClient(cfg config.MarketplaceConfig, business config.BusinessConfig, validate *validator.Validator, log *logger.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.GetMarketplaceBaseURL(), "/"),
		apiKey:       cfg.GetMarketplaceAPIKey(),
		serviceType:  business.GetServiceType(),
		businessName: business.GetBusinessName(),
		http:         &http.Client{Timeout: 15 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(5), 10),
		validate:     validate,
		log:          log,
	}
}

type leadDTO struct {
	ID            string         `json:"id" validate:"required"`
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email"`
	CustomerPhone string         `json:"customer_phone"`
	ServiceType   string         `json:"service_category"`
	Description   string         `json:"description"`
	BudgetRange   []float64      `json:"budget_range"`
	PreferredDate *time.Time     `json:"preferred_date"`
	Location      string         `json:"location"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	Metadata      map[string]any `json:"metadata"`
}

type messageDTO struct {
	ID        string         `json:"id" validate:"required"`
	LeadID    string         `json:"lead_id" validate:"required"`
	Sender    string         `json:"sender"`
	Content   string         `json:"content"`
	Type      string         `json:"message_type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

func (d leadDTO) toDomain() domain.Lead {
	lead := domain.Lead{
		ID:            d.ID,
		Name:          d.CustomerName,
		Email:         d.CustomerEmail,
		Phone:         phone.NormalizeE164(d.CustomerPhone),
		ServiceType:   d.ServiceType,
		Description:   d.Description,
		PreferredDate: d.PreferredDate,
		Location:      d.Location,
		Status:        domain.LeadStatus(strings.ToUpper(d.Status)),
		CreatedAt:     d.CreatedAt,
		Metadata:      d.Metadata,
	}
	if len(d.BudgetRange) == 2 && d.BudgetRange[0] <= d.BudgetRange[1] {
		lead.Budget = &domain.BudgetRange{Min: d.BudgetRange[0], Max: d.BudgetRange[1]}
	}
	return lead
}

func (d messageDTO) toDomain() domain.Message {
	msgType := domain.MessageType(strings.ToUpper(d.Type))
	if msgType == "" {
		msgType = domain.MessageTypeMessage
	}
	return domain.Message{
		ID:        d.ID,
		LeadID:    d.LeadID,
		Sender:    d.Sender,
		Content:   d.Content,
		Type:      msgType,
		Timestamp: d.Timestamp,
		Metadata:  d.Metadata,
	}
}

// Authenticate verifies the API key against the session endpoint.
func (c *Client) Authenticate(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/session", nil, nil); err != nil {
		return apperr.Wrap(apperr.KindAuth, "marketplace authentication failed", err)
	}
	c.log.Info("marketplace session established")
	return nil
}

// GetNewLeads fetches leads the marketplace considers new.
func (c *Client) GetNewLeads(ctx context.Context) ([]domain.Lead, error) {
	var dtos []leadDTO
	if err := c.do(ctx, http.MethodGet, "/leads/new", nil, &dtos); err != nil {
		return nil, err
	}

	leads := make([]domain.Lead, 0, len(dtos))
	for _, dto := range dtos {
		if err := c.validate.Struct(dto); err != nil {
			c.log.Warn("skipping invalid lead payload", "error", err)
			continue
		}
		leads = append(leads, dto.toDomain())
	}
	return leads, nil
}

// GetNewMessages fetches unread messages, optionally for one lead.
func (c *Client) GetNewMessages(ctx context.Context, leadID string) ([]domain.Message, error) {
	path := "/messages/new"
	if leadID != "" {
		path += "?lead_id=" + url.QueryEscape(leadID)
	}

	var dtos []messageDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(dtos))
	for _, dto := range dtos {
		if err := c.validate.Struct(dto); err != nil {
			c.log.Warn("skipping invalid message payload", "error", err)
			continue
		}
		messages = append(messages, dto.toDomain())
	}
	return messages, nil
}

// SendMessage delivers a reply to the customer behind the lead.
func (c *Client) SendMessage(ctx context.Context, leadID, content string) error {
	payload := map[string]string{
		"lead_id": leadID,
		"content": content,
	}
	return c.do(ctx, http.MethodPost, "/messages", payload, nil)
}

// UpdateLeadStatus transitions the lead's marketplace-side status.
func (c *Client) UpdateLeadStatus(ctx context.Context, leadID string, status domain.LeadStatus) error {
	payload := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPost, "/leads/"+url.PathEscape(leadID)+"/status", payload, nil)
}

// SendQuote sends the formatted quote text and moves the lead to QUOTED.
func (c *Client) SendQuote(ctx context.Context, leadID string, price float64, details string) error {
	text := buildQuoteMessage(c.serviceType, c.businessName, price, details)
	if err := c.SendMessage(ctx, leadID, text); err != nil {
		return err
	}
	if err := c.UpdateLeadStatus(ctx, leadID, domain.LeadStatusQuoted); err != nil {
		return err
	}
	c.log.Info("quote sent", "lead_id", leadID, "price", price)
	return nil
}

// Disconnect ends the session.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/session", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.Gateway("marketplace rate limit wait", err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "marshal marketplace payload", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperr.Gateway("build marketplace request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Gateway(fmt.Sprintf("marketplace %s %s", method, path), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return apperr.Gateway(
			fmt.Sprintf("marketplace %s %s returned %d", method, path, resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(data))),
		)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperr.Gateway("decode marketplace response", err)
		}
	}
	return nil
}

var _ Gateway = (*Client)(nil)

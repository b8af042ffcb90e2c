package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadrunner/internal/domain"
	"leadrunner/platform/config"
	"leadrunner/platform/logger"
)

const (
	mockLeadsFile    = "mock_leads.json"
	mockMessagesFile = "mock_messages.json"
	mockSampleLeads  = 3
)

// MockClient is a file-backed stand-in for the marketplace API, used when no
// API credentials are configured. Leads and messages live in JSON files so
// state survives restarts and can be edited by hand for demos.
type MockClient struct {
	mu           sync.Mutex
	dir          string
	serviceType  string
	businessName string
	priceMin     float64
	priceMax     float64
	leads        []leadDTO
	messages     []messageDTO
	active       bool
	log          *logger.Logger
}

// NewMockClient creates a mock marketplace backed by JSON files in dir.
func NewMockClient(cfg config.MarketplaceConfig, business config.BusinessConfig, log *logger.Logger) *MockClient {
	return &MockClient{
		dir:          cfg.GetMockDataDir(),
		serviceType:  business.GetServiceType(),
		businessName: business.GetBusinessName(),
		priceMin:     business.GetPriceRangeMin(),
		priceMax:     business.GetPriceRangeMax(),
		log:          log,
	}
}

// Authenticate loads the mock data files, seeding sample leads on first run.
func (m *MockClient) Authenticate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadFile(mockLeadsFile, &m.leads); err != nil {
		return err
	}
	if err := m.loadFile(mockMessagesFile, &m.messages); err != nil {
		return err
	}

	if len(m.leads) == 0 {
		m.seedLeads()
		if err := m.save(); err != nil {
			return err
		}
	}

	m.active = true
	m.log.Info("mock marketplace ready", "leads", len(m.leads), "messages", len(m.messages))
	return nil
}

// GetNewLeads returns every lead still in NEW status.
func (m *MockClient) GetNewLeads(_ context.Context) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Lead
	for _, dto := range m.leads {
		if strings.EqualFold(dto.Status, string(domain.LeadStatusNew)) {
			out = append(out, dto.toDomain())
		}
	}
	return out, nil
}

// GetNewMessages returns customer messages, optionally filtered to one lead.
// Messages we sent ourselves are never returned as new.
func (m *MockClient) GetNewMessages(_ context.Context, leadID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Message
	for _, dto := range m.messages {
		if leadID != "" && dto.LeadID != leadID {
			continue
		}
		if dto.Sender == domain.SenderBusiness {
			continue
		}
		out = append(out, dto.toDomain())
	}
	return out, nil
}

// SendMessage appends an outbound message to the message file.
func (m *MockClient) SendMessage(_ context.Context, leadID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, messageDTO{
		ID:        "msg_" + uuid.NewString(),
		LeadID:    leadID,
		Sender:    domain.SenderBusiness,
		Content:   content,
		Type:      string(domain.MessageTypeMessage),
		Timestamp: time.Now(),
		Metadata:  map[string]any{"sent_by": "bot"},
	})
	return m.save()
}

// UpdateLeadStatus rewrites the stored status for the lead.
func (m *MockClient) UpdateLeadStatus(_ context.Context, leadID string, status domain.LeadStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.leads {
		if m.leads[i].ID == leadID {
			m.leads[i].Status = string(status)
			return m.save()
		}
	}
	m.log.Warn("mock lead not found for status update", "lead_id", leadID)
	return nil
}

// SendQuote sends the formatted quote text and moves the lead to QUOTED.
func (m *MockClient) SendQuote(ctx context.Context, leadID string, price float64, details string) error {
	text := buildQuoteMessage(m.serviceType, m.businessName, price, details)
	if err := m.SendMessage(ctx, leadID, text); err != nil {
		return err
	}
	if err := m.UpdateLeadStatus(ctx, leadID, domain.LeadStatusQuoted); err != nil {
		return err
	}
	m.log.Info("quote sent", "lead_id", leadID, "price", price)
	return nil
}

// Disconnect flushes state and closes the session.
func (m *MockClient) Disconnect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	return m.save()
}

func (m *MockClient) seedLeads() {
	now := time.Now()
	for i := 1; i <= mockSampleLeads; i++ {
		preferred := now.AddDate(0, 0, 3+i)
		m.leads = append(m.leads, leadDTO{
			ID:            fmt.Sprintf("lead_%d_%d", now.Unix(), i),
			CustomerName:  fmt.Sprintf("John Doe %d", i),
			CustomerEmail: fmt.Sprintf("john.doe%d@example.com", i),
			CustomerPhone: fmt.Sprintf("+1555000%04d", i),
			ServiceType:   m.serviceType,
			Description:   fmt.Sprintf("Need %s services for a special event. Please provide a quote.", strings.ToLower(m.serviceType)),
			BudgetRange:   []float64{m.priceMin, m.priceMax},
			PreferredDate: &preferred,
			Location:      "New York, NY",
			Status:        string(domain.LeadStatusNew),
			CreatedAt:     now,
			Metadata:      map[string]any{"source": "marketplace_mock"},
		})
	}
}

func (m *MockClient) loadFile(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (m *MockClient) save() error {
	if err := m.writeFile(mockLeadsFile, m.leads); err != nil {
		return err
	}
	return m.writeFile(mockMessagesFile, m.messages)
}

func (m *MockClient) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.dir, name), data, 0o644)
}

var _ Gateway = (*MockClient)(nil)

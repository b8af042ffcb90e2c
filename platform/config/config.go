// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// BusinessConfig provides the business profile used for pricing and responses.
type BusinessConfig interface {
	GetBusinessName() string
	GetServiceType() string
	GetBasePrice() float64
	GetPriceRangeMin() float64
	GetPriceRangeMax() float64
	GetBusinessHours() (int, int)
	GetSlotDurationHours() float64
	GetTimezone() string
}

// OracleConfig provides settings for the classification oracle.
type OracleConfig interface {
	GetOracleAPIKey() string
	GetOracleBaseURL() string
	GetOracleModel() string
}

// MarketplaceConfig provides settings for the marketplace gateway.
type MarketplaceConfig interface {
	GetMarketplaceBaseURL() string
	GetMarketplaceAPIKey() string
	GetMockDataDir() string
	IsMarketplaceMock() bool
}

// CalendarConfig provides settings for the calendar gateway.
type CalendarConfig interface {
	GetGoogleCredentialsFile() string
	GetGoogleTokenFile() string
	GetGoogleCalendarID() string
	GetTimezone() string
}

// LedgerConfig provides settings for the processing ledger store.
type LedgerConfig interface {
	GetLedgerDriver() string
	GetDatabaseURL() string
	GetRedisURL() string
	GetLedgerTTL() time.Duration
}

// SchedulerConfig provides settings for the follow-up/reminder scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetQuoteFollowUpDelay() time.Duration
	GetReminderLeadTime() time.Duration
	IsSchedulerEnabled() bool
}

// NotifyConfig provides settings for operator email notifications.
type NotifyConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromAddress() string
	GetOperatorEmail() string
	IsNotifyEnabled() bool
}

// OpsConfig provides settings for the ops HTTP server.
type OpsConfig interface {
	GetOpsAddr() string
	IsOpsEnabled() bool
}

// Config holds all application settings loaded from the environment.
type Config struct {
	Env           string
	CheckInterval time.Duration
	Timezone      string

	BusinessName      string
	ServiceType       string
	BasePrice         float64
	PriceRangeMin     float64
	PriceRangeMax     float64
	BusinessHourStart int
	BusinessHourEnd   int
	SlotDurationHours float64

	OracleAPIKey  string
	OracleBaseURL string
	OracleModel   string

	MarketplaceBaseURL string
	MarketplaceAPIKey  string
	MockDataDir        string

	GoogleCredentialsFile string
	GoogleTokenFile       string
	GoogleCalendarID      string

	LedgerDriver string
	DatabaseURL  string
	RedisURL     string
	LedgerTTL    time.Duration

	AsynqQueueName     string
	AsynqConcurrency   int
	QuoteFollowUpDelay time.Duration
	ReminderLeadTime   time.Duration

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromAddress string
	OperatorEmail    string

	OpsAddr string
}

// BusinessConfig implementation
func (c *Config) GetBusinessName() string        { return c.BusinessName }
func (c *Config) GetServiceType() string         { return c.ServiceType }
func (c *Config) GetBasePrice() float64          { return c.BasePrice }
func (c *Config) GetPriceRangeMin() float64      { return c.PriceRangeMin }
func (c *Config) GetPriceRangeMax() float64      { return c.PriceRangeMax }
func (c *Config) GetBusinessHours() (int, int)   { return c.BusinessHourStart, c.BusinessHourEnd }
func (c *Config) GetSlotDurationHours() float64  { return c.SlotDurationHours }
func (c *Config) GetTimezone() string            { return c.Timezone }

// OracleConfig implementation
func (c *Config) GetOracleAPIKey() string  { return c.OracleAPIKey }
func (c *Config) GetOracleBaseURL() string { return c.OracleBaseURL }
func (c *Config) GetOracleModel() string   { return c.OracleModel }

// MarketplaceConfig implementation
func (c *Config) GetMarketplaceBaseURL() string { return c.MarketplaceBaseURL }
func (c *Config) GetMarketplaceAPIKey() string  { return c.MarketplaceAPIKey }
func (c *Config) GetMockDataDir() string        { return c.MockDataDir }
func (c *Config) IsMarketplaceMock() bool {
	return c.MarketplaceBaseURL == "" || c.MarketplaceAPIKey == ""
}

// CalendarConfig implementation
func (c *Config) GetGoogleCredentialsFile() string { return c.GoogleCredentialsFile }
func (c *Config) GetGoogleTokenFile() string       { return c.GoogleTokenFile }
func (c *Config) GetGoogleCalendarID() string      { return c.GoogleCalendarID }

// LedgerConfig implementation
func (c *Config) GetLedgerDriver() string     { return c.LedgerDriver }
func (c *Config) GetDatabaseURL() string      { return c.DatabaseURL }
func (c *Config) GetRedisURL() string         { return c.RedisURL }
func (c *Config) GetLedgerTTL() time.Duration { return c.LedgerTTL }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }
func (c *Config) GetQuoteFollowUpDelay() time.Duration   { return c.QuoteFollowUpDelay }
func (c *Config) GetReminderLeadTime() time.Duration     { return c.ReminderLeadTime }
func (c *Config) IsSchedulerEnabled() bool               { return c.RedisURL != "" }

// NotifyConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetOperatorEmail() string    { return c.OperatorEmail }
func (c *Config) IsNotifyEnabled() bool {
	return c.SMTPHost != "" && c.OperatorEmail != "" && c.EmailFromAddress != ""
}

// OpsConfig implementation
func (c *Config) GetOpsAddr() string { return c.OpsAddr }
func (c *Config) IsOpsEnabled() bool { return c.OpsAddr != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		CheckInterval: mustDuration(getEnv("CHECK_INTERVAL", "5m")),
		Timezone:      getEnv("TIMEZONE", "America/New_York"),

		BusinessName:      getEnv("BUSINESS_NAME", "Your Business"),
		ServiceType:       getEnv("SERVICE_TYPE", "Photography"),
		BasePrice:         mustFloat(getEnv("BASE_PRICE", "150")),
		PriceRangeMin:     mustFloat(getEnv("PRICE_RANGE_MIN", "100")),
		PriceRangeMax:     mustFloat(getEnv("PRICE_RANGE_MAX", "500")),
		BusinessHourStart: mustInt(getEnv("BUSINESS_HOUR_START", "9")),
		BusinessHourEnd:   mustInt(getEnv("BUSINESS_HOUR_END", "17")),
		SlotDurationHours: mustFloat(getEnv("SLOT_DURATION_HOURS", "2")),

		OracleAPIKey:  getEnv("ORACLE_API_KEY", getEnv("OPENAI_API_KEY", "")),
		OracleBaseURL: getEnv("ORACLE_BASE_URL", "https://api.openai.com/v1"),
		OracleModel:   getEnv("ORACLE_MODEL", "gpt-4"),

		MarketplaceBaseURL: getEnv("MARKETPLACE_BASE_URL", ""),
		MarketplaceAPIKey:  getEnv("MARKETPLACE_API_KEY", ""),
		MockDataDir:        getEnv("MOCK_DATA_DIR", "."),

		GoogleCredentialsFile: getEnv("GOOGLE_CALENDAR_CREDENTIALS_FILE", "credentials.json"),
		GoogleTokenFile:       getEnv("GOOGLE_CALENDAR_TOKEN_FILE", "token.json"),
		GoogleCalendarID:      getEnv("GOOGLE_CALENDAR_ID", "primary"),

		LedgerDriver: strings.ToLower(getEnv("LEDGER_DRIVER", "memory")),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		LedgerTTL:    mustDuration(getEnv("LEDGER_TTL", "720h")),

		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "leadrunner"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		QuoteFollowUpDelay: mustDuration(getEnv("QUOTE_FOLLOWUP_DELAY", "48h")),
		ReminderLeadTime:   mustDuration(getEnv("REMINDER_LEAD_TIME", "24h")),

		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		OperatorEmail:    getEnv("OPERATOR_EMAIL", ""),

		OpsAddr: getEnv("OPS_ADDR", ""),
	}

	if cfg.PriceRangeMin > cfg.PriceRangeMax {
		return nil, fmt.Errorf("PRICE_RANGE_MIN cannot exceed PRICE_RANGE_MAX")
	}
	if cfg.BusinessHourStart < 0 || cfg.BusinessHourEnd > 24 || cfg.BusinessHourStart >= cfg.BusinessHourEnd {
		return nil, fmt.Errorf("invalid business hours %d-%d", cfg.BusinessHourStart, cfg.BusinessHourEnd)
	}
	if cfg.SlotDurationHours <= 0 {
		return nil, fmt.Errorf("SLOT_DURATION_HOURS must be positive")
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("CHECK_INTERVAL must be a positive duration")
	}

	switch cfg.LedgerDriver {
	case "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when LEDGER_DRIVER=redis")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when LEDGER_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_DRIVER %q", cfg.LedgerDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

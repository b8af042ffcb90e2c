// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Context key types for storing values in context
type contextKey string

const (
	// CycleIDKey is the context key for the poll cycle ID
	CycleIDKey contextKey = "cycle_id"
	// LeadIDKey is the context key for the lead being processed
	LeadIDKey contextKey = "lead_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports cycle_id and lead_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if cycleID, ok := ctx.Value(CycleIDKey).(string); ok && cycleID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("cycle_id", cycleID)),
		}
	}

	if leadID, ok := ctx.Value(LeadIDKey).(string); ok && leadID != "" {
		newLogger = newLogger.WithLeadID(leadID)
	}

	return newLogger
}

// WithLeadID returns a logger with the lead ID attached.
func (l *Logger) WithLeadID(leadID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("lead_id", leadID)),
	}
}

// GatewayError logs an external gateway failure that was converted to a safe default.
func (l *Logger) GatewayError(gateway, operation string, err error) {
	l.Error("gateway_error",
		slog.String("gateway", gateway),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// OracleFallback logs that the classification oracle failed and the
// deterministic fallback analysis was used instead.
func (l *Logger) OracleFallback(operation string, err error) {
	l.Warn("oracle_fallback",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// CycleSummary logs the outcome of one poll cycle.
func (l *Logger) CycleSummary(leads, messages, failures int, elapsed time.Duration) {
	l.Info("cycle_completed",
		slog.Int("leads_processed", leads),
		slog.Int("messages_processed", messages),
		slog.Int("item_failures", failures),
		slog.Float64("elapsed_ms", float64(elapsed.Milliseconds())),
	)
}

// ItemFailure logs a per-item handler failure that was isolated from the cycle.
func (l *Logger) ItemFailure(itemKind, itemID string, err error) {
	l.Error("item_failure",
		slog.String("kind", itemKind),
		slog.String("item_id", itemID),
		slog.String("error", err.Error()),
	)
}

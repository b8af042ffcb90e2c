// Package availability enumerates open appointment slots against a calendar.
package availability

import (
	"context"
	"time"

	"leadrunner/platform/config"
	"leadrunner/platform/logger"
)

const (
	// maxSlotsPerDay caps suggestions sourced from a single calendar day.
	maxSlotsPerDay = 3
	// maxSuggestions caps the total returned by SuggestMeetingTimes.
	maxSuggestions = 6
	// scanDays is how far ahead SuggestMeetingTimes looks.
	scanDays = 7
)

// ConflictChecker answers whether a time window is free of existing events.
type ConflictChecker interface {
	// CheckAvailability reports true iff no existing event overlaps
	// [start, end), using half-open interval semantics.
	CheckAvailability(ctx context.Context, start, end time.Time) (bool, error)
}

// Engine finds open slots within business hours.
type Engine struct {
	checker   ConflictChecker
	log       *logger.Logger
	startHour int
	endHour   int
	location  *time.Location
	now       func() time.Time
}

// NewEngine creates an availability engine using the configured business hours.
// An unknown timezone falls back to UTC.
func NewEngine(checker ConflictChecker, cfg config.BusinessConfig, log *logger.Logger) *Engine {
	loc, err := time.LoadLocation(cfg.GetTimezone())
	if err != nil {
		log.Warn("unknown timezone, falling back to UTC", "timezone", cfg.GetTimezone())
		loc = time.UTC
	}

	start, end := cfg.GetBusinessHours()
	return &Engine{
		checker:   checker,
		log:       log,
		startHour: start,
		endHour:   end,
		location:  loc,
		now:       time.Now,
	}
}

// FindSlots returns the hourly-aligned start times on the given date where a
// slot of the given duration fits inside business hours and does not conflict
// with an existing event. Results are chronological. Any gateway error yields
// an empty result; callers should not read empty as "fully booked" without
// checking the logs.
func (e *Engine) FindSlots(ctx context.Context, date time.Time, duration time.Duration) []time.Time {
	day := date.In(e.location)
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), e.endHour, 0, 0, 0, e.location)

	var slots []time.Time
	for hour := e.startHour; hour < e.endHour; hour++ {
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, e.location)
		end := start.Add(duration)
		if end.After(dayEnd) {
			continue
		}

		free, err := e.checker.CheckAvailability(ctx, start, end)
		if err != nil {
			e.log.GatewayError("calendar", "check availability", err)
			return nil
		}
		if free {
			slots = append(slots, start)
		}
	}
	return slots
}

// SuggestMeetingTimes returns up to 6 suggested start times, scanning forward
// day by day from the preferred date (default: one day ahead of now) for up to
// 7 calendar days. Weekend days are skipped and each day contributes at most 3
// slots; scanning stops once 6 suggestions have accumulated. Both caps are
// independent: a day with 5 open slots still contributes only 3.
func (e *Engine) SuggestMeetingTimes(ctx context.Context, preferred *time.Time, duration time.Duration) []time.Time {
	start := e.now().In(e.location).Add(24 * time.Hour)
	if preferred != nil {
		start = preferred.In(e.location)
	}

	var suggestions []time.Time
	for offset := 0; offset < scanDays; offset++ {
		day := start.AddDate(0, 0, offset)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		slots := e.FindSlots(ctx, day, duration)
		if len(slots) > maxSlotsPerDay {
			slots = slots[:maxSlotsPerDay]
		}
		suggestions = append(suggestions, slots...)

		if len(suggestions) >= maxSuggestions {
			break
		}
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

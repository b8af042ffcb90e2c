package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadrunner/platform/logger"
)

// fakeCalendar implements ConflictChecker over a fixed list of busy windows.
type fakeCalendar struct {
	busy  [][2]time.Time
	err   error
	calls int
}

func (f *fakeCalendar) CheckAvailability(_ context.Context, start, end time.Time) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	for _, w := range f.busy {
		if w[0].Before(end) && start.Before(w[1]) {
			return false, nil
		}
	}
	return true, nil
}

func newTestEngine(checker ConflictChecker, now time.Time) *Engine {
	return &Engine{
		checker:   checker,
		log:       logger.New("development"),
		startHour: 9,
		endHour:   17,
		location:  time.UTC,
		now:       func() time.Time { return now },
	}
}

func at(t *testing.T, day time.Time, hour int) time.Time {
	t.Helper()
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
}

func TestFindSlotsExcludesOverlaps(t *testing.T) {
	// Tuesday
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{busy: [][2]time.Time{{at(t, day, 10), at(t, day, 12)}}}
	engine := newTestEngine(cal, day)

	slots := engine.FindSlots(context.Background(), day, 2*time.Hour)

	want := []time.Time{at(t, day, 12), at(t, day, 13), at(t, day, 14), at(t, day, 15)}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots %v, want %d", len(slots), slots, len(want))
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Errorf("slot[%d] = %s, want %s", i, slots[i], want[i])
		}
	}
}

func TestFindSlotsEmptyCalendar(t *testing.T) {
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	engine := newTestEngine(&fakeCalendar{}, day)

	slots := engine.FindSlots(context.Background(), day, 2*time.Hour)

	// 9:00 through 15:00 inclusive; 16:00 would run past closing.
	if len(slots) != 7 {
		t.Fatalf("got %d slots, want 7", len(slots))
	}
	if !slots[0].Equal(at(t, day, 9)) || !slots[6].Equal(at(t, day, 15)) {
		t.Errorf("slot range = [%s, %s], want [09:00, 15:00]", slots[0], slots[6])
	}
}

func TestFindSlotsGatewayErrorYieldsEmpty(t *testing.T) {
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{err: errors.New("calendar unreachable")}
	engine := newTestEngine(cal, day)

	if slots := engine.FindSlots(context.Background(), day, 2*time.Hour); len(slots) != 0 {
		t.Errorf("got %d slots on gateway error, want 0", len(slots))
	}
}

func TestSuggestMeetingTimesCaps(t *testing.T) {
	// Monday; all slots free, so the first two weekdays fill the quota.
	monday := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	engine := newTestEngine(&fakeCalendar{}, monday)

	preferred := monday
	got := engine.SuggestMeetingTimes(context.Background(), &preferred, 2*time.Hour)

	if len(got) != 6 {
		t.Fatalf("got %d suggestions, want 6", len(got))
	}

	perDay := map[string]int{}
	for _, s := range got {
		perDay[s.Format("2006-01-02")]++
	}
	for day, n := range perDay {
		if n > 3 {
			t.Errorf("day %s contributed %d slots, want at most 3", day, n)
		}
	}
	if len(perDay) != 2 {
		t.Errorf("suggestions span %d days, want 2", len(perDay))
	}
}

func TestSuggestMeetingTimesSkipsWeekends(t *testing.T) {
	saturday := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	engine := newTestEngine(&fakeCalendar{}, saturday)

	preferred := saturday
	got := engine.SuggestMeetingTimes(context.Background(), &preferred, 2*time.Hour)

	for _, s := range got {
		if wd := s.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("suggestion %s falls on a weekend", s)
		}
	}
	if len(got) == 0 {
		t.Fatal("no suggestions despite free weekdays in range")
	}
}

func TestSuggestMeetingTimesDefaultsToTomorrow(t *testing.T) {
	// "Now" is Wednesday; the default preferred date is Thursday.
	wednesday := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	engine := newTestEngine(&fakeCalendar{}, wednesday)

	got := engine.SuggestMeetingTimes(context.Background(), nil, 2*time.Hour)

	if len(got) == 0 {
		t.Fatal("no suggestions")
	}
	thursday := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	if got[0].Before(thursday) {
		t.Errorf("first suggestion %s is before the default start %s", got[0], thursday)
	}
}

package domain

import (
	"testing"
	"time"
)

func TestServiceHoursState(t *testing.T) {
	h := ServiceHours{Start: NewTimeOfDay(6, 0, 0), End: NewTimeOfDay(21, 0, 0), Location: time.UTC}
	// 2026-03-02 is a Monday.
	at := func(day, hour, minute int) time.Time { return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC) }

	tests := []struct {
		name string
		now  time.Time
		want HoursState
	}{
		{"before start", at(2, 5, 59), HoursClosed},
		{"at start", at(2, 6, 0), HoursOpen},
		{"midday", at(2, 12, 0), HoursOpen},
		{"at end", at(2, 21, 0), HoursClosed},
		{"saturday", at(7, 12, 0), HoursWeekend},
		{"sunday", at(8, 12, 0), HoursWeekend},
	}
	for _, tc := range tests {
		if got := h.State(tc.now); got != tc.want {
			t.Errorf("%s: State = %v, want %v", tc.name, got, tc.want)
		}
	}

	h.Weekends = true
	if got := h.State(at(7, 12, 0)); got != HoursOpen {
		t.Errorf("weekends enabled: got %v", got)
	}
}

func TestHoursStateMessage(t *testing.T) {
	if HoursOpen.Message() != "" {
		t.Error("open state must have no message")
	}
	if HoursClosed.Message() != WorkdayEndedText || HoursWeekend.Message() != WeekendText {
		t.Error("unexpected closed messages")
	}
}

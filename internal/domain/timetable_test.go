package domain

import (
	"errors"
	"testing"
	"time"
)

func mustTimetable(t *testing.T, values ...string) Timetable {
	t.Helper()
	tt, err := ParseTimetable(values)
	if err != nil {
		t.Fatalf("ParseTimetable(%v): %v", values, err)
	}
	return tt
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "07:15", want: NewTimeOfDay(7, 15, 0)},
		{in: "23:59:59", want: EndOfDay - 1},
		{in: " 09:05 ", want: NewTimeOfDay(9, 5, 0)},
		{in: "24:00", wantErr: true},
		{in: "7:15", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidTimeOfDay) {
				t.Errorf("ParseTimeOfDay(%q) error = %v, want ErrInvalidTimeOfDay", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := NewTimeOfDay(7, 5, 0).String(); got != "07:05" {
		t.Errorf("got %q", got)
	}
	if got := NewTimeOfDay(7, 5, 9).String(); got != "07:05:09" {
		t.Errorf("got %q", got)
	}
}

func TestTimeOfDayFromUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	at := time.Date(2026, 3, 2, 5, 30, 0, 0, time.UTC)
	if got := TimeOfDayFrom(at, loc); got != NewTimeOfDay(8, 30, 0) {
		t.Errorf("got %s, want 08:30", got)
	}
}

func TestNewTimetableRejectsBadInput(t *testing.T) {
	if _, err := NewTimetable(nil); !errors.Is(err, ErrEmptyTimetable) {
		t.Errorf("empty: got %v", err)
	}
	if _, err := ParseTimetable([]string{"09:15", "07:15"}); !errors.Is(err, ErrInvalidTimetable) {
		t.Errorf("unsorted: got %v", err)
	}
	if _, err := ParseTimetable([]string{"07:15", "07:15"}); !errors.Is(err, ErrInvalidTimetable) {
		t.Errorf("duplicate: got %v", err)
	}
}

func TestTimetableIsNotAliased(t *testing.T) {
	slots := []TimeOfDay{NewTimeOfDay(7, 15, 0), NewTimeOfDay(9, 15, 0)}
	tt, err := NewTimetable(slots)
	if err != nil {
		t.Fatal(err)
	}
	slots[0] = 0
	got := tt.Slots()
	got[1] = 0
	if tt.Slots()[0] != NewTimeOfDay(7, 15, 0) || tt.Slots()[1] != NewTimeOfDay(9, 15, 0) {
		t.Errorf("timetable changed through a shared slice: %v", tt.Slots())
	}
}

func TestNextSlotAfter(t *testing.T) {
	tt := mustTimetable(t, "07:15", "09:15", "11:15")
	tests := []struct {
		now    string
		want   string
		wantOK bool
	}{
		{now: "06:00", want: "07:15", wantOK: true},
		{now: "07:14:59", want: "07:15", wantOK: true},
		// A departure leaving right now is no longer "next".
		{now: "07:15", want: "09:15", wantOK: true},
		{now: "10:00", want: "11:15", wantOK: true},
		{now: "11:15", wantOK: false},
		{now: "23:00", wantOK: false},
	}
	for _, tc := range tests {
		now, _ := ParseTimeOfDay(tc.now)
		got, ok := tt.NextSlotAfter(now)
		if ok != tc.wantOK {
			t.Errorf("NextSlotAfter(%s) ok = %v, want %v", tc.now, ok, tc.wantOK)
			continue
		}
		if ok && got.String() != tc.want {
			t.Errorf("NextSlotAfter(%s) = %s, want %s", tc.now, got, tc.want)
		}
	}
}

func TestPreviousSlotAtOrBefore(t *testing.T) {
	tt := mustTimetable(t, "07:15", "09:15")
	tests := map[string]TimeOfDay{
		"06:00": StartOfDay,
		"07:15": NewTimeOfDay(7, 15, 0),
		"08:00": NewTimeOfDay(7, 15, 0),
		"23:00": NewTimeOfDay(9, 15, 0),
	}
	for in, want := range tests {
		now, _ := ParseTimeOfDay(in)
		if got := tt.PreviousSlotAtOrBefore(now); got != want {
			t.Errorf("PreviousSlotAtOrBefore(%s) = %s, want %s", in, got, want)
		}
	}
}

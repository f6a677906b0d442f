package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyTimetable   = errors.New("timetable has no departures")
	ErrInvalidTimetable = errors.New("timetable must be ascending without duplicates")
	ErrInvalidTimeOfDay = errors.New("invalid time of day, expected HH:MM")
)

// TimeOfDay is a wall-clock time without a date, in seconds since 00:00.
type TimeOfDay int

const (
	StartOfDay TimeOfDay = 0
	EndOfDay   TimeOfDay = 24 * 60 * 60
)

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// TimeOfDayFrom drops the date part of t in loc.
func TimeOfDayFrom(t time.Time, loc *time.Location) TimeOfDay {
	if loc != nil {
		t = t.In(loc)
	}
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// ParseTimeOfDay accepts HH:MM and HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	limits := []int{23, 59, 59}
	vals := make([]int, 3)
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		vals[i] = v
	}
	return NewTimeOfDay(vals[0], vals[1], vals[2]), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Add shifts t by d without wrapping; the result may leave [StartOfDay, EndOfDay).
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Second)
}

// Timetable is the ordered list of departures of a service day. It is never
// modified after construction.
type Timetable struct {
	slots []TimeOfDay
}

func NewTimetable(slots []TimeOfDay) (Timetable, error) {
	if len(slots) == 0 {
		return Timetable{}, ErrEmptyTimetable
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			return Timetable{}, fmt.Errorf("%w: %s after %s", ErrInvalidTimetable, slots[i], slots[i-1])
		}
	}
	cp := make([]TimeOfDay, len(slots))
	copy(cp, slots)
	return Timetable{slots: cp}, nil
}

func ParseTimetable(values []string) (Timetable, error) {
	slots := make([]TimeOfDay, 0, len(values))
	for _, v := range values {
		t, err := ParseTimeOfDay(v)
		if err != nil {
			return Timetable{}, err
		}
		slots = append(slots, t)
	}
	return NewTimetable(slots)
}

func (tt Timetable) Slots() []TimeOfDay {
	cp := make([]TimeOfDay, len(tt.slots))
	copy(cp, tt.slots)
	return cp
}

// NextSlotAfter returns the earliest departure strictly after now. ok is false
// when no departures remain today.
func (tt Timetable) NextSlotAfter(now TimeOfDay) (slot TimeOfDay, ok bool) {
	i := sort.Search(len(tt.slots), func(i int) bool { return tt.slots[i] > now })
	if i == len(tt.slots) {
		return EndOfDay, false
	}
	return tt.slots[i], true
}

// PreviousSlotAtOrBefore returns the latest departure <= now, or StartOfDay.
func (tt Timetable) PreviousSlotAtOrBefore(now TimeOfDay) TimeOfDay {
	i := sort.Search(len(tt.slots), func(i int) bool { return tt.slots[i] > now })
	if i == 0 {
		return StartOfDay
	}
	return tt.slots[i-1]
}

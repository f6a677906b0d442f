package domain

import (
	"fmt"
	"time"
)

type SweepPolicy string

const (
	// SweepDeparted completes requests whose serving departure has left:
	// slot <= min(previous departure, now - grace).
	SweepDeparted SweepPolicy = "departed"
	// SweepWindow completes requests with previous departure <= slot <= now - grace.
	SweepWindow SweepPolicy = "window"
)

func ParseSweepPolicy(s string) (SweepPolicy, error) {
	switch p := SweepPolicy(s); p {
	case SweepDeparted, SweepWindow:
		return p, nil
	}
	return "", fmt.Errorf("unknown sweep policy %q", s)
}

// SweepRange returns the closed slot interval to auto-complete at now.
// ok is false when nothing may be completed, e.g. the cutoff falls before
// midnight.
func SweepRange(tt Timetable, now TimeOfDay, grace time.Duration, policy SweepPolicy) (from, to TimeOfDay, ok bool) {
	cutoff := now.Add(-grace)
	if cutoff < StartOfDay {
		return 0, 0, false
	}
	prev := tt.PreviousSlotAtOrBefore(now)

	switch policy {
	case SweepWindow:
		from, to = prev, cutoff
	default:
		// До первого рейса ничего не уехало.
		if len(tt.slots) == 0 || tt.slots[0] > now {
			return 0, 0, false
		}
		from, to = StartOfDay, min(prev, cutoff)
	}
	if from > to {
		return 0, 0, false
	}
	return from, to, true
}

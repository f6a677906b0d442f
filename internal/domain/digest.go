package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

func PriorityOf(p Purpose) Priority {
	switch p {
	case PurposeClass, PurposeSwitch:
		return PriorityHigh
	case PurposeClosed:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

const (
	NoRequestsText    = "No ride requests available."
	NoNewRequestsText = "No new ride requests."
)

// PriorityDigest is a snapshot of pending requests grouped by priority.
// IDs holds every request the digest was built from, including entries
// skipped because their name could not be resolved.
type PriorityDigest struct {
	High   []string
	Medium []string
	Low    []string
	Total  int
	IDs    map[int64]struct{}
}

func IDSet(rides []*RideRequest) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(rides))
	for _, r := range rides {
		ids[r.ID] = struct{}{}
	}
	return ids
}

func SameIDs(a, b map[int64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

// BuildDigest keeps the input order inside each tier.
func BuildDigest(ctx context.Context, pending []*RideRequest, names NameResolver, logger *slog.Logger) PriorityDigest {
	d := PriorityDigest{
		Total: len(pending),
		IDs:   IDSet(pending),
	}
	for _, r := range pending {
		name, err := names.DisplayName(ctx, r.RequesterID)
		if err != nil {
			if logger != nil {
				logger.Warn("digest: cannot resolve requester name",
					"ride_id", r.ID, "requester_id", r.RequesterID, "error", err)
			}
			continue
		}
		line := fmt.Sprintf("- %s needs to be picked up from %s to %s at %s", name, r.Origin, r.Destination, r.SlotTime)
		switch PriorityOf(r.Purpose) {
		case PriorityHigh:
			d.High = append(d.High, line)
		case PriorityMedium:
			d.Medium = append(d.Medium, line)
		default:
			d.Low = append(d.Low, line)
		}
	}
	return d
}

func (d PriorityDigest) Empty() bool { return d.Total == 0 }

func (d PriorityDigest) Text() string {
	if d.Empty() {
		return NoRequestsText
	}
	var b strings.Builder
	for _, tier := range []struct {
		p     Priority
		lines []string
	}{{PriorityHigh, d.High}, {PriorityMedium, d.Medium}, {PriorityLow, d.Low}} {
		fmt.Fprintf(&b, "%s Priority:\n", tier.p)
		if len(tier.lines) == 0 {
			b.WriteString("None\n\n")
			continue
		}
		b.WriteString(strings.Join(tier.lines, "\n"))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Total number of requests: %d", d.Total)
	return b.String()
}

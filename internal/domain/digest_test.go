package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func staticNames(names map[string]string) NameResolver {
	return NameResolverFunc(func(_ context.Context, id string) (string, error) {
		if n, ok := names[id]; ok {
			return n, nil
		}
		return "", ErrUserNotFound
	})
}

func TestBuildDigestGroupsByPriority(t *testing.T) {
	pending := []*RideRequest{
		{ID: 1, RequesterID: "1", Origin: "Library", Destination: "Dorm", SlotTime: NewTimeOfDay(7, 15, 0), Purpose: PurposeOther},
		{ID: 2, RequesterID: "2", Origin: "Gate", Destination: "Lab", SlotTime: NewTimeOfDay(7, 15, 0), Purpose: PurposeClass},
		{ID: 3, RequesterID: "1", Origin: "Lab", Destination: "Gate", SlotTime: NewTimeOfDay(9, 15, 0), Purpose: PurposeClosed},
		{ID: 4, RequesterID: "2", Origin: "Dorm", Destination: "Gym", SlotTime: NewTimeOfDay(9, 15, 0), Purpose: PurposeSwitch},
	}
	d := BuildDigest(context.Background(), pending, staticNames(map[string]string{"1": "Ann", "2": "Bob"}), nil)

	if d.Total != 4 || len(d.IDs) != 4 {
		t.Fatalf("total = %d ids = %d, want 4", d.Total, len(d.IDs))
	}
	if len(d.High) != 2 || !strings.Contains(d.High[0], "Bob needs to be picked up from Gate to Lab at 07:15") {
		t.Errorf("high = %v", d.High)
	}
	if !strings.Contains(d.High[1], "from Dorm to Gym") {
		t.Errorf("high tier lost input order: %v", d.High)
	}
	if len(d.Medium) != 1 || len(d.Low) != 1 {
		t.Errorf("medium = %v low = %v", d.Medium, d.Low)
	}
}

func TestBuildDigestSkipsUnresolvedNames(t *testing.T) {
	pending := []*RideRequest{
		{ID: 1, RequesterID: "1", Origin: "A", Destination: "B", SlotTime: NewTimeOfDay(7, 15, 0), Purpose: PurposeClass},
		{ID: 2, RequesterID: "ghost", Origin: "C", Destination: "D", SlotTime: NewTimeOfDay(7, 15, 0), Purpose: PurposeClass},
	}
	names := NameResolverFunc(func(_ context.Context, id string) (string, error) {
		if id == "ghost" {
			return "", errors.New("telegram unavailable")
		}
		return "Ann", nil
	})
	d := BuildDigest(context.Background(), pending, names, nil)

	if len(d.High) != 1 {
		t.Fatalf("high = %v, want only the resolved entry", d.High)
	}
	if d.Total != 2 {
		t.Errorf("total = %d, want 2", d.Total)
	}
}

func TestDigestText(t *testing.T) {
	d := PriorityDigest{
		High:  []string{"- Ann needs to be picked up from A to B at 07:15"},
		Total: 1,
	}
	want := "High Priority:\n- Ann needs to be picked up from A to B at 07:15\n\n" +
		"Medium Priority:\nNone\n\n" +
		"Low Priority:\nNone\n\n" +
		"Total number of requests: 1"
	if got := d.Text(); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}
	if got := (PriorityDigest{}).Text(); got != NoRequestsText {
		t.Errorf("empty digest text = %q", got)
	}
}

func TestSameIDs(t *testing.T) {
	a := IDSet([]*RideRequest{{ID: 1}, {ID: 2}})
	b := IDSet([]*RideRequest{{ID: 2}, {ID: 1}})
	if !SameIDs(a, b) {
		t.Error("order must not matter")
	}
	if SameIDs(a, IDSet([]*RideRequest{{ID: 1}, {ID: 3}})) {
		t.Error("different sets reported equal")
	}
}

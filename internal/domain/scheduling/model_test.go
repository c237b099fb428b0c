package scheduling

import (
	"testing"
	"time"
)

func TestStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusNoShow, true},
		{StatusPending, StatusDone, false},
		{StatusConfirmed, StatusDone, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusPending, false},
		{StatusDone, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusNoShow, StatusConfirmed, false},
		{StatusPending, StatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	for _, st := range []Status{StatusDone, StatusCancelled, StatusNoShow} {
		if !st.Terminal() {
			t.Errorf("%s should be terminal", st)
		}
	}
	for _, st := range []Status{StatusPending, StatusConfirmed} {
		if st.Terminal() {
			t.Errorf("%s should not be terminal", st)
		}
	}
}

func TestStatus_Blocks(t *testing.T) {
	for _, st := range []Status{StatusPending, StatusConfirmed, StatusDone} {
		if !st.Blocks() {
			t.Errorf("%s should block its slot", st)
		}
	}
	for _, st := range []Status{StatusCancelled, StatusNoShow} {
		if st.Blocks() {
			t.Errorf("%s should free its slot", st)
		}
	}
}

func TestParseStatus_Normalizes(t *testing.T) {
	st, err := ParseStatus("  no_show ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StatusNoShow {
		t.Errorf("got %s, want NO_SHOW", st)
	}
	if _, err := ParseStatus("BOOKED"); err == nil {
		t.Error("unknown status must not parse")
	}
}

func TestInterval_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	slot := func(startMin, endMin int) Interval {
		return Interval{
			Start: base.Add(time.Duration(startMin) * time.Minute),
			End:   base.Add(time.Duration(endMin) * time.Minute),
		}
	}

	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", slot(0, 60), slot(0, 60), true},
		{"contained", slot(0, 60), slot(15, 45), true},
		{"partial", slot(0, 60), slot(30, 90), true},
		{"back to back", slot(0, 60), slot(60, 120), false},
		{"disjoint", slot(0, 60), slot(90, 120), false},
	}
	for _, tc := range cases {
		if got := tc.a.Overlaps(tc.b); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		if got := tc.b.Overlaps(tc.a); got != tc.want {
			t.Errorf("%s (reversed): got %v, want %v", tc.name, got, tc.want)
		}
	}
}

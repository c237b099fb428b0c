package scheduling

import (
	"errors"
	"testing"
	"time"
)

func manaus(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Manaus")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	return loc
}

func testWindow(t *testing.T, policy WindowPolicy) ServiceWindow {
	return ServiceWindow{
		Location:    manaus(t),
		OpenHour:    14,
		CloseHour:   18,
		StepMinutes: 30,
		Policy:      policy,
	}
}

func TestWindow_Reject_InsideWindow(t *testing.T) {
	w := testWindow(t, PolicyReject)
	req := time.Date(2026, 3, 2, 15, 0, 0, 0, w.Location)

	start, end, dur, err := w.Resolve(req, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(req) {
		t.Errorf("start = %v, want %v", start, req)
	}
	if !end.Equal(req.Add(time.Hour)) {
		t.Errorf("end = %v, want %v", end, req.Add(time.Hour))
	}
	if dur != 60 {
		t.Errorf("duration = %d, want 60", dur)
	}
}

func TestWindow_Reject_Boundaries(t *testing.T) {
	w := testWindow(t, PolicyReject)

	// Opening instant is bookable.
	atOpen := time.Date(2026, 3, 2, 14, 0, 0, 0, w.Location)
	if _, _, _, err := w.Resolve(atOpen, 30); err != nil {
		t.Errorf("start at opening rejected: %v", err)
	}

	// A slot ending exactly at closing fits.
	lastSlot := time.Date(2026, 3, 2, 17, 30, 0, 0, w.Location)
	if _, _, _, err := w.Resolve(lastSlot, 30); err != nil {
		t.Errorf("slot ending at closing rejected: %v", err)
	}

	// One minute past closing does not.
	if _, _, _, err := w.Resolve(lastSlot, 31); err == nil {
		t.Error("slot running past closing must be rejected")
	}
}

func TestWindow_Reject_BeforeOpening(t *testing.T) {
	w := testWindow(t, PolicyReject)
	early := time.Date(2026, 3, 2, 10, 0, 0, 0, w.Location)

	_, _, _, err := w.Resolve(early, 60)
	var oow *OutOfWindowError
	if !errors.As(err, &oow) {
		t.Fatalf("expected OutOfWindowError, got %v", err)
	}
	if oow.OpenHour != 14 || oow.CloseHour != 18 {
		t.Errorf("error window = %d..%d, want 14..18", oow.OpenHour, oow.CloseHour)
	}
}

func TestWindow_EvaluatesClinicWallClock(t *testing.T) {
	w := testWindow(t, PolicyReject)

	// 17:00 UTC is 13:00 in Manaus: before opening.
	if _, _, _, err := w.Resolve(time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), 60); err == nil {
		t.Error("17:00 UTC must be rejected as 13:00 clinic time")
	}

	// 18:00 UTC is 14:00 in Manaus: the opening instant.
	start, _, _, err := w.Resolve(time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), 60)
	if err != nil {
		t.Fatalf("18:00 UTC should be bookable: %v", err)
	}
	if got := start.In(w.Location).Hour(); got != 14 {
		t.Errorf("resolved start = %d:00 clinic time, want 14:00", got)
	}
}

func TestWindow_Clamp_AdvancesEarlyStart(t *testing.T) {
	w := testWindow(t, PolicyClamp)
	early := time.Date(2026, 3, 2, 10, 0, 0, 0, w.Location)

	start, end, dur, err := w.Resolve(early, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	local := start.In(w.Location)
	if local.Hour() != 14 || local.Minute() != 0 {
		t.Errorf("start = %02d:%02d, want 14:00", local.Hour(), local.Minute())
	}
	if dur != 60 {
		t.Errorf("duration = %d, want 60 unchanged", dur)
	}
	if !end.Equal(start.Add(time.Hour)) {
		t.Errorf("end = %v, want start+1h", end)
	}
}

func TestWindow_Clamp_KeepsInWindowStart(t *testing.T) {
	w := testWindow(t, PolicyClamp)
	req := time.Date(2026, 3, 2, 14, 20, 0, 0, w.Location)

	start, _, dur, err := w.Resolve(req, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(req) {
		t.Errorf("in-window start moved from %v to %v", req, start)
	}
	if dur != 30 {
		t.Errorf("duration = %d, want 30", dur)
	}
}

func TestWindow_Clamp_ShrinksPastClosing(t *testing.T) {
	w := testWindow(t, PolicyClamp)
	late := time.Date(2026, 3, 2, 17, 0, 0, 0, w.Location)

	_, end, dur, err := w.Resolve(late, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dur != 60 {
		t.Errorf("duration = %d, want shrunk to 60", dur)
	}
	if got := end.In(w.Location); got.Hour() != 18 || got.Minute() != 0 {
		t.Errorf("end = %02d:%02d, want 18:00", got.Hour(), got.Minute())
	}
}

func TestWindow_Clamp_TooLateToShrink(t *testing.T) {
	w := testWindow(t, PolicyClamp)

	// Starting at closing leaves no room for even one step.
	atClose := time.Date(2026, 3, 2, 18, 0, 0, 0, w.Location)
	var oow *OutOfWindowError
	if _, _, _, err := w.Resolve(atClose, 30); !errors.As(err, &oow) {
		t.Errorf("expected OutOfWindowError, got %v", err)
	}

	// 17:45 leaves 15 minutes, below the 30-minute step.
	nearClose := time.Date(2026, 3, 2, 17, 45, 0, 0, w.Location)
	if _, _, _, err := w.Resolve(nearClose, 30); !errors.As(err, &oow) {
		t.Errorf("expected OutOfWindowError, got %v", err)
	}
}

func TestWindow_RejectsNonPositiveDuration(t *testing.T) {
	w := testWindow(t, PolicyReject)
	at := time.Date(2026, 3, 2, 15, 0, 0, 0, w.Location)
	if _, _, _, err := w.Resolve(at, 0); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, _, _, err := w.Resolve(at, -30); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestParseWindowPolicy(t *testing.T) {
	if _, err := ParseWindowPolicy("clamp"); err != nil {
		t.Errorf("clamp should parse: %v", err)
	}
	if _, err := ParseWindowPolicy("reject"); err != nil {
		t.Errorf("reject should parse: %v", err)
	}
	if _, err := ParseWindowPolicy("truncate"); err == nil {
		t.Error("unknown policy must not parse")
	}
}

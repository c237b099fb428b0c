package scheduling

import (
	"fmt"
	"time"
)

// WindowPolicy controls what happens to a requested slot that falls
// outside the service window.
type WindowPolicy string

const (
	// PolicyReject refuses out-of-window requests outright.
	PolicyReject WindowPolicy = "reject"
	// PolicyClamp moves an early start to the opening instant and
	// shrinks a slot that runs past closing, keeping at least one step.
	PolicyClamp WindowPolicy = "clamp"
)

func ParseWindowPolicy(s string) (WindowPolicy, error) {
	switch WindowPolicy(s) {
	case PolicyReject, PolicyClamp:
		return WindowPolicy(s), nil
	}
	return "", fmt.Errorf("unknown window policy %q", s)
}

// ServiceWindow is the clinic's daily booking window, evaluated on the
// wall clock of the clinic's time zone regardless of the zone the
// request arrived in.
type ServiceWindow struct {
	Location    *time.Location
	OpenHour    int
	CloseHour   int
	StepMinutes int
	Policy      WindowPolicy
}

func (w ServiceWindow) outOfWindow() error {
	return &OutOfWindowError{OpenHour: w.OpenHour, CloseHour: w.CloseHour, Zone: w.Location.String()}
}

// Resolve validates the requested slot against the window and returns
// the effective start, end, and duration. Under PolicyClamp the start
// may be advanced to opening and the duration shrunk to fit before
// closing; under PolicyReject any excursion is an OutOfWindowError.
// Comparisons use the clinic wall clock, so a 17:00 UTC request against
// an America/Manaus window is evaluated as 13:00.
func (w ServiceWindow) Resolve(start time.Time, durationMin int) (time.Time, time.Time, int, error) {
	if durationMin <= 0 {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("duration must be positive, got %d", durationMin)
	}

	local := start.In(w.Location)
	openSec := w.OpenHour * 3600
	closeSec := w.CloseHour * 3600
	startSec := local.Hour()*3600 + local.Minute()*60 + local.Second()

	switch w.Policy {
	case PolicyClamp:
		if startSec >= closeSec {
			return time.Time{}, time.Time{}, 0, w.outOfWindow()
		}
		if startSec < openSec {
			local = time.Date(local.Year(), local.Month(), local.Day(), w.OpenHour, 0, 0, 0, w.Location)
			startSec = openSec
		}
		maxMin := (closeSec - startSec) / 60
		if durationMin > maxMin {
			// Shrink onto the booking grid.
			durationMin = maxMin - maxMin%w.StepMinutes
		}
		if durationMin < w.StepMinutes {
			return time.Time{}, time.Time{}, 0, w.outOfWindow()
		}
		start = local.UTC()

	default: // PolicyReject
		if startSec < openSec || startSec+durationMin*60 > closeSec {
			return time.Time{}, time.Time{}, 0, w.outOfWindow()
		}
		start = start.UTC()
	}

	end := start.Add(time.Duration(durationMin) * time.Minute)
	return start, end, durationMin, nil
}

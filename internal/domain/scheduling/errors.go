package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the appointment does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrLinkAmbiguous is returned when a booking request carries both a
	// screening link and a direct student link, or neither.
	ErrLinkAmbiguous = errors.New("booking must reference exactly one of screening_id or student_id")

	// ErrProfessionalBusy is returned when the per-professional booking
	// lock could not be acquired; the caller should retry.
	ErrProfessionalBusy = errors.New("another booking for this professional is in progress, retry")
)

// ConflictError is returned when the requested slot overlaps existing
// appointments for the same professional. Conflicts lists up to five
// overlapping intervals ordered by start time.
type ConflictError struct {
	Conflicts []Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time conflict with %d existing appointment(s)", len(e.Conflicts))
}

// OutOfWindowError is returned when the requested slot does not fit the
// clinic's service window.
type OutOfWindowError struct {
	OpenHour  int
	CloseHour int
	Zone      string
}

func (e *OutOfWindowError) Error() string {
	return fmt.Sprintf("appointments must fall between %02d:00 and %02d:00 (%s)",
		e.OpenHour, e.CloseHour, e.Zone)
}

// InvalidTransitionError is returned when a status change is not allowed
// by the appointment state machine.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	if e.From.Terminal() {
		return fmt.Sprintf("appointment status %s is terminal", e.From)
	}
	return fmt.Sprintf("cannot change appointment status from %s to %s", e.From, e.To)
}

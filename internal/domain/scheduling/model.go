package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// transitions is the full state machine. Absent keys are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusDone, StatusCancelled, StatusNoShow},
}

var validAppointmentStatuses = map[Status]bool{
	StatusPending: true, StatusConfirmed: true, StatusDone: true,
	StatusCancelled: true, StatusNoShow: true,
}

// ParseStatus normalizes an external status tag.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !validAppointmentStatuses[st] {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return st, nil
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether the state machine allows s -> to.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Blocks reports whether an appointment in this state occupies its time
// slot for conflict detection. Cancelled and no-show slots are free.
func (s Status) Blocks() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDone:
		return true
	}
	return false
}

// BlockingStatuses is the set of states that occupy calendar time.
func BlockingStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusDone}
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the two half-open intervals intersect.
// Back-to-back intervals sharing a boundary instant do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Appointment maps to the appointment table. Exactly one of ScreeningID
// is set at booking when the slot was converted from a screening; the
// student link is always resolved and stored.
type Appointment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ScreeningID     *uuid.UUID `db:"screening_id" json:"screening_id,omitempty"`
	StudentID       uuid.UUID  `db:"student_id" json:"student_id"`
	StartsAt        time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt          time.Time  `db:"ends_at" json:"ends_at"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Professional    string     `db:"professional" json:"professional"`
	Channel         string     `db:"channel" json:"channel"`
	Status          Status     `db:"status" json:"status"`
	Note            *string    `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Interval is the appointment's occupied time range.
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartsAt, End: a.EndsAt}
}

package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows appointment listings. Nil fields are ignored.
type Filter struct {
	From         *time.Time
	To           *time.Time
	Status       *Status
	Professional *string
	Channel      *string
	StudentID    *uuid.UUID
	Limit        int
}

// Repository persists appointments. The *Checked methods perform the
// overlap scan and the write atomically so two concurrent bookings for
// the same professional cannot both pass the check.
type Repository interface {
	// CreateChecked inserts the appointment unless it overlaps a
	// blocking appointment of the same professional, in which case it
	// returns a ConflictError listing the overlaps.
	CreateChecked(ctx context.Context, a *Appointment) error
	// RescheduleChecked updates the appointment's slot fields with the
	// same atomic overlap guard, excluding the appointment itself from
	// the scan.
	RescheduleChecked(ctx context.Context, a *Appointment) error
	// Update rewrites mutable fields without an overlap scan. Callers
	// use it when the slot itself did not change.
	Update(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, f Filter) ([]*Appointment, error)
	// UpdateStatus moves the appointment from one status to another,
	// failing with an InvalidTransitionError when the stored status no
	// longer matches from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindOverlapping returns the blocking intervals of the professional
	// that intersect iv, ordered by start time, up to limit (no cap when
	// limit <= 0). excludeID omits one appointment (the one being
	// rescheduled).
	FindOverlapping(ctx context.Context, professional string, iv Interval, excludeID *uuid.UUID, limit int) ([]Interval, error)
}

// Package notes stores the clinical note written after a session. Each
// appointment carries at most one note; saving again overwrites it.
package notes

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session note not found")

	// ErrAppointmentNotFound is returned when the note references an
	// appointment that does not exist.
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// SessionNote maps to the session_note table. The student link is
// inferred from the appointment, never supplied by the client.
type SessionNote struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	StudentID     uuid.UUID `db:"student_id" json:"student_id"`
	Content       string    `db:"content" json:"content"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

package notes

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Upsert writes the appointment's note, replacing the content of an
	// existing one.
	Upsert(ctx context.Context, n *SessionNote) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*SessionNote, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*SessionNote, error)
	Delete(ctx context.Context, appointmentID uuid.UUID) error
}

package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AppointmentDirectory resolves which student an appointment belongs to.
// Implemented by an adapter over the scheduling service.
type AppointmentDirectory interface {
	StudentForAppointment(ctx context.Context, appointmentID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo         Repository
	appointments AppointmentDirectory
}

func NewService(repo Repository, appointments AppointmentDirectory) *Service {
	return &Service{repo: repo, appointments: appointments}
}

// Save writes the note for an appointment, inferring the student from
// the appointment itself. A second save replaces the content.
func (s *Service) Save(ctx context.Context, appointmentID uuid.UUID, content string) (*SessionNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	studentID, err := s.appointments.StudentForAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	n := &SessionNote{
		AppointmentID: appointmentID,
		StudentID:     studentID,
		Content:       content,
	}
	if err := s.repo.Upsert(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*SessionNote, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}

func (s *Service) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*SessionNote, error) {
	return s.repo.ListByStudent(ctx, studentID, limit)
}

func (s *Service) Delete(ctx context.Context, appointmentID uuid.UUID) error {
	return s.repo.Delete(ctx, appointmentID)
}

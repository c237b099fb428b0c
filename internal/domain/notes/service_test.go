package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	byAppointment map[uuid.UUID]*SessionNote
}

func newMockRepo() *mockRepo {
	return &mockRepo{byAppointment: make(map[uuid.UUID]*SessionNote)}
}

func (m *mockRepo) Upsert(_ context.Context, n *SessionNote) error {
	if existing, ok := m.byAppointment[n.AppointmentID]; ok {
		existing.Content = n.Content
		existing.UpdatedAt = time.Now()
		*n = *existing
		return nil
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	stored := *n
	m.byAppointment[n.AppointmentID] = &stored
	return nil
}

func (m *mockRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*SessionNote, error) {
	n, ok := m.byAppointment[appointmentID]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

func (m *mockRepo) ListByStudent(_ context.Context, studentID uuid.UUID, limit int) ([]*SessionNote, error) {
	var out []*SessionNote
	for _, n := range m.byAppointment {
		if n.StudentID != studentID {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, appointmentID uuid.UUID) error {
	if _, ok := m.byAppointment[appointmentID]; !ok {
		return ErrNotFound
	}
	delete(m.byAppointment, appointmentID)
	return nil
}

type mockAppointments struct {
	students map[uuid.UUID]uuid.UUID
}

func newMockAppointments() *mockAppointments {
	return &mockAppointments{students: make(map[uuid.UUID]uuid.UUID)}
}

func (m *mockAppointments) add() (appointmentID, studentID uuid.UUID) {
	appointmentID, studentID = uuid.New(), uuid.New()
	m.students[appointmentID] = studentID
	return
}

func (m *mockAppointments) StudentForAppointment(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	sid, ok := m.students[id]
	if !ok {
		return uuid.Nil, ErrAppointmentNotFound
	}
	return sid, nil
}

func newTestService() (*Service, *mockRepo, *mockAppointments) {
	repo := newMockRepo()
	appts := newMockAppointments()
	return NewService(repo, appts), repo, appts
}

func TestService_Save_InfersStudent(t *testing.T) {
	svc, _, appts := newTestService()
	appointmentID, studentID := appts.add()

	n, err := svc.Save(context.Background(), appointmentID, "first session, good rapport")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.StudentID != studentID {
		t.Error("student not inferred from appointment")
	}
	if n.ID == uuid.Nil {
		t.Error("note id not assigned")
	}
}

func TestService_Save_OverwritesExisting(t *testing.T) {
	svc, repo, appts := newTestService()
	ctx := context.Background()
	appointmentID, _ := appts.add()

	first, err := svc.Save(ctx, appointmentID, "draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Save(ctx, appointmentID, "final version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.ID != first.ID {
		t.Error("second save created a new note instead of replacing")
	}
	if len(repo.byAppointment) != 1 {
		t.Errorf("store holds %d notes, want 1", len(repo.byAppointment))
	}
	if repo.byAppointment[appointmentID].Content != "final version" {
		t.Error("content not replaced")
	}
}

func TestService_Save_UnknownAppointment(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Save(context.Background(), uuid.New(), "orphan note")
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("got %v, want ErrAppointmentNotFound", err)
	}
}

func TestService_Save_RejectsEmptyContent(t *testing.T) {
	svc, _, appts := newTestService()
	appointmentID, _ := appts.add()

	if _, err := svc.Save(context.Background(), appointmentID, "   "); err == nil {
		t.Error("expected error for blank content")
	}
}

func TestService_GetByAppointment_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.GetByAppointment(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

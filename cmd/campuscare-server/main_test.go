package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/domain/identity"
	"github.com/campuscare/campuscare/internal/domain/notes"
	"github.com/campuscare/campuscare/internal/domain/scheduling"
	"github.com/campuscare/campuscare/internal/domain/screening"
)

// ---------------------------------------------------------------------------
// Minimal repository fakes for adapter wiring tests
// ---------------------------------------------------------------------------

type fakeStudentRepo struct {
	byReg map[string]*identity.Student
}

func (f *fakeStudentRepo) Upsert(_ context.Context, s *identity.Student) error {
	if existing, ok := f.byReg[s.RegistrationNumber]; ok {
		s.ID = existing.ID
		return nil
	}
	s.ID = uuid.New()
	stored := *s
	f.byReg[s.RegistrationNumber] = &stored
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id uuid.UUID) (*identity.Student, error) {
	for _, s := range f.byReg {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, identity.ErrNotFound
}

func (f *fakeStudentRepo) GetByRegistration(_ context.Context, reg string) (*identity.Student, error) {
	s, ok := f.byReg[reg]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return s, nil
}

func (f *fakeStudentRepo) List(_ context.Context, _ identity.Filter) ([]*identity.Student, int, error) {
	return nil, 0, nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeScreeningRepo struct {
	byID     map[uuid.UUID]*screening.Screening
	statuses map[uuid.UUID]screening.Status
}

func (f *fakeScreeningRepo) Create(_ context.Context, s *screening.Screening) error {
	s.ID = uuid.New()
	f.byID[s.ID] = s
	return nil
}

func (f *fakeScreeningRepo) GetByID(_ context.Context, id uuid.UUID) (*screening.Screening, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, screening.ErrNotFound
	}
	return s, nil
}

func (f *fakeScreeningRepo) List(_ context.Context, _ screening.Filter) ([]*screening.Screening, error) {
	return nil, nil
}

func (f *fakeScreeningRepo) ListByStudent(_ context.Context, _ uuid.UUID, _ int) ([]*screening.Screening, error) {
	return nil, nil
}

func (f *fakeScreeningRepo) UpdateStatus(_ context.Context, id uuid.UUID, status screening.Status) error {
	if _, ok := f.byID[id]; !ok {
		return screening.ErrNotFound
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeScreeningRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeAppointmentRepo struct {
	byID map[uuid.UUID]*scheduling.Appointment
}

func (f *fakeAppointmentRepo) CreateChecked(_ context.Context, a *scheduling.Appointment) error {
	a.ID = uuid.New()
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) RescheduleChecked(_ context.Context, _ *scheduling.Appointment) error {
	return nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, _ *scheduling.Appointment) error { return nil }

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	return a, nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, _ scheduling.Filter) ([]*scheduling.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _, _ scheduling.Status) error {
	return nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeAppointmentRepo) FindOverlapping(_ context.Context, _ string, _ scheduling.Interval, _ *uuid.UUID, _ int) ([]scheduling.Interval, error) {
	return nil, nil
}

// ---------------------------------------------------------------------------
// Adapter tests
// ---------------------------------------------------------------------------

func TestStudentUpserterAdapter_ReturnsStoredID(t *testing.T) {
	repo := &fakeStudentRepo{byReg: make(map[string]*identity.Student)}
	adapter := &studentUpserterAdapter{svc: identity.NewService(repo)}
	ctx := context.Background()

	first, err := adapter.UpsertByRegistration(ctx, screening.StudentRegistration{
		FullName:           "Ana Souza",
		Age:                21,
		RegistrationNumber: "20260101",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == uuid.Nil {
		t.Fatal("adapter returned nil student id")
	}

	second, err := adapter.UpsertByRegistration(ctx, screening.StudentRegistration{
		FullName:           "Ana Beatriz Souza",
		Age:                22,
		RegistrationNumber: "20260101",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Error("same registration resolved to a different student id")
	}
}

func TestScreeningDirectoryAdapter_TranslatesNotFound(t *testing.T) {
	repo := &fakeScreeningRepo{
		byID:     make(map[uuid.UUID]*screening.Screening),
		statuses: make(map[uuid.UUID]screening.Status),
	}
	students := &studentUpserterAdapter{svc: identity.NewService(
		&fakeStudentRepo{byReg: make(map[string]*identity.Student)})}
	adapter := &screeningDirectoryAdapter{svc: screening.NewService(repo, students)}

	_, err := adapter.StudentForScreening(context.Background(), uuid.New())
	if !errors.Is(err, scheduling.ErrScreeningNotFound) {
		t.Errorf("got %v, want scheduling.ErrScreeningNotFound", err)
	}
}

func TestScreeningDirectoryAdapter_ResolvesStudentAndConverts(t *testing.T) {
	repo := &fakeScreeningRepo{
		byID:     make(map[uuid.UUID]*screening.Screening),
		statuses: make(map[uuid.UUID]screening.Status),
	}
	studentID := uuid.New()
	sc := &screening.Screening{StudentID: studentID, Status: screening.StatusNew}
	if err := repo.Create(context.Background(), sc); err != nil {
		t.Fatalf("seed screening: %v", err)
	}

	students := &studentUpserterAdapter{svc: identity.NewService(
		&fakeStudentRepo{byReg: make(map[string]*identity.Student)})}
	adapter := &screeningDirectoryAdapter{svc: screening.NewService(repo, students)}

	got, err := adapter.StudentForScreening(context.Background(), sc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != studentID {
		t.Errorf("resolved student %s, want %s", got, studentID)
	}

	if err := adapter.MarkConverted(context.Background(), sc.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.statuses[sc.ID] != screening.StatusConverted {
		t.Errorf("screening status = %s, want CONVERTED", repo.statuses[sc.ID])
	}
}

func TestAppointmentDirectoryAdapter_TranslatesNotFound(t *testing.T) {
	repo := &fakeAppointmentRepo{byID: make(map[uuid.UUID]*scheduling.Appointment)}
	svc := newSchedulingService(t, repo)
	adapter := &appointmentDirectoryAdapter{svc: svc}

	_, err := adapter.StudentForAppointment(context.Background(), uuid.New())
	if !errors.Is(err, notes.ErrAppointmentNotFound) {
		t.Errorf("got %v, want notes.ErrAppointmentNotFound", err)
	}
}

func TestAppointmentDirectoryAdapter_ResolvesStudent(t *testing.T) {
	repo := &fakeAppointmentRepo{byID: make(map[uuid.UUID]*scheduling.Appointment)}
	studentID := uuid.New()
	a := &scheduling.Appointment{StudentID: studentID, Status: scheduling.StatusConfirmed}
	if err := repo.CreateChecked(context.Background(), a); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	adapter := &appointmentDirectoryAdapter{svc: newSchedulingService(t, repo)}
	got, err := adapter.StudentForAppointment(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != studentID {
		t.Errorf("resolved student %s, want %s", got, studentID)
	}
}

func newSchedulingService(t *testing.T, repo scheduling.Repository) *scheduling.Service {
	t.Helper()
	loc, err := time.LoadLocation("America/Manaus")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	window := scheduling.ServiceWindow{
		Location:    loc,
		OpenHour:    14,
		CloseHour:   18,
		StepMinutes: 30,
		Policy:      scheduling.PolicyReject,
	}
	return scheduling.NewService(repo, nil, window, nil, true, zerolog.Nop())
}

package screening

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/campuscare/campuscare/internal/domain/risk"
)

// StudentUpserter creates or refreshes a student record during intake,
// keyed by registration number. Implemented by the identity service.
type StudentUpserter interface {
	UpsertByRegistration(ctx context.Context, reg StudentRegistration) (uuid.UUID, error)
}

// StudentRegistration is the student payload carried by an intake event.
type StudentRegistration struct {
	FullName           string
	Age                int
	Phone              *string
	RegistrationNumber string
	Program            string
	Term               string
	TelegramID         *string
}

// IntakeRequest is a raw screening submission. Scores are recomputed
// server-side from the answer vectors; any client-supplied totals are
// ignored.
type IntakeRequest struct {
	Student      StudentRegistration
	PHQ9Answers  []int
	GAD7Answers  []int
	Availability string
	Observation  *string
	Report       *string
}

type Service struct {
	repo     Repository
	students StudentUpserter
}

func NewService(repo Repository, students StudentUpserter) *Service {
	return &Service{repo: repo, students: students}
}

func validateAnswers(name string, answers []int, wantLen int) error {
	if len(answers) != wantLen {
		return fmt.Errorf("%s must have exactly %d answers, got %d", name, wantLen, len(answers))
	}
	for i, a := range answers {
		if a < 0 || a > risk.MaxItemAnswer {
			return fmt.Errorf("%s answer %d out of range: %d", name, i+1, a)
		}
	}
	return nil
}

// Intake registers a screening: recomputes both instrument scores,
// derives the risk levels and the severe-case flag, upserts the student,
// and persists the screening with status NEW.
func (s *Service) Intake(ctx context.Context, req IntakeRequest) (*Screening, error) {
	req.Student.FullName = strings.TrimSpace(req.Student.FullName)
	req.Student.Program = strings.TrimSpace(req.Student.Program)
	req.Student.Term = strings.TrimSpace(req.Student.Term)
	req.Student.RegistrationNumber = strings.TrimSpace(req.Student.RegistrationNumber)

	if req.Student.FullName == "" {
		return nil, fmt.Errorf("student full_name is required")
	}
	if req.Student.RegistrationNumber == "" {
		return nil, fmt.Errorf("student registration_number is required")
	}
	if err := validateAnswers("phq9_answers", req.PHQ9Answers, risk.PHQ9Items); err != nil {
		return nil, err
	}
	if err := validateAnswers("gad7_answers", req.GAD7Answers, risk.GAD7Items); err != nil {
		return nil, err
	}

	phq9Score := sum(req.PHQ9Answers)
	gad7Score := sum(req.GAD7Answers)

	riskPHQ9, err := risk.Classify(risk.PHQ9, phq9Score)
	if err != nil {
		return nil, err
	}
	riskGAD7, err := risk.Classify(risk.GAD7, gad7Score)
	if err != nil {
		return nil, err
	}

	studentID, err := s.students.UpsertByRegistration(ctx, req.Student)
	if err != nil {
		return nil, fmt.Errorf("upsert student: %w", err)
	}

	sc := &Screening{
		StudentID:    studentID,
		PHQ9Answers:  req.PHQ9Answers,
		PHQ9Score:    phq9Score,
		GAD7Answers:  req.GAD7Answers,
		GAD7Score:    gad7Score,
		RiskPHQ9:     riskPHQ9,
		RiskGAD7:     riskGAD7,
		SevereCase:   risk.SevereCase(phq9Score, gad7Score, req.PHQ9Answers),
		Availability: strings.TrimSpace(req.Availability),
		Observation:  trimPtr(req.Observation),
		Report:       trimPtr(req.Report),
		Status:       StatusNew,
	}
	if err := s.repo.Create(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Screening, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Screening, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*Screening, error) {
	return s.repo.ListByStudent(ctx, studentID, limit)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !validStatuses[status] {
		return fmt.Errorf("unknown screening status %q", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// TriageFilter restricts the triage queue before ordering.
type TriageFilter struct {
	Statuses []Status
	Risk     *risk.Level
}

// Triage returns open screenings in clinical priority order. The
// ordering is recomputed on every call over an in-memory snapshot.
func (s *Service) Triage(ctx context.Context, f TriageFilter) ([]*Screening, error) {
	statuses := f.Statuses
	if len(statuses) == 0 {
		// Converted and archived screenings have left the queue.
		statuses = []Status{StatusNew, StatusReviewed, StatusScheduled}
	}
	items, err := s.repo.List(ctx, Filter{Statuses: statuses})
	if err != nil {
		return nil, err
	}
	if f.Risk != nil {
		items = FilterByRisk(items, *f.Risk)
	}
	return Order(items), nil
}

func sum(answers []int) int {
	total := 0
	for _, a := range answers {
		total += a
	}
	return total
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	if t == "" {
		return nil
	}
	return &t
}

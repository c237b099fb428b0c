package screening

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuscare/campuscare/internal/domain/risk"
)

// Status is the workflow state of a screening.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusReviewed  Status = "REVIEWED"
	StatusScheduled Status = "SCHEDULED"
	StatusConverted Status = "CONVERTED"
	StatusArchived  Status = "ARCHIVED"
)

var validStatuses = map[Status]bool{
	StatusNew: true, StatusReviewed: true, StatusScheduled: true,
	StatusConverted: true, StatusArchived: true,
}

// ParseStatus normalizes an external status tag. Internal code compares
// Status values directly.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !validStatuses[st] {
		return "", fmt.Errorf("unknown screening status %q", s)
	}
	return st, nil
}

// StudentSummary carries the student fields the dashboard lists next to
// a screening.
type StudentSummary struct {
	ID                 uuid.UUID `json:"id"`
	FullName           string    `json:"full_name"`
	RegistrationNumber string    `json:"registration_number"`
	Program            string    `json:"program"`
	Term               string    `json:"term"`
}

// Screening maps to the screening table. Scores and risk levels are
// derived at intake and immutable afterwards.
type Screening struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	StudentID   uuid.UUID       `db:"student_id" json:"student_id"`
	PHQ9Answers []int           `db:"phq9_answers" json:"phq9_answers"`
	PHQ9Score   int             `db:"phq9_score" json:"phq9_score"`
	GAD7Answers []int           `db:"gad7_answers" json:"gad7_answers"`
	GAD7Score   int             `db:"gad7_score" json:"gad7_score"`
	RiskPHQ9    risk.Level      `db:"risk_phq9" json:"risk_phq9"`
	RiskGAD7    risk.Level      `db:"risk_gad7" json:"risk_gad7"`
	SevereCase  bool            `db:"severe_case" json:"severe_case"`
	Availability string         `db:"availability" json:"availability"`
	Observation *string         `db:"observation" json:"observation,omitempty"`
	Report      *string         `db:"report" json:"report,omitempty"`
	Status      Status          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Student     *StudentSummary `db:"-" json:"student,omitempty"`
}

// OverallRisk is the higher of the two instrument levels.
func (s *Screening) OverallRisk() risk.Level {
	return risk.Overall(s.RiskPHQ9, s.RiskGAD7)
}

package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UpsertInput is the directory payload of an intake or manual edit.
type UpsertInput struct {
	FullName           string
	Age                int
	Phone              *string
	RegistrationNumber string
	Program            string
	Term               string
	TelegramID         *string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert creates or refreshes the student record keyed by registration
// number and returns the stored row.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*Student, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.RegistrationNumber = strings.TrimSpace(in.RegistrationNumber)
	if in.FullName == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if in.RegistrationNumber == "" {
		return nil, fmt.Errorf("registration_number is required")
	}
	if in.Age < 0 {
		return nil, fmt.Errorf("age must not be negative")
	}

	st := &Student{
		FullName:           in.FullName,
		Age:                in.Age,
		Phone:              in.Phone,
		RegistrationNumber: in.RegistrationNumber,
		Program:            strings.TrimSpace(in.Program),
		Term:               strings.TrimSpace(in.Term),
		TelegramID:         in.TelegramID,
	}
	if err := s.repo.Upsert(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Student, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByRegistration(ctx context.Context, registrationNumber string) (*Student, error) {
	return s.repo.GetByRegistration(ctx, strings.TrimSpace(registrationNumber))
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Student, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

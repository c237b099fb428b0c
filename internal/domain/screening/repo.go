package screening

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a screening id does not resolve.
var ErrNotFound = errors.New("screening not found")

// Filter restricts List results. Zero values mean "no restriction".
type Filter struct {
	Statuses []Status
	Limit    int
}

type Repository interface {
	Create(ctx context.Context, s *Screening) error
	GetByID(ctx context.Context, id uuid.UUID) (*Screening, error)
	List(ctx context.Context, f Filter) ([]*Screening, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*Screening, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
}

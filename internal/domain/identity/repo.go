package identity

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows student listings. Query matches name or registration
// number.
type Filter struct {
	Query  string
	Limit  int
	Offset int
}

type Repository interface {
	// Upsert inserts the student or, when the registration number is
	// already on file, refreshes the mutable fields of the existing
	// record. The student's ID reflects the stored row either way.
	Upsert(ctx context.Context, s *Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*Student, error)
	GetByRegistration(ctx context.Context, registrationNumber string) (*Student, error)
	// List returns one page of students plus the total match count.
	List(ctx context.Context, f Filter) ([]*Student, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

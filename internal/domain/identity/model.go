// Package identity holds the student directory. Students are keyed by
// their registration number; intake upserts keep the directory current
// without duplicating records.
package identity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("student not found")

// Student maps to the student table.
type Student struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	FullName           string    `db:"full_name" json:"full_name"`
	Age                int       `db:"age" json:"age"`
	Phone              *string   `db:"phone" json:"phone,omitempty"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number"`
	Program            string    `db:"program" json:"program"`
	Term               string    `db:"term" json:"term"`
	TelegramID         *string   `db:"telegram_id" json:"telegram_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

package notes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuscare/campuscare/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const noteCols = `id, appointment_id, student_id, content, created_at, updated_at`

func scanNote(row pgx.Row) (*SessionNote, error) {
	var n SessionNote
	err := row.Scan(&n.ID, &n.AppointmentID, &n.StudentID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) Upsert(ctx context.Context, n *SessionNote) error {
	id := uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO session_note (id, appointment_id, student_id, content)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (appointment_id) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		id, n.AppointmentID, n.StudentID, n.Content,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*SessionNote, error) {
	return scanNote(r.conn(ctx).QueryRow(ctx,
		`SELECT `+noteCols+` FROM session_note WHERE appointment_id = $1`, appointmentID))
}

func (r *repoPG) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*SessionNote, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+noteCols+` FROM session_note WHERE student_id = $1 ORDER BY created_at DESC LIMIT $2`,
		studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SessionNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, appointmentID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM session_note WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuscare/campuscare/internal/platform/db"
)

// conflictLimit caps how many overlapping intervals a ConflictError
// reports back to the caller.
const conflictLimit = 5

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const appointmentCols = `id, screening_id, student_id, starts_at, ends_at, duration_minutes,
	professional, channel, status, note, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a      Appointment
		status string
	)
	err := row.Scan(&a.ID, &a.ScreeningID, &a.StudentID, &a.StartsAt, &a.EndsAt, &a.DurationMinutes,
		&a.Professional, &a.Channel, &status, &a.Note, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

func blockingStatusStrings() []string {
	blocking := BlockingStatuses()
	out := make([]string, len(blocking))
	for i, st := range blocking {
		out[i] = string(st)
	}
	return out
}

// isExclusionViolation detects the btree_gist EXCLUDE constraint firing
// on the appointment table (SQLSTATE 23P01). The constraint is a
// backstop behind the serializable check-then-insert.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func (r *repoPG) FindOverlapping(ctx context.Context, professional string, iv Interval, excludeID *uuid.UUID, limit int) ([]Interval, error) {
	query := `SELECT starts_at, ends_at FROM appointment
		WHERE professional = $1 AND status = ANY($2)
		AND starts_at < $3 AND ends_at > $4`
	args := []interface{}{professional, blockingStatusStrings(), iv.End, iv.Start}
	if excludeID != nil {
		query += ` AND id <> $5`
		args = append(args, *excludeID)
	}
	query += ` ORDER BY starts_at`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Interval
	for rows.Next() {
		var v Interval
		if err := rows.Scan(&v.Start, &v.End); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repoPG) CreateChecked(ctx context.Context, a *Appointment) error {
	err := db.InSerializableTx(ctx, r.pool, func(ctx context.Context) error {
		conflicts, err := r.FindOverlapping(ctx, a.Professional, a.Interval(), nil, conflictLimit)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
		a.ID = uuid.New()
		return r.conn(ctx).QueryRow(ctx, `
			INSERT INTO appointment (id, screening_id, student_id, starts_at, ends_at,
				duration_minutes, professional, channel, status, note)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING created_at, updated_at`,
			a.ID, a.ScreeningID, a.StudentID, a.StartsAt, a.EndsAt,
			a.DurationMinutes, a.Professional, a.Channel, string(a.Status), a.Note,
		).Scan(&a.CreatedAt, &a.UpdatedAt)
	})
	if isExclusionViolation(err) {
		return &ConflictError{}
	}
	return err
}

func (r *repoPG) RescheduleChecked(ctx context.Context, a *Appointment) error {
	err := db.InSerializableTx(ctx, r.pool, func(ctx context.Context) error {
		conflicts, err := r.FindOverlapping(ctx, a.Professional, a.Interval(), &a.ID, conflictLimit)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
		return r.update(ctx, a)
	})
	if isExclusionViolation(err) {
		return &ConflictError{}
	}
	return err
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	return r.update(ctx, a)
}

func (r *repoPG) update(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointment SET starts_at = $2, ends_at = $3, duration_minutes = $4,
			professional = $5, channel = $6, note = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.StartsAt, a.EndsAt, a.DurationMinutes, a.Professional, a.Channel, a.Note,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Appointment, error) {
	query := `SELECT ` + appointmentCols + ` FROM appointment WHERE 1=1`
	var args []interface{}
	idx := 1

	add := func(clause string, val interface{}) {
		query += fmt.Sprintf(clause, idx)
		args = append(args, val)
		idx++
	}
	if f.From != nil {
		add(` AND ends_at > $%d`, *f.From)
	}
	if f.To != nil {
		add(` AND starts_at < $%d`, *f.To)
	}
	if f.Status != nil {
		add(` AND status = $%d`, string(*f.Status))
	}
	if f.Professional != nil {
		add(` AND professional = $%d`, *f.Professional)
	}
	if f.Channel != nil {
		add(` AND channel = $%d`, *f.Channel)
	}
	if f.StudentID != nil {
		add(` AND student_id = $%d`, *f.StudentID)
	}

	query += ` ORDER BY starts_at`
	if f.Limit > 0 {
		add(` LIMIT $%d`, f.Limit)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// Either the row is gone or its status moved under us.
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &InvalidTransitionError{From: current.Status, To: to}
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

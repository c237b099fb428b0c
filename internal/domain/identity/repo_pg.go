package identity

import (
	"context"
	"errors"
	"fmt"

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

const studentCols = `id, full_name, age, phone, registration_number, program, term, telegram_id, created_at, updated_at`

func scanStudent(row pgx.Row) (*Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.FullName, &s.Age, &s.Phone, &s.RegistrationNumber,
		&s.Program, &s.Term, &s.TelegramID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Upsert(ctx context.Context, s *Student) error {
	id := uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO student (id, full_name, age, phone, registration_number, program, term, telegram_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (registration_number) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			age = EXCLUDED.age,
			phone = COALESCE(EXCLUDED.phone, student.phone),
			program = EXCLUDED.program,
			term = EXCLUDED.term,
			telegram_id = COALESCE(EXCLUDED.telegram_id, student.telegram_id),
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		id, s.FullName, s.Age, s.Phone, s.RegistrationNumber, s.Program, s.Term, s.TelegramID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Student, error) {
	return scanStudent(r.conn(ctx).QueryRow(ctx,
		`SELECT `+studentCols+` FROM student WHERE id = $1`, id))
}

func (r *repoPG) GetByRegistration(ctx context.Context, registrationNumber string) (*Student, error) {
	return scanStudent(r.conn(ctx).QueryRow(ctx,
		`SELECT `+studentCols+` FROM student WHERE registration_number = $1`, registrationNumber))
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Student, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Query != "" {
		where += fmt.Sprintf(` AND (full_name ILIKE $%d OR registration_number ILIKE $%d)`, idx, idx)
		args = append(args, "%"+f.Query+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM student`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + studentCols + ` FROM student` + where + ` ORDER BY full_name`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

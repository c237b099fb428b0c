package screening

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuscare/campuscare/internal/domain/risk"
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

const screeningCols = `s.id, s.student_id, s.phq9_answers, s.phq9_score, s.gad7_answers, s.gad7_score,
	s.risk_phq9, s.risk_gad7, s.severe_case, s.availability, s.observation, s.report, s.status, s.created_at,
	st.id, st.full_name, st.registration_number, st.program, st.term`

const screeningFrom = ` FROM screening s JOIN student st ON st.id = s.student_id`

func scanScreening(row pgx.Row) (*Screening, error) {
	var (
		sc           Screening
		phq9, gad7   []int32
		riskA, riskB string
		status       string
		student      StudentSummary
	)
	err := row.Scan(&sc.ID, &sc.StudentID, &phq9, &sc.PHQ9Score, &gad7, &sc.GAD7Score,
		&riskA, &riskB, &sc.SevereCase, &sc.Availability, &sc.Observation, &sc.Report, &status, &sc.CreatedAt,
		&student.ID, &student.FullName, &student.RegistrationNumber, &student.Program, &student.Term)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sc.PHQ9Answers = toInts(phq9)
	sc.GAD7Answers = toInts(gad7)
	sc.RiskPHQ9 = risk.Level(riskA)
	sc.RiskGAD7 = risk.Level(riskB)
	sc.Status = Status(status)
	sc.Student = &student
	return &sc, nil
}

func (r *repoPG) Create(ctx context.Context, s *Screening) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO screening (id, student_id, phq9_answers, phq9_score, gad7_answers, gad7_score,
			risk_phq9, risk_gad7, severe_case, availability, observation, report, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at`,
		s.ID, s.StudentID, toInt32s(s.PHQ9Answers), s.PHQ9Score, toInt32s(s.GAD7Answers), s.GAD7Score,
		string(s.RiskPHQ9), string(s.RiskGAD7), s.SevereCase, s.Availability, s.Observation, s.Report,
		string(s.Status)).Scan(&s.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Screening, error) {
	return scanScreening(r.conn(ctx).QueryRow(ctx,
		`SELECT `+screeningCols+screeningFrom+` WHERE s.id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Screening, error) {
	query := `SELECT ` + screeningCols + screeningFrom + ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		query += fmt.Sprintf(` AND s.status = ANY($%d)`, idx)
		args = append(args, statuses)
		idx++
	}

	query += ` ORDER BY s.created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, idx)
		args = append(args, f.Limit)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Screening
	for rows.Next() {
		s, err := scanScreening(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*Screening, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+screeningCols+screeningFrom+` WHERE s.student_id = $1 ORDER BY s.created_at DESC LIMIT $2`,
		studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Screening
	for rows.Next() {
		s, err := scanScreening(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE screening SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM screening WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func toInts(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

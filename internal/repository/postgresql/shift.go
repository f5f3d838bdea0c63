package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const shiftColumns = `id, name, start_time, end_time, break_start, break_end, grace_minutes, is_active, created_at, updated_at`

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) attendance.ShiftRepository {
	return &shiftRepository{db: db}
}

func scanShift(row scanner) (attendance.Shift, error) {
	var s attendance.Shift
	var start, end, breakStart, breakEnd pgtype.Time
	if err := row.Scan(&s.ID, &s.Name, &start, &end, &breakStart, &breakEnd, &s.GraceMinutes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return attendance.Shift{}, err
	}
	s.StartTime = *fromPgTime(start)
	s.EndTime = *fromPgTime(end)
	s.BreakStart = fromPgTime(breakStart)
	s.BreakEnd = fromPgTime(breakEnd)
	return s, nil
}

func (r *shiftRepository) Create(ctx context.Context, shift attendance.Shift) (attendance.Shift, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO shifts (name, start_time, end_time, break_start, break_end, grace_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + shiftColumns
	return scanShift(q.QueryRow(ctx, query,
		shift.Name, toPgTime(&shift.StartTime), toPgTime(&shift.EndTime),
		toPgTime(shift.BreakStart), toPgTime(shift.BreakEnd), shift.GraceMinutes, shift.IsActive,
	))
}

func (r *shiftRepository) GetByID(ctx context.Context, id string) (attendance.Shift, error) {
	q := GetQuerier(ctx, r.db)
	return scanShift(q.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id))
}

func (r *shiftRepository) List(ctx context.Context) ([]attendance.Shift, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+shiftColumns+` FROM shifts ORDER BY start_time, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var out []attendance.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *shiftRepository) Update(ctx context.Context, shift attendance.Shift) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE shifts SET name = $1, start_time = $2, end_time = $3, break_start = $4, break_end = $5,
			grace_minutes = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8`,
		shift.Name, toPgTime(&shift.StartTime), toPgTime(&shift.EndTime),
		toPgTime(shift.BreakStart), toPgTime(shift.BreakEnd), shift.GraceMinutes, shift.IsActive, shift.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shiftRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

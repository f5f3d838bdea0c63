package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const holidayColumns = `id, name, date, is_optional, description, created_at`

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) leave.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

func scanHoliday(row scanner) (leave.Holiday, error) {
	var h leave.Holiday
	err := row.Scan(&h.ID, &h.Name, &h.Date, &h.IsOptional, &h.Description, &h.CreatedAt)
	return h, err
}

func (r *holidayRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []leave.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *holidayRepositoryImpl) Create(ctx context.Context, h leave.Holiday) (leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	created, err := scanHoliday(q.QueryRow(ctx, `
		INSERT INTO holidays (name, date, is_optional, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+holidayColumns, h.Name, h.Date, h.IsOptional, h.Description))
	if err != nil {
		if isUniqueViolation(err, "holidays_date_key") {
			return leave.Holiday{}, leave.ErrHolidayExists
		}
		return leave.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return created, nil
}

func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	return scanHoliday(q.QueryRow(ctx, `SELECT `+holidayColumns+` FROM holidays WHERE id = $1`, id))
}

func (r *holidayRepositoryImpl) ListBetween(ctx context.Context, start, end time.Time) ([]leave.Holiday, error) {
	return r.list(ctx, `SELECT `+holidayColumns+` FROM holidays WHERE date BETWEEN $1 AND $2 ORDER BY date`, start, end)
}

func (r *holidayRepositoryImpl) ListByYear(ctx context.Context, year int) ([]leave.Holiday, error) {
	return r.list(ctx, `SELECT `+holidayColumns+` FROM holidays WHERE EXTRACT(YEAR FROM date) = $1 ORDER BY date`, year)
}

func (r *holidayRepositoryImpl) Update(ctx context.Context, h leave.Holiday) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE holidays SET name = $1, date = $2, is_optional = $3, description = $4 WHERE id = $5`,
		h.Name, h.Date, h.IsOptional, h.Description, h.ID)
	if err != nil {
		if isUniqueViolation(err, "holidays_date_key") {
			return leave.ErrHolidayExists
		}
		return fmt.Errorf("failed to update holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

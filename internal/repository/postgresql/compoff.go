package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const compOffColumns = `c.id, c.user_id, c.earned_date, c.earned_hours, c.credit_days, c.status, c.expires_on,
	c.used_date, c.reason, c.source, c.source_key, c.parent_id, c.attendance_id, c.created_at, c.updated_at, u.name`

const compOffFrom = ` FROM comp_offs c JOIN users u ON u.id = c.user_id `

type compOffRepositoryImpl struct {
	db *database.DB
}

func NewCompOffRepository(db *database.DB) compoff.CompOffRepository {
	return &compOffRepositoryImpl{db: db}
}

func scanCompOff(row scanner) (compoff.CompOff, error) {
	var c compoff.CompOff
	err := row.Scan(&c.ID, &c.UserID, &c.EarnedDate, &c.EarnedHours, &c.CreditDays, &c.Status, &c.ExpiresOn,
		&c.UsedDate, &c.Reason, &c.Source, &c.SourceKey, &c.ParentID, &c.AttendanceID, &c.CreatedAt, &c.UpdatedAt, &c.UserName)
	return c, err
}

func (r *compOffRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]compoff.CompOff, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comp-offs: %w", err)
	}
	defer rows.Close()

	var out []compoff.CompOff
	for rows.Next() {
		c, err := scanCompOff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comp-off: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *compOffRepositoryImpl) exec(ctx context.Context, query string, args ...any) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update comp-off: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *compOffRepositoryImpl) Create(ctx context.Context, c compoff.CompOff) (compoff.CompOff, error) {
	q := GetQuerier(ctx, r.db)
	if c.Status == "" {
		c.Status = compoff.StatusEarned
	}
	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO comp_offs (user_id, earned_date, earned_hours, credit_days, status, expires_on,
			used_date, reason, source, source_key, parent_id, attendance_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		c.UserID, c.EarnedDate, c.EarnedHours, c.CreditDays, c.Status, c.ExpiresOn,
		c.UsedDate, c.Reason, c.Source, c.SourceKey, c.ParentID, c.AttendanceID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "comp_offs_user_id_source_source_key_key") {
			return compoff.CompOff{}, compoff.ErrCompOffExists
		}
		return compoff.CompOff{}, fmt.Errorf("failed to create comp-off: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *compOffRepositoryImpl) GetByID(ctx context.Context, id string) (compoff.CompOff, error) {
	q := GetQuerier(ctx, r.db)
	return scanCompOff(q.QueryRow(ctx, `SELECT `+compOffColumns+compOffFrom+`WHERE c.id = $1`, id))
}

func (r *compOffRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (compoff.CompOff, error) {
	q := GetQuerier(ctx, r.db)
	return scanCompOff(q.QueryRow(ctx, `SELECT `+compOffColumns+compOffFrom+`WHERE c.id = $1 FOR UPDATE OF c`, id))
}

func (r *compOffRepositoryImpl) ListUsable(ctx context.Context, userID string, day time.Time) ([]compoff.CompOff, error) {
	return r.query(ctx, `SELECT `+compOffColumns+compOffFrom+`
		WHERE c.user_id = $1 AND c.status = 'earned' AND c.expires_on >= $2
		ORDER BY c.expires_on, c.earned_date, c.id
		FOR UPDATE OF c`, userID, day)
}

func (r *compOffRepositoryImpl) List(ctx context.Context, filter compoff.Filter) ([]compoff.CompOff, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w where
	if filter.UserID != nil {
		w.add("c.user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		w.add("c.status = $%d", *filter.Status)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM comp_offs c WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count comp-offs: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	items, err := r.query(ctx, `SELECT `+compOffColumns+compOffFrom+`WHERE `+cond+`
		ORDER BY c.earned_date DESC, c.created_at DESC `+paging, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *compOffRepositoryImpl) Consume(ctx context.Context, id string, days decimal.Decimal, usedDate time.Time) error {
	return r.exec(ctx, `
		UPDATE comp_offs SET status = 'used', credit_days = $1, used_date = $2, updated_at = NOW()
		WHERE id = $3`, days, usedDate, id)
}

func (r *compOffRepositoryImpl) Restore(ctx context.Context, id string, days decimal.Decimal) error {
	return r.exec(ctx, `
		UPDATE comp_offs SET status = 'earned', credit_days = $1, used_date = NULL, updated_at = NOW()
		WHERE id = $2`, days, id)
}

func (r *compOffRepositoryImpl) SetCredit(ctx context.Context, id string, days decimal.Decimal) error {
	return r.exec(ctx, `UPDATE comp_offs SET credit_days = $1, updated_at = NOW() WHERE id = $2`, days, id)
}

func (r *compOffRepositoryImpl) Cancel(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE comp_offs SET status = 'cancelled', updated_at = NOW() WHERE id = $1`, id)
}

func (r *compOffRepositoryImpl) ExpireBefore(ctx context.Context, day time.Time) ([]compoff.CompOff, error) {
	return r.query(ctx, `
		WITH expired AS (
			UPDATE comp_offs SET status = 'expired', updated_at = NOW()
			WHERE status = 'earned' AND expires_on < $1
			RETURNING *
		)
		SELECT `+compOffColumns+` FROM expired c JOIN users u ON u.id = c.user_id
		ORDER BY c.user_id, c.expires_on`, day)
}

func (r *compOffRepositoryImpl) SumUsable(ctx context.Context, userID string, day time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)
	var total decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(credit_days), 0) FROM comp_offs
		WHERE user_id = $1 AND status = 'earned' AND expires_on >= $2`, userID, day).Scan(&total)
	return total, err
}

func (r *compOffRepositoryImpl) CountEarnedBetween(ctx context.Context, userID string, start, end time.Time) (int64, decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)
	var (
		n     int64
		total decimal.Decimal
	)
	err := q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(credit_days), 0) FROM comp_offs
		WHERE user_id = $1 AND earned_date BETWEEN $2 AND $3 AND status <> 'cancelled'`,
		userID, start, end).Scan(&n, &total)
	return n, total, err
}

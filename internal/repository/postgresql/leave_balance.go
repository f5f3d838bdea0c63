package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const leaveBalanceColumns = `b.id, b.user_id, b.leave_type_id, b.year, b.month,
	b.total_leaves, b.used_leaves, b.carried_forward, b.lop_days, b.converted_days,
	b.created_at, b.updated_at, lt.code, lt.name, u.name`

const leaveBalanceFrom = ` FROM leave_balances b
	JOIN leave_types lt ON lt.id = b.leave_type_id
	JOIN users u ON u.id = b.user_id `

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

func scanLeaveBalance(row scanner) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year, &b.Month,
		&b.TotalLeaves, &b.UsedLeaves, &b.CarriedForward, &b.LOPDays, &b.ConvertedDays,
		&b.CreatedAt, &b.UpdatedAt, &b.LeaveTypeCode, &b.LeaveTypeName, &b.UserName)
	return b, err
}

func (r *leaveBalanceRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave balances: %w", err)
	}
	defer rows.Close()

	var out []leave.LeaveBalance
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateIfMissing implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) CreateIfMissing(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, bool, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		INSERT INTO leave_balances (user_id, leave_type_id, year, month, total_leaves, used_leaves, carried_forward, lop_days, converted_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, leave_type_id, year, month) DO NOTHING`,
		b.UserID, b.LeaveTypeID, b.Year, b.Month, b.TotalLeaves, b.UsedLeaves, b.CarriedForward, b.LOPDays, b.ConvertedDays,
	)
	if err != nil {
		return leave.LeaveBalance{}, false, fmt.Errorf("failed to create leave balance: %w", err)
	}
	stored, err := r.Get(ctx, b.UserID, b.LeaveTypeID, b.Year, b.Month)
	if err != nil {
		return leave.LeaveBalance{}, false, err
	}
	return stored, tag.RowsAffected() == 1, nil
}

// Upsert implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Upsert(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO leave_balances (user_id, leave_type_id, year, month, total_leaves, carried_forward)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, leave_type_id, year, month)
		DO UPDATE SET total_leaves = EXCLUDED.total_leaves, carried_forward = EXCLUDED.carried_forward, updated_at = NOW()`,
		b.UserID, b.LeaveTypeID, b.Year, b.Month, b.TotalLeaves, b.CarriedForward,
	)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to upsert leave balance: %w", err)
	}
	return r.Get(ctx, b.UserID, b.LeaveTypeID, b.Year, b.Month)
}

func (r *leaveBalanceRepositoryImpl) get(ctx context.Context, lock string, userID, leaveTypeID string, year, month int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeaveBalance(q.QueryRow(ctx, `SELECT `+leaveBalanceColumns+leaveBalanceFrom+`
		WHERE b.user_id = $1 AND b.leave_type_id = $2 AND b.year = $3 AND b.month = $4`+lock,
		userID, leaveTypeID, year, month))
}

func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, userID, leaveTypeID string, year, month int) (leave.LeaveBalance, error) {
	return r.get(ctx, "", userID, leaveTypeID, year, month)
}

func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, userID, leaveTypeID string, year, month int) (leave.LeaveBalance, error) {
	return r.get(ctx, " FOR UPDATE OF b", userID, leaveTypeID, year, month)
}

func (r *leaveBalanceRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeaveBalance(q.QueryRow(ctx, `SELECT `+leaveBalanceColumns+leaveBalanceFrom+`WHERE b.id = $1`, id))
}

func (r *leaveBalanceRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeaveBalance(q.QueryRow(ctx, `SELECT `+leaveBalanceColumns+leaveBalanceFrom+`WHERE b.id = $1 FOR UPDATE OF b`, id))
}

func (r *leaveBalanceRepositoryImpl) ListByUserMonth(ctx context.Context, userID string, year, month int) ([]leave.LeaveBalance, error) {
	return r.query(ctx, `SELECT `+leaveBalanceColumns+leaveBalanceFrom+`
		WHERE b.user_id = $1 AND b.year = $2 AND b.month = $3
		ORDER BY lt.name`, userID, year, month)
}

func (r *leaveBalanceRepositoryImpl) List(ctx context.Context, filter leave.BalanceFilter) ([]leave.LeaveBalance, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w where
	if filter.UserID != nil {
		w.add("b.user_id = $%d", *filter.UserID)
	}
	if filter.LeaveTypeID != nil {
		w.add("b.leave_type_id = $%d", *filter.LeaveTypeID)
	}
	if filter.Year != nil {
		w.add("b.year = $%d", *filter.Year)
	}
	if filter.Month != nil {
		w.add("b.month = $%d", *filter.Month)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_balances b WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave balances: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	rows, err := r.query(ctx, `SELECT `+leaveBalanceColumns+leaveBalanceFrom+`WHERE `+cond+`
		ORDER BY b.year DESC, b.month DESC, u.name, lt.name `+paging, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *leaveBalanceRepositoryImpl) Update(ctx context.Context, b leave.LeaveBalance) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE leave_balances SET total_leaves = $1, used_leaves = $2, carried_forward = $3,
			lop_days = $4, converted_days = $5, updated_at = NOW()
		WHERE id = $6`,
		b.TotalLeaves, b.UsedLeaves, b.CarriedForward, b.LOPDays, b.ConvertedDays, b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leaveBalanceRepositoryImpl) AddUsage(ctx context.Context, id string, usedDelta, lopDelta decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE leave_balances
		SET used_leaves = used_leaves + $1, lop_days = lop_days + $2, updated_at = NOW()
		WHERE id = $3`, usedDelta, lopDelta, id)
	if err != nil {
		return fmt.Errorf("failed to add leave usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

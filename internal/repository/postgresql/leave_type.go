package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveTypeColumns = `id, name, code, description, annual_quota, monthly_quota,
	is_carry_forward, max_carry_forward, is_paid, is_active, created_at, updated_at`

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

func scanLeaveType(row scanner) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(&lt.ID, &lt.Name, &lt.Code, &lt.Description, &lt.AnnualQuota, &lt.MonthlyQuota,
		&lt.IsCarryForward, &lt.MaxCarryForward, &lt.IsPaid, &lt.IsActive, &lt.CreatedAt, &lt.UpdatedAt)
	return lt, err
}

func (r *leaveTypeRepositoryImpl) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_types (name, code, description, annual_quota, monthly_quota,
			is_carry_forward, max_carry_forward, is_paid, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + leaveTypeColumns
	created, err := scanLeaveType(q.QueryRow(ctx, query, lt.Name, lt.Code, lt.Description, lt.AnnualQuota, lt.MonthlyQuota,
		lt.IsCarryForward, lt.MaxCarryForward, lt.IsPaid, lt.IsActive))
	if err != nil {
		if isUniqueViolation(err, "leave_types_code_key") {
			return leave.LeaveType{}, leave.ErrLeaveTypeCodeExists
		}
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}
	return created, nil
}

func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeaveType(q.QueryRow(ctx, `SELECT `+leaveTypeColumns+` FROM leave_types WHERE id = $1`, id))
}

func (r *leaveTypeRepositoryImpl) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeaveType(q.QueryRow(ctx, `SELECT `+leaveTypeColumns+` FROM leave_types WHERE code = $1`, code))
}

func (r *leaveTypeRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+leaveTypeColumns+` FROM leave_types WHERE (NOT $1 OR is_active) ORDER BY name`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave types: %w", err)
	}
	defer rows.Close()

	var out []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

func (r *leaveTypeRepositoryImpl) Update(ctx context.Context, lt leave.LeaveType) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE leave_types SET name = $1, code = $2, description = $3, annual_quota = $4, monthly_quota = $5,
			is_carry_forward = $6, max_carry_forward = $7, is_paid = $8, is_active = $9, updated_at = NOW()
		WHERE id = $10`,
		lt.Name, lt.Code, lt.Description, lt.AnnualQuota, lt.MonthlyQuota,
		lt.IsCarryForward, lt.MaxCarryForward, lt.IsPaid, lt.IsActive, lt.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "leave_types_code_key") {
			return leave.ErrLeaveTypeCodeExists
		}
		return fmt.Errorf("failed to update leave type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete deactivates the type; balances and requests keep referencing it.
func (r *leaveTypeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE leave_types SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

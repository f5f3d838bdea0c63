package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type allocationRepositoryImpl struct {
	db *database.DB
}

func NewAllocationRepository(db *database.DB) leave.AllocationRepository {
	return &allocationRepositoryImpl{db: db}
}

func (r *allocationRepositoryImpl) Create(ctx context.Context, e leave.AllocationEntry) (leave.AllocationEntry, error) {
	q := GetQuerier(ctx, r.db)
	err := q.QueryRow(ctx, `
		INSERT INTO leave_allocations (leave_request_id, user_id, source, comp_off_id, leave_balance_id, days, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		e.LeaveRequestID, e.UserID, e.Source, e.CompOffID, e.LeaveBalanceID, e.Days, e.State,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return leave.AllocationEntry{}, fmt.Errorf("failed to create allocation entry: %w", err)
	}
	return e, nil
}

// ListByRequest returns entries in creation order, comp-off rows joined with their expiry.
func (r *allocationRepositoryImpl) ListByRequest(ctx context.Context, requestID string, state leave.AllocationState) ([]leave.AllocationEntry, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT a.id, a.leave_request_id, a.user_id, a.source, a.comp_off_id, a.leave_balance_id,
			a.days, a.state, a.created_at, a.updated_at, c.expires_on
		FROM leave_allocations a
		LEFT JOIN comp_offs c ON c.id = a.comp_off_id
		WHERE a.leave_request_id = $1 AND a.state = $2
		ORDER BY a.created_at, a.id`, requestID, state)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation entries: %w", err)
	}
	defer rows.Close()

	var out []leave.AllocationEntry
	for rows.Next() {
		var e leave.AllocationEntry
		if err := rows.Scan(&e.ID, &e.LeaveRequestID, &e.UserID, &e.Source, &e.CompOffID, &e.LeaveBalanceID,
			&e.Days, &e.State, &e.CreatedAt, &e.UpdatedAt, &e.CompOffExpiresOn); err != nil {
			return nil, fmt.Errorf("failed to scan allocation entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *allocationRepositoryImpl) UpdateDays(ctx context.Context, id string, days decimal.Decimal, state leave.AllocationState) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE leave_allocations SET days = $1, state = $2, updated_at = NOW() WHERE id = $3`, days, state, id)
	if err != nil {
		return fmt.Errorf("failed to update allocation entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *allocationRepositoryImpl) ReleaseHeld(ctx context.Context, requestID string) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		UPDATE leave_allocations SET state = 'released', updated_at = NOW()
		WHERE leave_request_id = $1 AND state = 'held'`, requestID)
	return err
}

func (r *allocationRepositoryImpl) HeldCompOff(ctx context.Context, userID, excludeRequestID string) (map[string]decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT comp_off_id, SUM(days)
		FROM leave_allocations
		WHERE user_id = $1 AND state = 'held' AND source = 'comp_off'
		  AND ($2 = '' OR leave_request_id::text <> $2)
		GROUP BY comp_off_id`, userID, excludeRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum held comp-offs: %w", err)
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var id string
		var days decimal.Decimal
		if err := rows.Scan(&id, &days); err != nil {
			return nil, err
		}
		out[id] = days
	}
	return out, rows.Err()
}

func (r *allocationRepositoryImpl) MoveHeldCompOff(ctx context.Context, fromID, toID string) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		UPDATE leave_allocations SET comp_off_id = $2, updated_at = NOW()
		WHERE comp_off_id = $1 AND state = 'held'`, fromID, toID)
	return err
}

func (r *allocationRepositoryImpl) HeldPaid(ctx context.Context, balanceID, excludeRequestID string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)
	var total decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(days), 0)
		FROM leave_allocations
		WHERE leave_balance_id = $1 AND state = 'held' AND source = 'paid'
		  AND ($2 = '' OR leave_request_id::text <> $2)`, balanceID, excludeRequestID).Scan(&total)
	return total, err
}

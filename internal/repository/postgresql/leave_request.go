package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `r.id, r.user_id, r.leave_type_id, r.start_date, r.end_date, r.is_half_day, r.half_day_type,
	r.total_days, r.comp_off_days, r.paid_days, r.lop_days, r.reason, r.status,
	r.reviewed_by, r.reviewed_at, r.review_remarks, r.split_from_id, r.applied_at, r.created_at, r.updated_at,
	u.name, lt.code, lt.name`

const leaveRequestFrom = ` FROM leave_requests r
	JOIN users u ON u.id = r.user_id
	JOIN leave_types lt ON lt.id = r.leave_type_id `

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row scanner) (leave.LeaveRequest, error) {
	var r leave.LeaveRequest
	err := row.Scan(&r.ID, &r.UserID, &r.LeaveTypeID, &r.StartDate, &r.EndDate, &r.IsHalfDay, &r.HalfDayType,
		&r.TotalDays, &r.Allocation.CompOff, &r.Allocation.Paid, &r.Allocation.LOP, &r.Reason, &r.Status,
		&r.ReviewedBy, &r.ReviewedAt, &r.ReviewRemarks, &r.SplitFromID, &r.AppliedAt, &r.CreatedAt, &r.UpdatedAt,
		&r.UserName, &r.LeaveTypeCode, &r.LeaveTypeName)
	return r, err
}

func (repo *leaveRequestRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, repo.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var out []leave.LeaveRequest
	for rows.Next() {
		r, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (repo *leaveRequestRepositoryImpl) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, repo.db)
	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO leave_requests (user_id, leave_type_id, start_date, end_date, is_half_day, half_day_type,
			total_days, comp_off_days, paid_days, lop_days, reason, status, reviewed_by, reviewed_at, review_remarks, split_from_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`,
		r.UserID, r.LeaveTypeID, r.StartDate, r.EndDate, r.IsHalfDay, r.HalfDayType,
		r.TotalDays, r.Allocation.CompOff, r.Allocation.Paid, r.Allocation.LOP, r.Reason, r.Status,
		r.ReviewedBy, r.ReviewedAt, r.ReviewRemarks, r.SplitFromID,
	).Scan(&id)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return repo.GetByID(ctx, id)
}

func (repo *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, repo.db)
	return scanLeaveRequest(q.QueryRow(ctx, `SELECT `+leaveRequestColumns+leaveRequestFrom+`WHERE r.id = $1`, id))
}

func (repo *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, repo.db)
	return scanLeaveRequest(q.QueryRow(ctx, `SELECT `+leaveRequestColumns+leaveRequestFrom+`WHERE r.id = $1 FOR UPDATE OF r`, id))
}

// List returns requests overlapping [From, To] newest first.
func (repo *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, repo.db)

	var w where
	if filter.UserID != nil {
		w.add("r.user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		w.add("r.status = $%d", *filter.Status)
	}
	if filter.LeaveTypeID != nil {
		w.add("r.leave_type_id = $%d", *filter.LeaveTypeID)
	}
	if filter.From != nil {
		w.add("r.end_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("r.start_date <= $%d", *filter.To)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests r WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	rows, err := repo.query(ctx, `SELECT `+leaveRequestColumns+leaveRequestFrom+`WHERE `+cond+`
		ORDER BY r.start_date DESC, r.applied_at DESC `+paging, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update writes every mutable column.
func (repo *leaveRequestRepositoryImpl) Update(ctx context.Context, r leave.LeaveRequest) error {
	q := GetQuerier(ctx, repo.db)
	tag, err := q.Exec(ctx, `
		UPDATE leave_requests SET
			leave_type_id = $1, start_date = $2, end_date = $3, is_half_day = $4, half_day_type = $5,
			total_days = $6, comp_off_days = $7, paid_days = $8, lop_days = $9, reason = $10, status = $11,
			reviewed_by = $12, reviewed_at = $13, review_remarks = $14, updated_at = NOW()
		WHERE id = $15`,
		r.LeaveTypeID, r.StartDate, r.EndDate, r.IsHalfDay, r.HalfDayType,
		r.TotalDays, r.Allocation.CompOff, r.Allocation.Paid, r.Allocation.LOP, r.Reason, r.Status,
		r.ReviewedBy, r.ReviewedAt, r.ReviewRemarks, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (repo *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, repo.db)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE user_id = $1 AND status IN ('pending', 'approved')
			  AND start_date <= $3 AND end_date >= $2
			  AND ($4 = '' OR id::text <> $4)
		)`, userID, start, end, excludeID).Scan(&exists)
	return exists, err
}

func (repo *leaveRequestRepositoryImpl) ListApprovedCovering(ctx context.Context, userID string, day time.Time) ([]leave.LeaveRequest, error) {
	return repo.query(ctx, `SELECT `+leaveRequestColumns+leaveRequestFrom+`
		WHERE r.user_id = $1 AND r.status = 'approved' AND r.start_date <= $2 AND r.end_date >= $2
		ORDER BY r.start_date
		FOR UPDATE OF r`, userID, day)
}

func (repo *leaveRequestRepositoryImpl) ListApprovedInRange(ctx context.Context, start, end time.Time) ([]leave.LeaveRequest, error) {
	return repo.query(ctx, `SELECT `+leaveRequestColumns+leaveRequestFrom+`
		WHERE r.status = 'approved' AND r.start_date <= $2 AND r.end_date >= $1
		ORDER BY r.start_date, u.name`, start, end)
}

func (repo *leaveRequestRepositoryImpl) CountByStatus(ctx context.Context, status leave.RequestStatus) (int64, error) {
	q := GetQuerier(ctx, repo.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE status = $1`, status).Scan(&n)
	return n, err
}

func (repo *leaveRequestRepositoryImpl) CountApprovedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	q := GetQuerier(ctx, repo.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE status = 'approved' AND start_date <= $2 AND end_date >= $1`, start, end).Scan(&n)
	return n, err
}

func (repo *leaveRequestRepositoryImpl) CountReviewedOn(ctx context.Context, status leave.RequestStatus, day time.Time) (int64, error) {
	q := GetQuerier(ctx, repo.db)
	var n int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM leave_requests
		WHERE status = $1 AND reviewed_at >= $2 AND reviewed_at < $2 + INTERVAL '1 day'`, status, day).Scan(&n)
	return n, err
}

package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const wfhColumns = `w.id, w.user_id, w.date, w.reason, w.status, w.reviewed_by, w.reviewed_at, w.review_remarks,
	w.created_at, w.updated_at, u.name`

const wfhFrom = ` FROM wfh_requests w JOIN users u ON u.id = w.user_id `

type wfhRepository struct {
	db *database.DB
}

func NewWFHRepository(db *database.DB) attendance.WFHRepository {
	return &wfhRepository{db: db}
}

func scanWFH(row scanner) (attendance.WFHRequest, error) {
	var req attendance.WFHRequest
	err := row.Scan(&req.ID, &req.UserID, &req.Date, &req.Reason, &req.Status, &req.ReviewedBy, &req.ReviewedAt, &req.ReviewRemarks,
		&req.CreatedAt, &req.UpdatedAt, &req.UserName)
	return req, err
}

func (r *wfhRepository) Create(ctx context.Context, req attendance.WFHRequest) (attendance.WFHRequest, error) {
	q := GetQuerier(ctx, r.db)
	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO wfh_requests (user_id, date, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		req.UserID, req.Date, req.Reason, req.Status,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "wfh_one_live") {
			return attendance.WFHRequest{}, attendance.ErrWFHExists
		}
		return attendance.WFHRequest{}, fmt.Errorf("failed to create wfh request: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *wfhRepository) GetByID(ctx context.Context, id string) (attendance.WFHRequest, error) {
	q := GetQuerier(ctx, r.db)
	return scanWFH(q.QueryRow(ctx, `SELECT `+wfhColumns+wfhFrom+`WHERE w.id = $1`, id))
}

func (r *wfhRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.WFHRequest, error) {
	q := GetQuerier(ctx, r.db)
	return scanWFH(q.QueryRow(ctx, `SELECT `+wfhColumns+wfhFrom+`WHERE w.id = $1 FOR UPDATE OF w`, id))
}

// GetByUserAndDate returns the live (pending or approved) request, nil when none.
func (r *wfhRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.WFHRequest, error) {
	q := GetQuerier(ctx, r.db)
	req, err := scanWFH(q.QueryRow(ctx, `SELECT `+wfhColumns+wfhFrom+`
		WHERE w.user_id = $1 AND w.date = $2 AND w.status IN ('pending', 'approved')`, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wfh request: %w", err)
	}
	return &req, nil
}

func (r *wfhRepository) List(ctx context.Context, filter attendance.RequestFilter) ([]attendance.WFHRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	w := requestWhere("w", filter.UserID, filter.Status, filter.From, filter.To)
	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM wfh_requests w WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count wfh requests: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, `SELECT `+wfhColumns+wfhFrom+`WHERE `+cond+` ORDER BY w.date DESC, w.created_at DESC `+paging, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query wfh requests: %w", err)
	}
	defer rows.Close()

	var out []attendance.WFHRequest
	for rows.Next() {
		req, err := scanWFH(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan wfh request: %w", err)
		}
		out = append(out, req)
	}
	return out, total, rows.Err()
}

func (r *wfhRepository) Update(ctx context.Context, req attendance.WFHRequest) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE wfh_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3, review_remarks = $4, updated_at = NOW()
		WHERE id = $5`,
		req.Status, req.ReviewedBy, req.ReviewedAt, req.ReviewRemarks, req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wfh request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *wfhRepository) CountPending(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM wfh_requests WHERE status = 'pending'`).Scan(&n)
	return n, err
}

func (r *wfhRepository) ApprovedUserIDs(ctx context.Context, date time.Time) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT user_id FROM wfh_requests WHERE date = $1 AND status = 'approved'`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved wfh: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

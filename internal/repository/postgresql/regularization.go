package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const regularizationColumns = `r.id, r.user_id, r.date, r.request_type, r.requested_punch_in, r.requested_punch_out,
	r.reason, r.status, r.reviewed_by, r.reviewed_at, r.review_remarks, r.created_at, r.updated_at, u.name`

const regularizationFrom = ` FROM regularization_requests r JOIN users u ON u.id = r.user_id `

type regularizationRepository struct {
	db *database.DB
}

func NewRegularizationRepository(db *database.DB) attendance.RegularizationRepository {
	return &regularizationRepository{db: db}
}

func scanRegularization(row scanner) (attendance.Regularization, error) {
	var reg attendance.Regularization
	var in, out pgtype.Time
	err := row.Scan(&reg.ID, &reg.UserID, &reg.Date, &reg.RequestType, &in, &out,
		&reg.Reason, &reg.Status, &reg.ReviewedBy, &reg.ReviewedAt, &reg.ReviewRemarks, &reg.CreatedAt, &reg.UpdatedAt, &reg.UserName)
	if err != nil {
		return attendance.Regularization{}, err
	}
	reg.RequestedPunchIn = fromPgTime(in)
	reg.RequestedPunchOut = fromPgTime(out)
	return reg, nil
}

func (r *regularizationRepository) Create(ctx context.Context, req attendance.Regularization) (attendance.Regularization, error) {
	q := GetQuerier(ctx, r.db)
	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO regularization_requests (user_id, date, request_type, requested_punch_in, requested_punch_out, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		req.UserID, req.Date, req.RequestType, toPgTime(req.RequestedPunchIn), toPgTime(req.RequestedPunchOut), req.Reason, req.Status,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "regularization_one_pending") {
			return attendance.Regularization{}, attendance.ErrRegularizationPending
		}
		return attendance.Regularization{}, fmt.Errorf("failed to create regularization: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *regularizationRepository) GetByID(ctx context.Context, id string) (attendance.Regularization, error) {
	q := GetQuerier(ctx, r.db)
	return scanRegularization(q.QueryRow(ctx, `SELECT `+regularizationColumns+regularizationFrom+`WHERE r.id = $1`, id))
}

func (r *regularizationRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.Regularization, error) {
	q := GetQuerier(ctx, r.db)
	return scanRegularization(q.QueryRow(ctx, `SELECT `+regularizationColumns+regularizationFrom+`WHERE r.id = $1 FOR UPDATE OF r`, id))
}

func (r *regularizationRepository) HasPending(ctx context.Context, userID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM regularization_requests WHERE user_id = $1 AND date = $2 AND status = 'pending')`, userID, date).Scan(&exists)
	return exists, err
}

func (r *regularizationRepository) List(ctx context.Context, filter attendance.RequestFilter) ([]attendance.Regularization, int64, error) {
	q := GetQuerier(ctx, r.db)

	w := requestWhere("r", filter.UserID, filter.Status, filter.From, filter.To)
	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM regularization_requests r WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count regularizations: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, `SELECT `+regularizationColumns+regularizationFrom+`WHERE `+cond+` ORDER BY r.created_at DESC `+paging, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query regularizations: %w", err)
	}
	defer rows.Close()

	var out []attendance.Regularization
	for rows.Next() {
		reg, err := scanRegularization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan regularization: %w", err)
		}
		out = append(out, reg)
	}
	return out, total, rows.Err()
}

func (r *regularizationRepository) Update(ctx context.Context, req attendance.Regularization) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE regularization_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3, review_remarks = $4, updated_at = NOW()
		WHERE id = $5`,
		req.Status, req.ReviewedBy, req.ReviewedAt, req.ReviewRemarks, req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update regularization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *regularizationRepository) CountPending(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM regularization_requests WHERE status = 'pending'`).Scan(&n)
	return n, err
}

// requestWhere builds the shared user/status/date filter of request tables aliased as alias.
func requestWhere[S ~string](alias string, userID *string, status *S, from, to *time.Time) *where {
	w := &where{}
	if userID != nil && *userID != "" {
		w.add(alias+".user_id = $%d", *userID)
	}
	if status != nil {
		w.add(alias+".status = $%d", string(*status))
	}
	if from != nil {
		w.add(alias+".date >= $%d", *from)
	}
	if to != nil {
		w.add(alias+".date <= $%d", *to)
	}
	return w
}

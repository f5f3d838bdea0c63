package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const profileUpdateColumns = `p.id, p.user_id, p.requested_name, p.requested_email, p.changed_fields, p.reason, p.status,
	p.reviewed_by, p.reviewed_at, p.review_remarks, p.created_at, p.updated_at, u.name`

const profileUpdateFrom = ` FROM profile_update_requests p JOIN users u ON u.id = p.user_id `

type profileUpdateRepository struct {
	db *database.DB
}

func NewProfileUpdateRepository(db *database.DB) user.ProfileUpdateRepository {
	return &profileUpdateRepository{db: db}
}

func scanProfileUpdate(row scanner) (user.ProfileUpdateRequest, error) {
	var p user.ProfileUpdateRequest
	err := row.Scan(&p.ID, &p.UserID, &p.RequestedName, &p.RequestedEmail, &p.ChangedFields, &p.Reason, &p.Status,
		&p.ReviewedBy, &p.ReviewedAt, &p.ReviewRemarks, &p.CreatedAt, &p.UpdatedAt, &p.UserName)
	return p, err
}

func (r *profileUpdateRepository) Create(ctx context.Context, req user.ProfileUpdateRequest) (user.ProfileUpdateRequest, error) {
	q := GetQuerier(ctx, r.db)
	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO profile_update_requests (user_id, requested_name, requested_email, changed_fields, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		req.UserID, req.RequestedName, req.RequestedEmail, req.ChangedFields, req.Reason, req.Status,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "profile_update_one_pending") {
			return user.ProfileUpdateRequest{}, user.ErrProfileUpdatePending
		}
		return user.ProfileUpdateRequest{}, fmt.Errorf("failed to create profile update request: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *profileUpdateRepository) GetByID(ctx context.Context, id string) (user.ProfileUpdateRequest, error) {
	q := GetQuerier(ctx, r.db)
	return scanProfileUpdate(q.QueryRow(ctx, `SELECT `+profileUpdateColumns+profileUpdateFrom+`WHERE p.id = $1`, id))
}

func (r *profileUpdateRepository) GetByIDForUpdate(ctx context.Context, id string) (user.ProfileUpdateRequest, error) {
	q := GetQuerier(ctx, r.db)
	return scanProfileUpdate(q.QueryRow(ctx, `SELECT `+profileUpdateColumns+profileUpdateFrom+`WHERE p.id = $1 FOR UPDATE OF p`, id))
}

func (r *profileUpdateRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profile_update_requests WHERE user_id = $1 AND status = 'pending')`, userID).Scan(&exists)
	return exists, err
}

func (r *profileUpdateRepository) List(ctx context.Context, filter user.ProfileUpdateFilter) ([]user.ProfileUpdateRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	w := &where{}
	if filter.UserID != nil && *filter.UserID != "" {
		w.add("p.user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		w.add("p.status = $%d", string(*filter.Status))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM profile_update_requests p WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profile update requests: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, `SELECT `+profileUpdateColumns+profileUpdateFrom+`WHERE `+cond+` ORDER BY p.created_at DESC `+paging, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query profile update requests: %w", err)
	}
	defer rows.Close()

	var out []user.ProfileUpdateRequest
	for rows.Next() {
		p, err := scanProfileUpdate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile update request: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *profileUpdateRepository) Update(ctx context.Context, req user.ProfileUpdateRequest) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE profile_update_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3, review_remarks = $4, updated_at = NOW()
		WHERE id = $5`,
		req.Status, req.ReviewedBy, req.ReviewedAt, req.ReviewRemarks, req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile update request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type activityRepositoryImpl struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) activity.Repository {
	return &activityRepositoryImpl{db: db}
}

func (r *activityRepositoryImpl) Create(ctx context.Context, e activity.Entry) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO activity_logs (actor_id, action, entity_type, entity_id, description, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ActorID, e.Action, e.EntityType, e.EntityID, e.Description, e.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

func (r *activityRepositoryImpl) List(ctx context.Context, filter activity.Filter) ([]activity.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w where
	if filter.ActorID != nil {
		w.add("l.actor_id = $%d", *filter.ActorID)
	}
	if filter.Action != nil {
		w.add("l.action = $%d", *filter.Action)
	}
	if filter.EntityType != nil {
		w.add("l.entity_type = $%d", *filter.EntityType)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs l WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	cond := w.String()
	paging := w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, `
		SELECT l.id, l.actor_id, l.action, l.entity_type, l.entity_id, l.description, l.ip_address, l.created_at, u.name
		FROM activity_logs l
		LEFT JOIN users u ON u.id = l.actor_id
		WHERE `+cond+`
		ORDER BY l.created_at DESC `+paging, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	var out []activity.Entry
	for rows.Next() {
		var e activity.Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID,
			&e.Description, &e.IPAddress, &e.CreatedAt, &e.ActorName); err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity log: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

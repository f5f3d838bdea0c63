package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `n.id, n.recipient_id, n.sender_id, s.name, n.type, n.title, n.message,
	n.subject_type, n.subject_id, n.data, n.read_at, n.created_at`

const notificationFrom = ` FROM notifications n LEFT JOIN users s ON s.id = n.sender_id `

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

func scanNotification(row scanner) (notification.Notification, error) {
	var (
		n           notification.Notification
		subjectKind *string
		subjectID   *string
		data        []byte
	)
	err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.SenderName, &n.Type, &n.Title, &n.Message,
		&subjectKind, &subjectID, &data, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return n, err
	}
	if subjectKind != nil && subjectID != nil {
		n.Subject = &notification.Subject{Kind: *subjectKind, ID: *subjectID}
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return n, fmt.Errorf("failed to decode notification data: %w", err)
		}
	}
	return n, nil
}

// Insert writes every notification through one pgx batch.
func (r *notificationRepositoryImpl) Insert(ctx context.Context, notifications []notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	for i := range notifications {
		n := &notifications[i]
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		data := n.Data
		if data == nil {
			data = map[string]any{}
		}
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode notification data: %w", err)
		}
		var subjectKind, subjectID *string
		if n.Subject != nil {
			subjectKind, subjectID = &n.Subject.Kind, &n.Subject.ID
		}
		batch.Queue(`
			INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, subject_type, subject_id, data, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			n.ID, n.RecipientID, n.SenderID, n.Type, n.Title, n.Message, subjectKind, subjectID, payload, n.CreatedAt)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()
	for range notifications {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}
	return nil
}

func (r *notificationRepositoryImpl) List(ctx context.Context, filter notification.Filter) ([]notification.Notification, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w where
	w.add("n.recipient_id = $%d", filter.RecipientID)
	if filter.UnreadOnly {
		w.conds = append(w.conds, "n.read_at IS NULL")
	}
	if filter.Type != nil {
		w.add("n.type = $%d", *filter.Type)
	}
	if filter.Subject != nil {
		w.add("n.subject_type = $%d", filter.Subject.Kind)
		w.add("n.subject_id = $%d", filter.Subject.ID)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications n WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	cond := w.String()
	rows, err := q.Query(ctx, `SELECT `+notificationColumns+notificationFrom+`WHERE `+cond+`
		ORDER BY n.created_at DESC, n.id `+w.page(filter.Page, filter.Limit), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *notificationRepositoryImpl) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read_at IS NULL`, recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, recipientID string, ids []string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)
	query := `UPDATE notifications SET read_at = $2 WHERE recipient_id = $1 AND read_at IS NULL`
	args := []any{recipientID, at}
	if ids != nil {
		query += ` AND id = ANY($3)`
		args = append(args, ids)
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepositoryImpl) Delete(ctx context.Context, recipientID, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepositoryImpl) DeleteRead(ctx context.Context, recipientID string) (int64, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE recipient_id = $1 AND read_at IS NOT NULL`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanPreference(row scanner) (notification.Preference, error) {
	var p notification.Preference
	err := row.Scan(&p.UserID, &p.Type, &p.Email, &p.InApp, &p.UpdatedAt)
	return p, err
}

func (r *notificationRepositoryImpl) ListPreferences(ctx context.Context, userID string) ([]notification.Preference, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT user_id, type, email_enabled, in_app_enabled, updated_at
		FROM notification_preferences WHERE user_id = $1 ORDER BY type`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification preferences: %w", err)
	}
	defer rows.Close()

	var out []notification.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification preference: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPreference falls back to the enabled defaults when the user never changed t.
func (r *notificationRepositoryImpl) GetPreference(ctx context.Context, userID string, t notification.Type) (notification.Preference, error) {
	q := GetQuerier(ctx, r.db)
	p, err := scanPreference(q.QueryRow(ctx, `
		SELECT user_id, type, email_enabled, in_app_enabled, updated_at
		FROM notification_preferences WHERE user_id = $1 AND type = $2`, userID, t))
	if errors.Is(err, pgx.ErrNoRows) {
		return notification.DefaultPreference(userID, t), nil
	}
	if err != nil {
		return notification.Preference{}, fmt.Errorf("failed to get notification preference: %w", err)
	}
	return p, nil
}

func (r *notificationRepositoryImpl) UpsertPreference(ctx context.Context, pref notification.Preference) (notification.Preference, error) {
	q := GetQuerier(ctx, r.db)
	p, err := scanPreference(q.QueryRow(ctx, `
		INSERT INTO notification_preferences (user_id, type, email_enabled, in_app_enabled, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, type)
		DO UPDATE SET email_enabled = EXCLUDED.email_enabled, in_app_enabled = EXCLUDED.in_app_enabled, updated_at = NOW()
		RETURNING user_id, type, email_enabled, in_app_enabled, updated_at`,
		pref.UserID, pref.Type, pref.Email, pref.InApp))
	if err != nil {
		return notification.Preference{}, fmt.Errorf("failed to upsert notification preference: %w", err)
	}
	return p, nil
}

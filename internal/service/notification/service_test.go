package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu       sync.Mutex
	rows     []notification.Notification
	prefs    map[notification.Type]notification.Preference
	lastList notification.Filter
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{prefs: map[notification.Type]notification.Preference{}}
}

func (r *memoryRepo) Insert(ctx context.Context, ns []notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, ns...)
	return nil
}

func (r *memoryRepo) inserted() []notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Notification(nil), r.rows...)
}

func (r *memoryRepo) List(ctx context.Context, f notification.Filter) ([]notification.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = f
	var out []notification.Notification
	for _, n := range r.rows {
		if n.RecipientID == f.RecipientID && (!f.UnreadOnly || !n.IsRead()) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	rows, _, _ := r.List(ctx, notification.Filter{RecipientID: recipientID, UnreadOnly: true})
	return int64(len(rows)), nil
}

func (r *memoryRepo) MarkRead(ctx context.Context, recipientID string, ids []string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range r.rows {
		row := &r.rows[i]
		if row.RecipientID != recipientID || row.IsRead() || (ids != nil && !want[row.ID]) {
			continue
		}
		row.ReadAt = &at
		n++
	}
	return n, nil
}

func (r *memoryRepo) Delete(ctx context.Context, recipientID, id string) error {
	return notification.ErrNotificationNotFound
}

func (r *memoryRepo) DeleteRead(ctx context.Context, recipientID string) (int64, error) {
	return 0, nil
}

func (r *memoryRepo) ListPreferences(ctx context.Context, userID string) ([]notification.Preference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Preference
	for _, p := range r.prefs {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) GetPreference(ctx context.Context, userID string, t notification.Type) (notification.Preference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.prefs[t]; ok {
		return p, nil
	}
	return notification.DefaultPreference(userID, t), nil
}

func (r *memoryRepo) UpsertPreference(ctx context.Context, p notification.Preference) (notification.Preference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[p.Type] = p
	return p, nil
}

func TestNotify_WrittenOnStopAndPushedToStream(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewNotificationService(repo, sse.NewHub(0), Options{Workers: 1, FlushInterval: time.Hour})

	events, cleanup, err := svc.Subscribe("u1")
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, svc.Notify(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1",
		Type:        notification.TypeLeaveApproved,
		Title:       "Leave approved",
		Message:     "2 days",
		Subject:     &notification.Subject{Kind: notification.SubjectLeaveRequest, ID: "lr-1"},
	}))
	svc.Stop()

	rows := repo.inserted()
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].ID)
	assert.Equal(t, notification.SubjectLeaveRequest, rows[0].Subject.Kind)

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		resp, ok := ev.Data.(notification.NotificationResponse)
		require.True(t, ok)
		assert.Equal(t, "Leave approved", resp.Title)
		assert.False(t, resp.IsRead)
	case <-time.After(time.Second):
		t.Fatal("no event pushed")
	}
}

func TestNotify_BatchSizeTriggersWrite(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewNotificationService(repo, nil, Options{Workers: 1, BatchSize: 2, FlushInterval: time.Hour})
	defer svc.Stop()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.Notify(ctx, notification.CreateNotificationRequest{RecipientID: "u1", Title: "hello"}))
	}

	assert.Eventually(t, func() bool { return len(repo.inserted()) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, notification.TypeSystem, repo.inserted()[0].Type)
}

func TestNotify_InAppMutedIsSkipped(t *testing.T) {
	repo := newMemoryRepo()
	repo.prefs[notification.TypeWFHApproved] = notification.Preference{Type: notification.TypeWFHApproved, Email: true}
	svc := NewNotificationService(repo, nil, Options{Workers: 1, FlushInterval: time.Hour})

	require.NoError(t, svc.Notify(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1", Type: notification.TypeWFHApproved, Title: "WFH approved",
	}))
	svc.Stop()
	svc.Stop()

	assert.Empty(t, repo.inserted())
}

func TestNotify_RejectsInvalidRequest(t *testing.T) {
	svc := NewNotificationService(newMemoryRepo(), nil, Options{Workers: 1})
	defer svc.Stop()

	err := svc.Notify(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1", Type: "bogus", Title: "x",
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "type")
}

func TestNotify_AfterStopWritesInline(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewNotificationService(repo, nil, Options{Workers: 1})
	svc.Stop()

	require.NoError(t, svc.Notify(context.Background(), notification.CreateNotificationRequest{RecipientID: "u1", Title: "late"}))

	assert.Len(t, repo.inserted(), 1)
	_, _, err := svc.Subscribe("u1")
	assert.ErrorIs(t, err, notification.ErrShuttingDown)
}

func TestListAndMarkRead(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewNotificationService(repo, nil, Options{Workers: 1})
	defer svc.Stop()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, []notification.Notification{
		{ID: "11111111-1111-4111-8111-111111111111", RecipientID: "u1", Type: notification.TypeSystem, Title: "a"},
		{ID: "22222222-2222-4222-8222-222222222222", RecipientID: "u1", Type: notification.TypeSystem, Title: "b"},
		{ID: "33333333-3333-4333-8333-333333333333", RecipientID: "u2", Type: notification.TypeSystem, Title: "c"},
	}))

	list, err := svc.List(ctx, "u1", notification.ListNotificationsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, int64(2), list.UnreadCount)
	assert.Equal(t, 1, repo.lastList.Page)
	assert.Equal(t, 20, repo.lastList.Limit)

	n, err := svc.MarkRead(ctx, "u1", notification.MarkReadRequest{IDs: []string{"11111111-1111-4111-8111-111111111111"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unread, err := svc.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	_, err = svc.List(ctx, "u1", notification.ListNotificationsRequest{Type: "nope"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestPreferences(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewNotificationService(repo, nil, Options{Workers: 1})
	defer svc.Stop()
	ctx := context.Background()

	assert.True(t, svc.EmailEnabled(ctx, "u1", notification.TypeLeaveApproved))

	off := false
	saved, err := svc.UpdatePreference(ctx, "u1", notification.UpdatePreferenceRequest{
		Type: notification.TypeLeaveApproved, Email: &off,
	})
	require.NoError(t, err)
	assert.False(t, saved.Email)
	assert.True(t, saved.InApp)
	assert.False(t, svc.EmailEnabled(ctx, "u1", notification.TypeLeaveApproved))

	prefs, err := svc.Preferences(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, prefs, len(notification.AllTypes()))
	for _, p := range prefs {
		if p.Type == notification.TypeLeaveApproved {
			assert.False(t, p.Email)
		} else {
			assert.True(t, p.Email)
		}
	}

	_, err = svc.UpdatePreference(ctx, "u1", notification.UpdatePreferenceRequest{Type: notification.TypeLeaveApproved})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

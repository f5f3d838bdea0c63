package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const eventNotification = "notification"

const (
	defaultPage  = 1
	defaultLimit = 20
)

// Options tunes the background writers. Zero fields take defaults.
type Options struct {
	Workers       int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 1000
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 5 * time.Second
	}
	return o
}

type notificationServiceImpl struct {
	repo notification.NotificationRepository
	hub  *sse.Hub
	opts Options
	now  func() time.Time

	queue    chan notification.Notification
	stop     context.CancelFunc
	group    *errgroup.Group
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

func NewNotificationService(repo notification.NotificationRepository, hub *sse.Hub, opts Options) notification.NotificationService {
	opts = opts.withDefaults()
	if hub == nil {
		hub = sse.NewHub(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	s := &notificationServiceImpl{
		repo:  repo,
		hub:   hub,
		opts:  opts,
		now:   time.Now,
		queue: make(chan notification.Notification, opts.QueueSize),
		stop:  cancel,
		group: group,
	}
	for i := 0; i < opts.Workers; i++ {
		group.Go(func() error { return s.dispatch(ctx, i) })
	}

	slog.Info("Notification dispatcher started", "workers", opts.Workers, "batch_size", opts.BatchSize, "flush_interval", opts.FlushInterval)
	return s
}

func (s *notificationServiceImpl) Notify(ctx context.Context, req notification.CreateNotificationRequest) error {
	if req.Type == "" {
		req.Type = notification.TypeSystem
	}
	if err := req.Validate(); err != nil {
		return err
	}

	pref, err := s.repo.GetPreference(ctx, req.RecipientID, req.Type)
	if err != nil {
		return err
	}
	if !pref.InApp {
		return nil
	}

	n := notification.Notification{
		ID:          uuid.NewString(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Subject:     req.Subject,
		Data:        req.Data,
		CreatedAt:   s.now(),
	}

	if s.enqueue(n) {
		return nil
	}
	return s.deliver(ctx, []notification.Notification{n})
}

// enqueue hands n to the dispatchers. It reports false after Stop or when
// the queue is full, in which case the caller writes inline.
func (s *notificationServiceImpl) enqueue(n notification.Notification) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return false
	}
	select {
	case s.queue <- n:
		return true
	default:
		slog.Warn("notification queue full, writing inline", "recipient_id", n.RecipientID, "type", n.Type)
		return false
	}
}

// NotifyMany logs and skips individual failures so one bad recipient does not block the rest.
func (s *notificationServiceImpl) NotifyMany(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.Notify(ctx, req); err != nil {
			slog.Error("failed to queue notification", "recipient_id", req.RecipientID, "type", req.Type, "error", err)
		}
	}
	return nil
}

func (s *notificationServiceImpl) List(ctx context.Context, userID string, req notification.ListNotificationsRequest) (notification.ListNotificationsResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.ListNotificationsResponse{}, err
	}
	if req.Page < 1 {
		req.Page = defaultPage
	}
	if req.Limit == 0 {
		req.Limit = defaultLimit
	}

	filter := notification.Filter{
		RecipientID: userID,
		UnreadOnly:  req.UnreadOnly,
		Page:        req.Page,
		Limit:       req.Limit,
	}
	if req.Type != "" {
		t := notification.Type(req.Type)
		filter.Type = &t
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return notification.ListNotificationsResponse{}, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return notification.ListNotificationsResponse{}, err
	}

	items := make([]notification.NotificationResponse, len(rows))
	for i, n := range rows {
		items[i] = notification.ToResponse(n)
	}
	return notification.ListNotificationsResponse{
		Notifications: items,
		Total:         total,
		UnreadCount:   unread,
		Page:          req.Page,
		Limit:         req.Limit,
	}, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID string, req notification.MarkReadRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.repo.MarkRead(ctx, userID, req.IDs, s.now())
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkRead(ctx, userID, nil, s.now())
}

func (s *notificationServiceImpl) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *notificationServiceImpl) ClearRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteRead(ctx, userID)
}

func (s *notificationServiceImpl) EmailEnabled(ctx context.Context, userID string, t notification.Type) bool {
	pref, err := s.repo.GetPreference(ctx, userID, t)
	if err != nil {
		slog.Warn("failed to load notification preference", "user_id", userID, "type", t, "error", err)
		return true
	}
	return pref.Email
}

// Preferences lists every type, filling the ones without a stored row with defaults.
func (s *notificationServiceImpl) Preferences(ctx context.Context, userID string) ([]notification.PreferenceResponse, error) {
	stored, err := s.repo.ListPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	byType := make(map[notification.Type]notification.Preference, len(stored))
	for _, p := range stored {
		byType[p.Type] = p
	}

	types := notification.AllTypes()
	out := make([]notification.PreferenceResponse, 0, len(types))
	for _, t := range types {
		p, ok := byType[t]
		if !ok {
			p = notification.DefaultPreference(userID, t)
		}
		out = append(out, notification.ToPreferenceResponse(p))
	}
	return out, nil
}

func (s *notificationServiceImpl) UpdatePreference(ctx context.Context, userID string, req notification.UpdatePreferenceRequest) (notification.PreferenceResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.PreferenceResponse{}, err
	}
	pref, err := s.repo.GetPreference(ctx, userID, req.Type)
	if err != nil {
		return notification.PreferenceResponse{}, err
	}
	if req.Email != nil {
		pref.Email = *req.Email
	}
	if req.InApp != nil {
		pref.InApp = *req.InApp
	}
	pref.UserID = userID
	pref.Type = req.Type

	saved, err := s.repo.UpsertPreference(ctx, pref)
	if err != nil {
		return notification.PreferenceResponse{}, err
	}
	return notification.ToPreferenceResponse(saved), nil
}

func (s *notificationServiceImpl) Subscribe(userID string) (<-chan sse.Event, func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return nil, nil, notification.ErrShuttingDown
	}
	return s.hub.Subscribe(userID)
}

func (s *notificationServiceImpl) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.stop()
		if err := s.group.Wait(); err != nil {
			slog.Error("notification dispatcher stopped with error", "error", err)
		}
		slog.Info("Notification dispatcher stopped")
	})
}

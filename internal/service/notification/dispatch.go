package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

const flushTimeout = 30 * time.Second

// dispatch collects queued notifications and writes them once BatchSize
// is reached or FlushInterval passes. When ctx ends it drains whatever is
// still queued and writes it before returning.
func (s *notificationServiceImpl) dispatch(ctx context.Context, worker int) error {
	pending := make([]notification.Notification, 0, s.opts.BatchSize)
	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case n := <-s.queue:
			pending = append(pending, n)
			if len(pending) >= s.opts.BatchSize {
				pending = s.flush(worker, pending)
			}
		case <-ticker.C:
			pending = s.flush(worker, pending)
		case <-ctx.Done():
			for {
				select {
				case n := <-s.queue:
					pending = append(pending, n)
				default:
					s.flush(worker, pending)
					return nil
				}
			}
		}
	}
}

// flush writes pending and returns it emptied for reuse.
func (s *notificationServiceImpl) flush(worker int, pending []notification.Notification) []notification.Notification {
	if len(pending) == 0 {
		return pending
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := s.deliver(ctx, pending); err != nil {
		slog.Error("failed to write notification batch", "worker", worker, "count", len(pending), "error", err)
	} else {
		slog.Debug("notification batch written", "worker", worker, "count", len(pending))
	}
	return pending[:0]
}

// deliver stores ns and pushes each one to the recipient's open streams.
func (s *notificationServiceImpl) deliver(ctx context.Context, ns []notification.Notification) error {
	if err := s.repo.Insert(ctx, ns); err != nil {
		return err
	}
	for _, n := range ns {
		s.hub.Publish(n.RecipientID, sse.Event{
			ID:    n.ID,
			Event: eventNotification,
			Data:  notification.ToResponse(n),
		})
	}
	return nil
}

package compoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type compOffServiceImpl struct {
	compoff.CompOffRepository
	userRepo            user.UserRepository
	tx                  database.Transactor
	activity            activity.Logger
	notificationService notification.NotificationService
	expiryDays          int
}

func NewCompOffService(
	repo compoff.CompOffRepository,
	userRepo user.UserRepository,
	tx database.Transactor,
	activityLogger activity.Logger,
	notificationService notification.NotificationService,
	expiryDays int,
) compoff.CompOffService {
	if expiryDays <= 0 {
		expiryDays = 90
	}
	return &compOffServiceImpl{
		CompOffRepository:   repo,
		userRepo:            userRepo,
		tx:                  tx,
		activity:            activityLogger,
		notificationService: notificationService,
		expiryDays:          expiryDays,
	}
}

// ListMine implements compoff.CompOffService.
func (s *compOffServiceImpl) ListMine(ctx context.Context, userID string, today time.Time) (compoff.MyCompOffResponse, error) {
	rows, _, err := s.CompOffRepository.List(ctx, compoff.Filter{UserID: &userID, Page: 1, Limit: 1000})
	if err != nil {
		return compoff.MyCompOffResponse{}, fmt.Errorf("failed to list comp-offs: %w", err)
	}
	available, err := s.CompOffRepository.SumUsable(ctx, userID, today)
	if err != nil {
		return compoff.MyCompOffResponse{}, fmt.Errorf("failed to sum usable comp-offs: %w", err)
	}

	resp := compoff.MyCompOffResponse{Available: available, CompOffs: make([]compoff.CompOffResponse, 0, len(rows))}
	for _, c := range rows {
		resp.CompOffs = append(resp.CompOffs, compoff.ToResponse(c))
	}
	return resp, nil
}

// List implements compoff.CompOffService.
func (s *compOffServiceImpl) List(ctx context.Context, filter compoff.Filter) (compoff.ListCompOffResponse, error) {
	filter.Normalize()
	rows, total, err := s.CompOffRepository.List(ctx, filter)
	if err != nil {
		return compoff.ListCompOffResponse{}, fmt.Errorf("failed to list comp-offs: %w", err)
	}

	resp := compoff.ListCompOffResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		CompOffs:   make([]compoff.CompOffResponse, 0, len(rows)),
	}
	for _, c := range rows {
		resp.CompOffs = append(resp.CompOffs, compoff.ToResponse(c))
	}
	return resp, nil
}

// Grant implements compoff.CompOffService.
func (s *compOffServiceImpl) Grant(ctx context.Context, actorID string, req compoff.GrantRequest) (compoff.CompOffResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compoff.CompOffResponse{}, user.ErrUserNotFound
		}
		return compoff.CompOffResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	created, _, err := s.Earn(ctx, compoff.CompOff{
		UserID:      req.UserID,
		EarnedDate:  req.Earned,
		EarnedHours: req.EarnedHours,
		CreditDays:  req.CreditDays,
		Reason:      req.Reason,
		Source:      compoff.SourceManual,
		SourceKey:   uuid.NewString(),
	})
	if err != nil {
		return compoff.CompOffResponse{}, err
	}

	s.activity.Log(ctx, &actorID, activity.ActionCompOffGranted, "comp_off", created.ID,
		fmt.Sprintf("Granted %s comp-off day(s) earned on %s", created.CreditDays, created.EarnedDate.Format("2006-01-02")))
	s.notifyEarned(ctx, created)

	return compoff.ToResponse(created), nil
}

// Cancel implements compoff.CompOffService.
func (s *compOffServiceImpl) Cancel(ctx context.Context, actorID, id string) (compoff.CompOffResponse, error) {
	var cancelled compoff.CompOff
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		c, err := s.CompOffRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return compoff.ErrCompOffNotFound
			}
			return fmt.Errorf("failed to get comp-off: %w", err)
		}
		if c.Status != compoff.StatusEarned {
			return compoff.ErrCompOffNotEarned
		}
		if err := s.CompOffRepository.Cancel(txCtx, id); err != nil {
			return fmt.Errorf("failed to cancel comp-off: %w", err)
		}
		c.Status = compoff.StatusCancelled
		cancelled = c
		return nil
	})
	if err != nil {
		return compoff.CompOffResponse{}, err
	}

	s.activity.Log(ctx, &actorID, activity.ActionCompOffCancelled, "comp_off", id, "Comp-off cancelled")
	return compoff.ToResponse(cancelled), nil
}

// Earn creates an earned credit. A credit that already exists for the same
// (user, source, source key) is not created again and created is false.
func (s *compOffServiceImpl) Earn(ctx context.Context, c compoff.CompOff) (compoff.CompOff, bool, error) {
	if !c.CreditDays.IsPositive() {
		return compoff.CompOff{}, false, compoff.ErrInvalidCreditAmount
	}
	c.Status = compoff.StatusEarned
	if c.ExpiresOn.IsZero() {
		c.ExpiresOn = c.EarnedDate.AddDate(0, 0, s.expiryDays)
	}

	created, err := s.CompOffRepository.Create(ctx, c)
	if errors.Is(err, compoff.ErrCompOffExists) {
		slog.Info("comp-off already earned", "user_id", c.UserID, "source", c.Source, "source_key", c.SourceKey)
		return c, false, nil
	}
	if err != nil {
		return compoff.CompOff{}, false, fmt.Errorf("failed to create comp-off: %w", err)
	}
	return created, true, nil
}

// Usable implements compoff.CompOffService.
func (s *compOffServiceImpl) Usable(ctx context.Context, userID string, day time.Time) ([]compoff.CompOff, error) {
	rows, err := s.CompOffRepository.ListUsable(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list usable comp-offs: %w", err)
	}
	return rows, nil
}

// Consume marks draw.Days of a row used. A partial draw leaves the consumed
// part on the original row and moves the remainder to a new earned row,
// which is returned.
func (s *compOffServiceImpl) Consume(ctx context.Context, draw compoff.Draw, usedDate time.Time) (*compoff.CompOff, error) {
	c, err := s.CompOffRepository.GetByIDForUpdate(ctx, draw.CompOffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, compoff.ErrCompOffNotFound
		}
		return nil, fmt.Errorf("failed to get comp-off: %w", err)
	}
	if c.Status != compoff.StatusEarned {
		return nil, compoff.ErrCompOffNotEarned
	}
	if !draw.Days.IsPositive() {
		return nil, compoff.ErrInvalidCreditAmount
	}
	if draw.Days.GreaterThan(c.CreditDays) {
		return nil, compoff.ErrSplitExceedsCredit
	}

	remainder := c.CreditDays.Sub(draw.Days)
	if err := s.CompOffRepository.Consume(ctx, c.ID, draw.Days, usedDate); err != nil {
		return nil, fmt.Errorf("failed to consume comp-off: %w", err)
	}
	if !remainder.IsPositive() {
		return nil, nil
	}

	rest, err := s.CompOffRepository.Create(ctx, s.child(c, remainder, compoff.SourceSplitRemnant))
	if err != nil {
		return nil, fmt.Errorf("failed to create comp-off remainder: %w", err)
	}
	return &rest, nil
}

// Restore returns draw.Days of a used row. A partial return keeps the rest
// used on the original row and creates a new earned row for the returned part.
func (s *compOffServiceImpl) Restore(ctx context.Context, draw compoff.Draw) error {
	c, err := s.CompOffRepository.GetByIDForUpdate(ctx, draw.CompOffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compoff.ErrCompOffNotFound
		}
		return fmt.Errorf("failed to get comp-off: %w", err)
	}
	if !draw.Days.IsPositive() {
		return nil
	}
	if c.Status != compoff.StatusUsed {
		slog.Warn("restoring comp-off that is not used", "comp_off_id", c.ID, "status", c.Status)
		return compoff.ErrCompOffNotUsed
	}
	if draw.Days.GreaterThan(c.CreditDays) {
		return compoff.ErrSplitExceedsCredit
	}

	if draw.Days.Equal(c.CreditDays) {
		if err := s.CompOffRepository.Restore(ctx, c.ID, c.CreditDays); err != nil {
			return fmt.Errorf("failed to restore comp-off: %w", err)
		}
		return nil
	}

	if err := s.CompOffRepository.SetCredit(ctx, c.ID, c.CreditDays.Sub(draw.Days)); err != nil {
		return fmt.Errorf("failed to shrink comp-off: %w", err)
	}
	if _, err := s.CompOffRepository.Create(ctx, s.child(c, draw.Days, compoff.SourceRestoreRemain)); err != nil {
		return fmt.Errorf("failed to create restored comp-off: %w", err)
	}
	return nil
}

// ExpireBefore implements compoff.CompOffService.
func (s *compOffServiceImpl) ExpireBefore(ctx context.Context, day time.Time) ([]compoff.CompOff, error) {
	expired, err := s.CompOffRepository.ExpireBefore(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to expire comp-offs: %w", err)
	}
	slog.Info("comp-offs expired", "before", day.Format("2006-01-02"), "count", len(expired))
	return expired, nil
}

// child derives an earned row from parent carrying days of its credit.
func (s *compOffServiceImpl) child(parent compoff.CompOff, days decimal.Decimal, source compoff.Source) compoff.CompOff {
	hours := decimal.Zero
	if parent.CreditDays.IsPositive() {
		hours = parent.EarnedHours.Mul(days).Div(parent.CreditDays).Round(2)
	}
	parentID := parent.ID
	return compoff.CompOff{
		UserID:       parent.UserID,
		EarnedDate:   parent.EarnedDate,
		EarnedHours:  hours,
		CreditDays:   days,
		Status:       compoff.StatusEarned,
		ExpiresOn:    parent.ExpiresOn,
		Reason:       parent.Reason,
		Source:       source,
		SourceKey:    uuid.NewString(),
		ParentID:     &parentID,
		AttendanceID: parent.AttendanceID,
	}
}

func (s *compOffServiceImpl) notifyEarned(ctx context.Context, c compoff.CompOff) {
	if s.notificationService == nil {
		return
	}
	_ = s.notificationService.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: c.UserID,
		Type:        notification.TypeCompOffEarned,
		Title:       "Comp-off credited",
		Message: fmt.Sprintf("%s comp-off day(s) were credited for %s, valid until %s",
			c.CreditDays, c.EarnedDate.Format("2006-01-02"), c.ExpiresOn.Format("2006-01-02")),
		Subject: &notification.Subject{Kind: notification.SubjectCompOff, ID: c.ID},
		Data:    map[string]any{"credit_days": c.CreditDays.String()},
	})
}

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

type ProfileUpdateServiceImpl struct {
	user.ProfileUpdateRepository
	users               *UserServiceImpl
	notificationService notification.NotificationService
}

func NewProfileUpdateService(repo user.ProfileUpdateRepository, users *UserServiceImpl, notificationService notification.NotificationService) *ProfileUpdateServiceImpl {
	return &ProfileUpdateServiceImpl{
		ProfileUpdateRepository: repo,
		users:                   users,
		notificationService:     notificationService,
	}
}

// Submit records the fields that differ from the current profile. Only one
// request per user may be pending.
func (p *ProfileUpdateServiceImpl) Submit(ctx context.Context, userID string, req user.SubmitProfileUpdateRequest) (user.ProfileUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return user.ProfileUpdateResponse{}, err
	}
	current, err := p.users.get(ctx, userID)
	if err != nil {
		return user.ProfileUpdateResponse{}, err
	}

	pending, err := p.ProfileUpdateRepository.HasPending(ctx, userID)
	if err != nil {
		return user.ProfileUpdateResponse{}, fmt.Errorf("failed to check pending profile update: %w", err)
	}
	if pending {
		return user.ProfileUpdateResponse{}, user.ErrProfileUpdatePending
	}

	update := user.ProfileUpdateRequest{
		UserID: userID,
		Reason: req.Reason,
		Status: user.ProfileUpdatePending,
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != current.Name {
		name := strings.TrimSpace(*req.Name)
		update.RequestedName = &name
		update.ChangedFields = append(update.ChangedFields, "name")
	}
	if req.Email != nil && (current.Email == nil || !strings.EqualFold(*req.Email, *current.Email)) {
		if err := p.users.checkUnique(ctx, current.Mobile, req.Email, userID); err != nil {
			return user.ProfileUpdateResponse{}, err
		}
		update.RequestedEmail = req.Email
		update.ChangedFields = append(update.ChangedFields, "email")
	}
	if len(update.ChangedFields) == 0 {
		return user.ProfileUpdateResponse{}, user.ErrProfileUpdateNoChanges
	}

	created, err := p.ProfileUpdateRepository.Create(ctx, update)
	if err != nil {
		if errors.Is(err, user.ErrProfileUpdatePending) {
			return user.ProfileUpdateResponse{}, err
		}
		return user.ProfileUpdateResponse{}, fmt.Errorf("failed to create profile update request: %w", err)
	}

	fields := strings.Join(created.ChangedFields, ", ")
	p.users.activity.Log(ctx, &userID, activity.ActionProfileUpdateRequested, "profile_update", created.ID,
		"Profile update requested: "+fields)
	p.notifyAdmins(ctx, current, created, fields)

	return user.ToProfileUpdateResponse(created), nil
}

func (p *ProfileUpdateServiceImpl) ListMine(ctx context.Context, userID string, filter user.ProfileUpdateFilter) (user.ListProfileUpdateResponse, error) {
	filter.UserID = &userID
	return p.List(ctx, filter)
}

func (p *ProfileUpdateServiceImpl) List(ctx context.Context, filter user.ProfileUpdateFilter) (user.ListProfileUpdateResponse, error) {
	filter.Normalize()
	rows, total, err := p.ProfileUpdateRepository.List(ctx, filter)
	if err != nil {
		return user.ListProfileUpdateResponse{}, fmt.Errorf("failed to list profile update requests: %w", err)
	}
	resp := user.ListProfileUpdateResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   make([]user.ProfileUpdateResponse, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Requests = append(resp.Requests, user.ToProfileUpdateResponse(row))
	}
	return resp, nil
}

func (p *ProfileUpdateServiceImpl) Cancel(ctx context.Context, userID, id string) (user.ProfileUpdateResponse, error) {
	var update user.ProfileUpdateRequest
	err := p.users.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		update, err = p.getForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if update.UserID != userID {
			return user.ErrNotProfileUpdateOwner
		}
		if update.Status != user.ProfileUpdatePending {
			return user.ErrProfileUpdateReviewed
		}
		update.Status = user.ProfileUpdateCancelled
		return p.ProfileUpdateRepository.Update(txCtx, update)
	})
	if err != nil {
		return user.ProfileUpdateResponse{}, err
	}
	return user.ToProfileUpdateResponse(update), nil
}

// Review approves or rejects a pending request. Approval copies the
// requested name and email onto the user, re-checking email uniqueness.
func (p *ProfileUpdateServiceImpl) Review(ctx context.Context, reviewerID, id string, req user.ReviewProfileUpdateRequest) (user.ProfileUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return user.ProfileUpdateResponse{}, err
	}

	var update user.ProfileUpdateRequest
	err := p.users.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		update, err = p.getForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if update.Status != user.ProfileUpdatePending {
			return user.ErrProfileUpdateReviewed
		}

		if req.Status == string(user.ProfileUpdateApproved) {
			current, err := p.users.get(txCtx, update.UserID)
			if err != nil {
				return err
			}
			if update.RequestedEmail != nil {
				if err := p.users.checkUnique(txCtx, current.Mobile, update.RequestedEmail, current.ID); err != nil {
					return err
				}
			}
			if err := p.users.UserRepository.Update(txCtx, user.UpdateUserRequest{
				ID:    current.ID,
				Name:  update.RequestedName,
				Email: update.RequestedEmail,
			}); err != nil {
				return fmt.Errorf("failed to apply profile update: %w", err)
			}
		}

		now := p.users.now()
		update.Status = user.ProfileUpdateStatus(req.Status)
		update.ReviewedBy = &reviewerID
		update.ReviewedAt = &now
		update.ReviewRemarks = req.Remarks
		return p.ProfileUpdateRepository.Update(txCtx, update)
	})
	if err != nil {
		return user.ProfileUpdateResponse{}, err
	}

	p.users.activity.Log(ctx, &reviewerID, activity.ActionProfileUpdateReviewed, "profile_update", update.ID,
		fmt.Sprintf("Profile update %s", update.Status))
	p.notifyReviewed(ctx, reviewerID, update)

	return user.ToProfileUpdateResponse(update), nil
}

func (p *ProfileUpdateServiceImpl) getForUpdate(ctx context.Context, id string) (user.ProfileUpdateRequest, error) {
	update, err := p.ProfileUpdateRepository.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ProfileUpdateRequest{}, user.ErrProfileUpdateNotFound
		}
		return user.ProfileUpdateRequest{}, fmt.Errorf("failed to get profile update request: %w", err)
	}
	return update, nil
}

func (p *ProfileUpdateServiceImpl) notifyAdmins(ctx context.Context, applicant user.User, update user.ProfileUpdateRequest, fields string) {
	if p.notificationService == nil {
		return
	}
	admins, err := p.users.UserRepository.ListAdmins(ctx)
	if err != nil {
		slog.Error("failed to list admins for profile update notification", "error", err)
		return
	}
	reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
	for _, a := range admins {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: a.ID,
			SenderID:    &applicant.ID,
			Type:        notification.TypeProfileUpdateApplied,
			Title:       "New profile update request",
			Message:     fmt.Sprintf("%s asked to change %s", applicant.Name, fields),
			Subject:     &notification.Subject{Kind: notification.SubjectProfileUpdate, ID: update.ID},
		})
	}
	_ = p.notificationService.NotifyMany(ctx, reqs)
}

func (p *ProfileUpdateServiceImpl) notifyReviewed(ctx context.Context, reviewerID string, update user.ProfileUpdateRequest) {
	if p.notificationService == nil {
		return
	}
	notifType := notification.TypeProfileUpdateRejected
	if update.Status == user.ProfileUpdateApproved {
		notifType = notification.TypeProfileUpdateApproved
	}
	_ = p.notificationService.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: update.UserID,
		SenderID:    &reviewerID,
		Type:        notifType,
		Title:       fmt.Sprintf("Profile update %s", update.Status),
		Message:     fmt.Sprintf("Your profile update request was %s", update.Status),
		Subject:     &notification.Subject{Kind: notification.SubjectProfileUpdate, ID: update.ID},
		Data:        map[string]any{"review_remarks": update.ReviewRemarks},
	})
}

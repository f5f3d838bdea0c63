package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type WFHServiceImpl struct {
	tx database.Transactor
	attendance.WFHRepository
	activity activity.Logger
	notify   notifier
	loc      *time.Location
	now      func() time.Time
}

func NewWFHService(
	tx database.Transactor,
	wfhRepo attendance.WFHRepository,
	userRepo user.UserRepository,
	activityLogger activity.Logger,
	notificationService notification.NotificationService,
	emailService email.EmailService,
	loc *time.Location,
) *WFHServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &WFHServiceImpl{
		tx:            tx,
		WFHRepository: wfhRepo,
		activity:      activityLogger,
		notify:        notifier{userRepo: userRepo, notificationService: notificationService, emailService: emailService},
		loc:           loc,
		now:           time.Now,
	}
}

func (w *WFHServiceImpl) today() time.Time {
	n := w.now().In(w.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (w *WFHServiceImpl) Apply(ctx context.Context, userID string, req attendance.ApplyWFHRequest) (attendance.WFHResponse, error) {
	date, _ := validator.IsValidDate(req.Date)
	if date.Before(w.today()) {
		return attendance.WFHResponse{}, attendance.ErrWFHPastDate
	}

	created, err := w.WFHRepository.Create(ctx, attendance.WFHRequest{
		UserID: userID,
		Date:   date,
		Reason: req.Reason,
		Status: attendance.RequestPending,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrWFHExists) {
			return attendance.WFHResponse{}, err
		}
		return attendance.WFHResponse{}, fmt.Errorf("failed to create wfh request: %w", err)
	}

	w.activity.Log(ctx, &userID, activity.ActionWFHApplied, "wfh_request", created.ID,
		fmt.Sprintf("WFH requested for %s", created.Date.Format("2006-01-02")))
	w.notify.toAdmins(ctx, userID, notification.TypeWFHApplied, "New WFH request",
		fmt.Sprintf("WFH requested for %s", created.Date.Format("2006-01-02")),
		notification.Subject{Kind: notification.SubjectWFHRequest, ID: created.ID})

	return attendance.ToWFHResponse(created), nil
}

func (w *WFHServiceImpl) ListMine(ctx context.Context, userID string, filter attendance.RequestFilter) (attendance.ListWFHResponse, error) {
	filter.UserID = &userID
	return w.List(ctx, filter)
}

func (w *WFHServiceImpl) TodayStatus(ctx context.Context, userID string) (attendance.WFHTodayResponse, error) {
	u, err := w.notify.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.WFHTodayResponse{}, user.ErrUserNotFound
		}
		return attendance.WFHTodayResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	req, err := w.WFHRepository.GetByUserAndDate(ctx, userID, w.today())
	if err != nil {
		return attendance.WFHTodayResponse{}, fmt.Errorf("failed to get wfh request: %w", err)
	}

	resp := attendance.WFHTodayResponse{IsWFH: u.IsPermanentWFH}
	if req != nil {
		r := attendance.ToWFHResponse(*req)
		resp.Request = &r
		resp.IsWFH = resp.IsWFH || req.Status == attendance.RequestApproved
	}
	return resp, nil
}

func (w *WFHServiceImpl) Cancel(ctx context.Context, userID, id string) (attendance.WFHResponse, error) {
	var req attendance.WFHRequest
	err := w.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = w.getForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if req.UserID != userID {
			return attendance.ErrNotRequestOwner
		}
		if req.Status != attendance.RequestPending {
			return attendance.ErrRequestAlreadyReviewed
		}
		req.Status = attendance.RequestCancelled
		return w.WFHRepository.Update(txCtx, req)
	})
	if err != nil {
		return attendance.WFHResponse{}, err
	}
	return attendance.ToWFHResponse(req), nil
}

func (w *WFHServiceImpl) List(ctx context.Context, filter attendance.RequestFilter) (attendance.ListWFHResponse, error) {
	filter.Normalize()
	rows, total, err := w.WFHRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListWFHResponse{}, fmt.Errorf("failed to list wfh requests: %w", err)
	}
	resp := attendance.ListWFHResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   make([]attendance.WFHResponse, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Requests = append(resp.Requests, attendance.ToWFHResponse(row))
	}
	return resp, nil
}

func (w *WFHServiceImpl) Review(ctx context.Context, reviewerID, id string, review attendance.ReviewRequest) (attendance.WFHResponse, error) {
	var req attendance.WFHRequest
	err := w.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = w.getForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if req.Status != attendance.RequestPending {
			return attendance.ErrRequestAlreadyReviewed
		}
		now := w.now()
		req.Status = attendance.RequestStatus(review.Status)
		req.ReviewedBy = &reviewerID
		req.ReviewedAt = &now
		req.ReviewRemarks = review.Remarks
		return w.WFHRepository.Update(txCtx, req)
	})
	if err != nil {
		return attendance.WFHResponse{}, err
	}

	w.activity.Log(ctx, &reviewerID, activity.ActionWFHReviewed, "wfh_request", req.ID,
		fmt.Sprintf("WFH for %s %s", req.Date.Format("2006-01-02"), req.Status))

	notifType := notification.TypeWFHRejected
	if req.Status == attendance.RequestApproved {
		notifType = notification.TypeWFHApproved
	}
	w.notify.reviewed(ctx, req.UserID, &reviewerID, notifType,
		fmt.Sprintf("WFH %s", req.Status),
		fmt.Sprintf("Your WFH request for %s was %s", req.Date.Format("2006-01-02"), req.Status),
		notification.Subject{Kind: notification.SubjectWFHRequest, ID: req.ID},
		email.StatusData{
			Subject: "work from home request",
			Date:    req.Date.Format("2006-01-02"),
			Status:  string(req.Status),
			Remarks: req.ReviewRemarks,
		},
		email.EmailService.SendWFHStatus,
	)

	return attendance.ToWFHResponse(req), nil
}

func (w *WFHServiceImpl) getForUpdate(ctx context.Context, id string) (attendance.WFHRequest, error) {
	req, err := w.WFHRepository.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.WFHRequest{}, attendance.ErrWFHNotFound
		}
		return attendance.WFHRequest{}, fmt.Errorf("failed to get wfh request: %w", err)
	}
	return req, nil
}

var _ attendance.WFHService = (*WFHServiceImpl)(nil)

package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
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

type RegularizationServiceImpl struct {
	tx database.Transactor
	attendance.RegularizationRepository
	attendanceRepo attendance.AttendanceRepository
	shiftRepo      attendance.ShiftRepository
	activity       activity.Logger
	notify         notifier
	rules          Rules
	now            func() time.Time
}

func NewRegularizationService(
	tx database.Transactor,
	regularizationRepo attendance.RegularizationRepository,
	attendanceRepo attendance.AttendanceRepository,
	shiftRepo attendance.ShiftRepository,
	userRepo user.UserRepository,
	activityLogger activity.Logger,
	notificationService notification.NotificationService,
	emailService email.EmailService,
	rules Rules,
) *RegularizationServiceImpl {
	return &RegularizationServiceImpl{
		tx:                       tx,
		RegularizationRepository: regularizationRepo,
		attendanceRepo:           attendanceRepo,
		shiftRepo:                shiftRepo,
		activity:                 activityLogger,
		notify:                   notifier{userRepo: userRepo, notificationService: notificationService, emailService: emailService},
		rules:                    rules,
		now:                      time.Now,
	}
}

func (r *RegularizationServiceImpl) Apply(ctx context.Context, userID string, req attendance.ApplyRegularizationRequest) (attendance.RegularizationResponse, error) {
	date, _ := validator.IsValidDate(req.Date)
	n := r.now().In(r.rules.Loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	if !date.Before(today) {
		return attendance.RegularizationResponse{}, attendance.ErrRegularizationFutureDate
	}

	pending, err := r.RegularizationRepository.HasPending(ctx, userID, date)
	if err != nil {
		return attendance.RegularizationResponse{}, fmt.Errorf("failed to check pending regularization: %w", err)
	}
	if pending {
		return attendance.RegularizationResponse{}, attendance.ErrRegularizationPending
	}

	reg := attendance.Regularization{
		UserID:      userID,
		Date:        date,
		RequestType: attendance.RegularizationType(req.RequestType),
		Reason:      req.Reason,
		Status:      attendance.RequestPending,
	}
	if req.RequestedPunchIn != nil {
		d, _ := validator.IsValidClock(*req.RequestedPunchIn)
		reg.RequestedPunchIn = &d
	}
	if req.RequestedPunchOut != nil {
		d, _ := validator.IsValidClock(*req.RequestedPunchOut)
		reg.RequestedPunchOut = &d
	}

	created, err := r.RegularizationRepository.Create(ctx, reg)
	if err != nil {
		return attendance.RegularizationResponse{}, fmt.Errorf("failed to create regularization: %w", err)
	}

	r.activity.Log(ctx, &userID, activity.ActionRegularizationApplied, "regularization", created.ID,
		fmt.Sprintf("Regularization (%s) requested for %s", created.RequestType, created.Date.Format("2006-01-02")))
	r.notify.toAdmins(ctx, userID, notification.TypeRegularizationApplied, "New regularization request",
		fmt.Sprintf("Regularization (%s) requested for %s", created.RequestType, created.Date.Format("2006-01-02")),
		notification.Subject{Kind: notification.SubjectRegularization, ID: created.ID})

	return attendance.ToRegularizationResponse(created), nil
}

func (r *RegularizationServiceImpl) ListMine(ctx context.Context, userID string, filter attendance.RequestFilter) (attendance.ListRegularizationResponse, error) {
	filter.UserID = &userID
	return r.List(ctx, filter)
}

func (r *RegularizationServiceImpl) List(ctx context.Context, filter attendance.RequestFilter) (attendance.ListRegularizationResponse, error) {
	filter.Normalize()
	rows, total, err := r.RegularizationRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListRegularizationResponse{}, fmt.Errorf("failed to list regularizations: %w", err)
	}
	resp := attendance.ListRegularizationResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   make([]attendance.RegularizationResponse, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Requests = append(resp.Requests, attendance.ToRegularizationResponse(row))
	}
	return resp, nil
}

func (r *RegularizationServiceImpl) Cancel(ctx context.Context, userID, id string) (attendance.RegularizationResponse, error) {
	var reg attendance.Regularization
	err := r.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		reg, err = r.getForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if reg.UserID != userID {
			return attendance.ErrNotRequestOwner
		}
		if reg.Status != attendance.RequestPending {
			return attendance.ErrRequestAlreadyReviewed
		}
		reg.Status = attendance.RequestCancelled
		return r.RegularizationRepository.Update(txCtx, reg)
	})
	if err != nil {
		return attendance.RegularizationResponse{}, err
	}
	return attendance.ToRegularizationResponse(reg), nil
}

// Review approves or rejects a pending request. Approval writes the requested
// punches, re-derives hours and pins the day to present.
func (r *RegularizationServiceImpl) Review(ctx context.Context, reviewerID, id string, req attendance.ReviewRequest) (attendance.RegularizationResponse, error) {
	var reg attendance.Regularization
	err := r.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		reg, err = r.getForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if reg.Status != attendance.RequestPending {
			return attendance.ErrRequestAlreadyReviewed
		}

		now := r.now()
		reg.Status = attendance.RequestStatus(req.Status)
		reg.ReviewedBy = &reviewerID
		reg.ReviewedAt = &now
		reg.ReviewRemarks = req.Remarks
		if err := r.RegularizationRepository.Update(txCtx, reg); err != nil {
			return fmt.Errorf("failed to update regularization: %w", err)
		}
		if reg.Status != attendance.RequestApproved {
			return nil
		}
		return r.applyToAttendance(txCtx, reg)
	})
	if err != nil {
		return attendance.RegularizationResponse{}, err
	}

	r.activity.Log(ctx, &reviewerID, activity.ActionRegularizationReviewed, "regularization", reg.ID,
		fmt.Sprintf("Regularization for %s %s", reg.Date.Format("2006-01-02"), reg.Status))

	notifType := notification.TypeRegularizationRejected
	if reg.Status == attendance.RequestApproved {
		notifType = notification.TypeRegularizationApproved
	}
	r.notify.reviewed(ctx, reg.UserID, &reviewerID, notifType,
		fmt.Sprintf("Regularization %s", reg.Status),
		fmt.Sprintf("Your regularization for %s was %s", reg.Date.Format("2006-01-02"), reg.Status),
		notification.Subject{Kind: notification.SubjectRegularization, ID: reg.ID},
		email.StatusData{
			Subject: "regularization request",
			Date:    reg.Date.Format("2006-01-02"),
			Status:  string(reg.Status),
			Remarks: reg.ReviewRemarks,
			Details: strings.ReplaceAll(string(reg.RequestType), "_", " "),
		},
		email.EmailService.SendRegularizationStatus,
	)

	return attendance.ToRegularizationResponse(reg), nil
}

func (r *RegularizationServiceImpl) applyToAttendance(ctx context.Context, reg attendance.Regularization) error {
	row, err := r.attendanceRepo.GetByUserAndDateForUpdate(ctx, reg.UserID, reg.Date)
	if err != nil {
		return fmt.Errorf("failed to get attendance: %w", err)
	}
	if row == nil {
		row = &attendance.Attendance{UserID: reg.UserID, Date: reg.Date, Status: attendance.StatusAbsent}
	}
	if reg.RequestedPunchIn != nil {
		t := r.rules.At(reg.Date, *reg.RequestedPunchIn)
		row.PunchIn = &t
	}
	if reg.RequestedPunchOut != nil {
		t := r.rules.At(reg.Date, *reg.RequestedPunchOut)
		row.PunchOut = &t
	}
	if row.PunchIn != nil && row.PunchOut != nil && !row.PunchOut.After(*row.PunchIn) {
		return attendance.ErrPunchOutBeforeIn
	}

	shift := r.rules.DefaultShift
	if s, err := r.shiftFor(ctx, reg.UserID); err == nil {
		shift = s
	}
	r.rules.Derive(row, shift)
	present := attendance.StatusPresent
	row.StatusOverride = &present
	row.AppendNote("Regularized: " + strings.ReplaceAll(string(reg.RequestType), "_", " "))

	if row.ID == "" {
		if _, err := r.attendanceRepo.Create(ctx, *row); err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}
		return nil
	}
	if err := r.attendanceRepo.Update(ctx, *row); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

func (r *RegularizationServiceImpl) shiftFor(ctx context.Context, userID string) (attendance.Shift, error) {
	u, err := r.notify.userRepo.GetByID(ctx, userID)
	if err != nil {
		return attendance.Shift{}, err
	}
	if u.ShiftID == nil {
		return r.rules.DefaultShift, nil
	}
	s, err := r.shiftRepo.GetByID(ctx, *u.ShiftID)
	if err != nil {
		return attendance.Shift{}, err
	}
	return r.rules.ShiftOrDefault(&s), nil
}

func (r *RegularizationServiceImpl) getForUpdate(ctx context.Context, id string) (attendance.Regularization, error) {
	reg, err := r.RegularizationRepository.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Regularization{}, attendance.ErrRegularizationNotFound
		}
		return attendance.Regularization{}, fmt.Errorf("failed to get regularization: %w", err)
	}
	return reg, nil
}

var _ attendance.RegularizationService = (*RegularizationServiceImpl)(nil)

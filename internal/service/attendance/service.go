package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/jackc/pgx/v5"
)

// LeaveReconciler is the part of the leave service that punching needs.
type LeaveReconciler interface {
	TodayLeave(ctx context.Context, userID string, today time.Time) (leave.TodayLeaveResponse, error)
	ReconcileWorkedDay(ctx context.Context, userID string, day time.Time) (*leave.ReconcileResult, error)
}

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	shiftRepo           attendance.ShiftRepository
	locationRepo        attendance.OfficeLocationRepository
	wfhRepo             attendance.WFHRepository
	userRepo            user.UserRepository
	holidayRepo         leave.HolidayRepository
	compOffRepo         compoff.CompOffRepository
	compOffService      compoff.CompOffService
	leaves              LeaveReconciler
	activity            activity.Logger
	notificationService notification.NotificationService
	emailService        email.EmailService
	rules               Rules
	geofence            Geofence
	autoPunchOutHour    int
	now                 func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	shiftRepo attendance.ShiftRepository,
	locationRepo attendance.OfficeLocationRepository,
	wfhRepo attendance.WFHRepository,
	userRepo user.UserRepository,
	holidayRepo leave.HolidayRepository,
	compOffRepo compoff.CompOffRepository,
	compOffService compoff.CompOffService,
	leaves LeaveReconciler,
	activityLogger activity.Logger,
	notificationService notification.NotificationService,
	emailService email.EmailService,
	rules Rules,
	geofence Geofence,
	autoPunchOutHour int,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		shiftRepo:            shiftRepo,
		locationRepo:         locationRepo,
		wfhRepo:              wfhRepo,
		userRepo:             userRepo,
		holidayRepo:          holidayRepo,
		compOffRepo:          compOffRepo,
		compOffService:       compOffService,
		leaves:               leaves,
		activity:             activityLogger,
		notificationService:  notificationService,
		emailService:         emailService,
		rules:                rules,
		geofence:             geofence,
		autoPunchOutHour:     autoPunchOutHour,
		now:                  time.Now,
	}
}

// today is the local calendar date as a UTC midnight.
func (a *AttendanceServiceImpl) today() time.Time {
	n := a.now().In(a.rules.Loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// PunchIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchIn(ctx context.Context, userID string, req attendance.PunchRequest) (attendance.PunchInResponse, error) {
	u, err := a.getUser(ctx, userID)
	if err != nil {
		return attendance.PunchInResponse{}, err
	}
	day := a.today()
	isWFH, err := a.checkPunchOrigin(ctx, u, day, req)
	if err != nil {
		return attendance.PunchInResponse{}, err
	}
	cal, err := a.calendarFor(ctx, day, day)
	if err != nil {
		return attendance.PunchInResponse{}, err
	}
	shift, err := a.shiftFor(ctx, u)
	if err != nil {
		return attendance.PunchInResponse{}, err
	}

	var (
		row        attendance.Attendance
		adjustment *leave.ReconcileResult
	)
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// leave approval locks the user before the attendance row; so do we
		if err := a.tx.Lock(txCtx, "leave:"+userID); err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}
		existing, err := a.AttendanceRepository.GetByUserAndDateForUpdate(txCtx, userID, day)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		if existing != nil && existing.PunchIn != nil {
			return attendance.ErrAlreadyPunchedIn
		}

		adjustment, err = a.leaves.ReconcileWorkedDay(txCtx, userID, day)
		if err != nil {
			return fmt.Errorf("failed to reconcile leave: %w", err)
		}

		now := a.now()
		offDay := cal.IsOffDay(day, u.WeeklyOff.TimeWeekday())
		if existing == nil {
			existing = &attendance.Attendance{UserID: userID, Date: day}
		}
		existing.PunchIn = &now
		existing.PunchInLatitude = req.Latitude
		existing.PunchInLongitude = req.Longitude
		existing.PunchInIP = optionalString(req.ClientIP)
		existing.Status = attendance.StatusPresent
		existing.IsOffDay = offDay
		existing.IsWFH = isWFH
		existing.IsLate = !offDay && a.rules.IsLate(day, now, shift)
		if req.Notes != "" {
			existing.AppendNote(req.Notes)
		}

		if existing.ID == "" {
			created, err := a.AttendanceRepository.Create(txCtx, *existing)
			if err != nil {
				return fmt.Errorf("failed to create attendance: %w", err)
			}
			row = created
			return nil
		}
		if err := a.AttendanceRepository.Update(txCtx, *existing); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		row = *existing
		return nil
	})
	if err != nil {
		return attendance.PunchInResponse{}, err
	}

	a.activity.Log(ctx, &userID, activity.ActionPunchIn, "attendance", row.ID,
		fmt.Sprintf("Punched in at %s", row.PunchIn.In(a.rules.Loc).Format("15:04")))
	slog.Info("Punch in", "user_id", userID, "date", day.Format("2006-01-02"), "late", row.IsLate, "off_day", row.IsOffDay)

	return attendance.PunchInResponse{Attendance: attendance.ToResponse(row), LeaveAdjustment: adjustment}, nil
}

// PunchOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchOut(ctx context.Context, userID string, req attendance.PunchRequest) (attendance.PunchOutResponse, error) {
	u, err := a.getUser(ctx, userID)
	if err != nil {
		return attendance.PunchOutResponse{}, err
	}
	day := a.today()
	if _, err := a.checkPunchOrigin(ctx, u, day, req); err != nil {
		return attendance.PunchOutResponse{}, err
	}
	shift, err := a.shiftFor(ctx, u)
	if err != nil {
		return attendance.PunchOutResponse{}, err
	}

	var (
		row    attendance.Attendance
		earned *compoff.CompOff
	)
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := a.AttendanceRepository.GetByUserAndDateForUpdate(txCtx, userID, day)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		if existing == nil || existing.PunchIn == nil {
			return attendance.ErrNotPunchedIn
		}
		if existing.PunchOut != nil {
			return attendance.ErrAlreadyPunchedOut
		}

		now := a.now()
		if !now.After(*existing.PunchIn) {
			return attendance.ErrPunchOutBeforeIn
		}
		existing.PunchOut = &now
		existing.PunchOutLatitude = req.Latitude
		existing.PunchOutLongitude = req.Longitude
		existing.PunchOutIP = optionalString(req.ClientIP)
		if req.Notes != "" {
			existing.AppendNote(req.Notes)
		}
		a.rules.Derive(existing, shift)

		if err := a.AttendanceRepository.Update(txCtx, *existing); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		row = *existing

		earned, err = a.earnOffDayCredit(txCtx, row)
		return err
	})
	if err != nil {
		return attendance.PunchOutResponse{}, err
	}

	a.activity.Log(ctx, &userID, activity.ActionPunchOut, "attendance", row.ID,
		fmt.Sprintf("Punched out at %s after %s hour(s)", row.PunchOut.In(a.rules.Loc).Format("15:04"), row.WorkingHours))

	resp := attendance.PunchOutResponse{Attendance: attendance.ToResponse(row)}
	if earned != nil {
		c := compoff.ToResponse(*earned)
		resp.CompOffEarned = &c
		a.notifyCompOffEarned(ctx, *earned)
	}
	return resp, nil
}

// earnOffDayCredit credits a comp-off for a closed off-day session. The
// (user, off_day_work, date) key makes a second call a no-op.
func (a *AttendanceServiceImpl) earnOffDayCredit(ctx context.Context, row attendance.Attendance) (*compoff.CompOff, error) {
	if !row.IsOffDay {
		return nil, nil
	}
	credit := a.rules.CompOffCredit(row.WorkingHours)
	if !credit.IsPositive() {
		return nil, nil
	}
	attendanceID := row.ID
	c, created, err := a.compOffService.Earn(ctx, compoff.CompOff{
		UserID:       row.UserID,
		EarnedDate:   row.Date,
		EarnedHours:  row.WorkingHours,
		CreditDays:   credit,
		Reason:       fmt.Sprintf("Worked %s hour(s) on off day %s", row.WorkingHours, row.Date.Format("2006-01-02")),
		Source:       compoff.SourceOffDayWork,
		SourceKey:    row.Date.Format("2006-01-02"),
		AttendanceID: &attendanceID,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}
	return &c, nil
}

// Today implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Today(ctx context.Context, userID string) (attendance.TodayResponse, error) {
	u, err := a.getUser(ctx, userID)
	if err != nil {
		return attendance.TodayResponse{}, err
	}
	day := a.today()
	cal, err := a.calendarFor(ctx, day, day)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	resp := attendance.TodayResponse{
		Date:     day.Format("2006-01-02"),
		IsOffDay: cal.IsOffDay(day, u.WeeklyOff.TimeWeekday()),
	}
	resp.HolidayName, resp.IsHoliday = cal.Holiday(day)

	row, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if row != nil {
		r := attendance.ToResponse(*row)
		resp.Attendance = &r
	}

	resp.IsWFH, err = a.isWFH(ctx, u, day)
	if err != nil {
		return attendance.TodayResponse{}, err
	}
	onLeave, err := a.leaves.TodayLeave(ctx, userID, day)
	if err != nil {
		return attendance.TodayResponse{}, err
	}
	resp.OnLeave = onLeave.OnLeave
	return resp, nil
}

// MyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MyAttendance(ctx context.Context, userID string, year, month int) ([]attendance.AttendanceResponse, error) {
	start, end := monthRange(year, month)
	rows, err := a.AttendanceRepository.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	resp := make([]attendance.AttendanceResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, attendance.ToResponse(r))
	}
	return resp, nil
}

// OffDayStats implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) OffDayStats(ctx context.Context, userID string, year, month int) (attendance.OffDayStatsResponse, error) {
	start, end := monthRange(year, month)
	rows, err := a.AttendanceRepository.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return attendance.OffDayStatsResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	resp := attendance.OffDayStatsResponse{Year: year, Month: month}
	for _, r := range rows {
		if r.IsOffDay && r.PunchIn != nil {
			resp.OffDaysWorked++
		}
	}

	resp.CompOffsEarned, resp.CompOffDaysEarned, err = a.compOffRepo.CountEarnedBetween(ctx, userID, start, end)
	if err != nil {
		return attendance.OffDayStatsResponse{}, fmt.Errorf("failed to count comp-offs: %w", err)
	}
	resp.CompOffAvailable, err = a.compOffRepo.SumUsable(ctx, userID, a.today())
	if err != nil {
		return attendance.OffDayStatsResponse{}, fmt.Errorf("failed to sum comp-offs: %w", err)
	}
	return resp, nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	filter.Normalize()
	rows, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	resp := attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: make([]attendance.AttendanceResponse, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Attendances = append(resp.Attendances, attendance.ToResponse(r))
	}
	return resp, nil
}

// UpdateAttendance applies an admin correction. Changed punches re-derive
// the computed status; the override is kept separately.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, actorID string, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	var updated attendance.Attendance
	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		row, err := a.AttendanceRepository.GetByID(txCtx, req.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return attendance.ErrAttendanceNotFound
			}
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		if req.StatusOverride != nil {
			s := attendance.Status(*req.StatusOverride)
			if !s.Valid() {
				return attendance.ErrInvalidStatus
			}
			row.StatusOverride = &s
		}
		if req.ClearOverride {
			row.StatusOverride = nil
		}
		if req.Notes != nil {
			row.Notes = *req.Notes
		}

		if req.PunchInTime != nil || req.PunchOutTime != nil {
			if req.PunchInTime != nil {
				row.PunchIn = req.PunchInTime
			}
			if req.PunchOutTime != nil {
				row.PunchOut = req.PunchOutTime
			}
			if row.PunchIn != nil && row.PunchOut != nil && !row.PunchOut.After(*row.PunchIn) {
				return attendance.ErrPunchOutBeforeIn
			}
			u, err := a.getUser(txCtx, row.UserID)
			if err != nil {
				return err
			}
			shift, err := a.shiftFor(txCtx, u)
			if err != nil {
				return err
			}
			a.rules.Derive(&row, shift)
		}

		if err := a.AttendanceRepository.Update(txCtx, row); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		updated = row
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.activity.Log(ctx, &actorID, activity.ActionAttendanceEdited, "attendance", updated.ID,
		fmt.Sprintf("Attendance of %s edited: status %s", updated.Date.Format("2006-01-02"), updated.EffectiveStatus()))
	return attendance.ToResponse(updated), nil
}

// MonthlyReport implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MonthlyReport(ctx context.Context, year, month int) (attendance.MonthlyReportResponse, error) {
	start, end := monthRange(year, month)
	rows, err := a.AttendanceRepository.MonthlySummary(ctx, start, end)
	if err != nil {
		return attendance.MonthlyReportResponse{}, fmt.Errorf("failed to summarise attendance: %w", err)
	}
	return attendance.MonthlyReportResponse{Year: year, Month: month, Rows: rows}, nil
}

// AutoPunchOut closes every open session of date at the configured hour
// and warns the employee.
func (a *AttendanceServiceImpl) AutoPunchOut(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	open, err := a.AttendanceRepository.ListOpenSessions(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}

	closed := make([]attendance.Attendance, 0, len(open))
	for _, session := range open {
		row, err := a.autoPunchOutOne(ctx, session.UserID, date)
		if err != nil {
			slog.Error("auto punch out failed", "user_id", session.UserID, "date", date.Format("2006-01-02"), "error", err)
			continue
		}
		if row == nil {
			continue
		}
		closed = append(closed, *row)
		a.activity.Log(ctx, nil, activity.ActionAutoPunchOut, "attendance", row.ID,
			fmt.Sprintf("Auto punched out at %s", row.PunchOut.In(a.rules.Loc).Format("15:04")))
		a.notifyAutoPunchOut(ctx, *row)
	}
	slog.Info("Auto punch out completed", "date", date.Format("2006-01-02"), "closed", len(closed), "open", len(open))
	return closed, nil
}

func (a *AttendanceServiceImpl) autoPunchOutOne(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	u, err := a.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	shift, err := a.shiftFor(ctx, u)
	if err != nil {
		return nil, err
	}

	var result *attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		row, err := a.AttendanceRepository.GetByUserAndDateForUpdate(txCtx, userID, date)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		if row == nil || row.PunchIn == nil || row.PunchOut != nil {
			return nil
		}

		out := a.rules.At(date, time.Duration(a.autoPunchOutHour)*time.Hour)
		if out.Before(*row.PunchIn) {
			out = *row.PunchIn
		}
		row.PunchOut = &out
		row.IsAutoPunchOut = true
		row.AppendNote(fmt.Sprintf("Auto punched out by system at %02d:00. Employee forgot to punch out.", a.autoPunchOutHour))
		a.rules.Derive(row, shift)
		if err := a.AttendanceRepository.Update(txCtx, *row); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		if _, err := a.earnOffDayCredit(txCtx, *row); err != nil {
			return err
		}
		result = row
		return nil
	})
	return result, err
}

// MarkAbsent creates absent rows for users with no attendance, leave, WFH
// or day off on date.
func (a *AttendanceServiceImpl) MarkAbsent(ctx context.Context, date time.Time) (int, error) {
	users, err := a.userRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}
	cal, err := a.calendarFor(ctx, date, date)
	if err != nil {
		return 0, err
	}
	wfh, err := a.wfhRepo.ApprovedUserIDs(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list wfh users: %w", err)
	}

	marked := 0
	for _, u := range users {
		if u.JoinedAt.After(date) || cal.IsOffDay(date, u.WeeklyOff.TimeWeekday()) || wfh[u.ID] || u.IsPermanentWFH {
			continue
		}
		onLeave, err := a.leaves.TodayLeave(ctx, u.ID, date)
		if err != nil {
			return marked, err
		}
		if onLeave.OnLeave {
			continue
		}
		created, err := a.AttendanceRepository.CreateIfMissing(ctx, attendance.Attendance{
			UserID: u.ID,
			Date:   date,
			Status: attendance.StatusAbsent,
			Notes:  "Marked absent: no punch recorded",
		})
		if err != nil {
			return marked, fmt.Errorf("failed to mark absent: %w", err)
		}
		if created {
			marked++
		}
	}
	slog.Info("Absent marking completed", "date", date.Format("2006-01-02"), "marked", marked)
	return marked, nil
}

// checkPunchOrigin enforces geofence and IP rules unless the user works from home today.
func (a *AttendanceServiceImpl) checkPunchOrigin(ctx context.Context, u user.User, day time.Time, req attendance.PunchRequest) (bool, error) {
	wfh, err := a.isWFH(ctx, u, day)
	if err != nil {
		return false, err
	}
	if wfh {
		return true, nil
	}
	locations, err := a.locationRepo.List(ctx, true)
	if err != nil {
		return false, fmt.Errorf("failed to list office locations: %w", err)
	}
	if err := a.geofence.CheckLocation(locations, req.Latitude, req.Longitude); err != nil {
		return false, err
	}
	return false, a.geofence.CheckIP(locations, req.ClientIP)
}

func (a *AttendanceServiceImpl) isWFH(ctx context.Context, u user.User, day time.Time) (bool, error) {
	if u.IsPermanentWFH {
		return true, nil
	}
	req, err := a.wfhRepo.GetByUserAndDate(ctx, u.ID, day)
	if err != nil {
		return false, fmt.Errorf("failed to get wfh request: %w", err)
	}
	return req != nil && req.Status == attendance.RequestApproved, nil
}

func (a *AttendanceServiceImpl) calendarFor(ctx context.Context, start, end time.Time) (*calendar.Calendar, error) {
	holidays, err := a.holidayRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	days := make([]calendar.Holiday, 0, len(holidays))
	for _, h := range holidays {
		if h.IsOptional {
			continue
		}
		days = append(days, calendar.Holiday{Name: h.Name, Date: h.Date})
	}
	return calendar.New(days...), nil
}

func (a *AttendanceServiceImpl) shiftFor(ctx context.Context, u user.User) (attendance.Shift, error) {
	if u.ShiftID == nil {
		return a.rules.DefaultShift, nil
	}
	s, err := a.shiftRepo.GetByID(ctx, *u.ShiftID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("assigned shift missing, using default", "user_id", u.ID, "shift_id", *u.ShiftID)
			return a.rules.DefaultShift, nil
		}
		return attendance.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	return a.rules.ShiftOrDefault(&s), nil
}

func (a *AttendanceServiceImpl) getUser(ctx context.Context, id string) (user.User, error) {
	u, err := a.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (a *AttendanceServiceImpl) notifyCompOffEarned(ctx context.Context, c compoff.CompOff) {
	if a.notificationService == nil {
		return
	}
	_ = a.notificationService.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: c.UserID,
		Type:        notification.TypeCompOffEarned,
		Title:       "Comp-off earned",
		Message: fmt.Sprintf("You earned %s comp-off day(s) for working on %s, valid until %s",
			c.CreditDays, c.EarnedDate.Format("2006-01-02"), c.ExpiresOn.Format("2006-01-02")),
		Subject: &notification.Subject{Kind: notification.SubjectCompOff, ID: c.ID},
	})
}

func (a *AttendanceServiceImpl) notifyAutoPunchOut(ctx context.Context, row attendance.Attendance) {
	if a.notificationService != nil {
		_ = a.notificationService.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: row.UserID,
			Type:        notification.TypeAutoPunchOut,
			Title:       "Auto punch out",
			Message:     fmt.Sprintf("You were punched out automatically on %s. Please remember to punch out.", row.Date.Format("2006-01-02")),
			Subject:     &notification.Subject{Kind: notification.SubjectAttendance, ID: row.ID},
		})
	}

	if a.emailService == nil {
		return
	}
	u, err := a.userRepo.GetByID(ctx, row.UserID)
	if err != nil || u.Email == nil || *u.Email == "" {
		return
	}
	if a.notificationService != nil && !a.notificationService.EmailEnabled(ctx, u.ID, notification.TypeAutoPunchOut) {
		return
	}
	to := *u.Email
	data := email.AutoPunchOutData{
		EmployeeName: u.Name,
		Date:         row.Date.Format("2006-01-02"),
		PunchIn:      row.PunchIn.In(a.rules.Loc).Format("15:04"),
		PunchOut:     row.PunchOut.In(a.rules.Loc).Format("15:04"),
	}
	go func() {
		if err := a.emailService.SendAutoPunchOut(to, data); err != nil {
			slog.Error("failed to email auto punch out", "user_id", row.UserID, "error", err)
		}
	}()
}

func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

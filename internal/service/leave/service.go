package leave

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	leave.LeaveRequestRepository
	leave.AllocationRepository
	leave.HolidayRepository
	userRepo            user.UserRepository
	attendanceRepo      attendance.AttendanceRepository
	compOffService      compoff.CompOffService
	balanceService      *BalanceService
	requestService      *RequestService
	activity            activity.Logger
	notificationService notification.NotificationService
	emailService        email.EmailService
	loc                 *time.Location
	now                 func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveBalanceRepository leave.LeaveBalanceRepository,
	leaveRequestRepository leave.LeaveRequestRepository,
	allocationRepository leave.AllocationRepository,
	holidayRepository leave.HolidayRepository,
	userRepo user.UserRepository,
	attendanceRepo attendance.AttendanceRepository,
	compOffService compoff.CompOffService,
	activityLogger activity.Logger,
	notificationService notification.NotificationService,
	emailService email.EmailService,
	loc *time.Location,
) *LeaveServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	balanceService := NewBalanceService(leaveTypeRepository, leaveBalanceRepository, allocationRepository)
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveTypeRepository:    leaveTypeRepository,
		LeaveBalanceRepository: leaveBalanceRepository,
		LeaveRequestRepository: leaveRequestRepository,
		AllocationRepository:   allocationRepository,
		HolidayRepository:      holidayRepository,
		userRepo:               userRepo,
		attendanceRepo:         attendanceRepo,
		compOffService:         compOffService,
		balanceService:         balanceService,
		requestService:         NewRequestService(leaveBalanceRepository, allocationRepository, compOffService, balanceService),
		activity:               activityLogger,
		notificationService:    notificationService,
		emailService:           emailService,
		loc:                    loc,
		now:                    time.Now,
	}
}

// Balances exposes the balance service to the batch jobs.
func (l *LeaveServiceImpl) Balances() *BalanceService {
	return l.balanceService
}

func (l *LeaveServiceImpl) today() time.Time {
	n := l.now().In(l.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateLeaveType implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if _, err := l.LeaveTypeRepository.GetByCode(ctx, code); err == nil {
		return leave.LeaveTypeResponse{}, leave.ErrLeaveTypeCodeExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveTypeResponse{}, fmt.Errorf("failed to check leave type code: %w", err)
	}

	monthly := req.AnnualQuota.Div(decimal.NewFromInt(12)).Round(1)
	if req.MonthlyQuota != nil {
		monthly = *req.MonthlyQuota
	}
	isPaid := true
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}

	leaveType, err := l.LeaveTypeRepository.Create(ctx, leave.LeaveType{
		Name:            strings.TrimSpace(req.Name),
		Code:            code,
		Description:     req.Description,
		AnnualQuota:     req.AnnualQuota,
		MonthlyQuota:    monthly,
		IsCarryForward:  req.IsCarryForward,
		MaxCarryForward: req.MaxCarryForward,
		IsPaid:          isPaid,
		IsActive:        true,
	})
	if err != nil {
		return leave.LeaveTypeResponse{}, fmt.Errorf("failed to create leave type: %w", err)
	}
	return leave.ToLeaveTypeResponse(leaveType), nil
}

// UpdateLeaveType implements leave.LeaveService.
func (l *LeaveServiceImpl) UpdateLeaveType(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	leaveType, err := l.getLeaveType(ctx, req.ID)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	if req.Name != nil {
		leaveType.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		leaveType.Description = *req.Description
	}
	if req.AnnualQuota != nil {
		leaveType.AnnualQuota = *req.AnnualQuota
	}
	if req.MonthlyQuota != nil {
		leaveType.MonthlyQuota = *req.MonthlyQuota
	}
	if req.IsCarryForward != nil {
		leaveType.IsCarryForward = *req.IsCarryForward
	}
	if req.MaxCarryForward != nil {
		leaveType.MaxCarryForward = *req.MaxCarryForward
	}
	if req.IsPaid != nil {
		leaveType.IsPaid = *req.IsPaid
	}
	if req.IsActive != nil {
		leaveType.IsActive = *req.IsActive
	}

	if err := l.LeaveTypeRepository.Update(ctx, leaveType); err != nil {
		return leave.LeaveTypeResponse{}, fmt.Errorf("failed to update leave type: %w", err)
	}
	return leave.ToLeaveTypeResponse(leaveType), nil
}

// ListLeaveTypes implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveTypeResponse, error) {
	types, err := l.LeaveTypeRepository.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	resp := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, leave.ToLeaveTypeResponse(t))
	}
	return resp, nil
}

// DeleteLeaveType implements leave.LeaveService.
func (l *LeaveServiceImpl) DeleteLeaveType(ctx context.Context, id string) error {
	if _, err := l.getLeaveType(ctx, id); err != nil {
		return err
	}
	if err := l.LeaveTypeRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete leave type: %w", err)
	}
	return nil
}

// GetMyBalance implements leave.LeaveService.
func (l *LeaveServiceImpl) GetMyBalance(ctx context.Context, userID string, year, month int) (leave.MyBalanceResponse, error) {
	balances, _, err := l.balanceService.EnsureMonth(ctx, userID, year, month)
	if err != nil {
		return leave.MyBalanceResponse{}, err
	}

	resp := leave.MyBalanceResponse{Year: year, Month: month, Balances: make([]leave.BalanceResponse, 0, len(balances))}
	for _, b := range balances {
		held, err := l.AllocationRepository.HeldPaid(ctx, b.ID, "")
		if err != nil {
			return leave.MyBalanceResponse{}, fmt.Errorf("failed to sum held paid days: %w", err)
		}
		resp.Balances = append(resp.Balances, leave.ToBalanceResponse(b, held))
	}

	usable, err := l.compOffService.Usable(ctx, userID, l.today())
	if err != nil {
		return leave.MyBalanceResponse{}, err
	}
	heldCompOff, err := l.AllocationRepository.HeldCompOff(ctx, userID, "")
	if err != nil {
		return leave.MyBalanceResponse{}, fmt.Errorf("failed to sum held comp-off: %w", err)
	}
	_, resp.CompOffAvailable = compOffSlots(usable, heldCompOff)

	return resp, nil
}

// ListBalances implements leave.LeaveService.
func (l *LeaveServiceImpl) ListBalances(ctx context.Context, filter leave.BalanceFilter) (leave.ListBalanceResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	balances, total, err := l.LeaveBalanceRepository.List(ctx, filter)
	if err != nil {
		return leave.ListBalanceResponse{}, fmt.Errorf("failed to list balances: %w", err)
	}

	resp := leave.ListBalanceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Balances:   make([]leave.BalanceResponse, 0, len(balances)),
	}
	for _, b := range balances {
		held, err := l.AllocationRepository.HeldPaid(ctx, b.ID, "")
		if err != nil {
			return leave.ListBalanceResponse{}, fmt.Errorf("failed to sum held paid days: %w", err)
		}
		resp.Balances = append(resp.Balances, leave.ToBalanceResponse(b, held))
	}
	return resp, nil
}

// UpdateBalance implements leave.LeaveService.
func (l *LeaveServiceImpl) UpdateBalance(ctx context.Context, req leave.UpdateBalanceRequest) (leave.BalanceResponse, error) {
	var updated leave.LeaveBalance
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		b, err := l.LeaveBalanceRepository.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return leave.ErrLeaveBalanceNotFound
			}
			return fmt.Errorf("failed to get leave balance: %w", err)
		}
		if req.TotalLeaves != nil {
			b.TotalLeaves = *req.TotalLeaves
		}
		if req.UsedLeaves != nil {
			b.UsedLeaves = *req.UsedLeaves
		}
		if req.CarriedForward != nil {
			b.CarriedForward = *req.CarriedForward
		}
		if req.LOPDays != nil {
			b.LOPDays = *req.LOPDays
		}
		if err := l.LeaveBalanceRepository.Update(txCtx, b); err != nil {
			return fmt.Errorf("failed to update leave balance: %w", err)
		}
		if err := l.balanceService.RefreshRollover(txCtx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	held, err := l.AllocationRepository.HeldPaid(ctx, updated.ID, "")
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("failed to sum held paid days: %w", err)
	}
	return leave.ToBalanceResponse(updated, held), nil
}

// InitializeBalances implements leave.LeaveService.
func (l *LeaveServiceImpl) InitializeBalances(ctx context.Context, req leave.InitializeBalancesRequest) (leave.InitializeBalancesResponse, error) {
	users, err := l.userRepo.ListActive(ctx)
	if err != nil {
		return leave.InitializeBalancesResponse{}, fmt.Errorf("failed to list active users: %w", err)
	}

	resp := leave.InitializeBalancesResponse{Year: req.Year, Month: req.Month}
	for _, u := range users {
		_, created, err := l.balanceService.EnsureMonth(ctx, u.ID, req.Year, req.Month)
		if err != nil {
			return resp, fmt.Errorf("failed to initialize balances for %s: %w", u.ID, err)
		}
		resp.Created += created
	}
	return resp, nil
}

// CreateHoliday implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateHoliday(ctx context.Context, req leave.CreateHolidayRequest) (leave.HolidayResponse, error) {
	date, _ := time.Parse("2006-01-02", req.Date)
	h, err := l.HolidayRepository.Create(ctx, leave.Holiday{
		Name:        strings.TrimSpace(req.Name),
		Date:        date,
		IsOptional:  req.IsOptional,
		Description: req.Description,
	})
	if err != nil {
		return leave.HolidayResponse{}, err
	}
	return leave.ToHolidayResponse(h), nil
}

// UpdateHoliday implements leave.LeaveService.
func (l *LeaveServiceImpl) UpdateHoliday(ctx context.Context, req leave.UpdateHolidayRequest) (leave.HolidayResponse, error) {
	h, err := l.HolidayRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.HolidayResponse{}, leave.ErrHolidayNotFound
		}
		return leave.HolidayResponse{}, fmt.Errorf("failed to get holiday: %w", err)
	}
	if req.Name != nil {
		h.Name = strings.TrimSpace(*req.Name)
	}
	if req.Date != nil {
		h.Date, _ = time.Parse("2006-01-02", *req.Date)
	}
	if req.IsOptional != nil {
		h.IsOptional = *req.IsOptional
	}
	if req.Description != nil {
		h.Description = *req.Description
	}
	if err := l.HolidayRepository.Update(ctx, h); err != nil {
		return leave.HolidayResponse{}, err
	}
	return leave.ToHolidayResponse(h), nil
}

// ListHolidays implements leave.LeaveService.
func (l *LeaveServiceImpl) ListHolidays(ctx context.Context, year int) ([]leave.HolidayResponse, error) {
	holidays, err := l.HolidayRepository.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	resp := make([]leave.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, leave.ToHolidayResponse(h))
	}
	return resp, nil
}

// DeleteHoliday implements leave.LeaveService.
func (l *LeaveServiceImpl) DeleteHoliday(ctx context.Context, id string) error {
	if _, err := l.HolidayRepository.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.ErrHolidayNotFound
		}
		return fmt.Errorf("failed to get holiday: %w", err)
	}
	return l.HolidayRepository.Delete(ctx, id)
}

func (l *LeaveServiceImpl) getLeaveType(ctx context.Context, id string) (leave.LeaveType, error) {
	leaveType, err := l.LeaveTypeRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	return leaveType, nil
}

func (l *LeaveServiceImpl) getRequestForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	request, err := l.LeaveRequestRepository.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return request, nil
}

// lockOwnedRequest takes the owner's advisory lock before the row lock, the
// same order Apply and CancelRequest use.
func (l *LeaveServiceImpl) lockOwnedRequest(ctx context.Context, id string) (leave.LeaveRequest, error) {
	peek, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	if err := l.tx.Lock(ctx, "leave:"+peek.UserID); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to lock user: %w", err)
	}
	return l.getRequestForUpdate(ctx, id)
}

func sameAllocation(a, b leave.Allocation) bool {
	return a.CompOff.Equal(b.CompOff) && a.Paid.Equal(b.Paid) && a.LOP.Equal(b.LOP)
}

func appendRemark(existing, remark string) string {
	if existing == "" {
		return remark
	}
	return existing + "\n" + remark
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)

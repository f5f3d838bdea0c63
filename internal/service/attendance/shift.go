package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type ShiftServiceImpl struct {
	attendance.ShiftRepository
	locationRepo attendance.OfficeLocationRepository
}

func NewShiftService(shiftRepo attendance.ShiftRepository, locationRepo attendance.OfficeLocationRepository) *ShiftServiceImpl {
	return &ShiftServiceImpl{ShiftRepository: shiftRepo, locationRepo: locationRepo}
}

func (s *ShiftServiceImpl) CreateShift(ctx context.Context, req attendance.CreateShiftRequest) (attendance.ShiftResponse, error) {
	shift, err := req.ToShift()
	if err != nil {
		return attendance.ShiftResponse{}, err
	}
	created, err := s.ShiftRepository.Create(ctx, shift)
	if err != nil {
		return attendance.ShiftResponse{}, fmt.Errorf("failed to create shift: %w", err)
	}
	return attendance.ToShiftResponse(created), nil
}

func (s *ShiftServiceImpl) UpdateShift(ctx context.Context, req attendance.UpdateShiftRequest) (attendance.ShiftResponse, error) {
	shift, err := s.ShiftRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ShiftResponse{}, attendance.ErrShiftNotFound
		}
		return attendance.ShiftResponse{}, fmt.Errorf("failed to get shift: %w", err)
	}

	if req.Name != nil {
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		shift.StartTime, _ = validator.IsValidClock(*req.StartTime)
	}
	if req.EndTime != nil {
		shift.EndTime, _ = validator.IsValidClock(*req.EndTime)
	}
	if req.ClearBreak {
		shift.BreakStart, shift.BreakEnd = nil, nil
	}
	if req.BreakStart != nil {
		bs, _ := validator.IsValidClock(*req.BreakStart)
		shift.BreakStart = &bs
	}
	if req.BreakEnd != nil {
		be, _ := validator.IsValidClock(*req.BreakEnd)
		shift.BreakEnd = &be
	}
	if (shift.BreakStart == nil) != (shift.BreakEnd == nil) {
		return attendance.ShiftResponse{}, attendance.ErrInvalidBreakWindow
	}
	if req.GraceMinutes != nil {
		shift.GraceMinutes = *req.GraceMinutes
	}
	if req.IsActive != nil {
		shift.IsActive = *req.IsActive
	}
	if err := shift.Check(); err != nil {
		return attendance.ShiftResponse{}, err
	}

	if err := s.ShiftRepository.Update(ctx, shift); err != nil {
		return attendance.ShiftResponse{}, fmt.Errorf("failed to update shift: %w", err)
	}
	return attendance.ToShiftResponse(shift), nil
}

func (s *ShiftServiceImpl) ListShifts(ctx context.Context) ([]attendance.ShiftResponse, error) {
	shifts, err := s.ShiftRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	resp := make([]attendance.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		resp = append(resp, attendance.ToShiftResponse(sh))
	}
	return resp, nil
}

func (s *ShiftServiceImpl) DeleteShift(ctx context.Context, id string) error {
	if err := s.ShiftRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}

func (s *ShiftServiceImpl) CreateLocation(ctx context.Context, req attendance.OfficeLocationRequest) (attendance.OfficeLocationResponse, error) {
	loc := attendance.OfficeLocation{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
		AllowedIPs:   req.AllowedIPs,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	created, err := s.locationRepo.Create(ctx, loc)
	if err != nil {
		return attendance.OfficeLocationResponse{}, fmt.Errorf("failed to create office location: %w", err)
	}
	return attendance.ToLocationResponse(created), nil
}

func (s *ShiftServiceImpl) UpdateLocation(ctx context.Context, id string, req attendance.OfficeLocationRequest) (attendance.OfficeLocationResponse, error) {
	loc, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.OfficeLocationResponse{}, attendance.ErrOfficeLocationNotFound
		}
		return attendance.OfficeLocationResponse{}, fmt.Errorf("failed to get office location: %w", err)
	}
	loc.Name = req.Name
	loc.Latitude = req.Latitude
	loc.Longitude = req.Longitude
	loc.RadiusMeters = req.RadiusMeters
	loc.AllowedIPs = req.AllowedIPs
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}
	if err := s.locationRepo.Update(ctx, loc); err != nil {
		return attendance.OfficeLocationResponse{}, fmt.Errorf("failed to update office location: %w", err)
	}
	return attendance.ToLocationResponse(loc), nil
}

func (s *ShiftServiceImpl) ListLocations(ctx context.Context) ([]attendance.OfficeLocationResponse, error) {
	locs, err := s.locationRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list office locations: %w", err)
	}
	resp := make([]attendance.OfficeLocationResponse, 0, len(locs))
	for _, l := range locs {
		resp = append(resp, attendance.ToLocationResponse(l))
	}
	return resp, nil
}

func (s *ShiftServiceImpl) DeleteLocation(ctx context.Context, id string) error {
	if err := s.locationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrOfficeLocationNotFound
		}
		return fmt.Errorf("failed to delete office location: %w", err)
	}
	return nil
}

var _ attendance.ShiftService = (*ShiftServiceImpl)(nil)

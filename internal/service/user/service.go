package user

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	shiftRepo attendance.ShiftRepository
	storage   storage.FileStorage
	activity  activity.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewUserService(tx database.Transactor, userRepository user.UserRepository, shiftRepo attendance.ShiftRepository, fileStorage storage.FileStorage, activityLogger activity.Logger, loc *time.Location) *UserServiceImpl {
	return &UserServiceImpl{
		tx:             tx,
		UserRepository: userRepository,
		shiftRepo:      shiftRepo,
		storage:        fileStorage,
		activity:       activityLogger,
		loc:            loc,
		now:            time.Now,
	}
}

func (s *UserServiceImpl) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *UserServiceImpl) get(ctx context.Context, id string) (user.User, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserServiceImpl) checkUnique(ctx context.Context, mobile string, email *string, excludeID string) error {
	mobileTaken, emailTaken, err := s.UserRepository.ExistsByMobileOrEmail(ctx, mobile, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if mobileTaken {
		return user.ErrMobileExists
	}
	if emailTaken {
		return user.ErrEmailExists
	}
	return nil
}

func (s *UserServiceImpl) checkShift(ctx context.Context, shiftID *string) error {
	if shiftID == nil {
		return nil
	}
	if _, err := s.shiftRepo.GetByID(ctx, *shiftID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrShiftNotFound
		}
		return fmt.Errorf("failed to get shift: %w", err)
	}
	return nil
}

// CreateUser implements user.UserService.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	newUser := user.User{
		Mobile:         req.Mobile,
		Email:          req.Email,
		Name:           req.Name,
		PasswordHash:   &hashed,
		Role:           user.RoleEmployee,
		Department:     req.Department,
		Designation:    req.Designation,
		WeeklyOff:      user.FromTime(time.Sunday),
		ShiftID:        req.ShiftID,
		IsActive:       true,
		IsPermanentWFH: req.IsPermanentWFH,
		JoinedAt:       s.today(),
	}
	if req.Role != "" {
		newUser.Role = user.Role(req.Role)
	}
	if req.WeeklyOff != nil {
		newUser.WeeklyOff = user.Weekday(*req.WeeklyOff)
	}
	if req.JoinedAt != nil {
		joined, err := time.Parse(time.DateOnly, *req.JoinedAt)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to parse joined_at: %w", err)
		}
		newUser.JoinedAt = joined
	}

	var created user.User
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.checkUnique(txCtx, req.Mobile, req.Email, ""); err != nil {
			return err
		}
		if err := s.checkShift(txCtx, req.ShiftID); err != nil {
			return err
		}
		created, err = s.UserRepository.Create(txCtx, newUser)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	s.activity.Log(ctx, nil, activity.ActionEmployeeCreated, "user", created.ID,
		fmt.Sprintf("Created %s (%s)", created.Name, created.Role))
	return user.ToResponse(created), nil
}

// UpdateUser implements user.UserService.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, actorID string, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if req.ID == actorID && req.IsActive != nil && !*req.IsActive {
		return user.UserResponse{}, user.ErrCannotDeactivateSelf
	}

	var updated user.User
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.get(txCtx, req.ID)
		if err != nil {
			return err
		}

		mobile := current.Mobile
		if req.Mobile != nil {
			mobile = *req.Mobile
		}
		if req.Mobile != nil || req.Email != nil {
			if err := s.checkUnique(txCtx, mobile, req.Email, req.ID); err != nil {
				return err
			}
		}
		if !req.ClearShift {
			if err := s.checkShift(txCtx, req.ShiftID); err != nil {
				return err
			}
		}

		if err := s.UserRepository.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		updated, err = s.get(txCtx, req.ID)
		return err
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	s.activity.Log(ctx, &actorID, activity.ActionEmployeeUpdated, "user", updated.ID,
		fmt.Sprintf("Updated %s", updated.Name))
	return user.ToResponse(updated), nil
}

// GetUser implements user.UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// ListUsers implements user.UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	filter.Normalize()
	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	resp := user.ListUserResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Users:      make([]user.UserResponse, 0, len(users)),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, user.ToResponse(u))
	}
	return resp, nil
}

// DeactivateUser implements user.UserService.
func (s *UserServiceImpl) DeactivateUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return user.ErrCannotDeactivateSelf
	}
	if err := s.UserRepository.Deactivate(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	s.activity.Log(ctx, &actorID, activity.ActionEmployeeUpdated, "user", id, "Deactivated")
	return nil
}

// GetProfile implements user.UserService.
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (user.UserResponse, error) {
	return s.GetUser(ctx, userID)
}

// UpdateProfile implements user.UserService. Employees get
// ErrProfileEditNeedsApproval and must submit a ProfileUpdateRequest.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID string, req user.UpdateProfileRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	var updated user.User
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.get(txCtx, userID)
		if err != nil {
			return err
		}
		if !current.IsAdmin() {
			return user.ErrProfileEditNeedsApproval
		}
		if req.Email != nil {
			if err := s.checkUnique(txCtx, current.Mobile, req.Email, userID); err != nil {
				return err
			}
		}
		if err := s.UserRepository.Update(txCtx, user.UpdateUserRequest{ID: userID, Email: req.Email, Name: req.Name}); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		updated, err = s.get(txCtx, userID)
		return err
	})
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(updated), nil
}

// UploadPhoto implements user.UserService. The image is center-cropped to a
// square JPEG and the previous photo is removed.
func (s *UserServiceImpl) UploadPhoto(ctx context.Context, userID string, file io.Reader, filename string) (user.UserResponse, error) {
	if !storage.IsImageExt(filename) {
		return user.UserResponse{}, user.ErrInvalidPhoto
	}
	current, err := s.get(ctx, userID)
	if err != nil {
		return user.UserResponse{}, err
	}

	compressed, err := storage.CompressPhoto(file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return user.UserResponse{}, user.ErrInvalidPhoto
		}
		return user.UserResponse{}, err
	}

	key := path.Join("photos", userID, uuid.NewString()+".jpg")
	stored, err := s.storage.Upload(ctx, bytes.NewReader(compressed), key, "image/jpeg")
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to upload photo: %w", err)
	}
	url := s.storage.URL(stored)
	if err := s.UserRepository.UpdatePhoto(ctx, userID, url); err != nil {
		s.storage.Delete(ctx, stored)
		return user.UserResponse{}, fmt.Errorf("failed to update photo url: %w", err)
	}

	if current.PhotoURL != nil {
		if old, ok := s.storedPath(*current.PhotoURL); ok {
			s.storage.Delete(ctx, old)
		}
	}

	current.PhotoURL = &url
	return user.ToResponse(current), nil
}

// storedPath maps a public URL back to its storage key.
func (s *UserServiceImpl) storedPath(url string) (string, bool) {
	prefix := s.storage.URL("")
	if len(url) <= len(prefix) || url[:len(prefix)] != prefix {
		return "", false
	}
	return url[len(prefix):], true
}

// ChangePassword implements user.UserService.
func (s *UserServiceImpl) ChangePassword(ctx context.Context, userID string, req user.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	u, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.OldPassword)) != nil {
		return user.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.UserRepository.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

package user

import (
	"bytes"
	"context"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/servicetest"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userHarness struct {
	svc      *UserServiceImpl
	users    *servicetest.Users
	storage  *storage.LocalStorage
	activity *servicetest.ActivityLog
	shiftID  string
}

func newUserHarness(t *testing.T) *userHarness {
	t.Helper()
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	local, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	shifts := servicetest.NewShifts()
	shift, err := shifts.Create(context.Background(), attendance.Shift{Name: "General", StartTime: 10 * time.Hour, EndTime: 19 * time.Hour, IsActive: true})
	require.NoError(t, err)

	h := &userHarness{users: servicetest.NewUsers(), storage: local, activity: &servicetest.ActivityLog{}, shiftID: shift.ID}
	h.svc = NewUserService(&servicetest.Transactor{}, h.users, shifts, local, h.activity, ist)
	h.svc.now = func() time.Time { return time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC) }
	return h
}

func ptr[T any](v T) *T { return &v }

func TestUserService_CreateUser(t *testing.T) {
	h := newUserHarness(t)

	resp, err := h.svc.CreateUser(context.Background(), user.CreateUserRequest{
		Mobile: "+919800000001", Email: ptr("asha@example.com"), Name: "Asha", Password: "password123", ShiftID: &h.shiftID,
	})

	require.NoError(t, err)
	assert.Equal(t, "employee", resp.Role)
	assert.Equal(t, 6, resp.WeeklyOff)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "2026-03-02T00:00:00Z", resp.JoinedAt)

	stored, err := h.users.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("password123")))
	assert.Equal(t, []activity.Action{activity.ActionEmployeeCreated}, h.activity.Actions())
}

func TestUserService_CreateUser_Errors(t *testing.T) {
	h := newUserHarness(t)
	h.users.Seed(user.User{Mobile: "+919800000001", Email: ptr("asha@example.com"), Name: "Asha", IsActive: true})

	tests := []struct {
		name string
		req  user.CreateUserRequest
		want error
	}{
		{"mobile taken", user.CreateUserRequest{Mobile: "+919800000001", Name: "B", Password: "password123"}, user.ErrMobileExists},
		{"email taken", user.CreateUserRequest{Mobile: "+919800000002", Email: ptr("ASHA@example.com"), Name: "B", Password: "password123"}, user.ErrEmailExists},
		{"unknown shift", user.CreateUserRequest{Mobile: "+919800000003", Name: "B", Password: "password123", ShiftID: ptr("nope")}, user.ErrShiftNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.CreateUser(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := h.svc.CreateUser(context.Background(), user.CreateUserRequest{Mobile: "12", Name: "B", Password: "short"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUserService_UpdateUser(t *testing.T) {
	h := newUserHarness(t)
	adminID := h.users.Seed(user.User{Mobile: "+919800000010", Name: "Hari", Role: user.RoleAdmin, IsActive: true})
	id := h.users.Seed(user.User{Mobile: "+919800000001", Name: "Asha", Role: user.RoleEmployee, IsActive: true})

	resp, err := h.svc.UpdateUser(context.Background(), adminID, user.UpdateUserRequest{ID: id, Designation: ptr("Engineer"), WeeklyOff: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, "Engineer", resp.Designation)
	assert.Equal(t, 5, resp.WeeklyOff)

	_, err = h.svc.UpdateUser(context.Background(), adminID, user.UpdateUserRequest{ID: id, Mobile: ptr("+919800000010")})
	assert.ErrorIs(t, err, user.ErrMobileExists)

	_, err = h.svc.UpdateUser(context.Background(), adminID, user.UpdateUserRequest{ID: adminID, IsActive: ptr(false)})
	assert.ErrorIs(t, err, user.ErrCannotDeactivateSelf)

	_, err = h.svc.UpdateUser(context.Background(), adminID, user.UpdateUserRequest{ID: "missing", Name: ptr("X")})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserService_DeactivateUser(t *testing.T) {
	h := newUserHarness(t)
	adminID := h.users.Seed(user.User{Mobile: "+919800000010", Name: "Hari", Role: user.RoleAdmin, IsActive: true})
	id := h.users.Seed(user.User{Mobile: "+919800000001", Name: "Asha", IsActive: true})

	assert.ErrorIs(t, h.svc.DeactivateUser(context.Background(), adminID, adminID), user.ErrCannotDeactivateSelf)
	assert.ErrorIs(t, h.svc.DeactivateUser(context.Background(), adminID, "missing"), user.ErrUserNotFound)
	require.NoError(t, h.svc.DeactivateUser(context.Background(), adminID, id))

	u, _ := h.users.GetByID(context.Background(), id)
	assert.False(t, u.IsActive)
}

func TestUserService_ListUsers(t *testing.T) {
	h := newUserHarness(t)
	h.users.Seed(user.User{Mobile: "+919800000001", Name: "Asha", IsActive: true})
	h.users.Seed(user.User{Mobile: "+919800000002", Name: "Bala", IsActive: true})

	resp, err := h.svc.ListUsers(context.Background(), user.UserFilter{})

	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Equal(t, "Asha", resp.Users[0].Name)
}

func TestUserService_UpdateProfile(t *testing.T) {
	h := newUserHarness(t)
	id := h.users.Seed(user.User{Mobile: "+919800000001", Name: "Asha", Role: user.RoleAdmin, IsActive: true})

	resp, err := h.svc.UpdateProfile(context.Background(), id, user.UpdateProfileRequest{Name: ptr("Asha K"), Email: ptr("asha@example.com")})

	require.NoError(t, err)
	assert.Equal(t, "Asha K", resp.Name)
	require.NotNil(t, resp.Email)
	assert.Equal(t, "asha@example.com", *resp.Email)
}

func TestUserService_UpdateProfile_EmployeeNeedsApproval(t *testing.T) {
	h := newUserHarness(t)
	id := h.users.Seed(user.User{Mobile: "+919800000001", Name: "Asha", Role: user.RoleEmployee, IsActive: true})

	_, err := h.svc.UpdateProfile(context.Background(), id, user.UpdateProfileRequest{Name: ptr("Asha K")})

	assert.ErrorIs(t, err, user.ErrProfileEditNeedsApproval)
	stored, err := h.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.Name)
}

func TestUserService_UploadPhoto(t *testing.T) {
	h := newUserHarness(t)
	ctx := context.Background()
	id := h.users.Seed(user.User{Mobile: "+919800000001", Name: "Asha", IsActive: true})

	upload := func() user.UserResponse {
		var buf bytes.Buffer
		require.NoError(t, imaging.Encode(&buf, imaging.New(800, 600, color.NRGBA{G: 128, A: 255}), imaging.PNG))
		resp, err := h.svc.UploadPhoto(ctx, id, &buf, "me.png")
		require.NoError(t, err)
		require.NotNil(t, resp.PhotoURL)
		return resp
	}

	first := upload()
	assert.True(t, strings.HasPrefix(*first.PhotoURL, "/uploads/photos/"+id+"/"))
	firstKey := strings.TrimPrefix(*first.PhotoURL, "/uploads/")

	second := upload()
	assert.NotEqual(t, *first.PhotoURL, *second.PhotoURL)

	exists, err := h.storage.Exists(ctx, firstKey)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = h.svc.UploadPhoto(ctx, id, strings.NewReader("gif"), "me.gif")
	assert.ErrorIs(t, err, user.ErrInvalidPhoto)
	_, err = h.svc.UploadPhoto(ctx, id, strings.NewReader("not a png"), "me.png")
	assert.ErrorIs(t, err, user.ErrInvalidPhoto)
}

func TestUserService_ChangePassword(t *testing.T) {
	h := newUserHarness(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	id := h.users.Seed(user.User{Mobile: "+919800000001", Name: "Asha", PasswordHash: ptr(string(hash)), IsActive: true})

	err = h.svc.ChangePassword(context.Background(), id, user.ChangePasswordRequest{OldPassword: "wrong-one", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, user.ErrWrongPassword)

	require.NoError(t, h.svc.ChangePassword(context.Background(), id, user.ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"}))
	u, _ := h.users.GetByID(context.Background(), id)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("newpassword1")))
}

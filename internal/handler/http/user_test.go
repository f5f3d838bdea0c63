package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	user.UserService
	updateErr error
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, userID string, req user.UpdateProfileRequest) (user.UserResponse, error) {
	return user.UserResponse{ID: userID}, f.updateErr
}

type fakeProfileUpdateService struct {
	user.ProfileUpdateService
	submitted *user.SubmitProfileUpdateRequest
	filter    user.ProfileUpdateFilter
}

func (f *fakeProfileUpdateService) Submit(ctx context.Context, userID string, req user.SubmitProfileUpdateRequest) (user.ProfileUpdateResponse, error) {
	f.submitted = &req
	return user.ProfileUpdateResponse{ID: "pu-1", UserID: userID, Status: "pending"}, nil
}

func (f *fakeProfileUpdateService) List(ctx context.Context, filter user.ProfileUpdateFilter) (user.ListProfileUpdateResponse, error) {
	f.filter = filter
	return user.ListProfileUpdateResponse{}, nil
}

func TestUserHandler_UpdateProfile_EmployeeForbidden(t *testing.T) {
	handler := NewUserHandler(&fakeUserService{updateErr: user.ErrProfileEditNeedsApproval}, &fakeProfileUpdateService{})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/me", strings.NewReader(`{"name":"Asha K"}`))
	w := httptest.NewRecorder()
	handler.UpdateProfile(w, asUser(req, "u-1", user.RoleEmployee))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_SubmitProfileUpdate(t *testing.T) {
	svc := &fakeProfileUpdateService{}
	handler := NewUserHandler(&fakeUserService{}, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/profile-requests", strings.NewReader(`{"email":"asha.k@example.com","reason":"new address"}`))
	w := httptest.NewRecorder()
	handler.SubmitProfileUpdate(w, asUser(req, "u-1", user.RoleEmployee))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.submitted)
	require.NotNil(t, svc.submitted.Email)
	assert.Equal(t, "asha.k@example.com", *svc.submitted.Email)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/me/profile-requests", strings.NewReader(`{"reason":"nothing"}`))
	w = httptest.NewRecorder()
	handler.SubmitProfileUpdate(w, asUser(req, "u-1", user.RoleEmployee))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUserHandler_ListProfileUpdates_StatusFilter(t *testing.T) {
	svc := &fakeProfileUpdateService{}
	handler := NewUserHandler(&fakeUserService{}, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile-requests?status=pending", nil)
	w := httptest.NewRecorder()
	handler.ListProfileUpdates(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.filter.Status)
	assert.Equal(t, user.ProfileUpdatePending, *svc.filter.Status)
}

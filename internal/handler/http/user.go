package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/go-chi/chi/v5"
)

type UserHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)

	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	UploadPhoto(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)

	SubmitProfileUpdate(w http.ResponseWriter, r *http.Request)
	MyProfileUpdates(w http.ResponseWriter, r *http.Request)
	CancelProfileUpdate(w http.ResponseWriter, r *http.Request)
	ListProfileUpdates(w http.ResponseWriter, r *http.Request)
	ReviewProfileUpdate(w http.ResponseWriter, r *http.Request)
}

type userHandlerImpl struct {
	userService          user.UserService
	profileUpdateService user.ProfileUpdateService
}

func NewUserHandler(userService user.UserService, profileUpdateService user.ProfileUpdateService) UserHandler {
	return &userHandlerImpl{userService: userService, profileUpdateService: profileUpdateService}
}

// Create implements UserHandler.
func (h *userHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if !decodeAndValidate(w, r, &req, "CreateUser") {
		return
	}

	result, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		slog.Error("CreateUser service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User created", "user_id", result.ID, "by", middleware.UserID(r.Context()))
	response.Created(w, "User created successfully", result)
}

// Get implements UserHandler.
func (h *userHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements UserHandler.
func (h *userHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := user.UserFilter{
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	if role := queryString(r, "role"); role != nil {
		rl := user.Role(*role)
		filter.Role = &rl
	}
	if r.URL.Query().Has("is_active") {
		active := queryBool(r, "is_active", true)
		filter.IsActive = &active
	}

	results, err := h.userService.ListUsers(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// Update implements UserHandler.
func (h *userHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if !decode(w, r, &req, "UpdateUser") {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.userService.UpdateUser(r.Context(), actorID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "User updated successfully", result)
}

// Deactivate implements UserHandler.
func (h *userHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeactivateUser(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "User deactivated successfully", nil)
}

// GetProfile implements UserHandler.
func (h *userHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// UpdateProfile implements UserHandler.
func (h *userHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req, "UpdateProfile") {
		return
	}

	result, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile updated successfully", result)
}

// UploadPhoto implements UserHandler.
func (h *userHandlerImpl) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxPhotoBytes+1<<20)
	if err := r.ParseMultipartForm(storage.MaxPhotoBytes); err != nil {
		slog.Warn("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Photo is required", nil)
			return
		}
		slog.Warn("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	result, err := h.userService.UploadPhoto(r.Context(), userID, file, fileHeader.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Photo uploaded successfully", result)
}

// ChangePassword implements UserHandler.
func (h *userHandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req, "ChangePassword") {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Password changed successfully", nil)
}

// profileUpdateFilter reads status, user_id, page and limit.
func profileUpdateFilter(r *http.Request) user.ProfileUpdateFilter {
	filter := user.ProfileUpdateFilter{
		UserID: queryString(r, "user_id"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	if status := queryString(r, "status"); status != nil {
		s := user.ProfileUpdateStatus(*status)
		filter.Status = &s
	}
	return filter
}

// SubmitProfileUpdate implements UserHandler.
func (h *userHandlerImpl) SubmitProfileUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req user.SubmitProfileUpdateRequest
	if !decodeAndValidate(w, r, &req, "SubmitProfileUpdate") {
		return
	}

	result, err := h.profileUpdateService.Submit(r.Context(), userID, req)
	if err != nil {
		slog.Warn("SubmitProfileUpdate service error", "user_id", userID, "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Profile update request submitted. Waiting for admin approval.", result)
}

// MyProfileUpdates implements UserHandler.
func (h *userHandlerImpl) MyProfileUpdates(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	results, err := h.profileUpdateService.ListMine(r.Context(), userID, profileUpdateFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// CancelProfileUpdate implements UserHandler.
func (h *userHandlerImpl) CancelProfileUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.profileUpdateService.Cancel(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile update request cancelled", result)
}

// ListProfileUpdates implements UserHandler.
func (h *userHandlerImpl) ListProfileUpdates(w http.ResponseWriter, r *http.Request) {
	results, err := h.profileUpdateService.List(r.Context(), profileUpdateFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// ReviewProfileUpdate implements UserHandler.
func (h *userHandlerImpl) ReviewProfileUpdate(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req user.ReviewProfileUpdateRequest
	if !decodeAndValidate(w, r, &req, "ReviewProfileUpdate") {
		return
	}

	result, err := h.profileUpdateService.Review(r.Context(), reviewerID, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile update request "+result.Status, result)
}

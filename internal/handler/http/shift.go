package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// ShiftHandler serves shift and office location master data.
type ShiftHandler interface {
	CreateShift(w http.ResponseWriter, r *http.Request)
	UpdateShift(w http.ResponseWriter, r *http.Request)
	ListShifts(w http.ResponseWriter, r *http.Request)
	DeleteShift(w http.ResponseWriter, r *http.Request)

	CreateLocation(w http.ResponseWriter, r *http.Request)
	UpdateLocation(w http.ResponseWriter, r *http.Request)
	ListLocations(w http.ResponseWriter, r *http.Request)
	DeleteLocation(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService attendance.ShiftService
}

func NewShiftHandler(shiftService attendance.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{shiftService: shiftService}
}

func (h *shiftHandlerImpl) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateShiftRequest
	if !decodeAndValidate(w, r, &req, "CreateShift") {
		return
	}

	result, err := h.shiftService.CreateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Shift created successfully", result)
}

func (h *shiftHandlerImpl) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateShiftRequest
	if !decode(w, r, &req, "UpdateShift") {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.UpdateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shift updated successfully", result)
}

func (h *shiftHandlerImpl) ListShifts(w http.ResponseWriter, r *http.Request) {
	results, err := h.shiftService.ListShifts(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *shiftHandlerImpl) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.shiftService.DeleteShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shift deleted successfully", nil)
}

func (h *shiftHandlerImpl) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req attendance.OfficeLocationRequest
	if !decodeAndValidate(w, r, &req, "CreateLocation") {
		return
	}

	result, err := h.shiftService.CreateLocation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Office location created successfully", result)
}

func (h *shiftHandlerImpl) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req attendance.OfficeLocationRequest
	if !decodeAndValidate(w, r, &req, "UpdateLocation") {
		return
	}

	result, err := h.shiftService.UpdateLocation(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Office location updated successfully", result)
}

func (h *shiftHandlerImpl) ListLocations(w http.ResponseWriter, r *http.Request) {
	results, err := h.shiftService.ListLocations(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *shiftHandlerImpl) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.shiftService.DeleteLocation(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Office location deleted successfully", nil)
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	// Leave Type
	CreateLeaveType(w http.ResponseWriter, r *http.Request)
	UpdateLeaveType(w http.ResponseWriter, r *http.Request)
	ListLeaveTypes(w http.ResponseWriter, r *http.Request)
	DeleteLeaveType(w http.ResponseWriter, r *http.Request)

	// Balance
	GetMyBalance(w http.ResponseWriter, r *http.Request)
	ListBalances(w http.ResponseWriter, r *http.Request)
	UpdateBalance(w http.ResponseWriter, r *http.Request)
	InitializeBalances(w http.ResponseWriter, r *http.Request)

	// Request
	Apply(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	AdminUpdate(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	CancelForDate(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)

	// Holiday
	CreateHoliday(w http.ResponseWriter, r *http.Request)
	UpdateHoliday(w http.ResponseWriter, r *http.Request)
	ListHolidays(w http.ResponseWriter, r *http.Request)
	DeleteHoliday(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService  leave.LeaveService
	reportService report.ReportService
	loc           *time.Location
}

func NewLeaveHandler(leaveService leave.LeaveService, reportService report.ReportService, loc *time.Location) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService:  leaveService,
		reportService: reportService,
		loc:           loc,
	}
}

// CreateLeaveType implements LeaveHandler.
func (h *leaveHandlerImpl) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveTypeRequest
	if !decodeAndValidate(w, r, &req, "CreateLeaveType") {
		return
	}

	result, err := h.leaveService.CreateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave type created successfully", result)
}

// UpdateLeaveType implements LeaveHandler.
func (h *leaveHandlerImpl) UpdateLeaveType(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateLeaveTypeRequest
	if !decode(w, r, &req, "UpdateLeaveType") {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.UpdateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave type updated successfully", result)
}

// ListLeaveTypes implements LeaveHandler.
func (h *leaveHandlerImpl) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	results, err := h.leaveService.ListLeaveTypes(r.Context(), queryBool(r, "active_only", true))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// DeleteLeaveType implements LeaveHandler.
func (h *leaveHandlerImpl) DeleteLeaveType(w http.ResponseWriter, r *http.Request) {
	if err := h.leaveService.DeleteLeaveType(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave type deleted successfully", nil)
}

// GetMyBalance implements LeaveHandler.
func (h *leaveHandlerImpl) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	year, month, ok := yearMonth(w, r, h.loc)
	if !ok {
		return
	}

	result, err := h.leaveService.GetMyBalance(r.Context(), userID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListBalances implements LeaveHandler.
func (h *leaveHandlerImpl) ListBalances(w http.ResponseWriter, r *http.Request) {
	filter := leave.BalanceFilter{
		UserID:      queryString(r, "user_id"),
		LeaveTypeID: queryString(r, "leave_type_id"),
		Page:        queryInt(r, "page", 1),
		Limit:       queryInt(r, "limit", 20),
	}
	if r.URL.Query().Has("year") {
		year := queryInt(r, "year", 0)
		filter.Year = &year
	}
	if r.URL.Query().Has("month") {
		month := queryInt(r, "month", 0)
		filter.Month = &month
	}

	results, err := h.leaveService.ListBalances(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// UpdateBalance implements LeaveHandler.
func (h *leaveHandlerImpl) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateBalanceRequest
	if !decode(w, r, &req, "UpdateBalance") {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.UpdateBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave balance updated successfully", result)
}

// InitializeBalances implements LeaveHandler.
func (h *leaveHandlerImpl) InitializeBalances(w http.ResponseWriter, r *http.Request) {
	var req leave.InitializeBalancesRequest
	if !decodeAndValidate(w, r, &req, "InitializeBalances") {
		return
	}

	result, err := h.leaveService.InitializeBalances(r.Context(), req)
	if err != nil {
		slog.Error("InitializeBalances service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave balances initialized", result)
}

// Apply implements LeaveHandler.
func (h *leaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req leave.ApplyLeaveRequest
	if !decodeAndValidate(w, r, &req, "ApplyLeave") {
		return
	}

	result, err := h.leaveService.Apply(r.Context(), userID, req)
	if err != nil {
		slog.Warn("ApplyLeave service error", "user_id", userID, "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave request submitted", result)
}

// leaveFilter reads status, leave_type_id, user_id, from, to, page and limit.
func leaveFilter(w http.ResponseWriter, r *http.Request) (leave.RequestFilter, bool) {
	filter := leave.RequestFilter{
		UserID:      queryString(r, "user_id"),
		LeaveTypeID: queryString(r, "leave_type_id"),
		Page:        queryInt(r, "page", 1),
		Limit:       queryInt(r, "limit", 20),
	}
	if status := queryString(r, "status"); status != nil {
		s := leave.RequestStatus(*status)
		filter.Status = &s
	}
	var ok bool
	if filter.From, ok = queryDate(r, "from"); !ok {
		response.BadRequest(w, "Invalid date", map[string]string{"from": "from must be YYYY-MM-DD"})
		return filter, false
	}
	if filter.To, ok = queryDate(r, "to"); !ok {
		response.BadRequest(w, "Invalid date", map[string]string{"to": "to must be YYYY-MM-DD"})
		return filter, false
	}
	return filter, true
}

// GetMyRequests implements LeaveHandler.
func (h *leaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, ok := leaveFilter(w, r)
	if !ok {
		return
	}

	results, err := h.leaveService.ListMyRequests(r.Context(), userID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// GetRequest implements LeaveHandler.
func (h *leaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaveService.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CancelRequest implements LeaveHandler.
func (h *leaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.leaveService.CancelRequest(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request cancelled", result)
}

// ListRequests implements LeaveHandler.
func (h *leaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter, ok := leaveFilter(w, r)
	if !ok {
		return
	}

	results, err := h.leaveService.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// Review implements LeaveHandler.
func (h *leaveHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req leave.ReviewLeaveRequest
	if !decodeAndValidate(w, r, &req, "ReviewLeave") {
		return
	}

	result, err := h.leaveService.Review(r.Context(), reviewerID, chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Warn("ReviewLeave service error", "request_id", chi.URLParam(r, "id"), "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request "+req.Status, result)
}

// AdminUpdate implements LeaveHandler.
func (h *leaveHandlerImpl) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req leave.AdminUpdateLeaveRequest
	if !decode(w, r, &req, "AdminUpdateLeave") {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.AdminUpdate(r.Context(), actorID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request updated successfully", result)
}

// Today implements LeaveHandler.
func (h *leaveHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.leaveService.TodayLeave(r.Context(), userID, time.Now().In(h.loc))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CancelForDate implements LeaveHandler.
func (h *leaveHandlerImpl) CancelForDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req leave.CancelForDateRequest
	// an empty body cancels today
	if r.ContentLength == 0 {
		if err := req.Validate(); err != nil {
			response.HandleError(w, err)
			return
		}
	} else if !decodeAndValidate(w, r, &req, "CancelLeaveForDate") {
		return
	}

	result, err := h.leaveService.CancelForDate(r.Context(), userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave cancelled for date", result)
}

// Export implements LeaveHandler.
func (h *leaveHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req := report.LeaveExportRequest{
		Year:   queryInt(r, "year", time.Now().In(h.loc).Year()),
		Format: format,
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.reportService.ExportLeaves(r.Context(), req)
	if err != nil {
		slog.Error("ExportLeaves service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.File(w, file.Filename, file.ContentType, file.Body)
}

// CreateHoliday implements LeaveHandler.
func (h *leaveHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateHolidayRequest
	if !decodeAndValidate(w, r, &req, "CreateHoliday") {
		return
	}

	result, err := h.leaveService.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Holiday created successfully", result)
}

// UpdateHoliday implements LeaveHandler.
func (h *leaveHandlerImpl) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateHolidayRequest
	if !decode(w, r, &req, "UpdateHoliday") {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.UpdateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Holiday updated successfully", result)
}

// ListHolidays implements LeaveHandler.
func (h *leaveHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	results, err := h.leaveService.ListHolidays(r.Context(), queryInt(r, "year", time.Now().In(h.loc).Year()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// DeleteHoliday implements LeaveHandler.
func (h *leaveHandlerImpl) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.leaveService.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}

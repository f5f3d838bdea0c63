package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	PunchIn(w http.ResponseWriter, r *http.Request)
	PunchOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	OffDayStats(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	MonthlyReport(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	reportService     report.ReportService
	loc               *time.Location
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, reportService report.ReportService, loc *time.Location) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		reportService:     reportService,
		loc:               loc,
	}
}

// PunchIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req attendance.PunchRequest
	if !decodeAndValidate(w, r, &req, "PunchIn") {
		return
	}
	req.ClientIP = clientIP(r)

	result, err := h.attendanceService.PunchIn(r.Context(), userID, req)
	if err != nil {
		slog.Warn("PunchIn service error", "user_id", userID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punched in successfully", result)
}

// PunchOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req attendance.PunchRequest
	if !decodeAndValidate(w, r, &req, "PunchOut") {
		return
	}
	req.ClientIP = clientIP(r)

	result, err := h.attendanceService.PunchOut(r.Context(), userID, req)
	if err != nil {
		slog.Warn("PunchOut service error", "user_id", userID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punched out successfully", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.Today(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	year, month, ok := yearMonth(w, r, h.loc)
	if !ok {
		return
	}

	results, err := h.attendanceService.MyAttendance(r.Context(), userID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// OffDayStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) OffDayStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	year, month, ok := yearMonth(w, r, h.loc)
	if !ok {
		return
	}

	result, err := h.attendanceService.OffDayStats(r.Context(), userID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		UserID: queryString(r, "user_id"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	if status := queryString(r, "status"); status != nil {
		s := attendance.Status(*status)
		filter.Status = &s
	}

	var ok bool
	if filter.From, ok = queryDate(r, "from"); !ok {
		response.BadRequest(w, "Invalid date", map[string]string{"from": "from must be YYYY-MM-DD"})
		return
	}
	if filter.To, ok = queryDate(r, "to"); !ok {
		response.BadRequest(w, "Invalid date", map[string]string{"to": "to must be YYYY-MM-DD"})
		return
	}

	results, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req attendance.UpdateAttendanceRequest
	if !decode(w, r, &req, "UpdateAttendance") {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.UpdateAttendance(r.Context(), actorID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", result)
}

// MonthlyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonth(w, r, h.loc)
	if !ok {
		return
	}

	result, err := h.attendanceService.MonthlyReport(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Export implements AttendanceHandler.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	now := time.Now().In(h.loc)
	req := report.AttendanceExportRequest{
		Year:   queryInt(r, "year", now.Year()),
		Month:  queryInt(r, "month", int(now.Month())),
		UserID: queryString(r, "user_id"),
		Format: format,
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.reportService.ExportAttendance(r.Context(), req)
	if err != nil {
		slog.Error("ExportAttendance service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.File(w, file.Filename, file.ContentType, file.Body)
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// RequestHandler serves regularization and work-from-home requests.
type RequestHandler interface {
	ApplyRegularization(w http.ResponseWriter, r *http.Request)
	MyRegularizations(w http.ResponseWriter, r *http.Request)
	CancelRegularization(w http.ResponseWriter, r *http.Request)
	ListRegularizations(w http.ResponseWriter, r *http.Request)
	ReviewRegularization(w http.ResponseWriter, r *http.Request)

	ApplyWFH(w http.ResponseWriter, r *http.Request)
	MyWFH(w http.ResponseWriter, r *http.Request)
	WFHToday(w http.ResponseWriter, r *http.Request)
	CancelWFH(w http.ResponseWriter, r *http.Request)
	ListWFH(w http.ResponseWriter, r *http.Request)
	ReviewWFH(w http.ResponseWriter, r *http.Request)
}

type requestHandlerImpl struct {
	regularizationService attendance.RegularizationService
	wfhService            attendance.WFHService
}

func NewRequestHandler(regularizationService attendance.RegularizationService, wfhService attendance.WFHService) RequestHandler {
	return &requestHandlerImpl{
		regularizationService: regularizationService,
		wfhService:            wfhService,
	}
}

// requestFilter reads status, user_id, from, to, page and limit.
func requestFilter(w http.ResponseWriter, r *http.Request) (attendance.RequestFilter, bool) {
	filter := attendance.RequestFilter{
		UserID: queryString(r, "user_id"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	if status := queryString(r, "status"); status != nil {
		s := attendance.RequestStatus(*status)
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

func (h *requestHandlerImpl) ApplyRegularization(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req attendance.ApplyRegularizationRequest
	if !decodeAndValidate(w, r, &req, "ApplyRegularization") {
		return
	}

	result, err := h.regularizationService.Apply(r.Context(), userID, req)
	if err != nil {
		slog.Warn("ApplyRegularization service error", "user_id", userID, "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Regularization request submitted", result)
}

func (h *requestHandlerImpl) MyRegularizations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, ok := requestFilter(w, r)
	if !ok {
		return
	}

	results, err := h.regularizationService.ListMine(r.Context(), userID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *requestHandlerImpl) CancelRegularization(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.regularizationService.Cancel(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Regularization request cancelled", result)
}

func (h *requestHandlerImpl) ListRegularizations(w http.ResponseWriter, r *http.Request) {
	filter, ok := requestFilter(w, r)
	if !ok {
		return
	}

	results, err := h.regularizationService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *requestHandlerImpl) ReviewRegularization(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req attendance.ReviewRequest
	if !decodeAndValidate(w, r, &req, "ReviewRegularization") {
		return
	}

	result, err := h.regularizationService.Review(r.Context(), reviewerID, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Regularization request "+req.Status, result)
}

func (h *requestHandlerImpl) ApplyWFH(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req attendance.ApplyWFHRequest
	if !decodeAndValidate(w, r, &req, "ApplyWFH") {
		return
	}

	result, err := h.wfhService.Apply(r.Context(), userID, req)
	if err != nil {
		slog.Warn("ApplyWFH service error", "user_id", userID, "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "WFH request submitted", result)
}

func (h *requestHandlerImpl) MyWFH(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, ok := requestFilter(w, r)
	if !ok {
		return
	}

	results, err := h.wfhService.ListMine(r.Context(), userID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *requestHandlerImpl) WFHToday(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.wfhService.TodayStatus(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *requestHandlerImpl) CancelWFH(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.wfhService.Cancel(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "WFH request cancelled", result)
}

func (h *requestHandlerImpl) ListWFH(w http.ResponseWriter, r *http.Request) {
	filter, ok := requestFilter(w, r)
	if !ok {
		return
	}

	results, err := h.wfhService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *requestHandlerImpl) ReviewWFH(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req attendance.ReviewRequest
	if !decodeAndValidate(w, r, &req, "ReviewWFH") {
		return
	}

	result, err := h.wfhService.Review(r.Context(), reviewerID, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "WFH request "+req.Status, result)
}

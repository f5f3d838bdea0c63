package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaveService struct {
	leave.LeaveService

	applyReq  leave.ApplyLeaveRequest
	applyErr  error
	today     time.Time
	filter    leave.RequestFilter
	reviewReq leave.ReviewLeaveRequest
	cancelReq *leave.CancelForDateRequest
}

func (f *fakeLeaveService) CancelForDate(ctx context.Context, userID string, req leave.CancelForDateRequest) (leave.ReconcileResult, error) {
	f.cancelReq = &req
	return leave.ReconcileResult{}, nil
}

func (f *fakeLeaveService) Apply(ctx context.Context, userID string, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	f.applyReq = req
	return leave.LeaveRequestResponse{}, f.applyErr
}

func (f *fakeLeaveService) TodayLeave(ctx context.Context, userID string, today time.Time) (leave.TodayLeaveResponse, error) {
	f.today = today
	return leave.TodayLeaveResponse{}, nil
}

func (f *fakeLeaveService) ListRequests(ctx context.Context, filter leave.RequestFilter) (leave.ListLeaveRequestResponse, error) {
	f.filter = filter
	return leave.ListLeaveRequestResponse{}, nil
}

func (f *fakeLeaveService) Review(ctx context.Context, reviewerID, requestID string, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	f.reviewReq = req
	return leave.LeaveRequestResponse{ID: requestID}, nil
}

func TestLeaveHandler_Apply(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{
			name:   "ok",
			body:   `{"leave_type_id":"lt-1","start_date":"2025-03-10","end_date":"2025-03-12","reason":"family"}`,
			status: http.StatusCreated,
		},
		{
			name:   "end before start",
			body:   `{"leave_type_id":"lt-1","start_date":"2025-03-12","end_date":"2025-03-10","reason":"family"}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "half day spans two dates",
			body:   `{"leave_type_id":"lt-1","start_date":"2025-03-10","end_date":"2025-03-11","is_half_day":true,"half_day_type":"first_half","reason":"x"}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "overlap",
			body:   `{"leave_type_id":"lt-1","start_date":"2025-03-10","end_date":"2025-03-10","reason":"family"}`,
			err:    leave.ErrOverlappingLeave,
			status: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeLeaveService{applyErr: tt.err}
			handler := NewLeaveHandler(svc, &fakeReportService{}, time.UTC)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Apply(w, asUser(req, "u-1", user.RoleEmployee))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestLeaveHandler_Apply_ParsesDates(t *testing.T) {
	svc := &fakeLeaveService{}
	handler := NewLeaveHandler(svc, &fakeReportService{}, time.UTC)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests",
		strings.NewReader(`{"leave_type_id":"lt-1","start_date":"2025-03-10","end_date":"2025-03-12","reason":"family"}`))
	w := httptest.NewRecorder()
	handler.Apply(w, asUser(req, "u-1", user.RoleEmployee))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), svc.applyReq.Start)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), svc.applyReq.End)
}

func TestLeaveHandler_Today_UsesBusinessTimezone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	svc := &fakeLeaveService{}
	handler := NewLeaveHandler(svc, &fakeReportService{}, loc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/requests/today", nil)
	w := httptest.NewRecorder()
	handler.Today(w, asUser(req, "u-1", user.RoleEmployee))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, loc, svc.today.Location())
}

func TestLeaveHandler_ListRequests_StatusFilter(t *testing.T) {
	svc := &fakeLeaveService{}
	handler := NewLeaveHandler(svc, &fakeReportService{}, time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/requests?status=pending&leave_type_id=lt-1", nil)
	w := httptest.NewRecorder()
	handler.ListRequests(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.filter.Status)
	assert.Equal(t, leave.StatusPending, *svc.filter.Status)
	require.NotNil(t, svc.filter.LeaveTypeID)
	assert.Equal(t, "lt-1", *svc.filter.LeaveTypeID)
}

func TestLeaveHandler_Review(t *testing.T) {
	svc := &fakeLeaveService{}
	handler := NewLeaveHandler(svc, &fakeReportService{}, time.UTC)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/lr-1/review", strings.NewReader(`{"status":"approved"}`))
	req = withURLParam(asUser(req, "admin-1", user.RoleAdmin), "id", "lr-1")
	w := httptest.NewRecorder()
	handler.Review(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", svc.reviewReq.Status)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/lr-1/review", strings.NewReader(`{"status":"maybe"}`))
	req = withURLParam(asUser(req, "admin-1", user.RoleAdmin), "id", "lr-1")
	w = httptest.NewRecorder()
	handler.Review(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLeaveHandler_CancelForDate_EmptyBodyMeansToday(t *testing.T) {
	svc := &fakeLeaveService{}
	handler := NewLeaveHandler(svc, &fakeReportService{}, time.UTC)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/cancel-for-date", nil)
	w := httptest.NewRecorder()
	handler.CancelForDate(w, asUser(req, "u-1", user.RoleEmployee))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.cancelReq)
	assert.Empty(t, svc.cancelReq.Date)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/cancel-for-date", strings.NewReader(`{"date":"2025-03-11"}`))
	w = httptest.NewRecorder()
	handler.CancelForDate(w, asUser(req, "u-1", user.RoleEmployee))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-11", svc.cancelReq.Date)
}

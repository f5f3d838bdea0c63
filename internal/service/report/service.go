package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
)

const pageSize = 100

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	requestRepo    leave.LeaveRequestRepository
	loc            *time.Location
	now            func() time.Time
}

func NewReportService(attendanceRepo attendance.AttendanceRepository, requestRepo leave.LeaveRequestRepository, loc *time.Location) *ReportServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		requestRepo:    requestRepo,
		loc:            loc,
		now:            time.Now,
	}
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, req report.AttendanceExportRequest) (report.File, error) {
	if err := req.Validate(); err != nil {
		return report.File{}, err
	}
	start := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	var rows []attendance.Attendance
	for page := 1; ; page++ {
		batch, total, err := s.attendanceRepo.List(ctx, attendance.AttendanceFilter{
			UserID: req.UserID, From: &start, To: &end, Page: page, Limit: pageSize,
		})
		if err != nil {
			return report.File{}, fmt.Errorf("failed to list attendance: %w", err)
		}
		rows = append(rows, batch...)
		if len(batch) < pageSize || int64(len(rows)) >= total {
			break
		}
	}

	table := report.Table{
		Title:   fmt.Sprintf("Attendance %s", start.Format("January 2006")),
		Headers: []string{"Date", "Employee", "Punch In", "Punch Out", "Hours", "Status", "Late", "WFH", "Off Day", "Notes"},
	}
	for _, a := range rows {
		table.Rows = append(table.Rows, []string{
			a.Date.Format("2006-01-02"),
			a.UserName,
			s.clock(a.PunchIn),
			s.clock(a.PunchOut),
			a.WorkingHours.StringFixed(2),
			string(a.EffectiveStatus()),
			yesNo(a.IsLate),
			yesNo(a.IsWFH),
			yesNo(a.IsOffDay),
			a.Notes,
		})
	}
	return s.render(table, fmt.Sprintf("attendance-%s", start.Format("2006-01")), req.Format)
}

// ExportLeaves implements report.ReportService.
func (s *ReportServiceImpl) ExportLeaves(ctx context.Context, req report.LeaveExportRequest) (report.File, error) {
	if err := req.Validate(); err != nil {
		return report.File{}, err
	}
	start := time.Date(req.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(req.Year, time.December, 31, 0, 0, 0, 0, time.UTC)

	var rows []leave.LeaveRequest
	for page := 1; ; page++ {
		batch, total, err := s.requestRepo.List(ctx, leave.RequestFilter{From: &start, To: &end, Page: page, Limit: pageSize})
		if err != nil {
			return report.File{}, fmt.Errorf("failed to list leave requests: %w", err)
		}
		rows = append(rows, batch...)
		if len(batch) < pageSize || int64(len(rows)) >= total {
			break
		}
	}

	table := report.Table{
		Title:   fmt.Sprintf("Leave requests %d", req.Year),
		Headers: []string{"Employee", "Type", "From", "To", "Days", "Comp-off", "Paid", "LOP", "Status", "Reason"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.UserName,
			r.LeaveTypeCode,
			r.StartDate.Format("2006-01-02"),
			r.EndDate.Format("2006-01-02"),
			r.TotalDays.String(),
			r.Allocation.CompOff.String(),
			r.Allocation.Paid.String(),
			r.Allocation.LOP.String(),
			string(r.Status),
			r.Reason,
		})
	}
	return s.render(table, fmt.Sprintf("leaves-%d", req.Year), req.Format)
}

func (s *ReportServiceImpl) render(t report.Table, name string, format report.Format) (report.File, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case report.FormatXLSX:
		body, err = renderXLSX(t)
	case report.FormatPDF:
		body, err = renderPDF(t, s.now().In(s.loc))
	default:
		format = report.FormatCSV
		body, err = renderCSV(t)
	}
	if err != nil {
		return report.File{}, fmt.Errorf("failed to render %s: %w", format, err)
	}
	return report.File{
		Filename:    name + "." + string(format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *ReportServiceImpl) clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var _ report.ReportService = (*ReportServiceImpl)(nil)

package report

import "context"

// ReportService builds admin exports
type ReportService interface {
	// ExportAttendance renders every attendance row of a month
	ExportAttendance(ctx context.Context, req AttendanceExportRequest) (File, error)

	// ExportLeaves renders every leave request that starts in a year
	ExportLeaves(ctx context.Context, req LeaveExportRequest) (File, error)
}

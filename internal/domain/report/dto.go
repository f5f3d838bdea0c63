package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, FormatPDF:
		return Format(s), nil
	}
	return "", ErrInvalidFormat
}

type AttendanceExportRequest struct {
	Month  int
	Year   int
	UserID *string
	Format Format
}

func (r *AttendanceExportRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Month < 1 || r.Month > 12 {
		errs.Add("month", ErrInvalidMonth.Error())
	}
	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs.Add("year", fmt.Sprintf("year must be between 2020 and %d", currentYear+1))
	}
	return errs.Err()
}

type LeaveExportRequest struct {
	Year   int
	Format Format
}

func (r *LeaveExportRequest) Validate() error {
	var errs validator.ValidationErrors
	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs.Add("year", fmt.Sprintf("year must be between 2020 and %d", currentYear+1))
	}
	return errs.Err()
}

// Table is a rendered report ready for any writer.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// File is an export ready to stream.
type File struct {
	Filename    string
	ContentType string
	Body        []byte
}

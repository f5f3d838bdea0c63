package report

import "errors"

var (
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
	ErrInvalidYear   = errors.New("year must be a valid year")
	ErrInvalidFormat = errors.New("format must be csv, xlsx or pdf")
)

package compoff

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type Filter struct {
	UserID *string
	Status *Status
	Page   int
	Limit  int
}

func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type CompOffResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	UserName    string          `json:"user_name,omitempty"`
	EarnedDate  string          `json:"earned_date"`
	EarnedHours decimal.Decimal `json:"earned_hours"`
	CreditDays  decimal.Decimal `json:"credit_days"`
	Status      string          `json:"status"`
	ExpiresOn   string          `json:"expires_on"`
	UsedDate    *string         `json:"used_date,omitempty"`
	Reason      string          `json:"reason"`
	Source      string          `json:"source"`
	ParentID    *string         `json:"parent_id,omitempty"`
}

func ToResponse(c CompOff) CompOffResponse {
	resp := CompOffResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		UserName:    c.UserName,
		EarnedDate:  c.EarnedDate.Format("2006-01-02"),
		EarnedHours: c.EarnedHours,
		CreditDays:  c.CreditDays,
		Status:      string(c.Status),
		ExpiresOn:   c.ExpiresOn.Format("2006-01-02"),
		Reason:      c.Reason,
		Source:      string(c.Source),
		ParentID:    c.ParentID,
	}
	if c.UsedDate != nil {
		d := c.UsedDate.Format("2006-01-02")
		resp.UsedDate = &d
	}
	return resp
}

type MyCompOffResponse struct {
	Available decimal.Decimal   `json:"available_days"`
	CompOffs  []CompOffResponse `json:"comp_offs"`
}

type ListCompOffResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	CompOffs   []CompOffResponse `json:"comp_offs"`
}

type GrantRequest struct {
	UserID      string          `json:"user_id" validate:"required"`
	EarnedDate  string          `json:"earned_date" validate:"required,date"`
	CreditDays  decimal.Decimal `json:"credit_days"`
	EarnedHours decimal.Decimal `json:"earned_hours"`
	Reason      string          `json:"reason" validate:"required"`

	Earned time.Time `json:"-"`
}

func (r *GrantRequest) Validate() error {
	errs := validator.Struct(r)
	if !r.CreditDays.IsPositive() {
		errs.Add("credit_days", ErrInvalidCreditAmount.Error())
	}
	if r.EarnedHours.IsNegative() {
		errs.Add("earned_hours", "earned_hours must not be negative")
	}
	if len(errs) == 0 {
		r.Earned, _ = time.Parse("2006-01-02", r.EarnedDate)
	}
	return errs.Err()
}

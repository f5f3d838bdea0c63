package validator

import (
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
		ok    bool
	}{
		{"10:00", 10 * time.Hour, true},
		{"14:30", 14*time.Hour + 30*time.Minute, true},
		{"23:59:30", 23*time.Hour + 59*time.Minute + 30*time.Second, true},
		{"24:00", 0, false},
		{"9am", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := IsValidClock(c.input)
		if ok != c.ok || got != c.want {
			t.Errorf("IsValidClock(%q) = (%v, %v), want (%v, %v)", c.input, got, ok, c.want, c.ok)
		}
	}
}

func TestIsValidMobile(t *testing.T) {
	valid := []string{"9876543210", "+919876543210", "98765-43210", "98765 43210"}
	invalid := []string{"12345", "98765432101234567", "abc9876543210", ""}
	for _, m := range valid {
		if !IsValidMobile(m) {
			t.Errorf("IsValidMobile(%q) = false, want true", m)
		}
	}
	for _, m := range invalid {
		if IsValidMobile(m) {
			t.Errorf("IsValidMobile(%q) = true, want false", m)
		}
	}
}

type structSample struct {
	Mobile string `json:"mobile" validate:"required"`
	Type   string `json:"request_type" validate:"oneof=missed_punch_in missed_punch_out"`
	Date   string `json:"date" validate:"date"`
	Start  string `json:"start_time" validate:"omitempty,clock"`
}

func TestStruct(t *testing.T) {
	ok := structSample{Mobile: "9876543210", Type: "missed_punch_in", Date: "2024-03-01", Start: "10:00"}
	if errs := Struct(ok); errs != nil {
		t.Fatalf("Struct(valid) = %v, want nil", errs)
	}

	bad := structSample{Type: "nap", Date: "01-03-2024", Start: "25:00"}
	got := Struct(bad).ToMap()
	for _, field := range []string{"mobile", "request_type", "date", "start_time"} {
		if _, exists := got[field]; !exists {
			t.Errorf("Struct(invalid) missing error for %q, got %v", field, got)
		}
	}
	if got["mobile"] != "mobile is required" {
		t.Errorf("mobile message = %q", got["mobile"])
	}
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Errorf("empty ValidationErrors.Err() should be nil")
	}
	errs.Add("date", "date is required")
	if errs.Err() == nil {
		t.Errorf("non-empty ValidationErrors.Err() should not be nil")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	got := errs.Error()
	want := "email: invalid; phone: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"email": "invalid", "phone": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	cases := []struct {
		input string
		valid bool
	}{
		{"2025-03-14T09:30:00Z", true},
		{"2025-03-14T09:30:00+05:30", true},
		{"2025-03-14T09:30:00.123456Z", true},
		{"2025-03-14 09:30:00", false},
		{"2025-03-14", false},
	}
	for _, c := range cases {
		if _, ok := IsValidDateTime(c.input); ok != c.valid {
			t.Errorf("IsValidDateTime(%q) = %v, want %v", c.input, ok, c.valid)
		}
	}
}

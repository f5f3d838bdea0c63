package email

import (
	"errors"
	"html/template"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	failures int
	calls    int
	sent     []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestService(t *testing.T, host string, d *fakeDialer) *emailServiceImpl {
	t.Helper()
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	require.NoError(t, err)
	return &emailServiceImpl{
		cfg:       config.SMTPConfig{Host: host, From: "hr@example.com", FromName: "HR"},
		templates: tmpl,
		dialer:    d,
	}
}

func TestSendLeaveStatus_RetriesThenSucceeds(t *testing.T) {
	d := &fakeDialer{failures: 2}
	s := newTestService(t, "smtp.example.com", d)

	err := s.SendLeaveStatus("emp@example.com", StatusData{EmployeeName: "Asha", Subject: "leave request", Date: "2024-03-05", Status: "approved"})

	require.NoError(t, err)
	assert.Equal(t, 3, d.calls)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"emp@example.com"}, d.sent[0].GetHeader("To"))
}

func TestSendAutoPunchOut_GivesUpAfterMaxRetries(t *testing.T) {
	d := &fakeDialer{failures: 5}
	s := newTestService(t, "smtp.example.com", d)

	err := s.SendAutoPunchOut("emp@example.com", AutoPunchOutData{EmployeeName: "Asha", Date: "2024-03-05"})

	assert.Error(t, err)
	assert.Equal(t, maxRetries, d.calls)
}

func TestSendLeaveApplied_SkipsWithoutHost(t *testing.T) {
	d := &fakeDialer{}
	s := newTestService(t, "", d)

	err := s.SendLeaveApplied([]string{"admin@example.com"}, LeaveAppliedData{EmployeeName: "Asha"})

	assert.NoError(t, err)
	assert.Zero(t, d.calls)
}

func TestRender_LeaveApplied(t *testing.T) {
	s := newTestService(t, "", &fakeDialer{})

	body, err := s.render("leave_applied.html", LeaveAppliedData{EmployeeName: "Asha", LeaveType: "Sick Leave", LOPDays: "2"})

	require.NoError(t, err)
	assert.Contains(t, body, "Asha")
	assert.Contains(t, body, "Sick Leave")
}

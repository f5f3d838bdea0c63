package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendLeaveApplied(to []string, data LeaveAppliedData) error
	SendLeaveStatus(to string, data StatusData) error
	SendRegularizationStatus(to string, data StatusData) error
	SendWFHStatus(to string, data StatusData) error
	SendAutoPunchOut(to string, data AutoPunchOutData) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	dialer    dialer
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		dialer:    d,
		backoff:   time.Second,
	}, nil
}

type LeaveAppliedData struct {
	EmployeeName string
	LeaveType    string
	StartDate    string
	EndDate      string
	TotalDays    string
	CompOffDays  string
	PaidDays     string
	LOPDays      string
	Reason       string
}

// StatusData is shared by leave, regularization and WFH status emails.
type StatusData struct {
	EmployeeName string
	Subject      string
	Date         string
	Status       string
	Remarks      string
	Details      string
}

type AutoPunchOutData struct {
	EmployeeName string
	Date         string
	PunchIn      string
	PunchOut     string
}

// SendLeaveApplied notifies admins about a new leave request
func (s *emailServiceImpl) SendLeaveApplied(to []string, data LeaveAppliedData) error {
	body, err := s.render("leave_applied.html", data)
	if err != nil {
		return err
	}
	return s.sendHTML(to, fmt.Sprintf("Leave request from %s", data.EmployeeName), body)
}

func (s *emailServiceImpl) SendLeaveStatus(to string, data StatusData) error {
	body, err := s.render("status.html", data)
	if err != nil {
		return err
	}
	return s.sendHTML([]string{to}, fmt.Sprintf("Your leave request was %s", data.Status), body)
}

func (s *emailServiceImpl) SendRegularizationStatus(to string, data StatusData) error {
	body, err := s.render("status.html", data)
	if err != nil {
		return err
	}
	return s.sendHTML([]string{to}, fmt.Sprintf("Your regularization request was %s", data.Status), body)
}

func (s *emailServiceImpl) SendWFHStatus(to string, data StatusData) error {
	body, err := s.render("status.html", data)
	if err != nil {
		return err
	}
	return s.sendHTML([]string{to}, fmt.Sprintf("Your work from home request was %s", data.Status), body)
}

// SendAutoPunchOut warns an employee that the system closed their session
func (s *emailServiceImpl) SendAutoPunchOut(to string, data AutoPunchOutData) error {
	body, err := s.render("auto_punch_out.html", data)
	if err != nil {
		return err
	}
	return s.sendHTML([]string{to}, "You were punched out automatically", body)
}

func (s *emailServiceImpl) render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

func (s *emailServiceImpl) sendHTML(to []string, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}
	if len(to) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.dialer.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s)
		if attempt < maxRetries {
			time.Sleep(s.backoff * time.Duration(1<<(attempt-1)))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

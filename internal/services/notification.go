package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/metrics"
	"remindly-backend/internal/notify"
)

const defaultSMSMessage = "Hi, user"

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, email notify.Email) (string, error)
}

// SMSSender delivers text messages
type SMSSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// NotificationService sends email and SMS to the calling user. A nil mailer
// or sender means that channel is not configured.
type NotificationService struct {
	users   UserRepository
	mailer  Mailer
	sms     SMSSender
	metrics *metrics.Metrics
}

// NewNotificationService creates a new notification service
func NewNotificationService(users UserRepository, mailer Mailer, sms SMSSender, m *metrics.Metrics) *NotificationService {
	return &NotificationService{
		users:   users,
		mailer:  mailer,
		sms:     sms,
		metrics: m,
	}
}

// EmailRequest represents a request to send an email
type EmailRequest struct {
	Subject     string  `json:"subject"`
	Message     string  `json:"message"`
	HTMLContent *string `json:"html_content"`
	Email       *string `json:"email"`
}

// SMSRequest represents a request to send a text message
type SMSRequest struct {
	Message *string `json:"message"`
}

// Delivery reports where a notification went
type Delivery struct {
	ID     string `json:"id"`
	SentTo string `json:"sent_to"`
}

// SendEmail emails the caller, or the address in the request when given
func (s *NotificationService) SendEmail(ctx context.Context, userID string, req EmailRequest) (*Delivery, error) {
	if s.mailer == nil {
		return nil, apperrors.Unavailable("Email service is not configured")
	}
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if subject == "" || message == "" {
		return nil, apperrors.Validation("Subject and message are required")
	}

	to := ""
	if req.Email != nil {
		to = strings.TrimSpace(*req.Email)
	}
	if to == "" {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		to = user.Email
	}
	if to == "" {
		return nil, apperrors.Validation("User does not have an email address")
	}

	htmlBody := "<p>" + html.EscapeString(message) + "</p>"
	if req.HTMLContent != nil && strings.TrimSpace(*req.HTMLContent) != "" {
		htmlBody = *req.HTMLContent
	}

	id, err := s.mailer.Send(ctx, notify.Email{
		To:      to,
		Subject: subject,
		Text:    message,
		HTML:    htmlBody,
	})
	s.metrics.NotificationSent("email", err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	return &Delivery{ID: id, SentTo: to}, nil
}

// SendSMS texts the caller's stored phone number
func (s *NotificationService) SendSMS(ctx context.Context, userID string, req SMSRequest) (*Delivery, error) {
	if s.sms == nil {
		return nil, apperrors.Unavailable("SMS service is not configured")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PhoneNumber == nil || *user.PhoneNumber == "" {
		return nil, apperrors.Validation("User does not have a phone number")
	}

	body := defaultSMSMessage
	if req.Message != nil && strings.TrimSpace(*req.Message) != "" {
		body = strings.TrimSpace(*req.Message)
	}

	sid, err := s.sms.Send(ctx, *user.PhoneNumber, body)
	s.metrics.NotificationSent("sms", err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send sms: %w", err)
	}
	return &Delivery{ID: sid, SentTo: *user.PhoneNumber}, nil
}

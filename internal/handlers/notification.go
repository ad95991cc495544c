package handlers

import (
	"net/http"

	"remindly-backend/internal/middleware"
	"remindly-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// NotificationHandler handles outbound email and SMS requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// SendEmail handles POST /api/v1/notifications/email
func (h *NotificationHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	delivery, err := h.notificationService.SendEmail(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to send email")
		return
	}

	log.Info().Str("user_id", userID).Str("message_id", delivery.ID).Msg("Email sent")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email sent successfully",
		"id":      delivery.ID,
		"sent_to": delivery.SentTo,
	})
}

// SendSMS handles POST /api/v1/notifications/sms
func (h *NotificationHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.SMSRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	delivery, err := h.notificationService.SendSMS(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to send message")
		return
	}

	log.Info().Str("user_id", userID).Str("sid", delivery.ID).Msg("SMS sent")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Message sent",
		"id":      delivery.ID,
		"sent_to": delivery.SentTo,
	})
}

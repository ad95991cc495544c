package handlers

import (
	"net/http"

	"remindly-backend/internal/middleware"
	"remindly-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ReminderHandler handles reminder-related HTTP requests
type ReminderHandler struct {
	reminderService *services.ReminderService
	wsHub           *services.WSHub
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService *services.ReminderService, wsHub *services.WSHub) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		wsHub:           wsHub,
	}
}

// CreateReminder handles POST /api/v1/reminders
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateReminderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reminder, err := h.reminderService.CreateReminder(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to create reminder")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("reminder_id", reminder.ID).
		Str("frequency", string(reminder.Frequency)).
		Msg("Reminder created")

	h.wsHub.Publish(userID, services.EventReminderCreated, reminder)
	respondJSON(w, http.StatusCreated, reminder)
}

// ListReminders handles GET /api/v1/reminders
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	reminders, err := h.reminderService.ListReminders(ctx, userID, r.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch reminders")
		return
	}
	respondJSON(w, http.StatusOK, reminders)
}

// ListPersonalReminders handles GET /api/v1/reminders/personal
func (h *ReminderHandler) ListPersonalReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	reminders, err := h.reminderService.ListPersonalReminders(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch personal reminders")
		return
	}
	respondJSON(w, http.StatusOK, reminders)
}

// ListProfileReminders handles GET /api/v1/profiles/{profile_id}/reminders
func (h *ReminderHandler) ListProfileReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	reminders, err := h.reminderService.ListProfileReminders(ctx, userID, chi.URLParam(r, "profile_id"))
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch profile reminders")
		return
	}
	respondJSON(w, http.StatusOK, reminders)
}

// GetReminder handles GET /api/v1/reminders/{reminder_id}
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	reminder, err := h.reminderService.GetReminder(ctx, userID, chi.URLParam(r, "reminder_id"))
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch reminder")
		return
	}
	respondJSON(w, http.StatusOK, reminder)
}

// UpdateReminder handles PATCH /api/v1/reminders/{reminder_id}
func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UpdateReminderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reminder, err := h.reminderService.UpdateReminder(ctx, userID, chi.URLParam(r, "reminder_id"), req)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to update reminder")
		return
	}

	h.wsHub.Publish(userID, services.EventReminderUpdated, reminder)
	respondJSON(w, http.StatusOK, reminder)
}

// DeleteReminder handles DELETE /api/v1/reminders/{reminder_id}
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	reminderID := chi.URLParam(r, "reminder_id")

	if err := h.reminderService.DeleteReminder(ctx, userID, reminderID); err != nil {
		respondServiceError(w, r, err, userID, "Failed to delete reminder")
		return
	}

	h.wsHub.Publish(userID, services.EventReminderDeleted, map[string]string{"id": reminderID})
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Reminder deleted successfully"})
}

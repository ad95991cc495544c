package handlers

import (
	"io"
	"net/http"

	"remindly-backend/internal/middleware"
	"remindly-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 1 << 20

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// IdentityWebhook handles POST /api/v1/webhooks/identity
func (h *UserHandler) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.userService.HandleWebhook(ctx, payload, r.Header)
	if err != nil {
		log.Warn().Err(err).Str("svix_id", r.Header.Get("svix-id")).Msg("Identity webhook rejected")
		respondServiceError(w, r, err, "", "Failed to process webhook")
		return
	}

	if result.User != nil {
		log.Info().
			Str("event", result.Event).
			Str("user_id", result.User.ID).
			Msg("Identity webhook applied")
	}

	respondJSON(w, http.StatusOK, result)
}

// GetMe handles GET /api/v1/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

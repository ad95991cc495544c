package handlers

import (
	"errors"
	"io"
	"net/http"

	"remindly-backend/internal/middleware"
	"remindly-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// multipart framing allowance on top of the image itself
const uploadOverhead = 64 << 10

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
	imageService   *services.ImageService
	wsHub          *services.WSHub
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, imageService *services.ImageService, wsHub *services.WSHub) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		imageService:   imageService,
		wsHub:          wsHub,
	}
}

// CreateProfile handles POST /api/v1/profiles
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.CreateProfile(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to create profile")
		return
	}

	log.Info().Str("user_id", userID).Str("profile_id", profile.ID).Msg("Profile created")
	h.wsHub.Publish(userID, services.EventProfileCreated, profile)
	respondJSON(w, http.StatusCreated, profile)
}

// ListProfiles handles GET /api/v1/profiles
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profiles, err := h.profileService.ListProfiles(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch profiles")
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

// GetProfile handles GET /api/v1/profiles/{profile_id}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.profileService.GetProfile(ctx, userID, chi.URLParam(r, "profile_id"))
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/v1/profiles/{profile_id}
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(ctx, userID, chi.URLParam(r, "profile_id"), req)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to update profile")
		return
	}

	h.wsHub.Publish(userID, services.EventProfileUpdated, profile)
	respondJSON(w, http.StatusOK, profile)
}

// DeleteProfile handles DELETE /api/v1/profiles/{profile_id}
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	profileID := chi.URLParam(r, "profile_id")

	result, err := h.profileService.DeleteProfile(ctx, userID, profileID)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to delete profile")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("profile_id", profileID).
		Int64("reminders", result.DeletedRemindersCount).
		Int64("favourites", result.DeletedFavouritesCount).
		Bool("image_deleted", result.ImageDeleted).
		Msg("Profile deleted")

	h.wsHub.Publish(userID, services.EventProfileDeleted, map[string]interface{}{
		"id":      profileID,
		"summary": result,
	})
	respondJSON(w, http.StatusOK, result)
}

// UploadImage handles POST /api/v1/profiles/{profile_id}/image
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageSize+uploadOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "File too large. Maximum size is 5MB", http.StatusBadRequest)
			return
		}
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// One byte over the limit is enough to reject the upload.
	data, err := io.ReadAll(io.LimitReader(file, services.MaxImageSize+1))
	if err != nil {
		respondError(w, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}

	profile, err := h.imageService.UploadProfileImage(ctx, userID, chi.URLParam(r, "profile_id"), services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to upload image")
		return
	}

	h.wsHub.Publish(userID, services.EventProfileImageUpdated, profile)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Image uploaded successfully",
		"profile_img_url": profile.ProfileImgURL,
		"profile":         profile,
	})
}

// RemoveImage handles DELETE /api/v1/profiles/{profile_id}/image
func (h *ProfileHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.imageService.RemoveProfileImage(ctx, userID, chi.URLParam(r, "profile_id"))
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to remove image")
		return
	}

	h.wsHub.Publish(userID, services.EventProfileImageUpdated, profile)
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Image removed successfully"})
}

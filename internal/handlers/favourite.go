package handlers

import (
	"net/http"

	"remindly-backend/internal/middleware"
	"remindly-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// FavouriteHandler handles favourite-related HTTP requests
type FavouriteHandler struct {
	favouriteService *services.FavouriteService
	wsHub            *services.WSHub
}

// NewFavouriteHandler creates a new favourite handler
func NewFavouriteHandler(favouriteService *services.FavouriteService, wsHub *services.WSHub) *FavouriteHandler {
	return &FavouriteHandler{
		favouriteService: favouriteService,
		wsHub:            wsHub,
	}
}

// CreateFavourite handles POST /api/v1/favourites
func (h *FavouriteHandler) CreateFavourite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateFavouriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	favourite, err := h.favouriteService.CreateFavourite(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to create favourite")
		return
	}

	h.wsHub.Publish(userID, services.EventFavouriteCreated, favourite)
	respondJSON(w, http.StatusCreated, favourite)
}

// ListFavourites handles GET /api/v1/favourites
func (h *FavouriteHandler) ListFavourites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	favourites, err := h.favouriteService.ListFavourites(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch favourites")
		return
	}
	respondJSON(w, http.StatusOK, favourites)
}

// ListProfileFavourites handles GET /api/v1/profiles/{profile_id}/favourites
func (h *FavouriteHandler) ListProfileFavourites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	favourites, err := h.favouriteService.ListProfileFavourites(ctx, userID, chi.URLParam(r, "profile_id"))
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch profile favourites")
		return
	}
	respondJSON(w, http.StatusOK, favourites)
}

// GetFavourite handles GET /api/v1/favourites/{favourite_id}
func (h *FavouriteHandler) GetFavourite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	favourite, err := h.favouriteService.GetFavourite(ctx, userID, chi.URLParam(r, "favourite_id"))
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to fetch favourite")
		return
	}
	respondJSON(w, http.StatusOK, favourite)
}

// UpdateFavourite handles PATCH /api/v1/favourites/{favourite_id}
func (h *FavouriteHandler) UpdateFavourite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UpdateFavouriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	favourite, err := h.favouriteService.UpdateFavourite(ctx, userID, chi.URLParam(r, "favourite_id"), req)
	if err != nil {
		respondServiceError(w, r, err, userID, "Failed to update favourite")
		return
	}

	h.wsHub.Publish(userID, services.EventFavouriteUpdated, favourite)
	respondJSON(w, http.StatusOK, favourite)
}

// DeleteFavourite handles DELETE /api/v1/favourites/{favourite_id}
func (h *FavouriteHandler) DeleteFavourite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	favouriteID := chi.URLParam(r, "favourite_id")

	if err := h.favouriteService.DeleteFavourite(ctx, userID, favouriteID); err != nil {
		respondServiceError(w, r, err, userID, "Failed to delete favourite")
		return
	}

	h.wsHub.Publish(userID, services.EventFavouriteDeleted, map[string]string{"id": favouriteID})
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Favourite deleted successfully"})
}

package services

import (
	"context"
	"fmt"
	"time"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/google/uuid"
)

// FavouriteService handles favourite-related business logic
type FavouriteService struct {
	favourites FavouriteRepository
	profiles   ProfileRepository
}

// NewFavouriteService creates a new favourite service
func NewFavouriteService(favourites FavouriteRepository, profiles ProfileRepository) *FavouriteService {
	return &FavouriteService{
		favourites: favourites,
		profiles:   profiles,
	}
}

// CreateFavouriteRequest represents a request to create a favourite
type CreateFavouriteRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ProfileID   string  `json:"profile_id"`
}

// UpdateFavouriteRequest represents a partial update of a favourite
type UpdateFavouriteRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ProfileID   *string `json:"profile_id"`
}

// CreateFavourite stores a favourite under one of the user's profiles
func (s *FavouriteService) CreateFavourite(ctx context.Context, userID string, req CreateFavouriteRequest) (*models.Favourite, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title, err := requiredText("title", req.Title, models.MaxTitleLength)
	if err != nil {
		return nil, err
	}
	profile, err := ownedProfile(ctx, s.profiles, userID, req.ProfileID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	favourite := &models.Favourite{
		ID:          uuid.New().String(),
		UserID:      userID,
		ProfileID:   profile.ID,
		Title:       title,
		Description: optionalText(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.favourites.Create(ctx, favourite); err != nil {
		return nil, fmt.Errorf("failed to create favourite: %w", err)
	}
	return favourite, nil
}

// GetFavourite returns one of the user's favourites
func (s *FavouriteService) GetFavourite(ctx context.Context, userID, favouriteID string) (*models.Favourite, error) {
	if err := validateID("favourite", favouriteID); err != nil {
		return nil, err
	}
	favourite, err := s.favourites.GetByID(ctx, favouriteID)
	if err != nil {
		return nil, err
	}
	if favourite.UserID != userID {
		return nil, apperrors.NotFound("favourite")
	}
	return favourite, nil
}

// UpdateFavourite applies a partial update; a new profile_id moves the
// favourite to another of the user's profiles
func (s *FavouriteService) UpdateFavourite(ctx context.Context, userID, favouriteID string, req UpdateFavouriteRequest) (*models.Favourite, error) {
	favourite, err := s.GetFavourite(ctx, userID, favouriteID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title, err := requiredText("title", *req.Title, models.MaxTitleLength)
		if err != nil {
			return nil, err
		}
		favourite.Title = title
	}
	if req.ProfileID != nil {
		profile, err := ownedProfile(ctx, s.profiles, userID, *req.ProfileID)
		if err != nil {
			return nil, err
		}
		favourite.ProfileID = profile.ID
	}
	if req.Description != nil {
		favourite.Description = optionalText(req.Description)
	}
	favourite.UpdatedAt = time.Now()

	if err := s.favourites.Update(ctx, favourite); err != nil {
		return nil, fmt.Errorf("failed to update favourite: %w", err)
	}
	return favourite, nil
}

// DeleteFavourite deletes one of the user's favourites
func (s *FavouriteService) DeleteFavourite(ctx context.Context, userID, favouriteID string) error {
	if _, err := s.GetFavourite(ctx, userID, favouriteID); err != nil {
		return err
	}
	if err := s.favourites.Delete(ctx, favouriteID); err != nil {
		return fmt.Errorf("failed to delete favourite: %w", err)
	}
	return nil
}

// ListFavourites returns all of the user's favourites with their profile
func (s *FavouriteService) ListFavourites(ctx context.Context, userID string) ([]*models.FavouriteWithProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	favourites, err := s.favourites.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favourites: %w", err)
	}
	return favourites, nil
}

// ListProfileFavourites returns the favourites of one of the user's profiles
func (s *FavouriteService) ListProfileFavourites(ctx context.Context, userID, profileID string) ([]*models.Favourite, error) {
	if _, err := ownedProfile(ctx, s.profiles, userID, profileID); err != nil {
		return nil, err
	}
	favourites, err := s.favourites.ListByProfile(ctx, userID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile favourites: %w", err)
	}
	return favourites, nil
}

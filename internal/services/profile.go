package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/metrics"
	"remindly-backend/internal/models"
	"remindly-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	profiles   ProfileRepository
	reminders  ReminderRepository
	favourites FavouriteRepository
	tx         Transactor
	store      ObjectStore
	metrics    *metrics.Metrics
}

// NewProfileService creates a new profile service
func NewProfileService(
	profiles ProfileRepository,
	reminders ReminderRepository,
	favourites FavouriteRepository,
	tx Transactor,
	store ObjectStore,
	m *metrics.Metrics,
) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		reminders:  reminders,
		favourites: favourites,
		tx:         tx,
		store:      store,
		metrics:    m,
	}
}

// CreateProfileRequest represents a request to create a profile
type CreateProfileRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// UpdateProfileRequest replaces the provided fields only.
// An empty profile_img_url removes the image. A non-empty one must address an
// image stored for this profile.
type UpdateProfileRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	ProfileImgURL *string `json:"profile_img_url"`
}

// CascadeError reports a failed dependent-row delete during profile deletion.
// It is a server error and never unwraps to a client-facing kind.
type CascadeError struct {
	Step string
	Err  error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("profile deletion failed while deleting %s: %v", e.Step, e.Err)
}

// CreateProfile creates a profile for the user
func (s *ProfileService) CreateProfile(ctx context.Context, userID string, req CreateProfileRequest) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	name, err := requiredText("name", req.Name, models.MaxTitleLength)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	profile := &models.Profile{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Description: optionalText(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// GetProfile returns one of the user's profiles
func (s *ProfileService) GetProfile(ctx context.Context, userID, profileID string) (*models.Profile, error) {
	return ownedProfile(ctx, s.profiles, userID, profileID)
}

// ListProfiles returns the user's profiles, newest first
func (s *ProfileService) ListProfiles(ctx context.Context, userID string) ([]*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile applies a partial update to one of the user's profiles
func (s *ProfileService) UpdateProfile(ctx context.Context, userID, profileID string, req UpdateProfileRequest) (*models.Profile, error) {
	profile, err := ownedProfile(ctx, s.profiles, userID, profileID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := requiredText("name", *req.Name, models.MaxTitleLength)
		if err != nil {
			return nil, err
		}
		profile.Name = name
	}
	if req.Description != nil {
		profile.Description = optionalText(req.Description)
	}
	previous := profile.ProfileImgURL
	imgURL, changeImage := previous, false
	if req.ProfileImgURL != nil {
		imgURL, err = s.imageURLFor(profile, req.ProfileImgURL)
		if err != nil {
			return nil, err
		}
		changeImage = !sameURL(previous, imgURL)
	}
	profile.UpdatedAt = time.Now()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.profiles.Update(ctx, profile); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if !changeImage {
			return nil
		}
		saved, err := s.profiles.SetImageURL(ctx, profile.ID, previous, imgURL, profile.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update profile image url: %w", err)
		}
		if !saved {
			return apperrors.Conflict("profile image was changed by another request, try again")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changeImage {
		profile.ProfileImgURL = imgURL
		if previous != nil {
			removeBlob(ctx, s.store, s.metrics, profile, *previous)
		}
	}
	return profile, nil
}

// imageURLFor validates an image address sent in an update. Only keys inside
// the profile's own storage namespace are accepted.
func (s *ProfileService) imageURLFor(profile *models.Profile, raw *string) (*string, error) {
	imgURL := optionalText(raw)
	if imgURL == nil {
		return nil, nil
	}
	if len(*imgURL) > models.MaxImageURLLength {
		return nil, apperrors.Validation("profile_img_url must be at most %d characters", models.MaxImageURLLength)
	}
	key, err := s.store.KeyFromURL(*imgURL)
	if err != nil || !storage.InNamespace(key, profile.UserID, profile.ID) {
		return nil, apperrors.Validation("profile_img_url must address an image uploaded for this profile")
	}
	return imgURL, nil
}

func sameURL(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// DeleteProfile removes a profile together with everything that depends on it.
//
// The image blob goes first and is best-effort: a failure is logged and
// reported through ImageDeleted but does not stop the deletion. Reminders,
// favourites and the profile row are then deleted in one transaction, children
// first. A failed dependent delete rolls everything back and returns a
// *CascadeError. A profile row that is already gone counts as deleted, so two
// concurrent deletions both succeed.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID, profileID string) (*models.ProfileDeletion, error) {
	profile, err := ownedProfile(ctx, s.profiles, userID, profileID)
	if err != nil {
		return nil, err
	}

	imageDeleted := true
	if profile.ProfileImgURL != nil {
		imageDeleted = removeBlob(ctx, s.store, s.metrics, profile, *profile.ProfileImgURL)
	}

	var remindersDeleted, favouritesDeleted int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.reminders.DeleteByProfileID(ctx, profile.ID)
		if err != nil {
			return &CascadeError{Step: "reminders", Err: err}
		}
		remindersDeleted = n

		n, err = s.favourites.DeleteByProfileID(ctx, profile.ID)
		if err != nil {
			return &CascadeError{Step: "favourites", Err: err}
		}
		favouritesDeleted = n

		if err := s.profiles.Delete(ctx, profile.ID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return &CascadeError{Step: "profile", Err: err}
		}
		return nil
	})
	if err != nil {
		var cascadeErr *CascadeError
		if errors.As(err, &cascadeErr) {
			return nil, err
		}
		return nil, &CascadeError{Step: "transaction", Err: err}
	}

	s.metrics.ProfileDeleted(remindersDeleted, favouritesDeleted)

	return &models.ProfileDeletion{
		Message:                deletionMessage(imageDeleted),
		DeletedRemindersCount:  remindersDeleted,
		DeletedFavouritesCount: favouritesDeleted,
		ImageDeleted:           imageDeleted,
	}, nil
}

func deletionMessage(imageDeleted bool) string {
	if imageDeleted {
		return "Profile and all related data deleted successfully"
	}
	return "Profile deleted, but the profile image could not be removed from storage"
}

// removeBlob deletes the object behind imgURL and reports whether it is gone.
// Only keys inside the profile's namespace are deleted, so a URL pointing at
// somebody else's image is left alone. Failures are logged and never returned.
func removeBlob(ctx context.Context, store ObjectStore, m *metrics.Metrics, profile *models.Profile, imgURL string) bool {
	key, err := store.KeyFromURL(imgURL)
	if err != nil {
		log.Warn().Err(err).Str("url", imgURL).Msg("Cannot derive storage key from image URL")
		m.StorageCleanupFailed()
		return false
	}
	if !storage.InNamespace(key, profile.UserID, profile.ID) {
		log.Warn().
			Str("user_id", profile.UserID).
			Str("profile_id", profile.ID).
			Str("key", key).
			Msg("Image key is outside the profile's namespace, not deleting")
		return false
	}
	if err := store.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to delete image from storage")
		m.StorageCleanupFailed()
		return false
	}
	return true
}

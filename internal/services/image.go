package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/metrics"
	"remindly-backend/internal/models"
	"remindly-backend/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MaxImageSize is the largest accepted profile image (5 MiB)
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ImageService manages the single image blob a profile may reference
type ImageService struct {
	profiles ProfileRepository
	store    ObjectStore
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewImageService creates a new image service
func NewImageService(profiles ProfileRepository, store ObjectStore, m *metrics.Metrics) *ImageService {
	return &ImageService{
		profiles: profiles,
		store:    store,
		metrics:  m,
		now:      time.Now,
	}
}

// ImageUpload is a profile image received from a client
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func normalizeContentType(contentType string) string {
	contentType, _, _ = strings.Cut(contentType, ";")
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "image/jpg" {
		return "image/jpeg"
	}
	return contentType
}

// ValidateImage checks the declared type, the size and that the bytes
// actually are the declared kind of image.
func ValidateImage(img ImageUpload) (string, error) {
	contentType := normalizeContentType(img.ContentType)
	if !allowedImageTypes[contentType] {
		return "", apperrors.Validation("Invalid file type. Only JPEG, PNG, WebP and GIF images are allowed")
	}
	if len(img.Data) == 0 {
		return "", apperrors.Validation("image file is empty")
	}
	if len(img.Data) > MaxImageSize {
		return "", apperrors.Validation("File too large. Maximum size is 5MB")
	}
	if detected := mimetype.Detect(img.Data); !detected.Is(contentType) {
		return "", apperrors.Validation("file content (%s) does not match declared type %s", detected.String(), contentType)
	}
	return contentType, nil
}

// UploadProfileImage stores img as the profile's image and returns the
// updated profile.
//
// Invalid input is rejected before the object store is touched. The new blob
// is uploaded while the previous one is deleted; if the upload fails the
// profile keeps its current URL. The URL is only replaced if it is still the
// one read at the start; otherwise, or if the row cannot be updated, the new
// blob is removed again.
func (s *ImageService) UploadProfileImage(ctx context.Context, userID, profileID string, img ImageUpload) (*models.Profile, error) {
	contentType, err := ValidateImage(img)
	if err != nil {
		return nil, err
	}
	profile, err := ownedProfile(ctx, s.profiles, userID, profileID)
	if err != nil {
		return nil, err
	}

	key := storage.ImageKey(userID, profile.ID, s.now(), storage.Extension(contentType))
	previous := profile.ProfileImgURL

	var newURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := s.store.Upload(gctx, key, contentType, img.Data)
		if err != nil {
			return fmt.Errorf("failed to upload profile image: %w", err)
		}
		newURL = url
		return nil
	})
	if previous != nil {
		g.Go(func() error {
			removeBlob(gctx, s.store, s.metrics, profile, *previous)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.ImageUploaded(false)
		return nil, err
	}

	now := s.now()
	saved, err := s.profiles.SetImageURL(ctx, profile.ID, previous, &newURL, now)
	if err != nil || !saved {
		s.metrics.ImageUploaded(false)
		removeBlob(ctx, s.store, s.metrics, profile, newURL)
		if err != nil {
			return nil, fmt.Errorf("failed to save profile image url: %w", err)
		}
		return nil, apperrors.Conflict("profile image was changed by another request, try again")
	}
	s.metrics.ImageUploaded(true)

	profile.ProfileImgURL = &newURL
	profile.UpdatedAt = now
	log.Info().
		Str("user_id", userID).
		Str("profile_id", profile.ID).
		Str("filename", img.Filename).
		Str("key", key).
		Msg("Profile image uploaded")
	return profile, nil
}

// RemoveProfileImage deletes the profile's image. The blob delete is
// best-effort; the URL is cleared even when it fails.
func (s *ImageService) RemoveProfileImage(ctx context.Context, userID, profileID string) (*models.Profile, error) {
	profile, err := ownedProfile(ctx, s.profiles, userID, profileID)
	if err != nil {
		return nil, err
	}
	previous := profile.ProfileImgURL
	if previous == nil {
		return nil, apperrors.Validation("profile has no image to remove")
	}

	removeBlob(ctx, s.store, s.metrics, profile, *previous)

	now := s.now()
	saved, err := s.profiles.SetImageURL(ctx, profile.ID, previous, nil, now)
	if err != nil {
		return nil, fmt.Errorf("failed to clear profile image url: %w", err)
	}
	if !saved {
		return nil, apperrors.Conflict("profile image was changed by another request, try again")
	}
	profile.ProfileImgURL = nil
	profile.UpdatedAt = now
	return profile, nil
}

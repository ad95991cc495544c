package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/google/uuid"
)

func validateID(entity, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Validation("%s id is required", entity)
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Validation("invalid %s id", entity)
	}
	return nil
}

// ownedProfile loads a profile and hides profiles of other users behind not-found.
func ownedProfile(ctx context.Context, profiles ProfileRepository, userID, profileID string) (*models.Profile, error) {
	if err := validateID("profile", profileID); err != nil {
		return nil, err
	}
	profile, err := profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, apperrors.NotFound("profile")
	}
	return profile, nil
}

// requiredText trims s and checks it is present and at most max runes long.
func requiredText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.Validation("%s is required", field)
	}
	if utf8.RuneCountInString(s) > max {
		return "", apperrors.Validation("%s must be at most %d characters", field, max)
	}
	return s, nil
}

// optionalText maps blank input to nil
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.Validation("user id is required")
	}
	return nil
}

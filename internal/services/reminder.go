package services

import (
	"context"
	"fmt"
	"time"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/google/uuid"
)

// ReminderService handles reminder-related business logic
type ReminderService struct {
	reminders ReminderRepository
	profiles  ProfileRepository
}

// NewReminderService creates a new reminder service
func NewReminderService(reminders ReminderRepository, profiles ProfileRepository) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		profiles:  profiles,
	}
}

// CreateReminderRequest represents a request to create a reminder.
// There is deliberately no should_expire field.
type CreateReminderRequest struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	DateToRemember string  `json:"date_to_remember"`
	Completed      *bool   `json:"completed"`
	Frequency      string  `json:"frequency"`
	ProfileID      *string `json:"profile_id"`
}

// UpdateReminderRequest represents a partial update. Nil fields are left alone;
// an empty profile_id detaches the reminder from its profile.
type UpdateReminderRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	DateToRemember *string `json:"date_to_remember"`
	Completed      *bool   `json:"completed"`
	Frequency      *string `json:"frequency"`
	ProfileID      *string `json:"profile_id"`
}

func parseFrequency(s string) (models.Frequency, error) {
	if s == "" {
		return "", apperrors.Validation("frequency is required")
	}
	f, err := models.ParseFrequency(s)
	if err != nil {
		return "", apperrors.Validation("Invalid frequency. Must be either 'NEVER', 'MONTH', or 'YEAR'")
	}
	return f, nil
}

func parseDate(s string) (models.Date, error) {
	if s == "" {
		return models.Date{}, apperrors.Validation("date_to_remember is required")
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, apperrors.Validation("date_to_remember must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// resolveProfile checks that a requested profile link points at one of the
// user's profiles. Nil or empty means no profile.
func (s *ReminderService) resolveProfile(ctx context.Context, userID string, profileID *string) (*string, error) {
	if profileID == nil || *profileID == "" {
		return nil, nil
	}
	profile, err := ownedProfile(ctx, s.profiles, userID, *profileID)
	if err != nil {
		return nil, err
	}
	return &profile.ID, nil
}

// CreateReminder validates and stores a new reminder. ShouldExpire is derived
// from the frequency; nothing is persisted when validation fails.
func (s *ReminderService) CreateReminder(ctx context.Context, userID string, req CreateReminderRequest) (*models.Reminder, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title, err := requiredText("title", req.Title, models.MaxTitleLength)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.DateToRemember)
	if err != nil {
		return nil, err
	}
	frequency, err := parseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}
	profileID, err := s.resolveProfile(ctx, userID, req.ProfileID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reminder := &models.Reminder{
		ID:             uuid.New().String(),
		UserID:         userID,
		ProfileID:      profileID,
		Title:          title,
		Description:    optionalText(req.Description),
		DateToRemember: date,
		Completed:      req.Completed != nil && *req.Completed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	reminder.SetFrequency(frequency)

	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

// GetReminder returns one of the user's reminders
func (s *ReminderService) GetReminder(ctx context.Context, userID, reminderID string) (*models.Reminder, error) {
	if err := validateID("reminder", reminderID); err != nil {
		return nil, err
	}
	reminder, err := s.reminders.GetByID(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.UserID != userID {
		return nil, apperrors.NotFound("reminder")
	}
	return reminder, nil
}

// UpdateReminder applies a partial update. Every provided field is validated
// before anything is written, and a new frequency re-derives ShouldExpire.
func (s *ReminderService) UpdateReminder(ctx context.Context, userID, reminderID string, req UpdateReminderRequest) (*models.Reminder, error) {
	reminder, err := s.GetReminder(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title, err := requiredText("title", *req.Title, models.MaxTitleLength)
		if err != nil {
			return nil, err
		}
		reminder.Title = title
	}
	if req.DateToRemember != nil {
		date, err := parseDate(*req.DateToRemember)
		if err != nil {
			return nil, err
		}
		reminder.DateToRemember = date
	}
	if req.Frequency != nil {
		frequency, err := parseFrequency(*req.Frequency)
		if err != nil {
			return nil, err
		}
		reminder.SetFrequency(frequency)
	}
	if req.ProfileID != nil {
		profileID, err := s.resolveProfile(ctx, userID, req.ProfileID)
		if err != nil {
			return nil, err
		}
		reminder.ProfileID = profileID
	}
	if req.Description != nil {
		reminder.Description = optionalText(req.Description)
	}
	if req.Completed != nil {
		reminder.Completed = *req.Completed
	}
	reminder.UpdatedAt = time.Now()

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return reminder, nil
}

// DeleteReminder deletes one of the user's reminders
func (s *ReminderService) DeleteReminder(ctx context.Context, userID, reminderID string) error {
	if _, err := s.GetReminder(ctx, userID, reminderID); err != nil {
		return err
	}
	if err := s.reminders.Delete(ctx, reminderID); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// ListReminders returns the user's reminders with their profile, optionally
// filtered by display status (active or completed)
func (s *ReminderService) ListReminders(ctx context.Context, userID string, status string) ([]*models.ReminderWithProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var want models.ReminderStatus
	switch models.ReminderStatus(status) {
	case "":
	case models.StatusActive, models.StatusCompleted:
		want = models.ReminderStatus(status)
	default:
		return nil, apperrors.Validation("status must be 'active' or 'completed'")
	}

	reminders, err := s.reminders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	if want == "" {
		return reminders, nil
	}

	filtered := make([]*models.ReminderWithProfile, 0, len(reminders))
	for _, r := range reminders {
		if r.Status() == want {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// ListPersonalReminders returns the user's reminders that belong to no profile
func (s *ReminderService) ListPersonalReminders(ctx context.Context, userID string) ([]*models.Reminder, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	reminders, err := s.reminders.ListPersonal(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal reminders: %w", err)
	}
	return reminders, nil
}

// ListProfileReminders returns the reminders attached to one of the user's profiles
func (s *ReminderService) ListProfileReminders(ctx context.Context, userID, profileID string) ([]*models.Reminder, error) {
	if _, err := ownedProfile(ctx, s.profiles, userID, profileID); err != nil {
		return nil, err
	}
	reminders, err := s.reminders.ListByProfile(ctx, userID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile reminders: %w", err)
	}
	return reminders, nil
}

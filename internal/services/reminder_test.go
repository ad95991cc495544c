package services

import (
	"context"
	"testing"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReminderDerivesShouldExpire(t *testing.T) {
	tests := []struct {
		frequency    string
		shouldExpire bool
	}{
		{"NEVER", true},
		{"MONTH", false},
		{"YEAR", false},
	}
	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			env := newTestEnv(t)
			reminder := env.createReminder(t, testUserID, nil, tt.frequency)
			assert.Equal(t, models.Frequency(tt.frequency), reminder.Frequency)
			assert.Equal(t, tt.shouldExpire, reminder.ShouldExpire)

			stored, err := env.reminders.GetReminder(context.Background(), testUserID, reminder.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.shouldExpire, stored.ShouldExpire)
		})
	}
}

func TestCreateReminderValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateReminderRequest
	}{
		{"missing title", CreateReminderRequest{DateToRemember: "2025-01-01", Frequency: "YEAR"}},
		{"blank title", CreateReminderRequest{Title: "   ", DateToRemember: "2025-01-01", Frequency: "YEAR"}},
		{"missing date", CreateReminderRequest{Title: "x", Frequency: "YEAR"}},
		{"bad date", CreateReminderRequest{Title: "x", DateToRemember: "01/02/2025", Frequency: "YEAR"}},
		{"missing frequency", CreateReminderRequest{Title: "x", DateToRemember: "2025-01-01"}},
		{"invalid frequency", CreateReminderRequest{Title: "x", DateToRemember: "2025-01-01", Frequency: "WEEK"}},
		{"lowercase frequency", CreateReminderRequest{Title: "x", DateToRemember: "2025-01-01", Frequency: "never"}},
		{"malformed profile id", CreateReminderRequest{Title: "x", DateToRemember: "2025-01-01", Frequency: "YEAR", ProfileID: strPtr("nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.reminders.CreateReminder(context.Background(), testUserID, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)

			list, err := env.reminders.ListReminders(context.Background(), testUserID, "")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestCreateReminderTitleLength(t *testing.T) {
	env := newTestEnv(t)
	long := make([]rune, models.MaxTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := env.reminders.CreateReminder(context.Background(), testUserID, CreateReminderRequest{
		Title: string(long), DateToRemember: "2025-01-01", Frequency: "YEAR",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.reminders.CreateReminder(context.Background(), testUserID, CreateReminderRequest{
		Title: string(long[1:]), DateToRemember: "2025-01-01", Frequency: "YEAR",
	})
	assert.NoError(t, err)
}

func TestCreateReminderForeignProfile(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, otherUserID, "Bob's mum")

	_, err := env.reminders.CreateReminder(context.Background(), testUserID, CreateReminderRequest{
		Title: "x", DateToRemember: "2025-01-01", Frequency: "YEAR", ProfileID: &profile.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateReminderFrequency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reminder := env.createReminder(t, testUserID, nil, "YEAR")
	require.False(t, reminder.ShouldExpire)

	updated, err := env.reminders.UpdateReminder(ctx, testUserID, reminder.ID, UpdateReminderRequest{Frequency: strPtr("NEVER")})
	require.NoError(t, err)
	assert.True(t, updated.ShouldExpire)

	updated, err = env.reminders.UpdateReminder(ctx, testUserID, reminder.ID, UpdateReminderRequest{Frequency: strPtr("MONTH")})
	require.NoError(t, err)
	assert.False(t, updated.ShouldExpire)

	// Fields other than frequency leave the derived flag alone.
	updated, err = env.reminders.UpdateReminder(ctx, testUserID, reminder.ID, UpdateReminderRequest{Title: strPtr("Anniversary")})
	require.NoError(t, err)
	assert.Equal(t, "Anniversary", updated.Title)
	assert.Equal(t, models.FrequencyMonth, updated.Frequency)
	assert.False(t, updated.ShouldExpire)
}

func TestUpdateReminderInvalidFrequencyLeavesRowUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reminder := env.createReminder(t, testUserID, nil, "NEVER")

	_, err := env.reminders.UpdateReminder(ctx, testUserID, reminder.ID, UpdateReminderRequest{
		Title:     strPtr("Changed"),
		Frequency: strPtr("DAILY"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	stored, err := env.reminders.GetReminder(ctx, testUserID, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Birthday", stored.Title)
	assert.Equal(t, models.FrequencyNever, stored.Frequency)
	assert.True(t, stored.ShouldExpire)
}

func TestUpdateReminderProfileLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")
	reminder := env.createReminder(t, testUserID, nil, "YEAR")

	updated, err := env.reminders.UpdateReminder(ctx, testUserID, reminder.ID, UpdateReminderRequest{ProfileID: &profile.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileID)
	assert.Equal(t, profile.ID, *updated.ProfileID)

	updated, err = env.reminders.UpdateReminder(ctx, testUserID, reminder.ID, UpdateReminderRequest{Title: strPtr("Still linked")})
	require.NoError(t, err)
	assert.NotNil(t, updated.ProfileID)

	updated, err = env.reminders.UpdateReminder(ctx, testUserID, reminder.ID, UpdateReminderRequest{ProfileID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.ProfileID)

	personal, err := env.reminders.ListPersonalReminders(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, personal, 1)
	assert.Equal(t, reminder.ID, personal[0].ID)
}

func TestReminderOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reminder := env.createReminder(t, testUserID, nil, "YEAR")

	_, err := env.reminders.GetReminder(ctx, otherUserID, reminder.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.reminders.UpdateReminder(ctx, otherUserID, reminder.ID, UpdateReminderRequest{Title: strPtr("mine now")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = env.reminders.DeleteReminder(ctx, otherUserID, reminder.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.reminders.GetReminder(ctx, testUserID, reminder.ID)
	assert.NoError(t, err)
}

func TestReminderNotFoundAndMalformedID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.reminders.UpdateReminder(ctx, testUserID, uuid.New().String(), UpdateReminderRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = env.reminders.DeleteReminder(ctx, testUserID, uuid.New().String())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = env.reminders.DeleteReminder(ctx, testUserID, "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCompletedIsIndependentOfDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A one-time reminder dated in the past stays active until completed.
	past, err := env.reminders.CreateReminder(ctx, testUserID, CreateReminderRequest{
		Title: "Old", DateToRemember: "2000-01-01", Frequency: "NEVER",
	})
	require.NoError(t, err)
	assert.False(t, past.Completed)
	assert.True(t, past.ShouldExpire)
	assert.Equal(t, models.StatusActive, past.Status())

	done, err := env.reminders.CreateReminder(ctx, testUserID, CreateReminderRequest{
		Title: "Done", DateToRemember: "2030-01-01", Frequency: "YEAR", Completed: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status())

	active, err := env.reminders.ListReminders(ctx, testUserID, "active")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, past.ID, active[0].ID)

	completed, err := env.reminders.ListReminders(ctx, testUserID, "completed")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, done.ID, completed[0].ID)

	_, err = env.reminders.ListReminders(ctx, testUserID, "expired")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestListRemindersJoinsProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Dad")
	env.createReminder(t, testUserID, &profile.ID, "YEAR")
	env.createReminder(t, testUserID, nil, "MONTH")
	env.createReminder(t, otherUserID, nil, "MONTH")

	all, err := env.reminders.ListReminders(ctx, testUserID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	var named int
	for _, r := range all {
		if r.ProfileName != nil {
			named++
			assert.Equal(t, "Dad", *r.ProfileName)
		}
	}
	assert.Equal(t, 1, named)

	byProfile, err := env.reminders.ListProfileReminders(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	assert.Len(t, byProfile, 1)

	_, err = env.reminders.ListProfileReminders(ctx, otherUserID, profile.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

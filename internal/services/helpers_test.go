package services

import (
	"context"
	"testing"
	"time"

	"remindly-backend/internal/models"
	"remindly-backend/internal/repository/memory"
	"remindly-backend/internal/storage"

	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "user_alice"
	otherUserID = "user_bob"
	testBaseURL = "https://cdn.example.com"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 64)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 64)...)
	webpBytes = append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), make([]byte, 64)...)
)

type testEnv struct {
	store      *memory.Store
	blobs      *storage.MemoryStore
	profiles   *ProfileService
	reminders  *ReminderService
	favourites *FavouriteService
	images     *ImageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	blobs := storage.NewMemoryStore(testBaseURL)

	env := &testEnv{
		store:      store,
		blobs:      blobs,
		profiles:   NewProfileService(store.Profiles(), store.Reminders(), store.Favourites(), store, blobs, nil),
		reminders:  NewReminderService(store.Reminders(), store.Profiles()),
		favourites: NewFavouriteService(store.Favourites(), store.Profiles()),
		images:     NewImageService(store.Profiles(), blobs, nil),
	}
	env.seedUser(t, testUserID)
	env.seedUser(t, otherUserID)
	return env
}

func (e *testEnv) seedUser(t *testing.T, id string) {
	t.Helper()
	now := time.Now()
	_, err := e.store.Users().Create(context.Background(), &models.User{
		ID:        id,
		Email:     id + "@example.com",
		Name:      id,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
}

func (e *testEnv) createProfile(t *testing.T, userID, name string) *models.Profile {
	t.Helper()
	profile, err := e.profiles.CreateProfile(context.Background(), userID, CreateProfileRequest{Name: name})
	require.NoError(t, err)
	return profile
}

func (e *testEnv) createReminder(t *testing.T, userID string, profileID *string, frequency string) *models.Reminder {
	t.Helper()
	reminder, err := e.reminders.CreateReminder(context.Background(), userID, CreateReminderRequest{
		Title:          "Birthday",
		DateToRemember: "2025-06-01",
		Frequency:      frequency,
		ProfileID:      profileID,
	})
	require.NoError(t, err)
	return reminder
}

func (e *testEnv) createFavourite(t *testing.T, userID, profileID string) *models.Favourite {
	t.Helper()
	favourite, err := e.favourites.CreateFavourite(context.Background(), userID, CreateFavouriteRequest{
		Title:     "Dark chocolate",
		ProfileID: profileID,
	})
	require.NoError(t, err)
	return favourite
}

func (e *testEnv) uploadImage(t *testing.T, userID, profileID string) *models.Profile {
	t.Helper()
	profile, err := e.images.UploadProfileImage(context.Background(), userID, profileID, ImageUpload{
		Filename:    "face.png",
		ContentType: "image/png",
		Data:        pngBytes,
	})
	require.NoError(t, err)
	return profile
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"remindly-backend/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		data        []byte
		want        string
		wantErr     bool
	}{
		{"png", "image/png", pngBytes, "image/png", false},
		{"jpeg", "image/jpeg", jpegBytes, "image/jpeg", false},
		{"jpg alias", "image/jpg", jpegBytes, "image/jpeg", false},
		{"gif", "image/gif", gifBytes, "image/gif", false},
		{"webp", "image/webp", webpBytes, "image/webp", false},
		{"parameters", "image/PNG; charset=binary", pngBytes, "image/png", false},
		{"svg", "image/svg+xml", []byte("<svg></svg>"), "", true},
		{"pdf", "application/pdf", []byte("%PDF-1.4"), "", true},
		{"empty", "image/png", nil, "", true},
		{"mismatch", "image/png", jpegBytes, "", true},
		{"too large", "image/png", append(pngBytes, make([]byte, MaxImageSize)...), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateImage(ImageUpload{ContentType: tt.contentType, Data: tt.data})
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateImageSizeBoundary(t *testing.T) {
	data := append([]byte{}, pngBytes...)
	data = append(data, make([]byte, MaxImageSize-len(data))...)
	_, err := ValidateImage(ImageUpload{ContentType: "image/png", Data: data})
	assert.NoError(t, err)
}

func TestUploadRejectsInvalidBeforeStorage(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, testUserID, "Mum")
	env.blobs.FailUploads(true)

	_, err := env.images.UploadProfileImage(context.Background(), testUserID, profile.ID, ImageUpload{
		Filename: "doc.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, env.blobs.Keys())
}

func TestUploadProfileImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")
	env.images.now = func() time.Time { return time.UnixMilli(1700000000123) }

	updated, err := env.images.UploadProfileImage(ctx, testUserID, profile.ID, ImageUpload{
		Filename: "Face.JPG", ContentType: "image/jpeg", Data: jpegBytes,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileImgURL)

	keys := env.blobs.Keys()
	require.Len(t, keys, 1)
	assert.Regexp(t, `^profiles/`+testUserID+`/`+profile.ID+`/profile-1700000000123-[0-9a-f]{8}\.jpg$`, keys[0])
	assert.Equal(t, testBaseURL+"/"+keys[0], *updated.ProfileImgURL)

	stored, err := env.profiles.GetProfile(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ProfileImgURL, stored.ProfileImgURL)
}

func TestReplaceProfileImageKeepsOneBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")

	clock := time.UnixMilli(1000)
	env.images.now = func() time.Time { return clock }
	first := env.uploadImage(t, testUserID, profile.ID)

	clock = time.UnixMilli(2000)
	second, err := env.images.UploadProfileImage(ctx, testUserID, profile.ID, ImageUpload{
		Filename: "new.gif", ContentType: "image/gif", Data: gifBytes,
	})
	require.NoError(t, err)
	assert.NotEqual(t, *first.ProfileImgURL, *second.ProfileImgURL)

	keys := env.blobs.Keys()
	require.Len(t, keys, 1)
	assert.Regexp(t, `/profile-2000-[0-9a-f]{8}\.gif$`, keys[0])
	assert.Equal(t, testBaseURL+"/"+keys[0], *second.ProfileImgURL)
}

func TestUploadFailureKeepsExistingURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")
	profile = env.uploadImage(t, testUserID, profile.ID)
	oldURL := *profile.ProfileImgURL

	env.blobs.FailUploads(true)
	_, err := env.images.UploadProfileImage(ctx, testUserID, profile.ID, ImageUpload{
		Filename: "b.png", ContentType: "image/png", Data: pngBytes,
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrValidation))

	stored, err := env.profiles.GetProfile(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ProfileImgURL)
	assert.Equal(t, oldURL, *stored.ProfileImgURL)
}

func TestUploadRowUpdateFailureRemovesNewBlob(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, testUserID, "Mum")
	env.store.FailOn("profiles.SetImageURL", errors.New("deadlock"))

	_, err := env.images.UploadProfileImage(context.Background(), testUserID, profile.ID, ImageUpload{
		Filename: "a.png", ContentType: "image/png", Data: pngBytes,
	})
	require.Error(t, err)
	assert.Empty(t, env.blobs.Keys())
}

func TestUploadImageNotOwned(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, otherUserID, "Boss")

	_, err := env.images.UploadProfileImage(context.Background(), testUserID, profile.ID, ImageUpload{
		Filename: "a.png", ContentType: "image/png", Data: pngBytes,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, env.blobs.Keys())
}

func TestRemoveProfileImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")

	_, err := env.images.RemoveProfileImage(ctx, testUserID, profile.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	env.uploadImage(t, testUserID, profile.ID)
	updated, err := env.images.RemoveProfileImage(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.ProfileImgURL)
	assert.Empty(t, env.blobs.Keys())
}

func TestRemoveProfileImageClearsURLWhenStorageFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")
	env.uploadImage(t, testUserID, profile.ID)
	env.blobs.FailDeletes(true)

	updated, err := env.images.RemoveProfileImage(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.ProfileImgURL)

	stored, err := env.profiles.GetProfile(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ProfileImgURL)
}

func TestImageKeysDoNotCollideAcrossProfiles(t *testing.T) {
	env := newTestEnv(t)
	env.images.now = func() time.Time { return time.UnixMilli(5) }
	a := env.uploadImage(t, testUserID, env.createProfile(t, testUserID, "A").ID)
	b := env.uploadImage(t, testUserID, env.createProfile(t, testUserID, "B").ID)

	assert.NotEqual(t, *a.ProfileImgURL, *b.ProfileImgURL)
	assert.Len(t, env.blobs.Keys(), 2)
	pattern := regexp.MustCompile(`^profiles/user_alice/[0-9a-f-]{36}/profile-5-[0-9a-f]{8}\.png$`)
	for _, key := range env.blobs.Keys() {
		assert.Regexp(t, pattern, key)
	}
}

func TestUploadSameMillisecondKeepsNewBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")
	env.images.now = func() time.Time { return time.UnixMilli(7) }

	env.uploadImage(t, testUserID, profile.ID)
	second := env.uploadImage(t, testUserID, profile.ID)

	keys := env.blobs.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, testBaseURL+"/"+keys[0], *second.ProfileImgURL)

	stored, err := env.profiles.GetProfile(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ProfileImgURL, stored.ProfileImgURL)
}

func TestUploadExtensionFollowsContentType(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, testUserID, "Mum")

	updated, err := env.images.UploadProfileImage(context.Background(), testUserID, profile.ID, ImageUpload{
		Filename: "face.html", ContentType: "image/png", Data: pngBytes,
	})
	require.NoError(t, err)
	assert.Regexp(t, `\.png$`, *updated.ProfileImgURL)
	assert.NotContains(t, *updated.ProfileImgURL, "html")
}

// interleavedProfiles lets another write land between reading a profile and
// saving its image URL.
type interleavedProfiles struct {
	ProfileRepository
	before func(ctx context.Context)
}

func (p *interleavedProfiles) SetImageURL(ctx context.Context, id string, from, to *string, at time.Time) (bool, error) {
	if p.before != nil {
		before := p.before
		p.before = nil
		before(ctx)
	}
	return p.ProfileRepository.SetImageURL(ctx, id, from, to, at)
}

func TestUploadLosingRaceRemovesItsBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")

	var winner *string
	racing := &interleavedProfiles{ProfileRepository: env.store.Profiles()}
	racing.before = func(ctx context.Context) {
		updated := env.uploadImage(t, testUserID, profile.ID)
		winner = updated.ProfileImgURL
	}
	images := NewImageService(racing, env.blobs, nil)

	_, err := images.UploadProfileImage(ctx, testUserID, profile.ID, ImageUpload{
		Filename: "late.gif", ContentType: "image/gif", Data: gifBytes,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NotNil(t, winner)
	keys := env.blobs.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, testBaseURL+"/"+keys[0], *winner)

	stored, err := env.profiles.GetProfile(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, stored.ProfileImgURL)
}

func TestRemoveProfileImageConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	profile := env.createProfile(t, testUserID, "Mum")
	env.uploadImage(t, testUserID, profile.ID)

	racing := &interleavedProfiles{ProfileRepository: env.store.Profiles()}
	racing.before = func(ctx context.Context) {
		env.uploadImage(t, testUserID, profile.ID)
	}
	images := NewImageService(racing, env.blobs, nil)

	_, err := images.RemoveProfileImage(ctx, testUserID, profile.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := env.profiles.GetProfile(ctx, testUserID, profile.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ProfileImgURL)
	assert.Equal(t, []string{strings.TrimPrefix(*stored.ProfileImgURL, testBaseURL+"/")}, env.blobs.Keys())
}

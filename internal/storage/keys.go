// Package storage keeps profile image blobs in an object store.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var extensionsByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ImagePrefix is the key namespace holding every image of one profile.
func ImagePrefix(userID, profileID string) string {
	return fmt.Sprintf("profiles/%s/%s/", userID, profileID)
}

// ImageKey derives the storage key of a profile image. The owner and profile
// are part of the key so an orphaned blob can be traced back to its profile.
// A random suffix keeps two uploads in the same millisecond apart.
func ImageKey(userID, profileID string, uploadedAt time.Time, ext string) string {
	return fmt.Sprintf("%sprofile-%d-%s.%s",
		ImagePrefix(userID, profileID), uploadedAt.UnixMilli(), uuid.NewString()[:8], ext)
}

// Extension returns the canonical extension of an image content type. The
// client's filename is never used.
func Extension(contentType string) string {
	if ext, ok := extensionsByType[contentType]; ok {
		return ext
	}
	return "bin"
}

// InNamespace reports whether key lies under the image namespace of the profile.
func InNamespace(key, userID, profileID string) bool {
	return strings.HasPrefix(key, ImagePrefix(userID, profileID))
}

func keyFromURL(baseURL, rawURL string) (string, error) {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", fmt.Errorf("url %q is not inside %q", rawURL, baseURL)
	}
	key := strings.TrimPrefix(rawURL, prefix)
	if key == "" {
		return "", fmt.Errorf("url %q has no object key", rawURL)
	}
	return key, nil
}

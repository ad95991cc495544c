package services

import (
	"context"
	"time"

	"remindly-backend/internal/models"
)

// UserRepository is the user store the services depend on
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// ProfileRepository is the profile store the services depend on
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	SetImageURL(ctx context.Context, id string, from, to *string, updatedAt time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
}

// ReminderRepository is the reminder store the services depend on
type ReminderRepository interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	GetByID(ctx context.Context, id string) (*models.Reminder, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.ReminderWithProfile, error)
	ListPersonal(ctx context.Context, userID string) ([]*models.Reminder, error)
	ListByProfile(ctx context.Context, userID, profileID string) ([]*models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, id string) error
	DeleteByProfileID(ctx context.Context, profileID string) (int64, error)
}

// FavouriteRepository is the favourite store the services depend on
type FavouriteRepository interface {
	Create(ctx context.Context, favourite *models.Favourite) error
	GetByID(ctx context.Context, id string) (*models.Favourite, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.FavouriteWithProfile, error)
	ListByProfile(ctx context.Context, userID, profileID string) ([]*models.Favourite, error)
	Update(ctx context.Context, favourite *models.Favourite) error
	Delete(ctx context.Context, id string) error
	DeleteByProfileID(ctx context.Context, profileID string) (int64, error)
}

// Transactor runs fn inside one database transaction
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ObjectStore holds profile image blobs
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, error)
}

package models

import "time"

// User mirrors an identity-provider account. Rows are written only by the
// identity webhook.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Profile is a person or entity a user keeps reminders and favourites for
type Profile struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	ProfileImgURL *string   `json:"profile_img_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Favourite is a free-text note attached to a profile
type Favourite struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProfileID   string    `json:"profile_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FavouriteWithProfile is a favourite joined with the profile it belongs to
type FavouriteWithProfile struct {
	Favourite
	ProfileName   string  `json:"profile_name"`
	ProfileImgURL *string `json:"profile_img_url"`
}

// ProfileDeletion summarises a cascading profile delete.
type ProfileDeletion struct {
	Message                string `json:"message"`
	DeletedRemindersCount  int64  `json:"deleted_reminders_count"`
	DeletedFavouritesCount int64  `json:"deleted_favourites_count"`
	ImageDeleted           bool   `json:"image_deleted"`
}

const (
	// MaxTitleLength bounds profile names and reminder/favourite titles.
	MaxTitleLength = 256
	// MaxImageURLLength matches the profile_img_url column.
	MaxImageURLLength = 512
)

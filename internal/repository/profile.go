package repository

import (
	"context"
	"time"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id, user_id, name, description, profile_img_url, created_at, updated_at`

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.ProfileImgURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profile (id, user_id, name, description, profile_img_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		profile.ID, profile.UserID, profile.Name, profile.Description,
		profile.ProfileImgURL, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return translate(err, "profile", "create")
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profile WHERE id = $1`
	profile, err := scanProfile(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "profile", "get")
	}
	return profile, nil
}

// ListByUserID retrieves all profiles owned by a user, newest first
func (r *ProfileRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profile WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "profiles", "list")
	}
	defer rows.Close()

	profiles := []*models.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, translate(err, "profile", "scan")
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "profiles", "iterate")
	}
	return profiles, nil
}

// Update overwrites the name and description of a profile. The image URL is
// only written through SetImageURL.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profile
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).Exec(ctx, query,
		profile.ID, profile.Name, profile.Description, profile.UpdatedAt,
	)
	if err != nil {
		return translate(err, "profile", "update")
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("profile")
	}
	return nil
}

// SetImageURL replaces the image URL only while it still equals from. It
// reports false when another write changed the URL first.
func (r *ProfileRepository) SetImageURL(ctx context.Context, id string, from, to *string, updatedAt time.Time) (bool, error) {
	query := `
		UPDATE profile
		SET profile_img_url = $3, updated_at = $4
		WHERE id = $1 AND profile_img_url IS NOT DISTINCT FROM $2
	`
	result, err := conn(ctx, r.db).Exec(ctx, query, id, from, to, updatedAt)
	if err != nil {
		return false, translate(err, "profile", "update")
	}
	if result.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	err = conn(ctx, r.db).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profile WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, translate(err, "profile", "get")
	}
	if !exists {
		return false, apperrors.NotFound("profile")
	}
	return false, nil
}

// Delete deletes a profile by ID
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM profile WHERE id = $1`
	result, err := conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		return translate(err, "profile", "delete")
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("profile")
	}
	return nil
}

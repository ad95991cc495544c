package repository

import (
	"context"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const favouriteColumns = `f.id, f.user_id, f.profile_id, f.title, f.description, f.created_at, f.updated_at`

// FavouriteRepository handles database operations for favourites
type FavouriteRepository struct {
	db DBTX
}

// NewFavouriteRepository creates a new favourite repository
func NewFavouriteRepository(db *pgxpool.Pool) *FavouriteRepository {
	return &FavouriteRepository{db: db}
}

func favouriteDest(f *models.Favourite) []any {
	return []any{&f.ID, &f.UserID, &f.ProfileID, &f.Title, &f.Description, &f.CreatedAt, &f.UpdatedAt}
}

func scanFavourite(row pgx.Row) (*models.Favourite, error) {
	var f models.Favourite
	if err := row.Scan(favouriteDest(&f)...); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create creates a new favourite
func (r *FavouriteRepository) Create(ctx context.Context, favourite *models.Favourite) error {
	query := `
		INSERT INTO favourites (id, user_id, profile_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		favourite.ID, favourite.UserID, favourite.ProfileID, favourite.Title,
		favourite.Description, favourite.CreatedAt, favourite.UpdatedAt,
	)
	if err != nil {
		return translate(err, "favourite", "create")
	}
	return nil
}

// GetByID retrieves a favourite by ID
func (r *FavouriteRepository) GetByID(ctx context.Context, id string) (*models.Favourite, error) {
	query := `SELECT ` + favouriteColumns + ` FROM favourites f WHERE f.id = $1`
	favourite, err := scanFavourite(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "favourite", "get")
	}
	return favourite, nil
}

// ListByUserID retrieves all favourites of a user with their profile's name and image
func (r *FavouriteRepository) ListByUserID(ctx context.Context, userID string) ([]*models.FavouriteWithProfile, error) {
	query := `
		SELECT ` + favouriteColumns + `, p.name, p.profile_img_url
		FROM favourites f
		JOIN profile p ON p.id = f.profile_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "favourites", "list")
	}
	defer rows.Close()

	favourites := []*models.FavouriteWithProfile{}
	for rows.Next() {
		var item models.FavouriteWithProfile
		dest := append(favouriteDest(&item.Favourite), &item.ProfileName, &item.ProfileImgURL)
		if err := rows.Scan(dest...); err != nil {
			return nil, translate(err, "favourite", "scan")
		}
		favourites = append(favourites, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "favourites", "iterate")
	}
	return favourites, nil
}

// ListByProfile retrieves the favourites a user attached to one profile
func (r *FavouriteRepository) ListByProfile(ctx context.Context, userID, profileID string) ([]*models.Favourite, error) {
	query := `
		SELECT ` + favouriteColumns + `
		FROM favourites f
		WHERE f.user_id = $1 AND f.profile_id = $2
		ORDER BY f.created_at DESC
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, userID, profileID)
	if err != nil {
		return nil, translate(err, "favourites", "list")
	}
	defer rows.Close()

	favourites := []*models.Favourite{}
	for rows.Next() {
		favourite, err := scanFavourite(rows)
		if err != nil {
			return nil, translate(err, "favourite", "scan")
		}
		favourites = append(favourites, favourite)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "favourites", "iterate")
	}
	return favourites, nil
}

// Update overwrites the mutable fields of a favourite
func (r *FavouriteRepository) Update(ctx context.Context, favourite *models.Favourite) error {
	query := `
		UPDATE favourites
		SET profile_id = $2, title = $3, description = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).Exec(ctx, query,
		favourite.ID, favourite.ProfileID, favourite.Title, favourite.Description, favourite.UpdatedAt,
	)
	if err != nil {
		return translate(err, "favourite", "update")
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("favourite")
	}
	return nil
}

// Delete deletes a favourite by ID
func (r *FavouriteRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM favourites WHERE id = $1`, id)
	if err != nil {
		return translate(err, "favourite", "delete")
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("favourite")
	}
	return nil
}

// DeleteByProfileID deletes every favourite attached to a profile and returns
// how many rows went away
func (r *FavouriteRepository) DeleteByProfileID(ctx context.Context, profileID string) (int64, error) {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM favourites WHERE profile_id = $1`, profileID)
	if err != nil {
		return 0, translate(err, "favourites", "delete")
	}
	return result.RowsAffected(), nil
}

package repository

import (
	"context"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user unless one with the same ID already exists.
// It reports whether a row was written.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, email, name, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := conn(ctx, r.db).Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PhoneNumber, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return false, translate(err, "user", "create")
	}
	return result.RowsAffected() == 1, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, name, phone_number, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.PhoneNumber, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "user", "get")
	}
	return &user, nil
}

// Update overwrites the contact fields of a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, phone_number = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PhoneNumber, user.UpdatedAt,
	)
	if err != nil {
		return translate(err, "user", "update")
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

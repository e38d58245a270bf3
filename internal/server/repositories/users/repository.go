// Package users declares the repository contract for identity records.
package users

import (
	"context"

	"authkeeper/internal/server/models"
)

// Repository defines persistence operations over user records.
// Implementations return common.ErrNotFound for absent rows and
// common.ErrConflict for uniqueness violations.
type Repository interface {
	// Create persists a new user and returns it with DB-assigned fields set.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByLogin returns the user whose username OR email equals login,
	// using exact case-sensitive matching.
	GetByLogin(ctx context.Context, login string) (*models.User, error)

	// ExistsByEmail reports whether a user with this exact email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername reports whether a user with this exact username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// List returns users ordered by id, skipping skip rows and returning at
	// most limit rows.
	List(ctx context.Context, skip, limit int) ([]*models.User, error)

	// UpdateProfile applies a partial profile update. Nil pointers leave the
	// corresponding column untouched.
	UpdateProfile(ctx context.Context, id int64, email, fullName *string) (*models.User, error)

	// Delete hard-deletes the user. It reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}

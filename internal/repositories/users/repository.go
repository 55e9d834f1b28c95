package users

import (
	"context"

	"github.com/dkharitonov/userstore/internal/models"
)

// Repository describes the write and read operations on user records.
//
// Error contract, matched with errors.Is against internal/common:
//   - Create/Update with an empty email fail with ErrMissingRequiredField.
//   - Create/Update violating email uniqueness fail with ErrDuplicateKey.
//   - Reads, Update, and Delete on an absent record fail with ErrNotFound.
type Repository interface {
	// Create inserts a new record. The store assigns ID and CreatedAt,
	// returned on the user.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns a single record by its identifier.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail returns a single record by its email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update mutates email and name of the record identified by user.ID.
	Update(ctx context.Context, user *models.User) error

	// Delete removes the record. Its id is never reissued.
	Delete(ctx context.Context, id int64) error

	// List returns all records ordered by id.
	List(ctx context.Context) ([]models.User, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int64, error)
}

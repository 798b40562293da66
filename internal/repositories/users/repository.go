// Package users stores user records. Implementations are not safe for
// concurrent use; the directory serializes access.
package users

import (
	"context"

	"github.com/dmitrijs2005/gatehouse/internal/models"
)

type Repository interface {
	// Create assigns the next id and stores a copy of user.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetByUsername matches case-insensitively.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	// List returns copies ordered by id.
	List(ctx context.Context) ([]models.User, error)
}

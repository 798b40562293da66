// Package groups stores user groups.
package groups

import (
	"context"

	"github.com/dmitrijs2005/gatehouse/internal/models"
)

type Repository interface {
	// Create stores group. A zero ID is replaced with the next free id.
	Create(ctx context.Context, group *models.Group) (*models.Group, error)
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Group, error)
}

// Package acls stores resource access-control entries keyed by normalized
// path.
package acls

import (
	"context"

	"github.com/dmitrijs2005/gatehouse/internal/models"
)

type Repository interface {
	Put(ctx context.Context, acl models.ACL) error
	Get(ctx context.Context, path string) (*models.ACL, error)
	// Nearest returns the entry for path or its closest ancestor.
	Nearest(ctx context.Context, path string) (*models.ACL, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context) ([]models.ACL, error)
}

package acls

import (
	"cmp"
	"context"
	"path"
	"slices"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
)

type InMemoryRepository struct {
	byPath map[string]models.ACL
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byPath: make(map[string]models.ACL)}
}

func (r *InMemoryRepository) Put(ctx context.Context, acl models.ACL) error {
	acl.Path = models.NormalizePath(acl.Path)
	if acl.Path == "" {
		return common.ErrInvalidArgument
	}
	r.byPath[acl.Path] = acl
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, p string) (*models.ACL, error) {
	acl, ok := r.byPath[models.NormalizePath(p)]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &acl, nil
}

func (r *InMemoryRepository) Nearest(ctx context.Context, p string) (*models.ACL, error) {
	p = models.NormalizePath(p)
	if p == "" {
		return nil, common.ErrNotFound
	}
	for {
		if acl, ok := r.byPath[p]; ok {
			return &acl, nil
		}
		if p == "/" {
			return nil, common.ErrNotFound
		}
		p = path.Dir(p)
	}
}

func (r *InMemoryRepository) Delete(ctx context.Context, p string) error {
	p = models.NormalizePath(p)
	if _, ok := r.byPath[p]; !ok {
		return common.ErrNotFound
	}
	delete(r.byPath, p)
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]models.ACL, error) {
	out := make([]models.ACL, 0, len(r.byPath))
	for _, acl := range r.byPath {
		out = append(out, acl)
	}
	slices.SortFunc(out, func(a, b models.ACL) int { return cmp.Compare(a.Path, b.Path) })
	return out, nil
}

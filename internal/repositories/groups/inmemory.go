package groups

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"golang.org/x/text/cases"
)

type InMemoryRepository struct {
	byID   map[int64]models.Group
	lastID int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[int64]models.Group)}
}

func nameKey(name string) string {
	return cases.Fold().String(name)
}

func (r *InMemoryRepository) Create(ctx context.Context, group *models.Group) (*models.Group, error) {
	if _, err := r.GetByName(ctx, group.Name); err == nil {
		return nil, fmt.Errorf("group %q: %w", group.Name, common.ErrInvalidArgument)
	}

	g := group.Clone()
	if g.ID == 0 {
		g.ID = r.lastID + 1
	}
	if _, ok := r.byID[g.ID]; ok {
		return nil, fmt.Errorf("group id %d: %w", g.ID, common.ErrInvalidArgument)
	}
	r.lastID = max(r.lastID, g.ID)

	r.byID[g.ID] = g
	out := g.Clone()
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	g, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := g.Clone()
	return &out, nil
}

func (r *InMemoryRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	key := nameKey(name)
	for _, g := range r.byID {
		if nameKey(g.Name) == key {
			out := g.Clone()
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) Update(ctx context.Context, group *models.Group) error {
	if _, ok := r.byID[group.ID]; !ok {
		return common.ErrNotFound
	}
	g := group.Clone()
	slices.Sort(g.Members)
	g.Members = slices.Compact(g.Members)
	r.byID[g.ID] = g
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]models.Group, error) {
	out := make([]models.Group, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, g.Clone())
	}
	slices.SortFunc(out, func(a, b models.Group) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

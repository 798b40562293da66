package users

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"golang.org/x/text/cases"
)

// Key folds a username into the form used for uniqueness checks.
func Key(username string) string {
	return cases.Fold().String(username)
}

type InMemoryRepository struct {
	byID   map[int64]models.User
	byName map[string]int64
	lastID int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:   make(map[int64]models.User),
		byName: make(map[string]int64),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	key := Key(user.Username)
	if _, ok := r.byName[key]; ok {
		return nil, common.ErrDuplicateUsername
	}

	r.lastID++
	u := *user
	u.ID = r.lastID

	r.byID[u.ID] = u
	r.byName[key] = u.ID

	return &u, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	id, ok := r.byName[Key(username)]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *InMemoryRepository) Update(ctx context.Context, user *models.User) error {
	old, ok := r.byID[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	// usernames are immutable
	u := *user
	u.Username = old.Username
	r.byID[u.ID] = u
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	u, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byName, Key(u.Username))
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

package groups

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_ExplicitAndAssignedIDs(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()

	_, err := r.Create(ctx, &models.Group{ID: models.GroupGuests, Name: "Guests"})
	require.NoError(t, err)

	g, err := r.Create(ctx, &models.Group{Name: "ops"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), g.ID)

	_, err = r.Create(ctx, &models.Group{Name: "OPS"})
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	_, err = r.Create(ctx, &models.Group{ID: 4, Name: "dup-id"})
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

func TestInMemoryRepository_UpdateNormalizesMembers(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()

	g, err := r.Create(ctx, &models.Group{Name: "ops"})
	require.NoError(t, err)

	g.Members = []int64{3, 1, 3, 2}
	require.NoError(t, r.Update(ctx, g))

	got, err := r.GetByName(ctx, "Ops")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got.Members)

	got.Members[0] = 42
	again, err := r.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Members[0])
}

func TestInMemoryRepository_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()

	for _, n := range []string{"a", "b", "c"} {
		_, err := r.Create(ctx, &models.Group{Name: n})
		require.NoError(t, err)
	}
	require.NoError(t, r.Delete(ctx, 2))
	assert.True(t, errors.Is(r.Delete(ctx, 2), common.ErrNotFound))
	assert.True(t, errors.Is(r.Update(ctx, &models.Group{ID: 2}), common.ErrNotFound))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "c", list[1].Name)
}

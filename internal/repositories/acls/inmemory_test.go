package acls

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_PutGetNormalizes(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()

	require.NoError(t, r.Put(ctx, models.NewACL(`\SRV\Data`, 1, 2)))

	got, err := r.Get(ctx, "/srv/data/")
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", got.Path)

	assert.True(t, errors.Is(r.Put(ctx, models.ACL{}), common.ErrInvalidArgument))
}

func TestInMemoryRepository_Nearest(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()
	require.NoError(t, r.Put(ctx, models.NewACL("/srv", 1, 2)))
	require.NoError(t, r.Put(ctx, models.NewACL("/srv/data/secret", 3, 2)))

	got, err := r.Nearest(ctx, "/srv/data/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "/srv", got.Path)

	got, err = r.Nearest(ctx, "/srv/data/secret/key")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.OwnerID)

	_, err = r.Nearest(ctx, "/home/alice")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestInMemoryRepository_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()
	for _, p := range []string{"/b", "/a", "/c"} {
		require.NoError(t, r.Put(ctx, models.NewACL(p, 1, 1)))
	}
	require.NoError(t, r.Delete(ctx, "/B"))
	assert.True(t, errors.Is(r.Delete(ctx, "/b"), common.ErrNotFound))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "/a", list[0].Path)
	assert.Equal(t, "/c", list[1].Path)
}

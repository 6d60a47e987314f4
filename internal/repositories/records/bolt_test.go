package records

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippostore/hippo/internal/common"
	"github.com/hippostore/hippo/internal/models"
)

func setupBolt(t *testing.T) *BoltRepository {
	t.Helper()
	r, err := OpenBoltRepository(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestBolt_InsertGetUpdate(t *testing.T) {
	r := setupBolt(t)
	ctx := context.Background()

	rec := &models.Record{
		ID:          "id1",
		Location:    models.LocalLocation("/data/id1"),
		ContentType: "text/plain",
		Key:         []byte("0123456789abcdef0123456789abcdef"),
	}
	require.NoError(t, r.Insert(ctx, rec))

	got, err := r.Get(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	rec.Location = models.RemoteLocation("https://x/obj/id1")
	require.NoError(t, r.Update(ctx, rec))

	got, err = r.Get(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, models.LocationRemote, got.Location.Kind)
	assert.Equal(t, "https://x/obj/id1", got.Location.URI)
}

func TestBolt_GetAndUpdate_NotFound(t *testing.T) {
	r := setupBolt(t)
	ctx := context.Background()

	_, err := r.Get(ctx, "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = r.Update(ctx, &models.Record{
		ID:       "missing",
		Location: models.RemoteLocation("https://x/obj/missing"),
		Key:      []byte("k"),
	})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestBolt_ListLocalAndCount(t *testing.T) {
	r := setupBolt(t)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, &models.Record{
		ID: "a", Location: models.LocalLocation("/data/a"), Key: []byte("ka"),
	}))
	require.NoError(t, r.Insert(ctx, &models.Record{
		ID: "b", Location: models.RemoteLocation("https://x/obj/b"), Key: []byte("kb"),
	}))

	got, err := r.ListLocal(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	all, local, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, all)
	assert.Equal(t, 1, local)
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
)

func TestCache_New(t *testing.T) {
	dir := t.TempDir()

	c, err := New(dir)

	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, filepath.Join(dir, "cache.db"), c.Path())
}

func TestCache_PutAndGet(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	annotations := []domain.RawAnnotation{
		{Start: 4, End: 5, Identifier: "x", Type: "i32"},
		{Start: 7, End: 10, Type: "i32"},
	}
	require.NoError(t, c.Put(ctx, "key-1", annotations))

	got, ok, err := c.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, annotations, got)
}

func TestCache_Miss(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	got, ok, err := c.Get(context.Background(), "absent")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_EmptySetIsAHit(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "key-1", nil))

	got, ok, err := c.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCache_Upsert(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "key-1", []domain.RawAnnotation{{Start: 0, End: 2, Type: "old"}}))
	require.NoError(t, c.Put(ctx, "key-1", []domain.RawAnnotation{{Start: 0, End: 2, Type: "new"}}))

	got, _, err := c.Get(ctx, "key-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Type)
}

func TestCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c1, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, c1.Put(ctx, "key-1", []domain.RawAnnotation{{Start: 0, End: 2, Type: "int"}}))
	require.NoError(t, c1.Close())

	c2, err := New(dir)
	require.NoError(t, err)
	defer c2.Close()

	got, ok, err := c2.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "int", got[0].Type)
}

func TestCache_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	c1, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, c1.Close())

	// Reopening re-runs the migration check against an up-to-date schema.
	c2, err := New(dir)
	require.NoError(t, err)
	assert.NoError(t, c2.Close())
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	type value struct {
		Name string `json:"name"`
	}

	t.Run("Should return stored values", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		require.NoError(t, c.Set(ctx, "category:tree", value{Name: "root"}))

		var got value
		found, err := c.Get(ctx, "category:tree", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "root", got.Name)
	})

	t.Run("Should miss unknown keys", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)

		var got value
		found, err := c.Get(ctx, "missing", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Should expire entries", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }
		require.NoError(t, c.Set(ctx, "k", value{Name: "x"}))

		now = now.Add(2 * time.Minute)
		var got value
		found, err := c.Get(ctx, "k", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Should delete by prefix", func(t *testing.T) {
		c := NewMemoryCache(0)
		require.NoError(t, c.Set(ctx, "portlet:latest", 1))
		require.NoError(t, c.Set(ctx, "portlet:forsale", 2))
		require.NoError(t, c.Set(ctx, "topseller:all", 3))

		require.NoError(t, c.DeletePrefix(ctx, "portlet:"))

		var n int
		found, _ := c.Get(ctx, "portlet:latest", &n)
		assert.False(t, found)
		found, _ = c.Get(ctx, "topseller:all", &n)
		assert.True(t, found)
		assert.Equal(t, 3, n)
	})
}

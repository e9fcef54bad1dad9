package cache

import (
	"testing"
	"time"

	"CineSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCacheGetSet(t *testing.T) {
	c := NewListCache(time.Minute)

	_, ok := c.Get(model.KindMovie, 1, 20)
	assert.False(t, ok)

	c.Set(model.KindMovie, 1, 20, "page-one")
	got, ok := c.Get(model.KindMovie, 1, 20)
	require.True(t, ok)
	assert.Equal(t, "page-one", got)

	// 不同分页参数是不同键
	_, ok = c.Get(model.KindMovie, 2, 20)
	assert.False(t, ok)
	_, ok = c.Get(model.KindMovie, 1, 50)
	assert.False(t, ok)
}

func TestListCacheInvalidateByKind(t *testing.T) {
	c := NewListCache(time.Minute)
	c.Set(model.KindMovie, 1, 20, "movies")
	c.Set(model.KindDrama, 1, 20, "dramas")

	c.Invalidate(model.KindMovie)

	_, ok := c.Get(model.KindMovie, 1, 20)
	assert.False(t, ok)
	// 另一类型不受影响
	got, ok := c.Get(model.KindDrama, 1, 20)
	require.True(t, ok)
	assert.Equal(t, "dramas", got)
}

func TestListCacheTTLExpiry(t *testing.T) {
	c := NewListCache(10 * time.Millisecond)
	c.Set(model.KindMovie, 1, 20, "short-lived")

	_, ok := c.Get(model.KindMovie, 1, 20)
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get(model.KindMovie, 1, 20)
	assert.False(t, ok)
}

func TestListCacheDefaultTTL(t *testing.T) {
	c := NewListCache(0)
	c.Set(model.KindMovie, 1, 20, "v")
	_, ok := c.Get(model.KindMovie, 1, 20)
	assert.True(t, ok)
}

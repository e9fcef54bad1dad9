package service

import (
	"context"
	"testing"

	"CineSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreatesMissingGenre(t *testing.T) {
	genreRepo := newFakeGenreRepo()
	r := NewGenreReconciler(genreRepo, testLogger())

	g, err := r.Resolve(context.Background(), 18, "剧情")
	require.NoError(t, err)
	assert.Equal(t, int64(18), g.ID)
	assert.Equal(t, "剧情", g.Name)
}

func TestResolveExistingGenreKeepsStoredName(t *testing.T) {
	genreRepo := newFakeGenreRepo()
	genreRepo.genres[18] = &model.Genre{ID: 18, Name: "剧情"}
	r := NewGenreReconciler(genreRepo, testLogger())

	// 命中不改名：名称维护是独立运维操作
	g, err := r.Resolve(context.Background(), 18, "Drama")
	require.NoError(t, err)
	assert.Equal(t, "剧情", g.Name)
}

func TestResolveMissingNameUsesPlaceholder(t *testing.T) {
	genreRepo := newFakeGenreRepo()
	r := NewGenreReconciler(genreRepo, testLogger())

	g, err := r.Resolve(context.Background(), 99, "   ")
	require.NoError(t, err)
	assert.Equal(t, "未知分类-99", g.Name)
}

func TestResolveInvalidID(t *testing.T) {
	genreRepo := newFakeGenreRepo()
	r := NewGenreReconciler(genreRepo, testLogger())

	for _, id := range []int64{0, -5} {
		_, err := r.Resolve(context.Background(), id, "剧情")
		assert.ErrorIs(t, err, ErrInvalidInput, "id=%d", id)
	}
}

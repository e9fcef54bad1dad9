package service

import (
	"context"
	"testing"
	"time"

	"CineSync/internal/cache"
	"CineSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestFixture() (*IngestionService, *fakeCatalogRepo, *fakeGenreRepo, *fakeProvider) {
	catalogRepo := newFakeCatalogRepo()
	genreRepo := newFakeGenreRepo()
	provider := newFakeProvider()
	reconciler := NewGenreReconciler(genreRepo, testLogger())
	svc := NewIngestionService(catalogRepo, reconciler, provider, cache.NewListCache(time.Minute), testLogger())
	return svc, catalogRepo, genreRepo, provider
}

func TestIngestCreatesContentWithGenres(t *testing.T) {
	svc, _, genreRepo, provider := newIngestFixture()
	provider.genres[model.KindMovie] = []model.ProviderGenre{
		{ID: 18, Name: "剧情"},
		{ID: 53, Name: "惊悚"},
	}
	ctx := context.Background()

	record := &model.ProviderRecord{
		ID:          550,
		Title:       "搏击俱乐部",
		Overview:    "一个失眠的上班族……",
		ReleaseDate: "1999-10-15",
		VoteAverage: 8.4,
		VoteCount:   26280,
		GenreIDs:    []int64{18},
	}
	item, err := svc.Ingest(ctx, record, model.KindMovie)
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, int64(550), item.ExternalID)
	assert.Equal(t, "搏击俱乐部", item.Title)
	assert.NotEmpty(t, item.ContentUUID)
	assert.Nil(t, item.BlendedRating)
	require.Len(t, item.Genres, 1)
	assert.Equal(t, int64(18), item.Genres[0].ID)
	assert.Equal(t, "剧情", item.Genres[0].Name)

	// 分类以提供方ID原样落库
	g, err := genreRepo.GetByID(ctx, 18)
	require.NoError(t, err)
	assert.Equal(t, "剧情", g.Name)
}

func TestIngestIdempotentByExternalID(t *testing.T) {
	svc, catalogRepo, _, _ := newIngestFixture()
	ctx := context.Background()
	record := &model.ProviderRecord{ID: 550, Title: "搏击俱乐部"}

	first, err := svc.Ingest(ctx, record, model.KindMovie)
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, record, model.KindMovie)
	require.NoError(t, err)

	// 同一外部ID重复入库返回既有行，不产生新记录
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ContentUUID, second.ContentUUID)
	assert.Equal(t, 1, catalogRepo.createCalls)
}

func TestIngestSameExternalIDDifferentKinds(t *testing.T) {
	svc, _, _, _ := newIngestFixture()
	ctx := context.Background()

	movie, err := svc.Ingest(ctx, &model.ProviderRecord{ID: 100, Title: "同名电影"}, model.KindMovie)
	require.NoError(t, err)
	drama, err := svc.Ingest(ctx, &model.ProviderRecord{ID: 100, Name: "同名剧集"}, model.KindDrama)
	require.NoError(t, err)

	// (external_id, kind) 才是幂等键：两类型互不挤占
	assert.NotEqual(t, movie.ID, drama.ID)
	assert.Equal(t, model.KindMovie, movie.Kind)
	assert.Equal(t, model.KindDrama, drama.Kind)
}

func TestIngestMalformedRecordRejected(t *testing.T) {
	svc, catalogRepo, _, _ := newIngestFixture()
	ctx := context.Background()

	for _, record := range []*model.ProviderRecord{
		nil,
		{ID: 0, Title: "缺ID"},
		{ID: 42},
		{ID: -7, Title: "负ID"},
	} {
		_, err := svc.Ingest(ctx, record, model.KindMovie)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Equal(t, 0, catalogRepo.createCalls)
}

func TestIngestDuplicateKeyRaceReturnsWinner(t *testing.T) {
	svc, catalogRepo, _, _ := newIngestFixture()
	ctx := context.Background()

	// 复现"首查未命中→对端抢先入库→插入撞唯一键"的并发窗口：
	// 胜者已在仓储，但首查被强制判为未命中
	winner := &model.ContentItem{Kind: model.KindMovie, ContentUUID: "uuid-winner", ExternalID: 550, Title: "搏击俱乐部"}
	catalogRepo.seed(winner)
	catalogRepo.forceFindMiss = 1

	got, err := svc.Ingest(ctx, &model.ProviderRecord{ID: 550, Title: "搏击俱乐部"}, model.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, winner.ContentUUID, got.ContentUUID)
	assert.Equal(t, winner.ID, got.ID)
}

func TestIngestGenreTaxonomyFetchFailureUsesPlaceholder(t *testing.T) {
	svc, _, genreRepo, provider := newIngestFixture()
	provider.genresErr = assert.AnError
	ctx := context.Background()

	item, err := svc.Ingest(ctx, &model.ProviderRecord{ID: 550, Title: "搏击俱乐部", GenreIDs: []int64{18}}, model.KindMovie)
	require.NoError(t, err)
	require.Len(t, item.Genres, 1)

	g, err := genreRepo.GetByID(ctx, 18)
	require.NoError(t, err)
	assert.Equal(t, "未知分类-18", g.Name)
}

func TestIngestTaxonomyFetchedOncePerKind(t *testing.T) {
	svc, _, _, provider := newIngestFixture()
	provider.genres[model.KindMovie] = []model.ProviderGenre{{ID: 18, Name: "剧情"}}
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &model.ProviderRecord{ID: 1, Title: "甲", GenreIDs: []int64{18}}, model.KindMovie)
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, &model.ProviderRecord{ID: 2, Title: "乙", GenreIDs: []int64{18}}, model.KindMovie)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.genresCalls)
}

func TestIngestInvalidKind(t *testing.T) {
	svc, _, _, _ := newIngestFixture()
	_, err := svc.Ingest(context.Background(), &model.ProviderRecord{ID: 1, Title: "甲"}, model.ContentKind("book"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

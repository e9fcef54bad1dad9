package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"CineSync/internal/model"
	"CineSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ===== 内存版仓储与提供方桩实现（service层测试共用） =====

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeCatalogRepo struct {
	mu          sync.Mutex
	nextID      uint64
	items       map[model.ContentKind]map[int64]*model.ContentItem // externalID → item
	createCalls int
	searchCalls int

	// forceFindMiss>0 时 FindByExternalID 前N次强制未命中（模拟查后插前的并发窗口）
	forceFindMiss int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		items: map[model.ContentKind]map[int64]*model.ContentItem{
			model.KindMovie: {},
			model.KindDrama: {},
		},
	}
}

func (f *fakeCatalogRepo) seed(item *model.ContentItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	item.ID = f.nextID
	f.items[item.Kind][item.ExternalID] = item
}

func (f *fakeCatalogRepo) FindByExternalID(_ context.Context, kind model.ContentKind, externalID int64) (*model.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceFindMiss > 0 {
		f.forceFindMiss--
		return nil, gorm.ErrRecordNotFound
	}
	if it, ok := f.items[kind][externalID]; ok {
		return it, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepo) FindByUUID(_ context.Context, kind model.ContentKind, contentUUID string) (*model.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items[kind] {
		if it.ContentUUID == contentUUID {
			return it, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepo) FindByID(_ context.Context, kind model.ContentKind, contentID uint64) (*model.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items[kind] {
		if it.ID == contentID {
			return it, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepo) SearchByTitle(_ context.Context, kind model.ContentKind, query string, limit int) ([]*model.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	var out []*model.ContentItem
	for _, it := range f.items[kind] {
		if strings.Contains(strings.ToLower(it.Title), strings.ToLower(query)) {
			out = append(out, it)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListByKind(ctx context.Context, kind model.ContentKind, page, pageSize int) ([]*model.ContentItem, int64, error) {
	return f.Filter(ctx, kind, repository.CatalogFilter{}, page, pageSize)
}

func (f *fakeCatalogRepo) Filter(_ context.Context, kind model.ContentKind, _ repository.CatalogFilter, _, _ int) ([]*model.ContentItem, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ContentItem
	for _, it := range f.items[kind] {
		out = append(out, it)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCatalogRepo) Create(_ context.Context, item *model.ContentItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if _, exists := f.items[item.Kind][item.ExternalID]; exists {
		// 模拟数据库唯一约束：并发撞键走重查路径
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	f.nextID++
	item.ID = f.nextID
	f.items[item.Kind][item.ExternalID] = item
	return nil
}

func (f *fakeCatalogRepo) UpdateBlendedRating(_ context.Context, kind model.ContentKind, contentID uint64, rating *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items[kind] {
		if it.ID == contentID {
			it.BlendedRating = rating
			return nil
		}
	}
	return nil
}

func (f *fakeCatalogRepo) Delete(_ context.Context, kind model.ContentKind, contentID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for extID, it := range f.items[kind] {
		if it.ID == contentID {
			delete(f.items[kind], extID)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeGenreRepo struct {
	mu     sync.Mutex
	genres map[int64]*model.Genre
}

func newFakeGenreRepo() *fakeGenreRepo {
	return &fakeGenreRepo{genres: map[int64]*model.Genre{}}
}

func (f *fakeGenreRepo) GetByID(_ context.Context, id int64) (*model.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.genres[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGenreRepo) Ensure(_ context.Context, genre *model.Genre) (*model.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if winner, ok := f.genres[genre.ID]; ok {
		return winner, nil
	}
	f.genres[genre.ID] = genre
	return genre, nil
}

func (f *fakeGenreRepo) ListAll(_ context.Context) ([]*model.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Genre
	for _, g := range f.genres {
		out = append(out, g)
	}
	return out, nil
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings []*model.UserRating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{}
}

func matches(r *model.UserRating, kind model.ContentKind, contentID uint64) bool {
	if kind == model.KindDrama {
		return r.DramaID != nil && *r.DramaID == contentID
	}
	return r.MovieID != nil && *r.MovieID == contentID
}

func (f *fakeRatingRepo) Upsert(_ context.Context, rating *model.UserRating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kind := model.KindMovie
	var contentID uint64
	if rating.DramaID != nil {
		kind = model.KindDrama
		contentID = *rating.DramaID
	} else {
		contentID = *rating.MovieID
	}
	for _, existing := range f.ratings {
		if existing.UserID == rating.UserID && matches(existing, kind, contentID) {
			existing.Score = rating.Score
			return nil
		}
	}
	f.ratings = append(f.ratings, rating)
	return nil
}

func (f *fakeRatingRepo) Delete(_ context.Context, userID uint64, kind model.ContentKind, contentID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*model.UserRating
	var removed int64
	for _, r := range f.ratings {
		if r.UserID == userID && matches(r, kind, contentID) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.ratings = kept
	return removed, nil
}

func (f *fakeRatingRepo) ListByContent(_ context.Context, kind model.ContentKind, contentID uint64) ([]*model.UserRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.UserRating
	for _, r := range f.ratings {
		if matches(r, kind, contentID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) ScoresByContent(_ context.Context, kind model.ContentKind, contentID uint64) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, r := range f.ratings {
		if matches(r, kind, contentID) {
			out = append(out, r.Score)
		}
	}
	return out, nil
}

type fakeProvider struct {
	mu           sync.Mutex
	searchPages  map[model.ContentKind]*model.ProviderPage
	popularPages map[model.ContentKind]*model.ProviderPage
	genres       map[model.ContentKind][]model.ProviderGenre
	searchErr    error
	genresErr    error
	searchCalls  int
	genresCalls  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		searchPages:  map[model.ContentKind]*model.ProviderPage{},
		popularPages: map[model.ContentKind]*model.ProviderPage{},
		genres:       map[model.ContentKind][]model.ProviderGenre{},
	}
}

func (f *fakeProvider) GetName() string { return "fake" }

func (f *fakeProvider) SearchByTitle(_ context.Context, kind model.ContentKind, _ string, _ int) (*model.ProviderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if p, ok := f.searchPages[kind]; ok {
		return p, nil
	}
	return &model.ProviderPage{Page: 1}, nil
}

func (f *fakeProvider) ListPopular(_ context.Context, kind model.ContentKind, _ int) (*model.ProviderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.popularPages[kind]; ok {
		return p, nil
	}
	return &model.ProviderPage{Page: 1, TotalPages: 1}, nil
}

func (f *fakeProvider) ListTopRated(ctx context.Context, kind model.ContentKind, page int) (*model.ProviderPage, error) {
	return &model.ProviderPage{Page: page, TotalPages: 1}, nil
}

func (f *fakeProvider) ListGenres(_ context.Context, kind model.ContentKind) ([]model.ProviderGenre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genresCalls++
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return f.genres[kind], nil
}

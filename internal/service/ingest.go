package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"CineSync/internal/cache"
	"CineSync/internal/interfaces"
	"CineSync/internal/model"
	"CineSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IngestionService 把一条提供方记录幂等地转为本地内容行。
// 以 (提供方ID, 内容类型) 为幂等键：已存在直接返回既有行，不覆盖任何字段
// （字段刷新属于独立的refresh运维操作，不在此路径）。
type IngestionService struct {
	catalogRepo repository.CatalogRepository
	reconciler  *GenreReconciler
	provider    interfaces.CatalogProvider
	listCache   *cache.ListCache
	logger      *logrus.Logger

	// 提供方分类taxonomy的进程内快照（搜索记录只带genre_ids不带名称，建分类时查这里）
	mu         sync.Mutex
	genreNames map[model.ContentKind]map[int64]string
}

// NewIngestionService 创建 IngestionService
func NewIngestionService(
	catalogRepo repository.CatalogRepository,
	reconciler *GenreReconciler,
	provider interfaces.CatalogProvider,
	listCache *cache.ListCache,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		catalogRepo: catalogRepo,
		reconciler:  reconciler,
		provider:    provider,
		listCache:   listCache,
		logger:      logger,
		genreNames:  make(map[model.ContentKind]map[int64]string),
	}
}

// Ingest 幂等入库：查得即返回；查不到则建行并挂接分类。
// 并发同键插入（两请求同时入库同一外部ID）不抛错，重查后返回胜者。
func (s *IngestionService) Ingest(ctx context.Context, record *model.ProviderRecord, kind model.ContentKind) (*model.ContentItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	if record == nil || record.Malformed() {
		return nil, fmt.Errorf("%w: 提供方记录缺少ID或标题", ErrInvalidInput)
	}

	existing, err := s.catalogRepo.FindByExternalID(ctx, kind, record.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询%s(external_id=%d)失败: %w", kind, record.ID, err)
	}

	// 解析并挂接分类（提供方ID原样落库）
	genres := make([]*model.Genre, 0, len(record.GenreIDs))
	for _, gid := range record.GenreIDs {
		genre, err := s.reconciler.Resolve(ctx, gid, s.genreName(ctx, kind, gid))
		if err != nil {
			s.logger.WithError(err).WithField("genre_id", gid).Warn("解析分类失败，跳过该分类")
			continue
		}
		genres = append(genres, genre)
	}

	rawPayload, err := json.Marshal(record)
	if err != nil {
		rawPayload = nil
	}
	item := &model.ContentItem{
		Kind:        kind,
		ContentUUID: uuid.NewString(),
		ExternalID:  record.ID,
		Title:       record.DisplayTitle(),
		Overview:    record.Overview,
		PosterPath:  record.PosterPath,
		ReleaseDate: record.DisplayDate(),
		// 数值字段缺省归零而非NULL，保证下游排序全序
		VoteAverage: record.VoteAverage,
		VoteCount:   record.VoteCount,
		RawPayload:  rawPayload,
		Genres:      genres,
	}

	if err := s.catalogRepo.Create(ctx, item); err != nil {
		if isDuplicateKeyErr(err) {
			// 并发撞唯一键：另一请求已入库，重查返回既有行
			s.logger.WithFields(logrus.Fields{
				"kind":        kind,
				"external_id": record.ID,
			}).Info("入库撞唯一键，返回并发胜者")
			return s.catalogRepo.FindByExternalID(ctx, kind, record.ID)
		}
		return nil, fmt.Errorf("入库%s(external_id=%d)失败: %w", kind, record.ID, err)
	}

	s.listCache.Invalidate(kind)
	return item, nil
}

// genreName 从taxonomy快照取分类名，快照未加载则懒拉取；拉取失败返回空（由占位名兜底）
func (s *IngestionService) genreName(ctx context.Context, kind model.ContentKind, genreID int64) string {
	s.mu.Lock()
	names := s.genreNames[kind]
	s.mu.Unlock()

	if names == nil {
		fetched, err := s.provider.ListGenres(ctx, kind)
		if err != nil {
			s.logger.WithError(err).Warnf("拉取%s分类taxonomy失败，新分类将使用占位名", kind)
			return ""
		}
		names = make(map[int64]string, len(fetched))
		for _, g := range fetched {
			names[g.ID] = g.Name
		}
		s.mu.Lock()
		s.genreNames[kind] = names
		s.mu.Unlock()
	}
	return names[genreID]
}

// isDuplicateKeyErr 唯一键冲突判定（gorm翻译 + pg错误码兜底）
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}

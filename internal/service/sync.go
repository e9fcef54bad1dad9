package service

import (
	"context"
	"fmt"

	"CineSync/internal/config"
	"CineSync/internal/interfaces"
	"CineSync/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SyncService 批量周期同步：走与用户搜索完全相同的入库路径，
// 逐页拉取热门/高分列表。翻页用限速器对提供方限流；
// 中途失败不回滚已入库页，进度是部分的、下次运行可续。
type SyncService struct {
	provider   interfaces.CatalogProvider
	ingest     *IngestionService
	reconciler *GenreReconciler
	limiter    *rate.Limiter
	cfg        *config.Config
	logger     *logrus.Logger
}

// NewSyncService 创建 SyncService
func NewSyncService(
	provider interfaces.CatalogProvider,
	ingest *IngestionService,
	reconciler *GenreReconciler,
	cfg *config.Config,
	logger *logrus.Logger,
) *SyncService {
	return &SyncService{
		provider:   provider,
		ingest:     ingest,
		reconciler: reconciler,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Sync.PagesPerSecond), 1),
		cfg:        cfg,
		logger:     logger,
	}
}

// SyncKind 同步指定类型：先同步分类taxonomy，再逐页拉热门与高分列表入库
func (s *SyncService) SyncKind(ctx context.Context, kind model.ContentKind, pages int) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	if pages <= 0 {
		pages = s.cfg.Sync.Pages
	}

	if err := s.SyncGenres(ctx, kind); err != nil {
		// taxonomy失败不阻塞内容同步（入库路径自带占位名兜底）
		s.logger.WithError(err).Warnf("同步%s分类taxonomy失败，继续内容同步", kind)
	}

	listings := []struct {
		name  string
		fetch func(context.Context, model.ContentKind, int) (*model.ProviderPage, error)
	}{
		{"popular", s.provider.ListPopular},
		{"top_rated", s.provider.ListTopRated},
	}

	ingested, failedPages := 0, 0
	for _, listing := range listings {
		for page := 1; page <= pages; page++ {
			// 翻页前过限速器，尊重提供方速率限制
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("同步被取消: %w", err)
			}
			providerPage, err := listing.fetch(ctx, kind, page)
			if err != nil {
				// 单页失败跳过，已入库页保留
				failedPages++
				s.logger.WithError(err).WithFields(logrus.Fields{
					"kind":    kind,
					"listing": listing.name,
					"page":    page,
				}).Warn("拉取列表页失败，跳过该页")
				continue
			}
			for i := range providerPage.Results {
				record := &providerPage.Results[i]
				if record.Malformed() {
					continue
				}
				if _, err := s.ingest.Ingest(ctx, record, kind); err != nil {
					s.logger.WithError(err).WithField("external_id", record.ID).Warn("批量入库单条失败，跳过")
					continue
				}
				ingested++
			}
			if providerPage.TotalPages > 0 && page >= providerPage.TotalPages {
				break
			}
		}
	}

	s.logger.Infof("%s同步完成：处理%d条记录，失败%d页", kind, ingested, failedPages)
	return nil
}

// SyncGenres 同步提供方分类taxonomy（只增不改名，名称维护独立处理）
func (s *SyncService) SyncGenres(ctx context.Context, kind model.ContentKind) error {
	genres, err := s.provider.ListGenres(ctx, kind)
	if err != nil {
		return fmt.Errorf("拉取%s分类taxonomy失败: %w", kind, err)
	}
	resolved := 0
	for _, g := range genres {
		if _, err := s.reconciler.Resolve(ctx, g.ID, g.Name); err != nil {
			s.logger.WithError(err).WithField("genre_id", g.ID).Warn("同步分类失败，跳过")
			continue
		}
		resolved++
	}
	s.logger.Infof("%s分类taxonomy同步完成，共%d个分类", kind, resolved)
	return nil
}

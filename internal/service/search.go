package service

import (
	"context"
	"fmt"
	"strings"

	"CineSync/internal/interfaces"
	"CineSync/internal/model"
	"CineSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// localHitThreshold 单类型本地命中数达到该值时不再回源提供方
const localHitThreshold = 5

// localSearchLimit 本地搜索单类型最多返回条数
const localSearchLimit = 50

// SearchService 搜索编排：本地优先，命中不足回源提供方并顺路入库，
// 合并结果去重。提供方故障只降级为仅本地结果，永远不把外部失败抛给调用方。
type SearchService struct {
	catalogRepo repository.CatalogRepository
	provider    interfaces.CatalogProvider
	ingest      *IngestionService
	rating      *RatingService
	logger      *logrus.Logger
}

// NewSearchService 创建 SearchService
func NewSearchService(
	catalogRepo repository.CatalogRepository,
	provider interfaces.CatalogProvider,
	ingest *IngestionService,
	rating *RatingService,
	logger *logrus.Logger,
) *SearchService {
	return &SearchService{
		catalogRepo: catalogRepo,
		provider:    provider,
		ingest:      ingest,
		rating:      rating,
		logger:      logger,
	}
}

// SearchResult 搜索返回
type SearchResult struct {
	Query      string               `json:"query"`
	Page       int                  `json:"page"`
	Items      []*model.ContentItem `json:"items"`
	TotalCount int                  `json:"total_count"`
}

// Search 统一搜索入口。
// 页码约定：对外1基，提供方同为1基，原样透传不做换算。
// 流程：本地标题子串匹配（两类型）→ 单类型命中<阈值时回源该类型
// → 逐条入库 → 按外部ID去重合并 → 读时机会性刷新混合评分。
func (s *SearchService) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		// 纯空白搜索词在任何查库动作之前拒绝
		return nil, fmt.Errorf("%w: 搜索词不能为空", ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}

	var items []*model.ContentItem
	for _, kind := range model.AllKinds() {
		kindItems, err := s.searchKind(ctx, kind, query, page)
		if err != nil {
			return nil, err
		}
		items = append(items, kindItems...)
	}

	// 展示前机会性刷新混合评分（派生缓存，读时重算）
	for _, it := range items {
		s.rating.RefreshItem(ctx, it)
	}

	return &SearchResult{
		Query:      query,
		Page:       page,
		Items:      items,
		TotalCount: len(items),
	}, nil
}

// searchKind 单类型搜索：本地够量直接返回，不足回源合并
func (s *SearchService) searchKind(ctx context.Context, kind model.ContentKind, query string, page int) ([]*model.ContentItem, error) {
	local, err := s.catalogRepo.SearchByTitle(ctx, kind, query, localSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("本地搜索%s失败: %w", kind, err)
	}
	if len(local) >= localHitThreshold {
		return local, nil
	}

	providerPage, err := s.provider.SearchByTitle(ctx, kind, query, page)
	if err != nil {
		// 外部不可用：告警日志后降级为仅本地结果
		s.logger.WithError(err).WithFields(logrus.Fields{
			"kind":  kind,
			"query": query,
		}).Warn("提供方搜索失败，降级为仅本地结果")
		return local, nil
	}

	seen := make(map[int64]struct{}, len(local))
	for _, it := range local {
		seen[it.ExternalID] = struct{}{}
	}

	merged := local
	for i := range providerPage.Results {
		record := &providerPage.Results[i]
		if record.Malformed() {
			// 畸形记录：不入库、不计数
			s.logger.WithFields(logrus.Fields{
				"kind":        kind,
				"external_id": record.ID,
			}).Warn("跳过畸形提供方记录")
			continue
		}
		if _, dup := seen[record.ID]; dup {
			// 本地结果集中已有同外部ID，丢弃避免重复
			continue
		}
		item, err := s.ingest.Ingest(ctx, record, kind)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"kind":        kind,
				"external_id": record.ID,
			}).Warn("搜索回源入库失败，跳过该条")
			continue
		}
		seen[record.ID] = struct{}{}
		merged = append(merged, item)
	}
	return merged, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"CineSync/internal/cache"
	"CineSync/internal/model"
	"CineSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CatalogService 面向展示层的目录读服务（详情/列表/筛选/管理员删除）
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	rating      *RatingService
	listCache   *cache.ListCache
	logger      *logrus.Logger
}

// NewCatalogService 创建 CatalogService
func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	rating *RatingService,
	listCache *cache.ListCache,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		rating:      rating,
		listCache:   listCache,
		logger:      logger,
	}
}

// ContentListResult 列表返回
type ContentListResult struct {
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Total    int64                `json:"total"`
	Items    []*model.ContentItem `json:"items"`
}

// GetDetail 按 content_uuid 取详情，展示前机会性刷新混合评分。
// 查不到作为确定的否定结果返回 ErrNotFound。
func (s *CatalogService) GetDetail(ctx context.Context, kind model.ContentKind, contentUUID string) (*model.ContentItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	item, err := s.catalogRepo.FindByUUID(ctx, kind, contentUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, contentUUID)
		}
		return nil, err
	}
	s.rating.RefreshItem(ctx, item)
	return item, nil
}

// ListByKind 按类型分页列表，走显式列表缓存（键=kind+page+pageSize，写路径失效）
func (s *CatalogService) ListByKind(ctx context.Context, kind model.ContentKind, page, pageSize int) (*ContentListResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	// 先归一化分页参数，保证缓存键规范
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	if cached, ok := s.listCache.Get(kind, page, pageSize); ok {
		if result, ok := cached.(*ContentListResult); ok {
			return result, nil
		}
	}

	items, total, err := s.catalogRepo.ListByKind(ctx, kind, page, pageSize)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		s.rating.RefreshItem(ctx, it)
	}
	result := &ContentListResult{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    items,
	}
	s.listCache.Set(kind, page, pageSize, result)
	return result, nil
}

// Filter 组合条件筛选（各可选子句拼AND），条件任意不走列表缓存
func (s *CatalogService) Filter(ctx context.Context, kind model.ContentKind, filter repository.CatalogFilter, page, pageSize int) (*ContentListResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	items, total, err := s.catalogRepo.Filter(ctx, kind, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		s.rating.RefreshItem(ctx, it)
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &ContentListResult{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    items,
	}, nil
}

// DeleteContent 管理员显式删除：级联摘除评分与分类关联，随后失效列表缓存
func (s *CatalogService) DeleteContent(ctx context.Context, kind model.ContentKind, contentUUID string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	item, err := s.catalogRepo.FindByUUID(ctx, kind, contentUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, contentUUID)
		}
		return err
	}
	if err := s.catalogRepo.Delete(ctx, kind, item.ID); err != nil {
		return fmt.Errorf("删除%s(%s)失败: %w", kind, contentUUID, err)
	}
	s.listCache.Invalidate(kind)
	s.logger.WithFields(logrus.Fields{
		"kind":         kind,
		"content_uuid": contentUUID,
	}).Info("管理员删除内容完成（评分与分类关联已级联摘除）")
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"CineSync/internal/cache"
	"CineSync/internal/model"
	"CineSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RatingService 混合评分聚合：把某内容的全部用户评分汇总为一个展示分。
// blended_rating 是派生缓存而非事实源，随时可由评分行重算；
// 无人评分时为NULL（展示层自行回退到提供方分数），绝不取0或提供方均分。
type RatingService struct {
	ratingRepo  repository.RatingRepository
	catalogRepo repository.CatalogRepository
	listCache   *cache.ListCache
	logger      *logrus.Logger
}

// NewRatingService 创建 RatingService
func NewRatingService(
	ratingRepo repository.RatingRepository,
	catalogRepo repository.CatalogRepository,
	listCache *cache.ListCache,
	logger *logrus.Logger,
) *RatingService {
	return &RatingService{
		ratingRepo:  ratingRepo,
		catalogRepo: catalogRepo,
		listCache:   listCache,
		logger:      logger,
	}
}

// BlendScores 算术均值四舍五入（half-up）保留两位小数；空集返回nil而非0
func BlendScores(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, v := range scores {
		sum += v
	}
	mean := float64(sum) / float64(len(scores))
	rounded := math.Round(mean*100) / 100
	return &rounded
}

// RateContent 写入/更新一条评分并立即重算混合评分。
// 同 (user, content) 的二次评分走更新不新增。
func (s *RatingService) RateContent(ctx context.Context, userID uint64, kind model.ContentKind, contentID uint64, score int) (*float64, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	rating := &model.UserRating{UserID: userID, Score: score}
	if kind == model.KindDrama {
		rating.DramaID = &contentID
	} else {
		rating.MovieID = &contentID
	}
	if err := rating.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("写入评分失败: %w", err)
	}
	return s.Recompute(ctx, kind, contentID)
}

// RemoveRating 删除评分并重算；最后一条删掉后混合评分回到NULL
func (s *RatingService) RemoveRating(ctx context.Context, userID uint64, kind model.ContentKind, contentID uint64) (*float64, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	affected, err := s.ratingRepo.Delete(ctx, userID, kind, contentID)
	if err != nil {
		return nil, fmt.Errorf("删除评分失败: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: 该用户未对此内容评分", ErrNotFound)
	}
	return s.Recompute(ctx, kind, contentID)
}

// Recompute 重算混合评分并回写。
// 分值必须按内容ID重新查库——评分刚在本请求内变更过，
// 读内存里早先缓存的关联集合会漏行或多行，这是本子系统唯一的正确性陷阱。
func (s *RatingService) Recompute(ctx context.Context, kind model.ContentKind, contentID uint64) (*float64, error) {
	scores, err := s.ratingRepo.ScoresByContent(ctx, kind, contentID)
	if err != nil {
		return nil, fmt.Errorf("重查评分失败: %w", err)
	}
	blended := BlendScores(scores)
	if err := s.catalogRepo.UpdateBlendedRating(ctx, kind, contentID, blended); err != nil {
		return nil, fmt.Errorf("回写混合评分失败: %w", err)
	}
	s.listCache.Invalidate(kind)
	return blended, nil
}

// CurrentValue 读取当前存储的混合评分（派生缓存原值，不触发重算）
func (s *RatingService) CurrentValue(ctx context.Context, kind model.ContentKind, contentID uint64) (*float64, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 未知内容类型 %s", ErrInvalidInput, kind)
	}
	item, err := s.catalogRepo.FindByID(ctx, kind, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s id=%d", ErrNotFound, kind, contentID)
		}
		return nil, err
	}
	return item.BlendedRating, nil
}

// RefreshItem 读路径的机会性刷新：重查分值，仅在与缓存值不一致时回写。
// 详情/列表/搜索展示前调用；失败只记日志，不影响读请求。
func (s *RatingService) RefreshItem(ctx context.Context, item *model.ContentItem) {
	if item == nil || item.ID == 0 {
		return
	}
	scores, err := s.ratingRepo.ScoresByContent(ctx, item.Kind, item.ID)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"kind":       item.Kind,
			"content_id": item.ID,
		}).Warn("读时刷新混合评分失败")
		return
	}
	blended := BlendScores(scores)
	if ratingEqual(blended, item.BlendedRating) {
		return
	}
	if err := s.catalogRepo.UpdateBlendedRating(ctx, item.Kind, item.ID, blended); err != nil {
		s.logger.WithError(err).WithField("content_id", item.ID).Warn("回写混合评分失败")
		return
	}
	item.BlendedRating = blended
	s.listCache.Invalidate(item.Kind)
}

func ratingEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return math.Abs(*a-*b) < 1e-9
}

package repository

import (
	"context"
	"time"

	"CineSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepository 用户评分仓储。唯一约束 (user_id, movie_id) / (user_id, drama_id)
// 保证同一用户对同一内容只有一条评分，二次写入走更新。
type RatingRepository interface {
	// Upsert 写入评分；同 (user, content) 已存在时更新 score 与 updated_at
	Upsert(ctx context.Context, rating *model.UserRating) error
	// Delete 删除指定用户对指定内容的评分，返回删除行数
	Delete(ctx context.Context, userID uint64, kind model.ContentKind, contentID uint64) (int64, error)
	// ListByContent 某内容的全部评分行
	ListByContent(ctx context.Context, kind model.ContentKind, contentID uint64) ([]*model.UserRating, error)
	// ScoresByContent 按内容ID直接重查分值列表。
	// 聚合计算只允许走这里，绝不读内存里缓存的关联集合——
	// 同一请求内先写评分再聚合时，旧关联列表会漏掉刚写入的行。
	ScoresByContent(ctx context.Context, kind model.ContentKind, contentID uint64) ([]int, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository 创建 RatingRepository 实例
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *model.UserRating) error {
	// 冲突目标按内容类型选对应的唯一索引列
	conflictColumns := []clause.Column{{Name: "user_id"}, {Name: "movie_id"}}
	if rating.DramaID != nil {
		conflictColumns = []clause.Column{{Name: "user_id"}, {Name: "drama_id"}}
	}
	rating.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   conflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(rating).Error
}

func (r *ratingRepository) Delete(ctx context.Context, userID uint64, kind model.ContentKind, contentID uint64) (int64, error) {
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind == model.KindDrama {
		db = db.Where("drama_id = ?", contentID)
	} else {
		db = db.Where("movie_id = ?", contentID)
	}
	result := db.Delete(&model.UserRating{})
	return result.RowsAffected, result.Error
}

func (r *ratingRepository) ListByContent(ctx context.Context, kind model.ContentKind, contentID uint64) ([]*model.UserRating, error) {
	var ratings []*model.UserRating
	db := r.db.WithContext(ctx)
	if kind == model.KindDrama {
		db = db.Where("drama_id = ?", contentID)
	} else {
		db = db.Where("movie_id = ?", contentID)
	}
	if err := db.Order("updated_at DESC").Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) ScoresByContent(ctx context.Context, kind model.ContentKind, contentID uint64) ([]int, error) {
	var scores []int
	db := r.db.WithContext(ctx).Model(&model.UserRating{})
	if kind == model.KindDrama {
		db = db.Where("drama_id = ?", contentID)
	} else {
		db = db.Where("movie_id = ?", contentID)
	}
	if err := db.Pluck("score", &scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

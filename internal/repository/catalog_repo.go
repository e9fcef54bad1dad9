package repository

import (
	"context"
	"fmt"
	"strings"

	"CineSync/internal/model"

	"gorm.io/gorm"
)

// CatalogFilter 可组合的目录筛选条件（各子句可选，统一拼为AND，
// 避免按字段组合枚举分支）
type CatalogFilter struct {
	TitleContains string   // 标题包含（大小写不敏感）
	GenreIDs      []int64  // 分类ID命中任意一个
	RatingMin     *float64 // 混合评分下限
	RatingMax     *float64 // 混合评分上限
}

// CatalogRepository 内容目录仓储（Movie/Drama 两表统一入口，kind 区分）
type CatalogRepository interface {
	// FindByExternalID 按 (提供方ID, 类型) 查内容
	FindByExternalID(ctx context.Context, kind model.ContentKind, externalID int64) (*model.ContentItem, error)
	// FindByUUID 按 content_uuid 查内容
	FindByUUID(ctx context.Context, kind model.ContentKind, contentUUID string) (*model.ContentItem, error)
	// FindByID 按本地主键查内容
	FindByID(ctx context.Context, kind model.ContentKind, contentID uint64) (*model.ContentItem, error)
	// SearchByTitle 标题子串搜索（大小写不敏感），按投票数降序
	SearchByTitle(ctx context.Context, kind model.ContentKind, query string, limit int) ([]*model.ContentItem, error)
	// ListByKind 按类型分页列表，投票数降序
	ListByKind(ctx context.Context, kind model.ContentKind, page, pageSize int) ([]*model.ContentItem, int64, error)
	// Filter 按组合条件分页筛选
	Filter(ctx context.Context, kind model.ContentKind, filter CatalogFilter, page, pageSize int) ([]*model.ContentItem, int64, error)
	// Create 新建内容（含分类关联），成功后回填 item.ID
	Create(ctx context.Context, item *model.ContentItem) error
	// UpdateBlendedRating 回写派生的混合评分（nil 表示清空为 NULL）
	UpdateBlendedRating(ctx context.Context, kind model.ContentKind, contentID uint64, rating *float64) error
	// Delete 管理员显式删除：级联摘除评分与分类关联
	Delete(ctx context.Context, kind model.ContentKind, contentID uint64) error
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建 CatalogRepository 实例
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) FindByExternalID(ctx context.Context, kind model.ContentKind, externalID int64) (*model.ContentItem, error) {
	if kind == model.KindDrama {
		var d model.Drama
		if err := r.db.WithContext(ctx).Preload("Genres").
			Where("external_id = ?", externalID).First(&d).Error; err != nil {
			return nil, err
		}
		return d.Item(), nil
	}
	var m model.Movie
	if err := r.db.WithContext(ctx).Preload("Genres").
		Where("external_id = ?", externalID).First(&m).Error; err != nil {
		return nil, err
	}
	return m.Item(), nil
}

func (r *catalogRepository) FindByUUID(ctx context.Context, kind model.ContentKind, contentUUID string) (*model.ContentItem, error) {
	if kind == model.KindDrama {
		var d model.Drama
		if err := r.db.WithContext(ctx).Preload("Genres").
			Where("content_uuid = ?", contentUUID).First(&d).Error; err != nil {
			return nil, err
		}
		return d.Item(), nil
	}
	var m model.Movie
	if err := r.db.WithContext(ctx).Preload("Genres").
		Where("content_uuid = ?", contentUUID).First(&m).Error; err != nil {
		return nil, err
	}
	return m.Item(), nil
}

func (r *catalogRepository) FindByID(ctx context.Context, kind model.ContentKind, contentID uint64) (*model.ContentItem, error) {
	if kind == model.KindDrama {
		var d model.Drama
		if err := r.db.WithContext(ctx).Preload("Genres").
			Where("id = ?", contentID).First(&d).Error; err != nil {
			return nil, err
		}
		return d.Item(), nil
	}
	var m model.Movie
	if err := r.db.WithContext(ctx).Preload("Genres").
		Where("id = ?", contentID).First(&m).Error; err != nil {
		return nil, err
	}
	return m.Item(), nil
}

// escapeLike 转义 LIKE 通配符，用户输入按字面匹配
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (r *catalogRepository) SearchByTitle(ctx context.Context, kind model.ContentKind, query string, limit int) ([]*model.ContentItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	pattern := "%" + escapeLike(query) + "%"

	if kind == model.KindDrama {
		var dramas []*model.Drama
		if err := r.db.WithContext(ctx).Preload("Genres").
			Where("title ILIKE ?", pattern).
			Order("vote_count DESC").Limit(limit).Find(&dramas).Error; err != nil {
			return nil, err
		}
		items := make([]*model.ContentItem, 0, len(dramas))
		for _, d := range dramas {
			items = append(items, d.Item())
		}
		return items, nil
	}

	var movies []*model.Movie
	if err := r.db.WithContext(ctx).Preload("Genres").
		Where("title ILIKE ?", pattern).
		Order("vote_count DESC").Limit(limit).Find(&movies).Error; err != nil {
		return nil, err
	}
	items := make([]*model.ContentItem, 0, len(movies))
	for _, m := range movies {
		items = append(items, m.Item())
	}
	return items, nil
}

func (r *catalogRepository) ListByKind(ctx context.Context, kind model.ContentKind, page, pageSize int) ([]*model.ContentItem, int64, error) {
	return r.Filter(ctx, kind, CatalogFilter{}, page, pageSize)
}

func (r *catalogRepository) Filter(ctx context.Context, kind model.ContentKind, filter CatalogFilter, page, pageSize int) ([]*model.ContentItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	table := "movies"
	joinTable := "movie_genres"
	fkColumn := "movie_id"
	if kind == model.KindDrama {
		table = "dramas"
		joinTable = "drama_genres"
		fkColumn = "drama_id"
	}

	newQuery := func() *gorm.DB {
		var db *gorm.DB
		if kind == model.KindDrama {
			db = r.db.WithContext(ctx).Model(&model.Drama{})
		} else {
			db = r.db.WithContext(ctx).Model(&model.Movie{})
		}
		// 各可选子句统一追加为AND，缺省子句不参与
		if filter.TitleContains != "" {
			db = db.Where("title ILIKE ?", "%"+escapeLike(filter.TitleContains)+"%")
		}
		if len(filter.GenreIDs) > 0 {
			db = db.Where(fmt.Sprintf("%s.id IN (SELECT %s FROM %s WHERE genre_id IN ?)", table, fkColumn, joinTable), filter.GenreIDs)
		}
		if filter.RatingMin != nil {
			db = db.Where("blended_rating >= ?", *filter.RatingMin)
		}
		if filter.RatingMax != nil {
			db = db.Where("blended_rating <= ?", *filter.RatingMax)
		}
		return db
	}

	var total int64
	if err := newQuery().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	items := make([]*model.ContentItem, 0, pageSize)
	if kind == model.KindDrama {
		var dramas []*model.Drama
		if err := newQuery().Preload("Genres").
			Order("vote_count DESC").Offset(offset).Limit(pageSize).Find(&dramas).Error; err != nil {
			return nil, 0, err
		}
		for _, d := range dramas {
			items = append(items, d.Item())
		}
	} else {
		var movies []*model.Movie
		if err := newQuery().Preload("Genres").
			Order("vote_count DESC").Offset(offset).Limit(pageSize).Find(&movies).Error; err != nil {
			return nil, 0, err
		}
		for _, m := range movies {
			items = append(items, m.Item())
		}
	}
	return items, total, nil
}

func (r *catalogRepository) Create(ctx context.Context, item *model.ContentItem) error {
	if item.Kind == model.KindDrama {
		d := &model.Drama{ContentFields: item.Fields(), Genres: item.Genres}
		if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
			return err
		}
		item.ID = d.ID
		return nil
	}
	m := &model.Movie{ContentFields: item.Fields(), Genres: item.Genres}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	item.ID = m.ID
	return nil
}

func (r *catalogRepository) UpdateBlendedRating(ctx context.Context, kind model.ContentKind, contentID uint64, rating *float64) error {
	var db *gorm.DB
	if kind == model.KindDrama {
		db = r.db.WithContext(ctx).Model(&model.Drama{})
	} else {
		db = r.db.WithContext(ctx).Model(&model.Movie{})
	}
	return db.Where("id = ?", contentID).Update("blended_rating", rating).Error
}

// Delete 在一个事务中摘除评分、清空分类关联并删除内容行
func (r *catalogRepository) Delete(ctx context.Context, kind model.ContentKind, contentID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if kind == model.KindDrama {
			if err := tx.Where("drama_id = ?", contentID).Delete(&model.UserRating{}).Error; err != nil {
				return fmt.Errorf("摘除剧集评分失败: %w", err)
			}
			d := &model.Drama{ContentFields: model.ContentFields{ID: contentID}}
			if err := tx.Model(d).Association("Genres").Clear(); err != nil {
				return fmt.Errorf("清空剧集分类关联失败: %w", err)
			}
			result := tx.Delete(&model.Drama{}, contentID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		}
		if err := tx.Where("movie_id = ?", contentID).Delete(&model.UserRating{}).Error; err != nil {
			return fmt.Errorf("摘除电影评分失败: %w", err)
		}
		m := &model.Movie{ContentFields: model.ContentFields{ID: contentID}}
		if err := tx.Model(m).Association("Genres").Clear(); err != nil {
			return fmt.Errorf("清空电影分类关联失败: %w", err)
		}
		result := tx.Delete(&model.Movie{}, contentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

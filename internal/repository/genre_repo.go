package repository

import (
	"context"

	"CineSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenreRepository 分类仓储。分类主键为提供方ID原样落库，绝不本地生成。
type GenreRepository interface {
	// GetByID 按提供方分类ID精确查找
	GetByID(ctx context.Context, id int64) (*model.Genre, error)
	// Ensure 不存在则插入（冲突时不覆盖已有行），返回库内最终行。
	// 并发同ID插入降级为"返回先到者"，不向调用方抛冲突。
	Ensure(ctx context.Context, genre *model.Genre) (*model.Genre, error)
	// ListAll 全量分类（按ID升序）
	ListAll(ctx context.Context) ([]*model.Genre, error)
}

type genreRepository struct {
	db *gorm.DB
}

// NewGenreRepository 创建 GenreRepository 实例
func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) GetByID(ctx context.Context, id int64) (*model.Genre, error) {
	var g model.Genre
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *genreRepository) Ensure(ctx context.Context, genre *model.Genre) (*model.Genre, error) {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(genre).Error; err != nil {
		return nil, err
	}
	// 冲突走DoNothing时本地对象可能不是库内内容，统一回读取胜者
	var winner model.Genre
	if err := r.db.WithContext(ctx).Where("id = ?", genre.ID).First(&winner).Error; err != nil {
		return nil, err
	}
	return &winner, nil
}

func (r *genreRepository) ListAll(ctx context.Context) ([]*model.Genre, error) {
	var genres []*model.Genre
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

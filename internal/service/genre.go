package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"CineSync/internal/model"
	"CineSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GenreReconciler 把提供方分类ID映射为本地Genre记录，缺失则创建。
// 分类身份由提供方定义：ID原样落库，重新同步时无需合并。
type GenreReconciler struct {
	genreRepo repository.GenreRepository
	logger    *logrus.Logger
}

// NewGenreReconciler 创建 GenreReconciler
func NewGenreReconciler(genreRepo repository.GenreRepository, logger *logrus.Logger) *GenreReconciler {
	return &GenreReconciler{
		genreRepo: genreRepo,
		logger:    logger,
	}
}

// Resolve 按提供方分类ID解析本地Genre。
// 命中直接返回（此处不同步名称变更，名称维护是独立的运维操作）；
// 未命中则用提供方ID原样新建。并发同ID创建降级为"返回先到者"。
func (s *GenreReconciler) Resolve(ctx context.Context, providerGenreID int64, providerGenreName string) (*model.Genre, error) {
	if providerGenreID <= 0 {
		return nil, fmt.Errorf("%w: 提供方分类ID必须为正数", ErrInvalidInput)
	}

	existing, err := s.genreRepo.GetByID(ctx, providerGenreID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询分类%d失败: %w", providerGenreID, err)
	}

	name := strings.TrimSpace(providerGenreName)
	if name == "" {
		// taxonomy缺名时的占位名，带ID保证唯一
		name = fmt.Sprintf("未知分类-%d", providerGenreID)
	}
	genre, err := s.genreRepo.Ensure(ctx, &model.Genre{ID: providerGenreID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("创建分类%d失败: %w", providerGenreID, err)
	}
	return genre, nil
}

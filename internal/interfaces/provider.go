package interfaces

import (
	"context"

	"CineSync/internal/model"
)

// CatalogProvider 外部内容提供方必须实现的核心接口。
// 纯I/O，不含业务规则；所有方法受建连/整体超时约束，失败由调用方决定降级策略。
type CatalogProvider interface {
	GetName() string // 提供方名称
	// SearchByTitle 按标题搜索指定类型内容（page 为提供方1基页码）
	SearchByTitle(ctx context.Context, kind model.ContentKind, query string, page int) (*model.ProviderPage, error)
	// ListPopular 热门列表
	ListPopular(ctx context.Context, kind model.ContentKind, page int) (*model.ProviderPage, error)
	// ListTopRated 高分列表
	ListTopRated(ctx context.Context, kind model.ContentKind, page int) (*model.ProviderPage, error)
	// ListGenres 分类taxonomy
	ListGenres(ctx context.Context, kind model.ContentKind) ([]model.ProviderGenre, error)
}

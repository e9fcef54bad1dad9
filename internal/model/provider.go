package model

import "strings"

// ProviderRecord 外部提供方返回的单条内容记录（电影/剧集通用）。
// 电影用 title/release_date，剧集用 name/first_air_date，其余未知字段一律忽略。
type ProviderRecord struct {
	ID           int64   `json:"id"`             // 提供方原生ID
	Title        string  `json:"title"`          // 电影标题
	Name         string  `json:"name"`           // 剧集标题
	Overview     string  `json:"overview"`       // 简介
	PosterPath   string  `json:"poster_path"`    // 海报路径
	ReleaseDate  string  `json:"release_date"`   // 电影上映日期
	FirstAirDate string  `json:"first_air_date"` // 剧集开播日期
	VoteAverage  float64 `json:"vote_average"`   // 提供方平均分
	VoteCount    int64   `json:"vote_count"`     // 提供方投票数
	GenreIDs     []int64 `json:"genre_ids"`      // 提供方分类ID列表
}

// DisplayTitle 电影取 title，剧集取 name
func (r *ProviderRecord) DisplayTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return strings.TrimSpace(r.Name)
}

// DisplayDate 电影取 release_date，剧集取 first_air_date
func (r *ProviderRecord) DisplayDate() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// Malformed 缺提供方ID或标题的记录视为畸形记录，跳过不入库
func (r *ProviderRecord) Malformed() bool {
	return r.ID <= 0 || r.DisplayTitle() == ""
}

// ProviderPage 提供方分页响应（搜索/热门/高分列表共用）
type ProviderPage struct {
	Page         int              `json:"page"`
	Results      []ProviderRecord `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int64            `json:"total_results"`
}

// ProviderGenre 提供方分类taxonomy条目
type ProviderGenre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProviderGenreList /genre/{kind}/list 响应
type ProviderGenreList struct {
	Genres []ProviderGenre `json:"genres"`
}

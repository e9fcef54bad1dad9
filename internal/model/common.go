package model

import "gorm.io/datatypes"

// ContentKind 内容类型枚举（电影/剧集）
type ContentKind string

const (
	KindMovie ContentKind = "movie"
	KindDrama ContentKind = "drama"
)

// AllKinds 所有支持的内容类型（遍历用）
func AllKinds() []ContentKind {
	return []ContentKind{KindMovie, KindDrama}
}

// Valid 是否为合法的内容类型
func (k ContentKind) Valid() bool {
	return k == KindMovie || k == KindDrama
}

// ContentItem 统一的内容视图（抹平 Movie/Drama 表差异，供 service/api 层使用）
type ContentItem struct {
	ID            uint64      `json:"-"`
	Kind          ContentKind `json:"kind"`
	ContentUUID   string      `json:"content_uuid"`
	ExternalID    int64       `json:"external_id"`
	Title         string      `json:"title"`
	Overview      string      `json:"overview"`
	PosterPath    string      `json:"poster_path"`
	ReleaseDate   string      `json:"release_date"`
	VoteAverage   float64     `json:"vote_average"`
	VoteCount     int64       `json:"vote_count"`
	BlendedRating *float64       `json:"blended_rating"` // 本地混合评分，无人评分时为 null
	RawPayload    datatypes.JSON `json:"-"`              // 提供方原始记录快照（入库留档）
	Genres        []*Genre       `json:"genres"`
}

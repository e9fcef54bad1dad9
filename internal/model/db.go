package model

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Username  string    `gorm:"column:username;type:varchar(64);uniqueIndex;not null;comment:用户名"`
	Nickname  string    `gorm:"column:nickname;type:varchar(64);comment:昵称"`
	IsActive  bool      `gorm:"column:is_active;type:boolean;default:true;comment:是否活跃"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// Genre 内容分类。主键直接使用外部提供方的分类ID（不本地自增），
// 重新同步时只做查找或原样插入，永远不会产生需要合并的重复分类。
type Genre struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement:false;comment:提供方分类ID（非本地生成）"`
	Name      string    `gorm:"column:name;type:varchar(64);uniqueIndex;not null;comment:分类名称"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

// ContentFields Movie/Drama 两张表共用的内容字段
type ContentFields struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	ContentUUID   string         `gorm:"column:content_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID（对外暴露）"`
	ExternalID    int64          `gorm:"column:external_id;type:bigint;uniqueIndex;not null;comment:提供方原生ID（不可变）"`
	Title         string         `gorm:"column:title;type:varchar(256);not null;comment:标题"`
	Overview      string         `gorm:"column:overview;type:text;comment:简介"`
	PosterPath    string         `gorm:"column:poster_path;type:varchar(256);comment:海报路径"`
	ReleaseDate   string         `gorm:"column:release_date;type:varchar(16);comment:上映/开播日期（提供方字符串）"`
	VoteAverage   float64        `gorm:"column:vote_average;type:numeric(4,1);default:0;comment:提供方平均分"`
	VoteCount     int64          `gorm:"column:vote_count;type:bigint;default:0;comment:提供方投票数"`
	BlendedRating *float64       `gorm:"column:blended_rating;type:numeric(4,2);comment:本地混合评分（派生缓存，可空）"`
	RawPayload    datatypes.JSON `gorm:"column:raw_payload;type:jsonb;comment:提供方原始记录快照"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

type Movie struct {
	ContentFields `gorm:"embedded"`
	Genres        []*Genre `gorm:"many2many:movie_genres"`
}

type Drama struct {
	ContentFields `gorm:"embedded"`
	Genres        []*Genre `gorm:"many2many:drama_genres"`
}

// UserRating 用户评分。movie_id/drama_id 有且仅有一个非空（写入时校验）；
// 同一 (user, content) 只保留一条，二次写入走更新而非新增。
type UserRating struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	UserID    uint64    `gorm:"column:user_id;type:bigint;not null;uniqueIndex:uk_user_movie;uniqueIndex:uk_user_drama;comment:关联用户ID"`
	MovieID   *uint64   `gorm:"column:movie_id;type:bigint;uniqueIndex:uk_user_movie;comment:关联电影ID（与drama_id二选一）"`
	DramaID   *uint64   `gorm:"column:drama_id;type:bigint;uniqueIndex:uk_user_drama;comment:关联剧集ID（与movie_id二选一）"`
	Score     int       `gorm:"column:score;type:int;not null;comment:评分（1-10整数）"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// ScoreMin ScoreMax 评分固定取值区间
const (
	ScoreMin = 1
	ScoreMax = 10
)

// Validate 写入前校验：movie_id/drama_id 有且仅有一个，分值在固定区间内
func (r *UserRating) Validate() error {
	if r.UserID == 0 {
		return errors.New("评分缺少用户ID")
	}
	if (r.MovieID == nil) == (r.DramaID == nil) {
		return errors.New("评分必须且只能关联一部电影或一部剧集")
	}
	if r.Score < ScoreMin || r.Score > ScoreMax {
		return fmt.Errorf("评分必须在%d到%d之间", ScoreMin, ScoreMax)
	}
	return nil
}

func (User) TableName() string       { return "users" }
func (Genre) TableName() string      { return "genres" }
func (Movie) TableName() string      { return "movies" }
func (Drama) TableName() string      { return "dramas" }
func (UserRating) TableName() string { return "user_ratings" }

// Item 转换为统一内容视图
func (m *Movie) Item() *ContentItem {
	it := m.ContentFields.item(KindMovie)
	it.Genres = m.Genres
	return it
}

// Item 转换为统一内容视图
func (d *Drama) Item() *ContentItem {
	it := d.ContentFields.item(KindDrama)
	it.Genres = d.Genres
	return it
}

func (f *ContentFields) item(kind ContentKind) *ContentItem {
	return &ContentItem{
		ID:            f.ID,
		Kind:          kind,
		ContentUUID:   f.ContentUUID,
		ExternalID:    f.ExternalID,
		Title:         f.Title,
		Overview:      f.Overview,
		PosterPath:    f.PosterPath,
		ReleaseDate:   f.ReleaseDate,
		VoteAverage:   f.VoteAverage,
		VoteCount:     f.VoteCount,
		BlendedRating: f.BlendedRating,
		RawPayload:    f.RawPayload,
		Genres:        []*Genre{},
	}
}

// Fields 统一视图转回表字段（入库用，ID 为零值时由数据库生成）
func (it *ContentItem) Fields() ContentFields {
	return ContentFields{
		ID:            it.ID,
		ContentUUID:   it.ContentUUID,
		ExternalID:    it.ExternalID,
		Title:         it.Title,
		Overview:      it.Overview,
		PosterPath:    it.PosterPath,
		ReleaseDate:   it.ReleaseDate,
		VoteAverage:   it.VoteAverage,
		VoteCount:     it.VoteCount,
		BlendedRating: it.BlendedRating,
		RawPayload:    it.RawPayload,
	}
}

package api

import (
	"errors"
	"net/http"

	"CineSync/internal/model"
	"CineSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RatingHandler 用户评分接口（写入/删除评分并返回最新混合评分）
type RatingHandler struct {
	ratingService  *service.RatingService
	catalogService *service.CatalogService
	logger         *logrus.Logger
}

// NewRatingHandler 创建 RatingHandler
func NewRatingHandler(ratingService *service.RatingService, catalogService *service.CatalogService, logger *logrus.Logger) *RatingHandler {
	return &RatingHandler{
		ratingService:  ratingService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// rateRequest 评分请求体。user_id 由上游鉴权层注入（鉴权本身不在本服务范围）
type rateRequest struct {
	UserID      uint64 `json:"user_id" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	ContentUUID string `json:"content_uuid" binding:"required"`
	Score       int    `json:"score" binding:"required"`
}

// Rate 写入/更新评分
// POST /api/ratings
func (h *RatingHandler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体缺少必填字段: " + err.Error()})
		return
	}
	kind := model.ContentKind(req.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind必须为movie或drama"})
		return
	}

	// 先按UUID解析内容，不存在直接404
	item, err := h.catalogService.GetDetail(c.Request.Context(), kind, req.ContentUUID)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}

	blended, err := h.ratingService.RateContent(c.Request.Context(), req.UserID, kind, item.ID, req.Score)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidInput) {
			h.logger.WithError(err).Error("RateContent failed")
		}
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content_uuid":   req.ContentUUID,
		"blended_rating": blended,
	})
}

// deleteRequest 删除评分请求体
type deleteRequest struct {
	UserID      uint64 `json:"user_id" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	ContentUUID string `json:"content_uuid" binding:"required"`
}

// Remove 删除评分（最后一条删除后混合评分回到null）
// DELETE /api/ratings
func (h *RatingHandler) Remove(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体缺少必填字段: " + err.Error()})
		return
	}
	kind := model.ContentKind(req.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind必须为movie或drama"})
		return
	}

	item, err := h.catalogService.GetDetail(c.Request.Context(), kind, req.ContentUUID)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}

	blended, err := h.ratingService.RemoveRating(c.Request.Context(), req.UserID, kind, item.ID)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) && !errors.Is(err, service.ErrInvalidInput) {
			h.logger.WithError(err).Error("RemoveRating failed")
		}
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content_uuid":   req.ContentUUID,
		"blended_rating": blended,
	})
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"CineSync/internal/model"
	"CineSync/internal/repository"
	"CineSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CatalogHandler 提供给前端的目录查询接口（搜索/列表/详情/筛选/删除）
type CatalogHandler struct {
	catalogService *service.CatalogService
	searchService  *service.SearchService
	logger         *logrus.Logger
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogService *service.CatalogService, searchService *service.SearchService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		searchService:  searchService,
		logger:         logger,
	}
}

// statusFromErr 错误分类映射HTTP状态码
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// parseKind 路径参数转内容类型
func parseKind(c *gin.Context) (model.ContentKind, bool) {
	kind := model.ContentKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind必须为movie或drama"})
		return "", false
	}
	return kind, true
}

// Search 统一搜索接口（本地优先，不足回源提供方）
// GET /api/search?query=xxx&page=1
func (h *CatalogHandler) Search(c *gin.Context) {
	query := c.Query("query")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.searchService.Search(c.Request.Context(), query, page)
	if err != nil {
		h.logger.WithError(err).Error("Search failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// List 按类型分页列表
// GET /api/catalog/:kind?page=1&page_size=20
func (h *CatalogHandler) List(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.catalogService.ListByKind(c.Request.Context(), kind, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListByKind failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Filter 组合条件筛选
// GET /api/catalog/:kind/filter?title=xx&genre_ids=18,35&rating_min=7&rating_max=9
func (h *CatalogHandler) Filter(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.CatalogFilter{
		TitleContains: strings.TrimSpace(c.Query("title")),
	}
	if raw := c.Query("genre_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "genre_ids必须为逗号分隔的正整数"})
				return
			}
			filter.GenreIDs = append(filter.GenreIDs, id)
		}
	}
	if raw := c.Query("rating_min"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating_min必须为数字"})
			return
		}
		filter.RatingMin = &v
	}
	if raw := c.Query("rating_max"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating_max必须为数字"})
			return
		}
		filter.RatingMax = &v
	}

	result, err := h.catalogService.Filter(c.Request.Context(), kind, filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("Filter failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Detail 内容详情（读时机会性刷新混合评分）
// GET /api/catalog/:kind/:content_uuid
func (h *CatalogHandler) Detail(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	contentUUID := c.Param("content_uuid")

	item, err := h.catalogService.GetDetail(c.Request.Context(), kind, contentUUID)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			h.logger.WithError(err).Error("GetDetail failed")
		}
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete 管理员显式删除内容（级联摘除评分与分类关联）
// DELETE /api/catalog/:kind/:content_uuid
func (h *CatalogHandler) Delete(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	contentUUID := c.Param("content_uuid")

	if err := h.catalogService.DeleteContent(c.Request.Context(), kind, contentUUID); err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			h.logger.WithError(err).Error("DeleteContent failed")
		}
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

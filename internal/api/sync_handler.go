package api

import (
	"net/http"
	"strconv"

	"CineSync/internal/model"
	"CineSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncHandler 批量同步触发接口（外部定时器按周期调用，本服务不内置调度）
type SyncHandler struct {
	syncService *service.SyncService
	logger      *logrus.Logger
}

// NewSyncHandler 创建 SyncHandler
func NewSyncHandler(syncService *service.SyncService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// SyncKindHandler 同步指定类型内容
// @Summary 同步提供方内容到本地目录
// @Param kind path string true "内容类型（movie/drama）"
// @Param pages query int false "拉取页数（默认取配置值）"
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /sync/{kind} [post]
func (h *SyncHandler) SyncKindHandler(c *gin.Context) {
	kind := model.ContentKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind必须为movie或drama"})
		return
	}
	pages, _ := strconv.Atoi(c.DefaultQuery("pages", "0"))

	if err := h.syncService.SyncKind(c.Request.Context(), kind, pages); err != nil {
		h.logger.Errorf("同步%s失败: %v", kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": string(kind) + "同步成功",
	})
}

// SyncGenresHandler 仅同步分类taxonomy
// POST /sync/:kind/genres
func (h *SyncHandler) SyncGenresHandler(c *gin.Context) {
	kind := model.ContentKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind必须为movie或drama"})
		return
	}
	if err := h.syncService.SyncGenres(c.Request.Context(), kind); err != nil {
		h.logger.Errorf("同步%s分类失败: %v", kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": string(kind) + "分类同步成功"})
}

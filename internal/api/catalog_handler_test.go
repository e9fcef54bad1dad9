package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"CineSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromErr(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFromErr(service.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, statusFromErr(fmt.Errorf("%w: 细节", service.ErrInvalidInput)))
	assert.Equal(t, http.StatusNotFound, statusFromErr(service.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, statusFromErr(fmt.Errorf("%w: %s", service.ErrNotFound, "uuid")))
	assert.Equal(t, http.StatusInternalServerError, statusFromErr(errors.New("数据库抽风")))
}

func TestInvalidKindRejectedBeforeService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// 服务置nil：kind校验必须在任何服务调用之前完成
	h := NewCatalogHandler(nil, nil, logger)
	r := gin.New()
	r.GET("/api/catalog/:kind", h.List)
	r.GET("/api/catalog/:kind/filter", h.Filter)

	for _, path := range []string{"/api/catalog/book", "/api/catalog/book/filter"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"CineSync/internal/model"
)

// ListCache 列表页显式缓存：键为 (kind, page, pageSize)，写路径显式调用
// Invalidate(kind) 失效，替代框架层隐式缓存。
type ListCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// NewListCache ttl<=0 时取默认5分钟
func NewListCache(ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ListCache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

func key(kind model.ContentKind, page, pageSize int) string {
	return fmt.Sprintf("%s:%d:%d", kind, page, pageSize)
}

// Get 命中且未过期时返回缓存值
func (c *ListCache) Get(kind model.ContentKind, page, pageSize int) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key(kind, page, pageSize)]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set 写入缓存
func (c *ListCache) Set(kind model.ContentKind, page, pageSize int, value interface{}) {
	c.mu.Lock()
	c.entries[key(kind, page, pageSize)] = entry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate 使某内容类型的全部列表页失效（入库/评分变更后调用）
func (c *ListCache) Invalidate(kind model.ContentKind) {
	prefix := string(kind) + ":"
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

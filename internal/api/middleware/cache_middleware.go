package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResponseStore is the subset of the Redis client the response cache needs.
type ResponseStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	ClearByPattern(ctx context.Context, pattern string) error
}

const (
	cacheKeyPrefix = "http:"
	CacheHeader    = "X-Cache"
)

type CacheMiddleware struct {
	store  ResponseStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheMiddleware returns a middleware set that passes everything through when store is nil.
func NewCacheMiddleware(store ResponseStore, ttl time.Duration, logger *zap.Logger) *CacheMiddleware {
	return &CacheMiddleware{store: store, ttl: ttl, logger: logger}
}

// responseBuffer copies the body while it is written to the client.
type responseBuffer struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseBuffer) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// CacheResponse serves GET responses from the store and stores 200 responses.
func (m *CacheMiddleware) CacheResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKeyPrefix + c.Request.URL.Path + "?" + c.Request.URL.RawQuery
		if cached, err := m.store.Get(c.Request.Context(), key); err == nil {
			c.Header(CacheHeader, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		c.Header(CacheHeader, "MISS")
		writer := c.Writer
		buf := &responseBuffer{ResponseWriter: writer, body: &bytes.Buffer{}}
		c.Writer = buf
		c.Next()
		c.Writer = writer

		if c.Writer.Status() == http.StatusOK {
			if err := m.store.Set(c.Request.Context(), key, buf.body.String(), m.ttl); err != nil {
				m.logger.Warn("Failed to cache response", zap.Error(err), zap.String("key", key))
			}
		}
	}
}

// CacheInvalidate drops every cached board response after a successful write.
func (m *CacheMiddleware) CacheInvalidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if m.store == nil || c.Request.Method == http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			if err := m.store.ClearByPattern(c.Request.Context(), cacheKeyPrefix+"*"); err != nil {
				m.logger.Warn("Failed to invalidate cache", zap.Error(err))
			}
		}
	}
}

package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gilby125/airport-network/pkg/cache"
	"github.com/gilby125/airport-network/pkg/logger"
)

// CacheConfig holds cache middleware configuration
type CacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// CacheHeader reports HIT or MISS on cacheable responses.
const CacheHeader = "X-Cache"

// bodyRecorder keeps a copy of what the handler writes.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachedResponse represents a cached HTTP response
type CachedResponse struct {
	StatusCode  int       `json:"status_code"`
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	CachedAt    time.Time `json:"cached_at"`
}

// ResponseCache serves repeated GETs of a route from the cache. The graph is
// immutable once loaded, so only the TTL bounds an entry's life. Only 2xx
// JSON responses are stored.
func ResponseCache(cacheManager *cache.CacheManager, config CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := responseKey(config.KeyPrefix, c.Request)
		log := logger.WithField("cache_key", key)

		var cached CachedResponse
		err := cacheManager.GetJSON(c.Request.Context(), key, &cached)
		if err == nil {
			log.Debug("Cache hit")
			c.Header(CacheHeader, "HIT")
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Error(err, "Cache get error")
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Header(CacheHeader, "MISS")
		c.Next()

		status := rec.Status()
		contentType := rec.Header().Get("Content-Type")
		if status < 200 || status >= 300 || !strings.Contains(contentType, "application/json") {
			return
		}

		entry := CachedResponse{
			StatusCode:  status,
			Body:        rec.body.Bytes(),
			ContentType: contentType,
			CachedAt:    time.Now(),
		}
		if err := cacheManager.SetJSON(c.Request.Context(), key, entry, config.TTL); err != nil {
			log.Error(err, "Cache set error")
			return
		}
		log.Debug("Response cached")
	}
}

// responseKey hashes the path and the query with its parameters sorted, so
// ?a=1&b=2 and ?b=2&a=1 share an entry.
func responseKey(prefix string, req *http.Request) string {
	sum := sha256.Sum256([]byte(req.URL.Path + "?" + req.URL.Query().Encode()))
	key := "response:" + hex.EncodeToString(sum[:16])
	if prefix != "" {
		return prefix + ":" + key
	}
	return key
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	responseStartKey = "response_started"
	cacheHitKey      = "cached"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseStartKey, time.Now())
		ensureMeta(c)
		c.Next()
	}
}

// SetCacheHit records whether the response was served from the audit cache.
func SetCacheHit(c *gin.Context, hit bool) {
	meta := ensureMeta(c)
	meta[cacheHitKey] = hit
}

// ExtractMeta returns the metadata map stored on the context with the
// elapsed processing time filled in.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	typed, ok := meta.(map[string]interface{})
	if !ok {
		return nil
	}
	if started, ok := c.Value(responseStartKey).(time.Time); ok {
		typed["processing_time_ms"] = time.Since(started).Milliseconds()
	}
	return typed
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	newMeta := make(map[string]interface{})
	c.Set(responseMetaKey, newMeta)
	return newMeta
}

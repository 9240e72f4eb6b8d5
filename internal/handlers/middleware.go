package handlers

import (
	"context"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func rateLimitKey(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
	})
}

// RateLimit allows limit requests per minute per client IP. The counters
// live in redis when a client is given so every instance shares them.
// A zero limit disables the check.
func RateLimit(client *redis.Client, limit uint) gin.HandlerFunc {
	if limit == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var store ratelimit.Store
	if client != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        time.Minute,
			Limit:       limit,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Minute,
			Limit: limit,
		})
	}
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      rateLimitKey,
	})
}

// Timeout bounds the request context so database calls are cancelled
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit counts requests per path and client IP in fixed windows.
// A nil client disables the limit.
func RateLimit(redisClient *redis.Client, limit int, window time.Duration, methods ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || limit <= 0 || !matchMethod(c.Request.Method, methods) {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.Request.URL.Path, c.ClientIP())

		ctx := c.Request.Context()
		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// fail open while Redis is unavailable
			log.Printf("rate limit check failed: %v", err)
			c.Next()
			return
		}

		if count == 1 {
			if err := redisClient.Expire(ctx, key, window).Err(); err != nil {
				// A counter without a TTL would block this IP for good.
				log.Printf("rate limit expire failed for %s: %v", key, err)
				if err := redisClient.Del(ctx, key).Err(); err != nil {
					log.Printf("rate limit cleanup failed for %s: %v", key, err)
				}
			}
		}

		if count > int64(limit) {
			c.String(http.StatusTooManyRequests, "Too many attempts, try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}

func matchMethod(method string, methods []string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

// RateLimit allows limit requests per caller (or client IP) per minute on a
// route scope. Without redis, or when redis fails, requests pass.
func RateLimit(rd *redis.Client, scope string, limit int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if rd == nil || limit <= 0 {
			return
		}
		key := fmt.Sprintf("ratelimit:%s:%s", scope, clientKey(ctx))
		n, err := rd.Incr(ctx.Request.Context(), key).Result()
		if err != nil {
			slog.Warn("Rate limiter unavailable", "scope", scope, "error", err.Error())
			return
		}
		if n == 1 {
			if err := rd.Expire(ctx.Request.Context(), key, rateLimitWindow).Err(); err != nil {
				slog.Warn("Could not set rate limit window", "key", key, "error", err.Error())
			}
		}
		if n > limit {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
	}
}

func clientKey(ctx *gin.Context) string {
	if caller := Caller(ctx); caller != nil {
		return "user:" + caller.UserID().String()
	}
	return "ip:" + ctx.ClientIP()
}

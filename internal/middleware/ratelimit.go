package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pendium/hippo-admin/internal/domain/ratelimit"
)

// RateLimitConfig carries the limits the middleware enforces.
type RateLimitConfig struct {
	GlobalLimit  int
	GlobalWindow time.Duration
	PerIPLimit   int
	PerIPWindow  time.Duration
}

// RateLimit enforces a global ceiling plus a per-client limit. Clients
// are keyed by authenticated user when present, by IP otherwise. A
// limiter outage fails open: losing rate limiting beats losing the
// dashboard.
func RateLimit(limiter ratelimit.Limiter, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		global, err := limiter.Check(c.Request.Context(), "global", config.GlobalLimit, config.GlobalWindow)
		if err != nil {
			c.Next()
			return
		}
		if !global.Allowed {
			tooManyRequests(c, global)
			return
		}

		var key string
		if userID, ok := c.Get("user_id"); ok {
			key = fmt.Sprintf("user:%v", userID)
		} else {
			key = "ip:" + c.ClientIP()
		}

		result, err := limiter.Check(c.Request.Context(), key, config.PerIPLimit, config.PerIPWindow)
		if err != nil {
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)
		if !result.Allowed {
			tooManyRequests(c, result)
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context, result *ratelimit.Result) {
	setRateLimitHeaders(c, result)
	c.JSON(http.StatusTooManyRequests, gin.H{
		"code":        "RATE_LIMIT_EXCEEDED",
		"message":     "Rate limit exceeded",
		"retry_after": int(result.RetryAfter.Seconds()),
	})
	c.Abort()
}

func setRateLimitHeaders(c *gin.Context, result *ratelimit.Result) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))
	if result.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
	}
}

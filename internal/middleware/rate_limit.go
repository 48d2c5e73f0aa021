package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nourishtogether/donation-api/internal/errors"
	"github.com/rs/zerolog"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// RateLimitPolicy throttles one traffic surface per client IP.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
}

func NewRateLimitPolicy(name string, window time.Duration, limit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

// retryAfter is the window in whole seconds, rounded up.
func (p RateLimitPolicy) retryAfter() string {
	return strconv.Itoa(int(math.Ceil(p.window.Seconds())))
}

func (p RateLimitPolicy) key(ip string) string {
	name := p.name
	if name == "" {
		name = "auth"
	}
	return fmt.Sprintf("rl:ip:%s:%s", name, ip)
}

// RateLimit counts requests per client IP in a fixed window. A nil store or
// a disabled policy lets every request through.
func RateLimit(policy RateLimitPolicy, store rateLimiterStore) gin.HandlerFunc {
	if !policy.enabled() || store == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		count, err := store.IncrWithTTL(ctx, policy.key(ip), policy.window)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("policy", policy.name).Msg("rate_limit.store_failed")
			apierrors.ServiceUnavailable(c, "")
			c.Abort()
			return
		}
		if count > int64(policy.limit) {
			zerolog.Ctx(ctx).Warn().
				Str("policy", policy.name).
				Str("ip", ip).
				Int64("attempts", count).
				Int("limit", policy.limit).
				Msg("rate_limit.blocked")
			c.Header("Retry-After", policy.retryAfter())
			apierrors.TooManyRequests(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}

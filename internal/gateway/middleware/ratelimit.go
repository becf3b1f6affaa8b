package middleware

import (
	"fmt"
	"strconv"
	"time"

	"dvorak/internal/gateway/service"
	"dvorak/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

type RateLimitPolicy struct {
	Window time.Duration
	IPMax  int
}

// RateLimitMiddleware limits each client IP on one route. A nil service disables it.
func RateLimitMiddleware(rateService *service.RateLimitService, routeKey string, policy RateLimitPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateService == nil || policy.IPMax <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("gateway:rate:ip:%s:%s", c.ClientIP(), routeKey)
		decision, err := rateService.Allow(c.Request.Context(), key, policy.IPMax, policy.Window)
		if decision.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

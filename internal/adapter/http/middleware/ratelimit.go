package middleware

import (
	"net/http"

	"clinic_api/internal/infrastructure/cache"
	"clinic_api/pkg"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var errRateLimited = pkg.NewDomainErrorSimple("RATE_LIMITED", "Too many requests, please try again later", http.StatusTooManyRequests)

// RateLimit counts requests per client IP within scope. When the limiter
// backend fails the request is let through and the failure is logged.
func RateLimit(limiter cache.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Error().Err(err).Str("scope", scope).Msg("[ratelimit][middleware] limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			log.Warn().Str("scope", scope).Str("remote_ip", c.ClientIP()).Msg("[ratelimit][middleware] limit exceeded")
			c.AbortWithStatusJSON(errRateLimited.HTTPStatus, errRateLimited.ToHTTPError())
			return
		}
		c.Next()
	}
}

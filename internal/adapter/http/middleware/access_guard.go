package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase"
	"clinic_api/pkg"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	AdminCookieName = "adminToken"

	principalKey = "admin_principal"
	tokenKey     = "admin_token"
)

var (
	errUnauthenticated = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Authentication required", http.StatusUnauthorized)
	errAuthUnavailable = pkg.NewDomainErrorSimple("DEPENDENCY_UNAVAILABLE", "Authentication temporarily unavailable", http.StatusServiceUnavailable)
)

// AccessGuard rejects requests without a valid admin session before any handler runs.
// The adminToken cookie is tried first; a Bearer header is tried when the cookie
// is absent or no longer verifies.
func AccessGuard(auth usecase.IAuthUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidates := RequestTokens(c)
		if len(candidates) == 0 {
			candidates = []string{""}
		}

		var (
			principal entities.Principal
			token     string
			err       error
		)
		for _, token = range candidates {
			principal, err = auth.Authenticate(c.Request.Context(), token)
			if err == nil || errors.Is(err, usecase.ErrDependencyUnavailable) {
				break
			}
		}
		if err != nil {
			appErr := errUnauthenticated
			if errors.Is(err, usecase.ErrDependencyUnavailable) {
				appErr = errAuthUnavailable
			}
			log.Warn().Str("path", c.FullPath()).Int("status", appErr.HTTPStatus).Msg("[auth][middleware] access denied")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToHTTPError())
			return
		}

		c.Set(principalKey, principal)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequestTokens returns the session credentials carried by the request: the
// adminToken cookie, then the Bearer header. Empty and repeated values are dropped.
func RequestTokens(c *gin.Context) []string {
	var out []string
	if v, err := c.Cookie(AdminCookieName); err == nil {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "bearer") {
		if token = strings.TrimSpace(token); token != "" && !slices.Contains(out, token) {
			out = append(out, token)
		}
	}
	return out
}

// PrincipalFrom returns the principal stored by AccessGuard.
func PrincipalFrom(c *gin.Context) (entities.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return entities.Principal{}, false
	}
	p, ok := v.(entities.Principal)
	return p, ok
}

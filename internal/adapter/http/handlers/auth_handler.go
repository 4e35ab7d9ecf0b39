package handlers

import (
	"net/http"
	"time"

	"clinic_api/internal/adapter/http/dto/request"
	"clinic_api/internal/adapter/http/dto/response"
	"clinic_api/internal/adapter/http/middleware"
	"clinic_api/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CookieConfig struct {
	Secure bool
	Domain string
}

// AuthHandler issues and clears the admin session cookie.
type AuthHandler struct {
	usecase usecase.IAuthUseCase
	cookie  CookieConfig
	now     func() time.Time
}

func NewAuthHandler(uc usecase.IAuthUseCase, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{usecase: uc, cookie: cookie, now: time.Now}
}

// Login godoc
// @Summary      Admin login
// @Description  Sets the httpOnly adminToken cookie and also returns the token for Bearer use.
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        payload  body      request.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Envelope{data=response.SessionResponse}
// @Failure      400      {object}  pkg.AppError
// @Failure      401      {object}  pkg.AppError
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var payload request.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithAppError(c, errInvalidPayload.WithFields("username", "password"))
		return
	}

	session, err := h.usecase.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	maxAge := int(session.Principal.ExpiresAt.Sub(h.now()).Seconds())
	h.setCookie(c, session.Token, maxAge)
	c.JSON(http.StatusOK, response.OK(response.FromSession(session)))
}

// Logout godoc
// @Summary      Admin logout
// @Description  Revokes every session token the request carries and clears the cookie.
// @Tags         admin-auth
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Failure      503  {object}  pkg.AppError
// @Router       /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	for _, token := range middleware.RequestTokens(c) {
		if err := h.usecase.Logout(c.Request.Context(), token); err != nil {
			abortWithError(c, err)
			return
		}
	}
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, response.OKMessage("Logged out"))
}

// Me godoc
// @Summary      Current admin session
// @Tags         admin-auth
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Envelope{data=response.SessionResponse}
// @Failure      401  {object}  pkg.AppError
// @Router       /admin/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		abortWithError(c, usecase.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, response.OK(response.FromPrincipal(p)))
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

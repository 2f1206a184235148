package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/internal/infra/config"
)

// HealthChecker reports whether the storage engine is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler wires the HTTP transport to the auth service.
type Handler struct {
	authSvc auth.Service
	health  HealthChecker
	cookie  config.CookieConfig
	logger  *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, authSvc auth.Service, health HealthChecker, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc: authSvc,
		health:  health,
		cookie:  cfg.Cookie,
		logger:  logger.With("component", "http.handler"),
	}
}

// SignUp registers a credential and echoes it back.
func (h *Handler) SignUp(c *gin.Context) {
	var req auth.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	credential, err := h.authSvc.SignUp(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusOK, credential)
}

// SignIn opens a session and hands its id back in the session cookie.
func (h *Handler) SignIn(c *gin.Context) {
	var req auth.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	session, err := h.authSvc.SignIn(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	http.SetCookie(c.Writer, h.sessionCookie(session.ID.String(), session.ExpiresAt))
	c.Status(http.StatusOK)
}

// SignOut deactivates the session named by the cookie and expires the cookie.
func (h *Handler) SignOut(c *gin.Context) {
	sessionID, err := c.Cookie(h.cookie.Name)
	if err != nil || sessionID == "" {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "Unauthorized", err))
		return
	}

	if _, err := h.authSvc.SignOut(c.Request.Context(), sessionID); err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	expired := h.sessionCookie("", time.Unix(0, 0).UTC())
	expired.MaxAge = -1
	http.SetCookie(c.Writer, expired)
	c.Status(http.StatusOK)
}

// Health pings the storage engine.
func (h *Handler) Health(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     h.cookie.Path,
		Expires:  expires,
		Secure:   true,
		HttpOnly: true,
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

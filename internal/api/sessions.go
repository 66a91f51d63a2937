package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wolfeidau/teamcal/internal/auth"
	apphttp "github.com/wolfeidau/teamcal/internal/http"
	"github.com/wolfeidau/teamcal/internal/telemetry"
)

// SessionHandler serves login and logout.
type SessionHandler struct {
	authn   *auth.Authenticator
	metrics *telemetry.Metrics
}

// NewSessionHandler creates a session handler using authn.
func NewSessionHandler(authn *auth.Authenticator) *SessionHandler {
	return &SessionHandler{authn: authn, metrics: telemetry.GetMetrics()}
}

// Login opens a session and sets the session cookie.
func (h *SessionHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	session, err := h.authn.Login(ctx, req.Username, req.Password, c.Request.UserAgent(), apphttp.ClientIPFromContext(ctx))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.LoginFailuresTotal.Add(ctx, 1)
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusBadRequest, FieldErrors{
				nonFieldErrors: {"Unable to log in with provided credentials."},
			})
			return
		}
		abortWithError(c, err)
		return
	}

	h.metrics.LoginsTotal.Add(ctx, 1)

	http.SetCookie(c.Writer, h.authn.SessionCookie(session))
	c.Status(http.StatusNoContent)
}

// Logout ends the current session, if any, and clears the cookie.
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.authn.Logout(c.Request.Context(), c.Request); err != nil {
		abortWithError(c, err)
		return
	}

	http.SetCookie(c.Writer, h.authn.ExpiredSessionCookie())
	c.Status(http.StatusNoContent)
}

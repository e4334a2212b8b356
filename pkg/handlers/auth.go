package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"site-cms/pkg/apperr"
	"site-cms/pkg/config"
)

const (
	sessionKey   = "admin"
	sessionValue = "authenticated"

	sessionMaxAge = 60 * 60 * 24 * 7
)

type loginRequest struct {
	Password string `json:"password"`
}

// sessionOptions describes the admin cookie. Nothing is kept server side: the
// signed "authenticated" marker in the cookie is the whole session.
func sessionOptions(cfg *config.Config) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	}
}

// IsAuthenticated reports whether the request carries a valid admin session.
func IsAuthenticated(c *gin.Context) bool {
	value, ok := sessions.Default(c).Get(sessionKey).(string)
	return ok && value == sessionValue
}

// AuthRequired rejects requests without an admin session.
func AuthRequired(c *gin.Context) {
	if !IsAuthenticated(c) {
		abortWithError(c, apperr.Unauthorized("unauthorized"))
		return
	}
	c.Next()
}

// Login compares the submitted password with the configured hash and starts
// an admin session on a match.
func (h *Handler) Login(c *gin.Context) (any, error) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperr.Validation("invalid request body")
	}

	if !h.passwords.Check(req.Password) {
		h.logger.Warn("admin login rejected", "ip", c.ClientIP())
		return nil, apperr.New("invalid password", apperr.CodeInvalidCredentials, http.StatusUnauthorized)
	}

	session := sessions.Default(c)
	session.Set(sessionKey, sessionValue)
	if err := session.Save(); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	h.logger.Info("admin logged in", "ip", c.ClientIP())
	return gin.H{"authenticated": true}, nil
}

// Logout expires the admin cookie. It succeeds whether or not a session existed.
func (h *Handler) Logout(c *gin.Context) (any, error) {
	session := sessions.Default(c)
	session.Clear()
	opts := sessionOptions(h.cfg)
	opts.MaxAge = -1
	session.Options(opts)
	if err := session.Save(); err != nil {
		h.logger.Warn("failed to clear admin session", "error", err)
	}
	return gin.H{"authenticated": false}, nil
}

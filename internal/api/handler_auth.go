package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gmail-analytics/internal/apperr"
	"gmail-analytics/internal/credential"
	"gmail-analytics/pkg/logger"
)

// OAuthFlow is the part of the provider's OAuth flow the handlers drive.
type OAuthFlow interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (credential.Credential, error)
}

type AuthHandler struct {
	flow     OAuthFlow
	store    *credential.Store
	sessions *SessionManager
	logger   *zap.Logger
}

func NewAuthHandler(flow OAuthFlow, store *credential.Store, sessions *SessionManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		flow:     flow,
		store:    store,
		sessions: sessions,
		logger:   logger,
	}
}

// Login handles GET /auth/google
func (h *AuthHandler) Login(c *gin.Context) {
	state := uuid.NewString()
	c.JSON(http.StatusOK, gin.H{"authorization_url": h.flow.AuthURL(state)})
}

// Callback handles GET /auth/google/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		abortWithError(c, "Error during authentication: ",
			apperr.New(apperr.KindExchangeFailed, "", errors.New("missing authorization code")))
		return
	}

	ctx := c.Request.Context()
	cred, err := h.flow.Exchange(ctx, code)
	if err != nil {
		abortWithError(c, "Error during authentication: ", err)
		return
	}

	// Re-authenticating inside an existing session replaces that session's credential.
	sid := h.sessions.SessionID(c)
	if sid == "" {
		sid = newSessionID()
	}
	if err := h.store.Store(ctx, sid, cred); err != nil {
		abortWithError(c, "Error during authentication: ", err)
		return
	}

	token, err := h.sessions.Issue(c, sid)
	if err != nil {
		abortWithStatus(c, http.StatusInternalServerError, "Error during authentication: ", err)
		return
	}

	logger.WithTrace(ctx, h.logger).Info("User authenticated",
		zap.String("session_id", sid),
		zap.String("access_token", logger.MaskToken(cred.AccessToken)),
		zap.Bool("has_refresh_token", cred.RefreshToken != ""),
	)

	// null when the provider did not issue a refresh token
	var refreshToken any
	if cred.RefreshToken != "" {
		refreshToken = cred.RefreshToken
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  cred.AccessToken,
		"refresh_token": refreshToken,
		"session_token": token,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := h.sessions.SessionID(c)
	if err := h.store.Invalidate(c.Request.Context(), sid); err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Warn("Failed to drop credential on logout",
			zap.String("session_id", sid), zap.Error(err))
	}
	h.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

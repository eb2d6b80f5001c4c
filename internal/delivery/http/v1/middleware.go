package v1

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tracker/internal/services"
)

const (
	userIDCtxKey    = "user_id"
	sessionIDCtxKey = "session_id"
	requestIDCtxKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

// RequestID reuses the caller's X-Request-ID or generates one, and
// echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDCtxKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func Logger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDCtxKey)).
			Msg("handled request")
	}
}

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	sessionID, ok := h.authenticate(c)
	if !ok {
		h.redirectToLogin(c)
		return
	}

	session, err := h.sessions.GetSessionByID(c, sessionID)
	if err != nil {
		if !errors.Is(err, services.ErrSessionNotFound) {
			h.logger.Error().
				Err(err).
				Msg("failed to fetch session")
			h.abort(c, newStatusTextError(http.StatusInternalServerError))
			return
		}

		h.logger.Warn().
			Str("session_id", sessionID).
			Msg("session not found")
		h.redirectToLogin(c)
		return
	}

	if session.ExpiredAt(time.Now()) {
		h.logger.Warn().
			Str("session_id", session.ID).
			Msg("session expired")
		h.redirectToLogin(c)
		return
	}

	browserFingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		h.abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	if browserFingerprint != session.Fingerprint {
		h.logger.Warn().
			Str("session_id", session.ID).
			Msg("fingerprint mismatch")
		h.redirectToLogin(c)
		return
	}

	c.Set(userIDCtxKey, session.UserID)
	c.Set(sessionIDCtxKey, session.ID)
	c.Next()
}

// authenticate returns the session ID from the access token cookie,
// rotating the session through the refresh token cookie when the
// access token is missing or expired.
func (h *handlerImpl) authenticate(c *gin.Context) (string, bool) {
	accessToken, err := c.Cookie(accessTokenCookie)
	if err == nil && accessToken != "" {
		claims, err := h.auth.ParseJWTToken(accessToken)
		if err == nil {
			return claims.Subject, true
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Warn().
				Err(err).
				Msg("failed to parse access token")
			return "", false
		}
	}

	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil || refreshToken == "" {
		return "", false
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		return "", false
	}

	result, err := h.auth.Refresh(c, services.RefreshParams{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to refresh session")
		return "", false
	}

	h.setSessionCookies(c, result)
	return result.SessionID, true
}

func (h *handlerImpl) redirectToLogin(c *gin.Context) {
	h.clearSessionCookies(c)

	target := "/login/"
	next := c.Request.URL.RequestURI()
	if next != "" && next != "/" {
		target += "?next=" + url.QueryEscape(next)
	}
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// currentUserID returns the user set by HandleAuthMiddleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDCtxKey)
}

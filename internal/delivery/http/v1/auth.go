package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tracker/internal/services"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"

	defaultRedirect = "/projects/"

	msgInvalidCredentials = "Invalid username or password."
)

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Title": "Log in",
			"Next":  c.Query("next"),
		})
		return
	}

	var form loginForm
	err := c.ShouldBind(&form)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind login form")
		h.abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		h.abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Username:    form.Username,
		Password:    form.Password,
		Fingerprint: fingerprint,
	})
	if err != nil {
		data := gin.H{
			"Title": "Log in",
			"Next":  form.Next,
			"Form":  formValues{"username": form.Username},
		}
		if verr, ok := asValidationError(err); ok {
			data["Errors"] = verr
			h.render(c, http.StatusUnprocessableEntity, "login.html", data)
			return
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			data["Errors"] = &services.ValidationError{NonField: []string{msgInvalidCredentials}}
			h.render(c, http.StatusUnauthorized, "login.html", data)
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to login")
		h.abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.setSessionCookies(c, result)
	c.Redirect(http.StatusFound, safeRedirect(form.Next))
}

type registerForm struct {
	Username  string `form:"username"`
	Email     string `form:"email"`
	Password1 string `form:"password1"`
	Password2 string `form:"password2"`
	Next      string `form:"next"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "register.html", gin.H{
			"Title": "Register",
			"Next":  c.Query("next"),
		})
		return
	}

	var form registerForm
	err := c.ShouldBind(&form)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind register form")
		h.abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	h.logger.Info().
		Str("username", form.Username).
		Msg("register request")

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		h.abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.Register(c, services.RegisterParams{
		Username:             form.Username,
		Email:                form.Email,
		Password:             form.Password1,
		PasswordConfirmation: form.Password2,
		Fingerprint:          fingerprint,
	})
	if err != nil {
		if verr, ok := asValidationError(err); ok {
			h.render(c, http.StatusUnprocessableEntity, "register.html", gin.H{
				"Title":  "Register",
				"Next":   form.Next,
				"Errors": verr,
				"Form": formValues{
					"username": form.Username,
					"email":    form.Email,
				},
			})
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		h.abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.setSessionCookies(c, result)
	c.Redirect(http.StatusFound, safeRedirect(form.Next))
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "logout.html", gin.H{"Title": "Log out"})
		return
	}

	err := h.auth.Logout(c, currentUserID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to logout")
		h.abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.clearSessionCookies(c)
	c.Redirect(http.StatusFound, "/login/")
}

func (h *handlerImpl) HandleDeleteAccount(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "account_delete.html", gin.H{"Title": "Delete account"})
		return
	}

	userID := currentUserID(c)
	err := h.users.DeleteUser(c, userID)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete account")
		h.abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.clearSessionCookies(c)
	c.Redirect(http.StatusFound, "/register/")
}

// safeRedirect only follows local absolute paths.
func safeRedirect(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return defaultRedirect
}

func generateFingerprint(c *gin.Context) (string, error) {
	fingerprintBytes, err := json.Marshal(map[string]string{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return string(fingerprintBytes), nil
}

func (h *handlerImpl) setSessionCookies(c *gin.Context, result *services.LoginResult) {
	now := time.Now()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, result.AccessToken, maxAge(result.AccessTokenExpiresAt.Sub(now)),
		"/", "", h.cfg.SecureCookies, true)
	c.SetCookie(refreshTokenCookie, result.RefreshToken, maxAge(result.RefreshTokenExpiresAt.Sub(now)),
		"/", "", h.cfg.SecureCookies, true)
}

func (h *handlerImpl) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", h.cfg.SecureCookies, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.cfg.SecureCookies, true)
}

// maxAge converts a TTL to cookie seconds. Zero would make the
// cookie a session cookie, so it is rounded up to one second.
func maxAge(ttl time.Duration) int {
	seconds := int(ttl.Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

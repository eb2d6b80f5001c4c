package v1

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	for _, path := range []string{"/projects/", "/projects/1/", "/tasks/edit/1/", "/recent_tasks/", "/logout/"} {
		rec := c.get(path)
		assertRedirect(t, rec, "/login/?next="+url.QueryEscape(path))
	}

	rec := c.get("/")
	assertRedirect(t, rec, "/projects/")
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")

	assert.Contains(t, c.cookies, accessTokenCookie)
	assert.Contains(t, c.cookies, refreshTokenCookie)
	assert.True(t, c.cookies[accessTokenCookie].HttpOnly)
	assert.True(t, c.cookies[refreshTokenCookie].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.cookies[accessTokenCookie].SameSite)

	rec := c.get("/projects/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No projects yet.")
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)
	srv.client(t).register("alice")

	c := srv.client(t)
	rec := c.post("/register/", url.Values{
		"username":  {"alice"},
		"email":     {"other@example.com"},
		"password1": {"pw123!"},
		"password2": {"pw123!"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with that username already exists.")
	assert.Contains(t, rec.Body.String(), `value="other@example.com"`)
	assert.NotContains(t, c.cookies, accessTokenCookie)

	rec = c.post("/register/", url.Values{
		"username":  {"bob"},
		"email":     {"not-an-email"},
		"password1": {"123456"},
		"password2": {"123456"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enter a valid email address.")
	assert.Contains(t, rec.Body.String(), "This password is entirely numeric.")
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	srv.client(t).register("alice")

	t.Run("renders form", func(t *testing.T) {
		rec := srv.client(t).get("/login/?next=/recent_tasks/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="next" value="/recent_tasks/"`)
	})

	t.Run("wrong password", func(t *testing.T) {
		c := srv.client(t)
		rec := c.post("/login/", url.Values{"username": {"alice"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), msgInvalidCredentials)
		assert.NotContains(t, c.cookies, accessTokenCookie)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := srv.client(t).post("/login/", url.Values{"username": {"mallory"}, "password": {"pw123!"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), msgInvalidCredentials)
	})

	t.Run("blank fields", func(t *testing.T) {
		rec := srv.client(t).post("/login/", url.Values{})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid input. Please correct the errors below.")
		assert.Contains(t, rec.Body.String(), "This field is required.")
	})

	t.Run("follows local next", func(t *testing.T) {
		c := srv.client(t)
		rec := c.post("/login/", url.Values{
			"username": {"alice"},
			"password": {"pw123!"},
			"next":     {"/recent_tasks/"},
		})
		assertRedirect(t, rec, "/recent_tasks/")

		rec = c.get("/recent_tasks/")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ignores foreign next", func(t *testing.T) {
		rec := srv.client(t).post("/login/", url.Values{
			"username": {"alice"},
			"password": {"pw123!"},
			"next":     {"//evil.example.com/"},
		})
		assertRedirect(t, rec, "/projects/")
	})
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")

	rec := c.get("/logout/")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.post("/logout/", nil)
	assertRedirect(t, rec, "/login/")
	assert.Empty(t, c.cookies)

	rec = c.get("/projects/")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestAuthMiddleware_RefreshesExpiredAccessToken(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")

	oldRefresh := c.cookies[refreshTokenCookie].Value
	delete(c.cookies, accessTokenCookie)

	rec := c.get("/projects/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, c.cookies, accessTokenCookie)
	assert.NotEqual(t, oldRefresh, c.cookies[refreshTokenCookie].Value)
}

func TestAuthMiddleware_RejectsForgedToken(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")

	c.cookies[accessTokenCookie].Value += "x"
	rec := c.get("/projects/")
	assertRedirect(t, rec, "/login/?next=%2Fprojects%2F")
}

func TestAuthMiddleware_RejectsOtherFingerprint(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")

	req := newRequestWithCookies(c, "/projects/")
	req.Header.Set("User-Agent", "another-browser")
	rec := serve(srv, req)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")
	c.createProject("Launch", "")

	rec := c.get("/account/delete/")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.post("/account/delete/", nil)
	assertRedirect(t, rec, "/register/")
	assert.Empty(t, c.cookies)

	rec = c.post("/login/", url.Values{"username": {"alice"}, "password": {"pw123!"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The username can be taken again and starts with no projects.
	c.register("alice")
	rec = c.get("/projects/")
	assert.Contains(t, rec.Body.String(), "No projects yet.")
}

package v1

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tracker/internal/services"
	"github.com/adanyl0v/go-tracker/internal/storage/memory"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	store := memory.New()

	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	h := New(logger, Config{}, store, Services{
		Auth: services.NewAuthService(logger, store, services.AuthOptions{
			JWTIssuer:          "go-tracker-test",
			JWTSigningKey:      []byte("test-signing-key"),
			JWTAccessTokenTTL:  15 * time.Minute,
			JWTRefreshTokenTTL: time.Hour,
			HashParams: &argon2id.Params{
				Memory:      1024,
				Iterations:  1,
				Parallelism: 1,
				SaltLength:  16,
				KeyLength:   32,
			},
		}),
		Sessions: services.NewSessionService(logger, store),
		Users:    services.NewUserService(logger, store),
		Projects: services.NewProjectService(logger, store, nil),
		Tasks:    services.NewTaskService(logger, store, nil),
	})

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.SetHTMLTemplate(tmpl)
	RegisterRoutes(router, h)

	return &testServer{
		router: router,
		store:  store,
	}
}

// testClient keeps cookies between requests like a browser would.
type testClient struct {
	t       *testing.T
	server  *testServer
	cookies map[string]*http.Cookie
}

func (s *testServer) client(t *testing.T) *testClient {
	return &testClient{
		t:       t,
		server:  s,
		cookies: make(map[string]*http.Cookie),
	}
}

func (c *testClient) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("User-Agent", "test-agent")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.server.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *testClient) get(path string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(http.MethodGet, path, nil)
}

func (c *testClient) post(path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return c.do(http.MethodPost, path, form)
}

func (c *testClient) register(username string) {
	c.t.Helper()

	rec := c.post("/register/", url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password1": {"pw123!"},
		"password2": {"pw123!"},
	})
	require.Equal(c.t, http.StatusFound, rec.Code, rec.Body.String())
	require.Equal(c.t, "/projects/", rec.Header().Get("Location"))
}

func (c *testClient) createProject(name, deadline string) {
	c.t.Helper()

	rec := c.post("/projects/create/", url.Values{
		"name":     {name},
		"deadline": {deadline},
	})
	require.Equal(c.t, http.StatusFound, rec.Code, rec.Body.String())
}

func dateFromToday(days int) string {
	return time.Now().AddDate(0, 0, days).Format(time.DateOnly)
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, location, rec.Header().Get("Location"))
}

func newRequestWithCookies(c *testClient, path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	return req
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

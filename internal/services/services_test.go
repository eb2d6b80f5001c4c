package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tracker/internal/storage/memory"
)

// testHashParams keeps password hashing fast in tests.
var testHashParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServices struct {
	store    *memory.Store
	clock    *testClock
	auth     AuthService
	users    UserService
	sessions SessionService
	projects ProjectService
	tasks    TaskService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	logger := zerolog.Nop()
	store := memory.New()
	clock := newTestClock()

	return &testServices{
		store: store,
		clock: clock,
		auth: NewAuthService(logger, store, AuthOptions{
			JWTIssuer:          "go-tracker-test",
			JWTSigningKey:      []byte("test-signing-key"),
			JWTAccessTokenTTL:  15 * time.Minute,
			JWTRefreshTokenTTL: 24 * time.Hour,
			HashParams:         testHashParams,
			Now:                clock.Now,
		}),
		users:    NewUserService(logger, store),
		sessions: NewSessionService(logger, store),
		projects: NewProjectService(logger, store, clock.Now),
		tasks:    NewTaskService(logger, store, clock.Now),
	}
}

// register creates a user and returns its ID.
func (s *testServices) register(t *testing.T, username string) string {
	t.Helper()

	res, err := s.auth.Register(context.Background(), RegisterParams{
		Username:             username,
		Email:                username + "@example.com",
		Password:             "correct-horse",
		PasswordConfirmation: "correct-horse",
		Fingerprint:          "test-agent",
	})
	require.NoError(t, err)
	return res.UserID
}

func (s *testServices) project(t *testing.T, userID, name string) int64 {
	t.Helper()

	p, err := s.projects.CreateProject(context.Background(), userID, ProjectInput{Name: name})
	require.NoError(t, err)
	return p.ID
}

func ptr[T any](v T) *T {
	return &v
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	res, err := s.auth.Register(ctx, RegisterParams{
		Username:             "alice",
		Email:                "alice@example.com",
		Password:             "correct-horse",
		PasswordConfirmation: "correct-horse",
		Fingerprint:          "agent",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.UserID)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, s.clock.Now().Add(24*time.Hour), res.RefreshTokenExpiresAt)

	user, err := s.users.GetUserByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "correct-horse", user.Password)

	session, err := s.sessions.GetSessionByID(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, res.UserID, session.UserID)
	assert.Equal(t, "agent", session.Fingerprint)

	claims, err := s.auth.ParseJWTToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, claims.Subject)
}

func TestAuthService_RegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	s.register(t, "alice")

	_, err := s.auth.Register(ctx, RegisterParams{
		Username:             "alice",
		Email:                "other@example.com",
		Password:             "correct-horse",
		PasswordConfirmation: "correct-horse",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgUsernameTaken}, verr.Fields["username"])
}

func TestAuthService_RegisterInvalid(t *testing.T) {
	s := newTestServices(t)

	_, err := s.auth.Register(context.Background(), RegisterParams{
		Username:             "alice",
		Email:                "alice@example.com",
		Password:             "correct-horse",
		PasswordConfirmation: "wrong-horse",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgPasswordMatch}, verr.Fields["password2"])

	_, err = s.store.GetUserByUsername(context.Background(), "alice")
	assert.Error(t, err)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	userID := s.register(t, "alice")

	res, err := s.auth.Login(ctx, LoginParams{
		Username:    "alice",
		Password:    "correct-horse",
		Fingerprint: "agent",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, res.UserID)

	t.Run("replaces previous sessions", func(t *testing.T) {
		again, err := s.auth.Login(ctx, LoginParams{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)

		_, err = s.sessions.GetSessionByID(ctx, res.SessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = s.sessions.GetSessionByID(ctx, again.SessionID)
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.auth.Login(ctx, LoginParams{Username: "alice", Password: "nope-nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, ErrUserPasswordMismatch)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.auth.Login(ctx, LoginParams{Username: "bob", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("blank fields", func(t *testing.T) {
		_, err := s.auth.Login(ctx, LoginParams{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{msgInvalidInput}, verr.NonField)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	res, err := s.auth.Register(ctx, RegisterParams{
		Username:             "alice",
		Email:                "alice@example.com",
		Password:             "correct-horse",
		PasswordConfirmation: "correct-horse",
		Fingerprint:          "agent",
	})
	require.NoError(t, err)

	t.Run("fingerprint mismatch", func(t *testing.T) {
		_, err := s.auth.Refresh(ctx, RefreshParams{RefreshToken: res.RefreshToken, Fingerprint: "other"})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	s.clock.Advance(time.Hour)
	refreshed, err := s.auth.Refresh(ctx, RefreshParams{RefreshToken: res.RefreshToken, Fingerprint: "agent"})
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, refreshed.SessionID)
	assert.NotEqual(t, res.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, s.clock.Now().Add(24*time.Hour), refreshed.RefreshTokenExpiresAt)

	t.Run("old token is rotated out", func(t *testing.T) {
		_, err := s.auth.Refresh(ctx, RefreshParams{RefreshToken: res.RefreshToken, Fingerprint: "agent"})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		s.clock.Advance(25 * time.Hour)
		_, err := s.auth.Refresh(ctx, RefreshParams{RefreshToken: refreshed.RefreshToken, Fingerprint: "agent"})
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestAuthService_ParseJWTToken(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	res, err := s.auth.Register(ctx, RegisterParams{
		Username:             "alice",
		Email:                "alice@example.com",
		Password:             "correct-horse",
		PasswordConfirmation: "correct-horse",
	})
	require.NoError(t, err)

	_, err = s.auth.ParseJWTToken(res.AccessToken + "x")
	assert.Error(t, err)

	s.clock.Advance(16 * time.Minute)
	_, err = s.auth.ParseJWTToken(res.AccessToken)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	res, err := s.auth.Login(ctx, LoginParams{Username: "alice", Password: "x"})
	require.Error(t, err)
	assert.Nil(t, res)

	userID := s.register(t, "alice")
	res, err = s.auth.Login(ctx, LoginParams{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, s.auth.Logout(ctx, userID))
	_, err = s.sessions.GetSessionByID(ctx, res.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

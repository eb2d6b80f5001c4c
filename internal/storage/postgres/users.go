package postgres

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/storage"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (id,
                   username,
                   email,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := s.q.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Username,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Debug().
				Str("username", user.Username).
				Msg("username already taken")
			return storage.ErrAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Str("username", user.Username).
			Msg("failed to insert user")
		return err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	const selectUserByIDQuery = `
SELECT id,
       username,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	user, err := scanUser(s.q.QueryRow(ctx, selectUserByIDQuery, userID))
	if err != nil {
		err = notFoundOr(err)
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("user_id", userID).
				Msg("failed to select user by id")
		}
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const selectUserByUsernameQuery = `
SELECT id,
       username,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE username = $1
`
	user, err := scanUser(s.q.QueryRow(ctx, selectUserByUsernameQuery, username))
	if err != nil {
		err = notFoundOr(err)
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("username", username).
				Msg("failed to select user by username")
		}
		return nil, err
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	const deleteUserQuery = `
DELETE FROM users
WHERE id = $1
`
	tag, err := s.q.Exec(ctx, deleteUserQuery, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("cannot delete user, still referenced")
			return storage.ErrReferenced
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete user")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("user_id", userID).
		Msg("deleted user")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

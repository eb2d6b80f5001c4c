package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/storage"
)

type userServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewUserService(
	logger zerolog.Logger,
	store storage.Store,
) UserService {
	return &userServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user by id")
		return nil, err
	}
	return user, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	var tasks, projects, sessions int64
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		tasks, err = tx.DeleteTasksByUserID(ctx, userID)
		if err != nil {
			return err
		}
		projects, err = tx.DeleteProjectsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		sessions, err = tx.DeleteSessionsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("user not found")
			return ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete user")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Int64("tasks", tasks).
		Int64("projects", projects).
		Int64("sessions", sessions).
		Msg("deleted user")
	return nil
}

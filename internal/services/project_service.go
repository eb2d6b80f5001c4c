package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/storage"
)

type projectServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
	now    func() time.Time
}

func NewProjectService(
	logger zerolog.Logger,
	store storage.Store,
	now func() time.Time,
) ProjectService {
	if now == nil {
		now = time.Now
	}
	return &projectServiceImpl{
		logger: logger,
		store:  store,
		now:    now,
	}
}

func (s *projectServiceImpl) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	projects, err := s.store.ListProjects(ctx, userID, ProjectListLimit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list projects")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(projects)).
		Str("user_id", userID).
		Msg("listed projects")
	return projects, nil
}

func (s *projectServiceImpl) ListProjectChoices(ctx context.Context, userID string) ([]*models.Project, error) {
	projects, err := s.store.ListProjects(ctx, userID, 0)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list project choices")
		return nil, err
	}
	return projects, nil
}

func (s *projectServiceImpl) GetProject(ctx context.Context, userID string, projectID int64) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Int64("project_id", projectID).
				Str("user_id", userID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to get project")
		return nil, err
	}
	return project, nil
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, userID string, in ProjectInput) (*models.Project, error) {
	now := s.now()
	fields, verr := ValidateProject(in, now, nil)
	if verr != nil {
		s.logger.Debug().
			Err(verr).
			Str("user_id", userID).
			Msg("invalid project")
		return nil, verr
	}

	deadline := fields.Deadline
	if deadline == nil {
		today := DateOf(now)
		deadline = &today
	}

	project := &models.Project{
		UserID:      userID,
		Name:        fields.Name,
		Description: fields.Description,
		Deadline:    deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.store.CreateProject(ctx, project)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to create project")
		return nil, err
	}

	s.logger.Info().
		Int64("project_id", project.ID).
		Str("user_id", userID).
		Msg("created project")
	return project, nil
}

func (s *projectServiceImpl) UpdateProject(
	ctx context.Context,
	userID string,
	projectID int64,
	in ProjectInput,
) (*models.Project, error) {
	project, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fields, verr := ValidateProject(in, now, project.Deadline)
	if verr != nil {
		s.logger.Debug().
			Err(verr).
			Int64("project_id", projectID).
			Msg("invalid project")
		return nil, verr
	}

	project.Name = fields.Name
	project.Description = fields.Description
	project.Deadline = fields.Deadline
	project.UpdatedAt = now

	err = s.store.UpdateProject(ctx, project)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to update project")
		return nil, err
	}

	s.logger.Info().
		Int64("project_id", projectID).
		Str("user_id", userID).
		Msg("updated project")
	return project, nil
}

func (s *projectServiceImpl) DeleteProject(ctx context.Context, userID string, projectID int64) error {
	var detached int64
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		_, err := tx.GetProject(ctx, userID, projectID)
		if err != nil {
			return err
		}

		detached, err = tx.DetachTasksFromProject(ctx, projectID)
		if err != nil {
			return err
		}
		return tx.DeleteProject(ctx, userID, projectID)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Int64("project_id", projectID).
				Str("user_id", userID).
				Msg("project not found")
			return ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to delete project")
		return err
	}

	s.logger.Info().
		Int64("project_id", projectID).
		Int64("detached_tasks", detached).
		Str("user_id", userID).
		Msg("deleted project")
	return nil
}

package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.Store,
	now func() time.Time,
) TaskService {
	if now == nil {
		now = time.Now
	}
	return &taskServiceImpl{
		logger: logger,
		store:  store,
		now:    now,
	}
}

func (s *taskServiceImpl) ListProjectTasks(ctx context.Context, userID string, projectID int64) ([]*models.Task, error) {
	if err := s.checkProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.store.ListTasksByProject(ctx, userID, projectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to list project tasks")
		return nil, err
	}
	return tasks, nil
}

func (s *taskServiceImpl) ListRecentTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks, err := s.store.ListTasksByUser(ctx, userID, RecentTasksLimit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list recent tasks")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("listed recent tasks")
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Int64("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to get task")
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) CreateProjectTask(
	ctx context.Context,
	userID string,
	projectID int64,
	in TaskInput,
) (*models.Task, error) {
	if err := s.checkProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	fields, verr := ValidateTask(in, models.StatusNew)
	if verr != nil {
		return nil, verr
	}
	return s.create(ctx, userID, &projectID, fields)
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	fields, verr := ValidateTask(in, models.StatusNew)
	if verr == nil {
		verr = new(ValidationError)
	}

	var projectID *int64
	if in.ProjectID != nil {
		var err error
		projectID, err = s.resolveProject(ctx, userID, *in.ProjectID, verr)
		if err != nil {
			return nil, err
		}
	}

	if verr = verr.orNil(); verr != nil {
		return nil, verr
	}
	return s.create(ctx, userID, projectID, fields)
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID string,
	taskID int64,
	in TaskInput,
) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	fields, verr := ValidateTask(in, "")
	if verr == nil {
		verr = new(ValidationError)
	}

	projectID := task.ProjectID
	if in.ProjectID != nil {
		projectID, err = s.resolveProject(ctx, userID, *in.ProjectID, verr)
		if err != nil {
			return nil, err
		}
	}

	if verr = verr.orNil(); verr != nil {
		return nil, verr
	}

	task.ProjectID = projectID
	task.Title = fields.Title
	task.Description = fields.Description
	task.Status = fields.Status
	task.UpdatedAt = s.now()

	err = s.store.UpdateTask(ctx, task)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", taskID).
		Str("status", task.Status).
		Str("user_id", userID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID string, taskID int64) (*models.Task, error) {
	var task *models.Task
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		task, err = tx.GetTask(ctx, userID, taskID)
		if err != nil {
			return err
		}
		return tx.DeleteTask(ctx, userID, taskID)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Int64("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return task, nil
}

func (s *taskServiceImpl) create(
	ctx context.Context,
	userID string,
	projectID *int64,
	fields TaskFields,
) (*models.Task, error) {
	now := s.now()
	task := &models.Task{
		UserID:      userID,
		ProjectID:   projectID,
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", userID).
		Msg("created task")
	return task, nil
}

// checkProject returns ErrProjectNotFound unless the user owns the project.
func (s *taskServiceImpl) checkProject(ctx context.Context, userID string, projectID int64) error {
	_, err := s.store.GetProject(ctx, userID, projectID)
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
			Msg("failed to get project")
		return err
	}
	return nil
}

// resolveProject turns a project_id form value into a project reference.
// An empty value detaches. Unknown or foreign references are reported
// on verr rather than as an error.
func (s *taskServiceImpl) resolveProject(
	ctx context.Context,
	userID string,
	raw string,
	verr *ValidationError,
) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		verr.Add("project_id", msgInvalidChoice)
		return nil, nil
	}

	err = s.checkProject(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			verr.Add("project_id", msgInvalidChoice)
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

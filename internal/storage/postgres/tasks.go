package postgres

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/storage"
)

const selectTaskColumns = `
SELECT id,
       user_id,
       project_id,
       title,
       description,
       status,
       created_at,
       updated_at
FROM tasks
`

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   project_id,
                   title,
                   description,
                   status,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	err := s.q.QueryRow(
		ctx,
		insertTaskQuery,
		task.UserID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", task.UserID).
			Msg("failed to insert task")
		return err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (s *Store) GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error) {
	const selectTaskQuery = selectTaskColumns + `
WHERE id = $1 AND user_id = $2
`
	task, err := scanTask(s.q.QueryRow(ctx, selectTaskQuery, taskID, userID))
	if err != nil {
		err = notFoundOr(err)
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Int64("task_id", taskID).
				Msg("failed to select task")
		}
		return nil, err
	}
	return task, nil
}

func (s *Store) ListTasksByProject(ctx context.Context, userID string, projectID int64) ([]*models.Task, error) {
	const selectTasksByProjectQuery = selectTaskColumns + `
WHERE project_id = $1 AND user_id = $2
ORDER BY created_at DESC, id DESC
`
	return s.listTasks(ctx, selectTasksByProjectQuery, projectID, userID)
}

func (s *Store) ListTasksByUser(ctx context.Context, userID string, limit int) ([]*models.Task, error) {
	const selectTasksByUserQuery = selectTaskColumns + `
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT NULLIF($2, 0)
`
	return s.listTasks(ctx, selectTasksByUserQuery, userID, limit)
}

func (s *Store) listTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET project_id = $1,
    title = $2,
    description = $3,
    status = $4,
    updated_at = $5
WHERE id = $6 AND user_id = $7
`
	tag, err := s.q.Exec(
		ctx,
		updateTaskQuery,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("updated task")
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID string, taskID int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.q.Exec(ctx, deleteTaskQuery, taskID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Int64("task_id", taskID).
		Msg("deleted task")
	return nil
}

func (s *Store) DetachTasksFromProject(ctx context.Context, projectID int64) (int64, error) {
	const detachTasksQuery = `
UPDATE tasks
SET project_id = NULL
WHERE project_id = $1
`
	tag, err := s.q.Exec(ctx, detachTasksQuery, projectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to detach tasks from project")
		return 0, err
	}
	s.logger.Debug().
		Int64("project_id", projectID).
		Int64("affected", tag.RowsAffected()).
		Msg("detached tasks from project")
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteTasksByUserID(ctx context.Context, userID string) (int64, error) {
	const deleteTasksByUserIDQuery = `
DELETE FROM tasks
WHERE user_id = $1
`
	tag, err := s.q.Exec(ctx, deleteTasksByUserIDQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete tasks by user id")
		return 0, err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted tasks by user id")
	return tag.RowsAffected(), nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

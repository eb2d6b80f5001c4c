package postgres

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/storage"
)

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	const insertProjectQuery = `
INSERT INTO projects (user_id,
                      name,
                      description,
                      deadline,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	err := s.q.QueryRow(
		ctx,
		insertProjectQuery,
		project.UserID,
		project.Name,
		project.Description,
		project.Deadline,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", project.UserID).
			Msg("failed to insert project")
		return err
	}
	s.logger.Debug().
		Int64("project_id", project.ID).
		Msg("inserted project")
	return nil
}

func (s *Store) GetProject(ctx context.Context, userID string, projectID int64) (*models.Project, error) {
	const selectProjectQuery = `
SELECT id,
       user_id,
       name,
       description,
       deadline,
       created_at,
       updated_at
FROM projects
WHERE id = $1 AND user_id = $2
`
	project, err := scanProject(s.q.QueryRow(ctx, selectProjectQuery, projectID, userID))
	if err != nil {
		err = notFoundOr(err)
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Int64("project_id", projectID).
				Msg("failed to select project")
		}
		return nil, err
	}
	return project, nil
}

func (s *Store) ListProjects(ctx context.Context, userID string, limit int) ([]*models.Project, error) {
	const selectProjectsQuery = `
SELECT id,
       user_id,
       name,
       description,
       deadline,
       created_at,
       updated_at
FROM projects
WHERE user_id = $1
ORDER BY id DESC
LIMIT NULLIF($2, 0)
`
	rows, err := s.q.Query(ctx, selectProjectsQuery, userID, limit)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select projects")
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan project")
			return nil, err
		}
		projects = append(projects, project)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(projects)).
		Str("user_id", userID).
		Msg("selected projects")
	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	const updateProjectQuery = `
UPDATE projects
SET name = $1,
    description = $2,
    deadline = $3,
    updated_at = $4
WHERE id = $5 AND user_id = $6
`
	tag, err := s.q.Exec(
		ctx,
		updateProjectQuery,
		project.Name,
		project.Description,
		project.Deadline,
		project.UpdatedAt,
		project.ID,
		project.UserID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("project_id", project.ID).
			Msg("failed to update project")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Int64("project_id", project.ID).
		Msg("updated project")
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, userID string, projectID int64) error {
	const deleteProjectQuery = `
DELETE FROM projects
WHERE id = $1 AND user_id = $2
`
	tag, err := s.q.Exec(ctx, deleteProjectQuery, projectID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Error().
				Int64("project_id", projectID).
				Msg("cannot delete project, still referenced")
			return storage.ErrReferenced
		}

		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to delete project")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Int64("project_id", projectID).
		Msg("deleted project")
	return nil
}

func (s *Store) DeleteProjectsByUserID(ctx context.Context, userID string) (int64, error) {
	const deleteProjectsByUserIDQuery = `
DELETE FROM projects
WHERE user_id = $1
`
	tag, err := s.q.Exec(ctx, deleteProjectsByUserIDQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete projects by user id")
		return 0, err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted projects by user id")
	return tag.RowsAffected(), nil
}

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.Deadline,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

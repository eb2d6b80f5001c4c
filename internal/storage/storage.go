// Package storage defines the persistence contract shared by the
// postgres and in-memory backends.
//
// Every project and task lookup takes the owner's user ID: a row owned
// by somebody else is reported exactly like a missing one.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-tracker/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	// ErrReferenced is returned when a row cannot be deleted because
	// other rows still point at it.
	ErrReferenced    = errors.New("record is still referenced")
)

type Store interface {
	Users
	Sessions
	Projects
	Tasks

	// InTx runs fn against a transactional view of the store. The
	// transaction is committed if fn returns nil and rolled back
	// otherwise. Calling InTx on a transactional view reuses it.
	InTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close()
}

type Users interface {
	// CreateUser returns ErrAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type Sessions interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error)
	// UpdateSession persists the refresh token and expiry of the session.
	UpdateSession(ctx context.Context, session *models.Session) error
	DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error)
}

type Projects interface {
	// CreateProject assigns project.ID.
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, userID string, projectID int64) (*models.Project, error)
	// ListProjects returns at most limit projects, newest ID first.
	// A limit of 0 returns every project of the user.
	ListProjects(ctx context.Context, userID string, limit int) ([]*models.Project, error)
	// UpdateProject writes name, description, deadline and updated_at
	// of the project identified by (project.ID, project.UserID).
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, userID string, projectID int64) error
	DeleteProjectsByUserID(ctx context.Context, userID string) (int64, error)
}

type Tasks interface {
	// CreateTask assigns task.ID.
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error)
	// ListTasksByProject returns the project's tasks, newest first.
	ListTasksByProject(ctx context.Context, userID string, projectID int64) ([]*models.Task, error)
	// ListTasksByUser returns at most limit tasks of the user, newest
	// first. A limit of 0 returns every task.
	ListTasksByUser(ctx context.Context, userID string, limit int) ([]*models.Task, error)
	// UpdateTask writes project, title, description, status and
	// updated_at of the task identified by (task.ID, task.UserID).
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, userID string, taskID int64) error
	// DetachTasksFromProject clears the project reference of every
	// task that points at the project.
	DetachTasksFromProject(ctx context.Context, projectID int64) (int64, error)
	DeleteTasksByUserID(ctx context.Context, userID string) (int64, error)
}

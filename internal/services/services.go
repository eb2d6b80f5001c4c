package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/go-tracker/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrProjectNotFound      = errors.New("project not found")
	ErrTaskNotFound         = errors.New("task not found")
)

const (
	// ProjectListLimit caps the project list page.
	ProjectListLimit = 5
	// RecentTasksLimit caps the recent tasks page.
	RecentTasksLimit = 50
)

type AuthService interface {
	// Register creates a user with the given credentials.
	//
	// It validates the input, hashes the password and creates
	// a session with the given fingerprint and a fresh JWT token pair.
	//
	// It returns a *ValidationError if the input is invalid or
	// the username is taken (the latter also matches
	// ErrUserAlreadyExists).
	Register(ctx context.Context, params RegisterParams) (*LoginResult, error)

	// Login authenticates the user by username and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// Unknown usernames and wrong passwords both match
	// ErrInvalidCredentials, and additionally ErrUserNotFound or
	// ErrUserPasswordMismatch respectively. Blank fields produce
	// a *ValidationError.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh rotates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token and fingerprint doesn't exist or
	// ErrSessionExpired if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or an error matching jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// DeleteUser removes the user together with every task,
	// project and session they own.
	DeleteUser(ctx context.Context, userID string) error
}

type ProjectService interface {
	// ListProjects returns the newest ProjectListLimit projects of the user.
	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)

	// ListProjectChoices returns every project of the user, newest first,
	// for the project field of task forms.
	ListProjectChoices(ctx context.Context, userID string) ([]*models.Project, error)

	GetProject(ctx context.Context, userID string, projectID int64) (*models.Project, error)

	// CreateProject validates the input and stores a project owned by
	// the user. An empty deadline defaults to today.
	CreateProject(ctx context.Context, userID string, in ProjectInput) (*models.Project, error)

	// UpdateProject validates the input and overwrites the project.
	UpdateProject(ctx context.Context, userID string, projectID int64, in ProjectInput) (*models.Project, error)

	// DeleteProject detaches the project's tasks and removes it.
	DeleteProject(ctx context.Context, userID string, projectID int64) error
}

type TaskService interface {
	// ListProjectTasks returns the tasks of the project, newest first.
	ListProjectTasks(ctx context.Context, userID string, projectID int64) ([]*models.Task, error)

	// ListRecentTasks returns the newest RecentTasksLimit tasks of the user.
	ListRecentTasks(ctx context.Context, userID string) ([]*models.Task, error)

	GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error)

	// CreateProjectTask creates a task attached to the project.
	// in.ProjectID is ignored.
	CreateProjectTask(ctx context.Context, userID string, projectID int64, in TaskInput) (*models.Task, error)

	// CreateTask creates a task attached to the project referenced
	// by in.ProjectID, if any.
	CreateTask(ctx context.Context, userID string, in TaskInput) (*models.Task, error)

	UpdateTask(ctx context.Context, userID string, taskID int64, in TaskInput) (*models.Task, error)

	// DeleteTask removes the task and returns it as it was.
	DeleteTask(ctx context.Context, userID string, taskID int64) (*models.Task, error)
}

type RegisterParams struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
	Fingerprint          string
}

type LoginParams struct {
	Username    string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

// ProjectInput holds raw project form values. Deadline is
// formatted as time.DateOnly or empty.
type ProjectInput struct {
	Name        string
	Description string
	Deadline    string
}

// TaskInput holds raw task form values.
type TaskInput struct {
	Title       string
	Description string
	Status      string

	// ProjectID references one of the user's projects. Nil keeps the
	// current project on update and means no project on create, an
	// empty string detaches the task.
	ProjectID *string
}

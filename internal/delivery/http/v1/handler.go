package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tracker/internal/services"
)

type Handler interface {
	HandleIndex(c *gin.Context)
	HandleHealth(c *gin.Context)
	HandleNotFound(c *gin.Context)

	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleDeleteAccount(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleListProjects(c *gin.Context)
	HandleCreateProject(c *gin.Context)
	HandleEditProject(c *gin.Context)
	HandleDeleteProject(c *gin.Context)
	HandleProjectDetail(c *gin.Context)

	HandleCreateProjectTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleEditTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleRecentTasks(c *gin.Context)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	// SecureCookies marks session cookies as HTTPS only.
	SecureCookies bool
}

type Services struct {
	Auth     services.AuthService
	Sessions services.SessionService
	Users    services.UserService
	Projects services.ProjectService
	Tasks    services.TaskService
}

type handlerImpl struct {
	logger   zerolog.Logger
	cfg      Config
	pinger   Pinger
	auth     services.AuthService
	sessions services.SessionService
	users    services.UserService
	projects services.ProjectService
	tasks    services.TaskService
}

func New(
	logger zerolog.Logger,
	cfg Config,
	pinger Pinger,
	svc Services,
) Handler {
	return &handlerImpl{
		logger:   logger,
		cfg:      cfg,
		pinger:   pinger,
		auth:     svc.Auth,
		sessions: svc.Sessions,
		users:    svc.Users,
		projects: svc.Projects,
		tasks:    svc.Tasks,
	}
}

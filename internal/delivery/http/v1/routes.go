package v1

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the tracker pages on router. Everything except
// the index, health, register and login pages sits behind the auth
// middleware.
func RegisterRoutes(router *gin.Engine, h Handler) {
	router.NoRoute(h.HandleNotFound)

	router.GET("/", h.HandleIndex)
	router.GET("/health", h.HandleHealth)

	router.GET("/register/", h.HandleRegister)
	router.POST("/register/", h.HandleRegister)
	router.GET("/login/", h.HandleLogin)
	router.POST("/login/", h.HandleLogin)

	authRouter := router.Group("/", h.HandleAuthMiddleware)
	handleForm(authRouter, "/logout/", h.HandleLogout)
	handleForm(authRouter, "/account/delete/", h.HandleDeleteAccount)

	authRouter.GET("/projects/", h.HandleListProjects)
	handleForm(authRouter, "/projects/create/", h.HandleCreateProject)
	handleForm(authRouter, "/projects/edit/:project_id/", h.HandleEditProject)
	handleForm(authRouter, "/projects/delete/:project_id/", h.HandleDeleteProject)
	handleForm(authRouter, "/projects/:project_id/", h.HandleProjectDetail)
	handleForm(authRouter, "/projects/:project_id/create_task/", h.HandleCreateProjectTask)

	handleForm(authRouter, "/tasks/create/", h.HandleCreateTask)
	handleForm(authRouter, "/tasks/edit/:task_id/", h.HandleEditTask)
	handleForm(authRouter, "/tasks/delete/:task_id/", h.HandleDeleteTask)
	authRouter.GET("/recent_tasks/", h.HandleRecentTasks)
}

// handleForm serves GET (render) and POST (submit) with one handler.
func handleForm(router gin.IRouter, path string, handler gin.HandlerFunc) {
	router.GET(path, handler)
	router.POST(path, handler)
}

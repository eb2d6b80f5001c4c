package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/services"
)

type projectForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Deadline    string `form:"deadline"`
}

func (f projectForm) input() services.ProjectInput {
	return services.ProjectInput{
		Name:        f.Name,
		Description: f.Description,
		Deadline:    f.Deadline,
	}
}

func (f projectForm) values() formValues {
	return formValues{
		"name":        f.Name,
		"description": f.Description,
		"deadline":    f.Deadline,
	}
}

func projectValues(project *models.Project) formValues {
	values := formValues{
		"name":        project.Name,
		"description": project.Description,
	}
	if project.Deadline != nil {
		values["deadline"] = project.Deadline.Format(time.DateOnly)
	}
	return values
}

func projectURL(projectID int64) string {
	return fmt.Sprintf("/projects/%d/", projectID)
}

func (h *handlerImpl) HandleIndex(c *gin.Context) {
	c.Redirect(http.StatusFound, defaultRedirect)
}

func (h *handlerImpl) HandleListProjects(c *gin.Context) {
	projects, err := h.projects.ListProjects(c, currentUserID(c))
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list projects")
		return
	}

	h.render(c, http.StatusOK, "projects.html", gin.H{
		"Title":    "Projects",
		"Projects": projects,
	})
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	data := gin.H{
		"Title":  "New project",
		"Action": "/projects/create/",
	}
	if c.Request.Method == http.MethodGet {
		data["Form"] = formValues{"deadline": time.Now().Format(time.DateOnly)}
		h.render(c, http.StatusOK, "project_form.html", data)
		return
	}

	var form projectForm
	err := c.ShouldBind(&form)
	if err != nil {
		h.abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	_, err = h.projects.CreateProject(c, currentUserID(c), form.input())
	if err != nil {
		if verr, ok := asValidationError(err); ok {
			data["Form"] = form.values()
			data["Errors"] = verr
			h.render(c, http.StatusUnprocessableEntity, "project_form.html", data)
			return
		}
		h.abortWithServiceError(c, err, "failed to create project")
		return
	}

	c.Redirect(http.StatusFound, "/projects/")
}

func (h *handlerImpl) HandleEditProject(c *gin.Context) {
	projectID, err := parseIDParam(c, "project_id")
	if err != nil {
		h.abort(c, newNotFoundError())
		return
	}
	userID := currentUserID(c)

	data := gin.H{
		"Title":  "Edit project",
		"Action": fmt.Sprintf("/projects/edit/%d/", projectID),
	}
	if c.Request.Method == http.MethodGet {
		project, err := h.projects.GetProject(c, userID, projectID)
		if err != nil {
			h.abortWithServiceError(c, err, "failed to get project")
			return
		}

		data["Project"] = project
		data["Form"] = projectValues(project)
		h.render(c, http.StatusOK, "project_form.html", data)
		return
	}

	var form projectForm
	err = c.ShouldBind(&form)
	if err != nil {
		h.abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	_, err = h.projects.UpdateProject(c, userID, projectID, form.input())
	if err != nil {
		if verr, ok := asValidationError(err); ok {
			data["Form"] = form.values()
			data["Errors"] = verr
			h.render(c, http.StatusUnprocessableEntity, "project_form.html", data)
			return
		}
		h.abortWithServiceError(c, err, "failed to update project")
		return
	}

	c.Redirect(http.StatusFound, "/projects/")
}

func (h *handlerImpl) HandleDeleteProject(c *gin.Context) {
	projectID, err := parseIDParam(c, "project_id")
	if err != nil {
		h.abort(c, newNotFoundError())
		return
	}
	userID := currentUserID(c)

	if c.Request.Method == http.MethodGet {
		project, err := h.projects.GetProject(c, userID, projectID)
		if err != nil {
			h.abortWithServiceError(c, err, "failed to get project")
			return
		}

		h.render(c, http.StatusOK, "project_delete.html", gin.H{
			"Title":   "Delete project",
			"Project": project,
		})
		return
	}

	err = h.projects.DeleteProject(c, userID, projectID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to delete project")
		return
	}

	c.Redirect(http.StatusFound, "/projects/")
}

// HandleProjectDetail lists the project's tasks. A POST creates a task
// in the project, like HandleCreateProjectTask, and re-renders the
// detail page on validation errors.
func (h *handlerImpl) HandleProjectDetail(c *gin.Context) {
	projectID, err := parseIDParam(c, "project_id")
	if err != nil {
		h.abort(c, newNotFoundError())
		return
	}
	userID := currentUserID(c)

	var (
		status = http.StatusOK
		form   = taskForm{Status: models.StatusNew}
		verr   *services.ValidationError
	)
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBind(&form)
		if err != nil {
			h.abort(c, newBadRequestError(errInvalidRequestBody.Error()))
			return
		}

		_, err = h.tasks.CreateProjectTask(c, userID, projectID, form.input())
		if err == nil {
			c.Redirect(http.StatusFound, projectURL(projectID))
			return
		}

		var ok bool
		if verr, ok = asValidationError(err); !ok {
			h.abortWithServiceError(c, err, "failed to create task")
			return
		}
		status = http.StatusUnprocessableEntity
	}

	project, err := h.projects.GetProject(c, userID, projectID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to get project")
		return
	}

	tasks, err := h.tasks.ListProjectTasks(c, userID, projectID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list project tasks")
		return
	}

	h.render(c, status, "project_detail.html", gin.H{
		"Title":   project.Name,
		"Project": project,
		"Tasks":   tasks,
		"Form":    form.values(),
		"Errors":  verr,
	})
}

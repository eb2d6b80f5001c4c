package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/services"
)

type taskForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Status      string `form:"status"`

	// ProjectID is nil when the form has no project field.
	ProjectID *string `form:"-"`
}

// bindTaskForm binds the task fields and records whether a project_id
// field was submitted at all.
func bindTaskForm(c *gin.Context) (taskForm, error) {
	var form taskForm
	err := c.ShouldBind(&form)
	if err != nil {
		return form, err
	}
	if projectID, ok := c.GetPostForm("project_id"); ok {
		form.ProjectID = &projectID
	}
	return form, nil
}

func (f taskForm) input() services.TaskInput {
	return services.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		ProjectID:   f.ProjectID,
	}
}

func (f taskForm) values() formValues {
	values := formValues{
		"title":       f.Title,
		"description": f.Description,
		"status":      f.Status,
	}
	if f.ProjectID != nil {
		values["project_id"] = *f.ProjectID
	}
	return values
}

func taskValues(task *models.Task) formValues {
	values := formValues{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
	}
	if task.ProjectID != nil {
		values["project_id"] = strconv.FormatInt(*task.ProjectID, 10)
	}
	return values
}

// taskRedirect is where the task pages return to: the task's project,
// or the recent tasks list for tasks without one.
func taskRedirect(task *models.Task) string {
	if task.ProjectID != nil {
		return projectURL(*task.ProjectID)
	}
	return "/recent_tasks/"
}

func (h *handlerImpl) HandleCreateProjectTask(c *gin.Context) {
	projectID, err := parseIDParam(c, "project_id")
	if err != nil {
		h.abort(c, newNotFoundError())
		return
	}
	userID := currentUserID(c)

	project, err := h.projects.GetProject(c, userID, projectID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to get project")
		return
	}

	data := gin.H{
		"Title":   "New task",
		"Project": project,
		"Action":  projectURL(projectID) + "create_task/",
		"Cancel":  projectURL(projectID),
	}
	if c.Request.Method == http.MethodGet {
		data["Form"] = formValues{"status": models.StatusNew}
		h.render(c, http.StatusOK, "task_form.html", data)
		return
	}

	form, err := bindTaskForm(c)
	if err != nil {
		h.abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	_, err = h.tasks.CreateProjectTask(c, userID, projectID, form.input())
	if err != nil {
		if verr, ok := asValidationError(err); ok {
			data["Form"] = form.values()
			data["Errors"] = verr
			h.render(c, http.StatusUnprocessableEntity, "task_form.html", data)
			return
		}
		h.abortWithServiceError(c, err, "failed to create task")
		return
	}

	c.Redirect(http.StatusFound, projectURL(projectID))
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID := currentUserID(c)

	projects, err := h.projects.ListProjectChoices(c, userID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list projects")
		return
	}

	data := gin.H{
		"Title":    "New task",
		"Projects": projects,
		"Action":   "/tasks/create/",
		"Cancel":   "/recent_tasks/",
	}
	if c.Request.Method == http.MethodGet {
		data["Form"] = formValues{
			"status":     models.StatusNew,
			"project_id": c.Query("project_id"),
		}
		h.render(c, http.StatusOK, "task_form.html", data)
		return
	}

	form, err := bindTaskForm(c)
	if err != nil {
		h.abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, userID, form.input())
	if err != nil {
		if verr, ok := asValidationError(err); ok {
			data["Form"] = form.values()
			data["Errors"] = verr
			h.render(c, http.StatusUnprocessableEntity, "task_form.html", data)
			return
		}
		h.abortWithServiceError(c, err, "failed to create task")
		return
	}

	c.Redirect(http.StatusFound, taskRedirect(task))
}

func (h *handlerImpl) HandleEditTask(c *gin.Context) {
	taskID, err := parseIDParam(c, "task_id")
	if err != nil {
		h.abort(c, newNotFoundError())
		return
	}
	userID := currentUserID(c)

	task, err := h.tasks.GetTask(c, userID, taskID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to get task")
		return
	}

	projects, err := h.projects.ListProjectChoices(c, userID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list projects")
		return
	}

	data := gin.H{
		"Title":    "Edit task",
		"Task":     task,
		"Projects": projects,
		"Action":   "/tasks/edit/" + strconv.FormatInt(taskID, 10) + "/",
		"Cancel":   taskRedirect(task),
	}
	if c.Request.Method == http.MethodGet {
		data["Form"] = taskValues(task)
		h.render(c, http.StatusOK, "task_form.html", data)
		return
	}

	form, err := bindTaskForm(c)
	if err != nil {
		h.abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	updated, err := h.tasks.UpdateTask(c, userID, taskID, form.input())
	if err != nil {
		if verr, ok := asValidationError(err); ok {
			data["Form"] = form.values()
			data["Errors"] = verr
			h.render(c, http.StatusUnprocessableEntity, "task_form.html", data)
			return
		}
		h.abortWithServiceError(c, err, "failed to update task")
		return
	}

	c.Redirect(http.StatusFound, taskRedirect(updated))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID, err := parseIDParam(c, "task_id")
	if err != nil {
		h.abort(c, newNotFoundError())
		return
	}
	userID := currentUserID(c)

	if c.Request.Method == http.MethodGet {
		task, err := h.tasks.GetTask(c, userID, taskID)
		if err != nil {
			h.abortWithServiceError(c, err, "failed to get task")
			return
		}

		h.render(c, http.StatusOK, "task_delete.html", gin.H{
			"Title":  "Delete task",
			"Task":   task,
			"Cancel": taskRedirect(task),
		})
		return
	}

	task, err := h.tasks.DeleteTask(c, userID, taskID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to delete task")
		return
	}

	c.Redirect(http.StatusFound, taskRedirect(task))
}

type recentTaskRow struct {
	Task    *models.Task
	Project *models.Project
}

func (h *handlerImpl) HandleRecentTasks(c *gin.Context) {
	userID := currentUserID(c)

	tasks, err := h.tasks.ListRecentTasks(c, userID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list recent tasks")
		return
	}

	projects, err := h.projects.ListProjectChoices(c, userID)
	if err != nil {
		h.abortWithServiceError(c, err, "failed to list projects")
		return
	}
	byID := make(map[int64]*models.Project, len(projects))
	for _, project := range projects {
		byID[project.ID] = project
	}

	rows := make([]recentTaskRow, len(tasks))
	for i, task := range tasks {
		rows[i] = recentTaskRow{Task: task}
		if task.ProjectID != nil {
			rows[i].Project = byID[*task.ProjectID]
		}
	}

	h.render(c, http.StatusOK, "recent_tasks.html", gin.H{
		"Title": "Recent tasks",
		"Tasks": rows,
	})
}

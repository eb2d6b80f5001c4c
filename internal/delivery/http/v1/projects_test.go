package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjects_CreateAndEdit(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")

	rec := c.get("/projects/create/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`value="%s"`, dateFromToday(0)))

	deadline := dateFromToday(30)
	c.createProject("Launch", deadline)

	rec = c.get("/projects/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Launch")
	assert.Contains(t, rec.Body.String(), deadline)

	rec = c.post("/projects/edit/1/", url.Values{
		"name":     {"Launch"},
		"deadline": {dateFromToday(-1)},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deadline cannot be in the past.")

	rec = c.get("/projects/edit/1/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`value="%s"`, deadline))

	rec = c.post("/projects/edit/1/", url.Values{
		"name":        {"Launch v2"},
		"description": {"second try"},
		"deadline":    {deadline},
	})
	assertRedirect(t, rec, "/projects/")

	rec = c.get("/projects/1/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Launch v2")
	assert.Contains(t, rec.Body.String(), "second try")
}

func TestProjects_CreateValidation(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{name: "missing name", form: url.Values{"name": {""}}, message: "This field is required."},
		{name: "long name", form: url.Values{"name": {strings.Repeat("n", 51)}}, message: "at most 50 characters"},
		{name: "past deadline", form: url.Values{"name": {"Old"}, "deadline": {dateFromToday(-1)}}, message: "Deadline cannot be in the past."},
		{name: "bad deadline", form: url.Values{"name": {"Odd"}, "deadline": {"soon"}}, message: "Enter a valid date."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.post("/projects/create/", tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}

	rec := c.get("/projects/")
	assert.Contains(t, rec.Body.String(), "No projects yet.")
}

func TestProjects_ListShowsNewestFive(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")

	for i := 1; i <= 7; i++ {
		c.createProject(fmt.Sprintf("Project-%d", i), "")
	}

	rec := c.get("/projects/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Equal(t, 5, strings.Count(body, `class="project"`))
	assert.NotContains(t, body, "Project-1<")
	assert.NotContains(t, body, "Project-2<")

	last := -1
	for i := 7; i >= 3; i-- {
		idx := strings.Index(body, fmt.Sprintf("Project-%d<", i))
		require.NotEqual(t, -1, idx, i)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestProjects_OtherUsersGetNotFound(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.client(t)
	alice.register("alice")
	alice.createProject("Launch", "")
	rec := alice.post("/projects/1/create_task/", url.Values{"title": {"Secret"}})
	require.Equal(t, http.StatusFound, rec.Code)

	bob := srv.client(t)
	bob.register("bob")

	for _, path := range []string{
		"/projects/1/",
		"/projects/edit/1/",
		"/projects/delete/1/",
		"/projects/1/create_task/",
		"/tasks/edit/1/",
		"/tasks/delete/1/",
		"/projects/abc/",
		"/tasks/edit/0/",
	} {
		rec := bob.get(path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		rec = bob.post(path, url.Values{"name": {"Stolen"}, "title": {"Stolen"}, "status": {"new"}})
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec = alice.get("/projects/1/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Launch")
	assert.Contains(t, rec.Body.String(), "Secret")
	assert.NotContains(t, rec.Body.String(), "Stolen")
}

func TestProjects_DeleteKeepsTasks(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")
	c.createProject("Launch", "")

	rec := c.post("/projects/1/create_task/", url.Values{"title": {"Write docs"}})
	assertRedirect(t, rec, "/projects/1/")

	rec = c.get("/projects/delete/1/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Are you sure")

	rec = c.post("/projects/delete/1/", nil)
	assertRedirect(t, rec, "/projects/")

	rec = c.get("/projects/1/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.get("/recent_tasks/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Write docs")
	assert.NotContains(t, rec.Body.String(), `href="/projects/1/"`)
}

func TestProjects_DetailCreatesTask(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("alice")
	c.createProject("Launch", "")

	rec := c.get("/projects/1/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/projects/1/create_task/"`)

	rec = c.post("/projects/1/", url.Values{"title": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")

	rec = c.post("/projects/1/", url.Values{"title": {"From detail"}})
	assertRedirect(t, rec, "/projects/1/")

	rec = c.get("/projects/1/")
	assert.Contains(t, rec.Body.String(), "From detail")
}

package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tracker/internal/models"
)

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	alice := s.register(t, "alice")

	t.Run("defaults deadline to today", func(t *testing.T) {
		p, err := s.projects.CreateProject(ctx, alice, ProjectInput{Name: "Launch"})
		require.NoError(t, err)
		require.NotNil(t, p.Deadline)
		assert.Equal(t, "2024-03-10", p.Deadline.Format(time.DateOnly))
		assert.Equal(t, alice, p.UserID)
	})

	t.Run("rejects past deadline", func(t *testing.T) {
		_, err := s.projects.CreateProject(ctx, alice, ProjectInput{Name: "Launch", Deadline: "2024-03-09"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{msgDeadlinePast}, verr.Fields["deadline"])
	})
}

func TestProjectService_ListCapsAndOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	var ids []int64
	for i := range 7 {
		ids = append(ids, s.project(t, alice, fmt.Sprintf("P%d", i+1)))
	}
	s.project(t, bob, "Bob's")

	projects, err := s.projects.ListProjects(ctx, alice)
	require.NoError(t, err)
	require.Len(t, projects, ProjectListLimit)
	for i, p := range projects {
		assert.Equal(t, ids[len(ids)-1-i], p.ID)
		assert.Equal(t, alice, p.UserID)
	}
}

func TestProjectService_Ownership(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	id := s.project(t, alice, "Launch")

	_, err := s.projects.GetProject(ctx, bob, id)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = s.projects.UpdateProject(ctx, bob, id, ProjectInput{Name: "Stolen"})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	assert.ErrorIs(t, s.projects.DeleteProject(ctx, bob, id), ErrProjectNotFound)

	p, err := s.projects.GetProject(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, "Launch", p.Name)
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	alice := s.register(t, "alice")

	p, err := s.projects.CreateProject(ctx, alice, ProjectInput{Name: "Launch", Deadline: "2024-03-11"})
	require.NoError(t, err)

	// The stored deadline stays acceptable after it has passed.
	s.clock.Advance(5 * 24 * time.Hour)
	updated, err := s.projects.UpdateProject(ctx, alice, p.ID, ProjectInput{
		Name:        "Launch v2",
		Description: "second try",
		Deadline:    "2024-03-11",
	})
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", updated.Name)
	assert.Equal(t, "second try", updated.Description)

	_, err = s.projects.UpdateProject(ctx, alice, p.ID, ProjectInput{Name: "Launch", Deadline: "2024-03-12"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("deadline"))

	cleared, err := s.projects.UpdateProject(ctx, alice, p.ID, ProjectInput{Name: "Launch"})
	require.NoError(t, err)
	assert.Nil(t, cleared.Deadline)
}

func TestProjectService_DeleteDetachesTasks(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	alice := s.register(t, "alice")
	id := s.project(t, alice, "Launch")

	task, err := s.tasks.CreateProjectTask(ctx, alice, id, TaskInput{Title: "Write docs"})
	require.NoError(t, err)

	require.NoError(t, s.projects.DeleteProject(ctx, alice, id))

	_, err = s.projects.GetProject(ctx, alice, id)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	got, err := s.tasks.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProjectID)
	assert.Equal(t, models.StatusNew, got.Status)
}

func TestProjectService_ListProjectChoices(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	alice := s.register(t, "alice")

	for i := range 7 {
		s.project(t, alice, fmt.Sprintf("P%d", i+1))
	}

	choices, err := s.projects.ListProjectChoices(ctx, alice)
	require.NoError(t, err)
	require.Len(t, choices, 7)
	assert.Equal(t, "P7", choices[0].Name)
}

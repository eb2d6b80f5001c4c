// Package memory is an in-process storage.Store. It keeps the same
// ownership and ordering rules as the postgres store and is used for
// local runs and tests.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/storage"
)

type state struct {
	nextProjectID int64
	nextTaskID    int64

	users    map[string]models.User
	sessions map[string]models.Session
	projects map[int64]models.Project
	tasks    map[int64]models.Task
}

func (st *state) clone() *state {
	return &state{
		nextProjectID: st.nextProjectID,
		nextTaskID:    st.nextTaskID,
		users:         maps.Clone(st.users),
		sessions:      maps.Clone(st.sessions),
		projects:      maps.Clone(st.projects),
		tasks:         maps.Clone(st.tasks),
	}
}

type Store struct {
	mu   *sync.RWMutex
	st   *state
	inTx bool
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		mu: new(sync.RWMutex),
		st: &state{
			nextProjectID: 1,
			nextTaskID:    1,
			users:         make(map[string]models.User),
			sessions:      make(map[string]models.Session),
			projects:      make(map[int64]models.Project),
			tasks:         make(map[int64]models.Task),
		},
	}
}

// InTx holds the store lock for the whole of fn, so other callers
// neither see its writes before it returns nor interleave with it. A
// failing fn restores the snapshot taken before it ran.
func (s *Store) InTx(_ context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	err := fn(&Store{mu: s.mu, st: s.st, inTx: true})
	if err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

// The lock helpers are no-ops on a transactional view, whose InTx
// already holds the write lock.

func (s *Store) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *Store) rlock() {
	if !s.inTx {
		s.mu.RLock()
	}
}

func (s *Store) runlock() {
	if !s.inTx {
		s.mu.RUnlock()
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() {}

// Users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.lock()
	defer s.unlock()

	for _, u := range s.st.users {
		if u.Username == user.Username {
			return storage.ErrAlreadyExists
		}
	}
	if _, ok := s.st.users[user.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.st.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	s.rlock()
	defer s.runlock()

	user, ok := s.st.users[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.rlock()
	defer s.runlock()

	for _, user := range s.st.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.lock()
	defer s.unlock()

	if _, ok := s.st.users[userID]; !ok {
		return storage.ErrNotFound
	}
	if s.userReferencedLocked(userID) {
		return storage.ErrReferenced
	}
	delete(s.st.users, userID)
	return nil
}

func (s *Store) userReferencedLocked(userID string) bool {
	for _, session := range s.st.sessions {
		if session.UserID == userID {
			return true
		}
	}
	for _, project := range s.st.projects {
		if project.UserID == userID {
			return true
		}
	}
	for _, task := range s.st.tasks {
		if task.UserID == userID {
			return true
		}
	}
	return false
}

// Sessions

func (s *Store) CreateSession(_ context.Context, session *models.Session) error {
	s.lock()
	defer s.unlock()

	if _, ok := s.st.sessions[session.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.st.sessions[session.ID] = *session
	return nil
}

func (s *Store) GetSessionByID(_ context.Context, sessionID string) (*models.Session, error) {
	s.rlock()
	defer s.runlock()

	session, ok := s.st.sessions[sessionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &session, nil
}

func (s *Store) GetSessionByRefreshToken(_ context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	s.rlock()
	defer s.runlock()

	for _, session := range s.st.sessions {
		if session.RefreshToken == refreshToken && session.Fingerprint == fingerprint {
			return &session, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateSession(_ context.Context, session *models.Session) error {
	s.lock()
	defer s.unlock()

	cur, ok := s.st.sessions[session.ID]
	if !ok {
		return storage.ErrNotFound
	}
	cur.RefreshToken = session.RefreshToken
	cur.ExpiresAt = session.ExpiresAt
	cur.UpdatedAt = session.UpdatedAt
	s.st.sessions[session.ID] = cur
	return nil
}

func (s *Store) DeleteSessionsByUserID(_ context.Context, userID string) (int64, error) {
	s.lock()
	defer s.unlock()

	var affected int64
	for id, session := range s.st.sessions {
		if session.UserID == userID {
			delete(s.st.sessions, id)
			affected++
		}
	}
	return affected, nil
}

// Projects

func (s *Store) CreateProject(_ context.Context, project *models.Project) error {
	s.lock()
	defer s.unlock()

	project.ID = s.st.nextProjectID
	s.st.nextProjectID++
	s.st.projects[project.ID] = cloneProject(*project)
	return nil
}

func (s *Store) GetProject(_ context.Context, userID string, projectID int64) (*models.Project, error) {
	s.rlock()
	defer s.runlock()

	project, ok := s.st.projects[projectID]
	if !ok || project.UserID != userID {
		return nil, storage.ErrNotFound
	}
	project = cloneProject(project)
	return &project, nil
}

func (s *Store) ListProjects(_ context.Context, userID string, limit int) ([]*models.Project, error) {
	s.rlock()
	defer s.runlock()

	var projects []*models.Project
	for _, project := range s.st.projects {
		if project.UserID == userID {
			project = cloneProject(project)
			projects = append(projects, &project)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ID > projects[j].ID
	})
	if limit > 0 && len(projects) > limit {
		projects = projects[:limit]
	}
	return projects, nil
}

func (s *Store) UpdateProject(_ context.Context, project *models.Project) error {
	s.lock()
	defer s.unlock()

	cur, ok := s.st.projects[project.ID]
	if !ok || cur.UserID != project.UserID {
		return storage.ErrNotFound
	}
	cur.Name = project.Name
	cur.Description = project.Description
	cur.Deadline = project.Deadline
	cur.UpdatedAt = project.UpdatedAt
	s.st.projects[project.ID] = cloneProject(cur)
	return nil
}

func (s *Store) DeleteProject(_ context.Context, userID string, projectID int64) error {
	s.lock()
	defer s.unlock()

	project, ok := s.st.projects[projectID]
	if !ok || project.UserID != userID {
		return storage.ErrNotFound
	}
	for _, task := range s.st.tasks {
		if task.ProjectID != nil && *task.ProjectID == projectID {
			return storage.ErrReferenced
		}
	}
	delete(s.st.projects, projectID)
	return nil
}

func (s *Store) DeleteProjectsByUserID(_ context.Context, userID string) (int64, error) {
	s.lock()
	defer s.unlock()

	var affected int64
	for id, project := range s.st.projects {
		if project.UserID == userID {
			delete(s.st.projects, id)
			affected++
		}
	}
	return affected, nil
}

// Tasks

func (s *Store) CreateTask(_ context.Context, task *models.Task) error {
	s.lock()
	defer s.unlock()

	task.ID = s.st.nextTaskID
	s.st.nextTaskID++
	s.st.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *Store) GetTask(_ context.Context, userID string, taskID int64) (*models.Task, error) {
	s.rlock()
	defer s.runlock()

	task, ok := s.st.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, storage.ErrNotFound
	}
	task = cloneTask(task)
	return &task, nil
}

func (s *Store) ListTasksByProject(_ context.Context, userID string, projectID int64) ([]*models.Task, error) {
	return s.listTasks(func(t models.Task) bool {
		return t.UserID == userID && t.ProjectID != nil && *t.ProjectID == projectID
	}, 0), nil
}

func (s *Store) ListTasksByUser(_ context.Context, userID string, limit int) ([]*models.Task, error) {
	return s.listTasks(func(t models.Task) bool {
		return t.UserID == userID
	}, limit), nil
}

func (s *Store) listTasks(match func(models.Task) bool, limit int) []*models.Task {
	s.rlock()
	defer s.runlock()

	var tasks []*models.Task
	for _, task := range s.st.tasks {
		if match(task) {
			task = cloneTask(task)
			tasks = append(tasks, &task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks
}

func (s *Store) UpdateTask(_ context.Context, task *models.Task) error {
	s.lock()
	defer s.unlock()

	cur, ok := s.st.tasks[task.ID]
	if !ok || cur.UserID != task.UserID {
		return storage.ErrNotFound
	}
	cur.ProjectID = task.ProjectID
	cur.Title = task.Title
	cur.Description = task.Description
	cur.Status = task.Status
	cur.UpdatedAt = task.UpdatedAt
	s.st.tasks[task.ID] = cloneTask(cur)
	return nil
}

func (s *Store) DeleteTask(_ context.Context, userID string, taskID int64) error {
	s.lock()
	defer s.unlock()

	task, ok := s.st.tasks[taskID]
	if !ok || task.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.st.tasks, taskID)
	return nil
}

func (s *Store) DetachTasksFromProject(_ context.Context, projectID int64) (int64, error) {
	s.lock()
	defer s.unlock()

	var affected int64
	for id, task := range s.st.tasks {
		if task.ProjectID != nil && *task.ProjectID == projectID {
			task.ProjectID = nil
			s.st.tasks[id] = task
			affected++
		}
	}
	return affected, nil
}

func (s *Store) DeleteTasksByUserID(_ context.Context, userID string) (int64, error) {
	s.lock()
	defer s.unlock()

	var affected int64
	for id, task := range s.st.tasks {
		if task.UserID == userID {
			delete(s.st.tasks, id)
			affected++
		}
	}
	return affected, nil
}

func cloneProject(p models.Project) models.Project {
	out := p
	if p.Deadline != nil {
		d := *p.Deadline
		out.Deadline = &d
	}
	return out
}

func cloneTask(t models.Task) models.Task {
	out := t
	if t.ProjectID != nil {
		pid := *t.ProjectID
		out.ProjectID = &pid
	}
	return out
}

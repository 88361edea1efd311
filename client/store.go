package client

import (
	"context"
	"sync"

	"taskboard/internal/model"
)

// NextStatus is the UI convenience cycle: todo → in-progress → done →
// todo. The server itself allows any transition.
func NextStatus(status string) string {
	switch status {
	case model.StatusTodo:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusDone
	default:
		return model.StatusTodo
	}
}

// Store is a client-side repository mirroring server state. Reads are
// served from the mirror; every mutation goes to the API and then
// patches the mirror in place, so the refresh points are explicit:
// Refresh, LoadTasks, and the patch after each mutation.
type Store struct {
	c *Client

	mu       sync.RWMutex
	projects []model.Project
	tasks    map[int][]model.Task
}

func NewStore(c *Client) *Store {
	return &Store{
		c:     c,
		tasks: make(map[int][]model.Task),
	}
}

// Refresh refetches the project list and drops all cached tasks.
func (s *Store) Refresh(ctx context.Context) error {
	projects, err := s.c.ListProjects(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
	s.tasks = make(map[int][]model.Task)
	return nil
}

// Projects returns the mirrored project list, newest-updated first.
func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// LoadTasks fetches a project's tasks into the mirror.
func (s *Store) LoadTasks(ctx context.Context, projectID int) ([]model.Task, error) {
	tasks, err := s.c.ListTasks(ctx, projectID, TaskListOptions{})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tasks[projectID] = tasks
	s.mu.Unlock()
	return tasks, nil
}

// Tasks returns the mirrored tasks for a project, if loaded.
func (s *Store) Tasks(projectID int) ([]model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks, ok := s.tasks[projectID]
	if !ok {
		return nil, false
	}
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out, true
}

func (s *Store) CreateProject(ctx context.Context, title, description string) (*model.Project, error) {
	p, err := s.c.CreateProject(ctx, title, description)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// fresh project is the most recently updated
	s.projects = append([]model.Project{*p}, s.projects...)
	s.mu.Unlock()
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, id int, title, description string) (*model.Project, error) {
	p, err := s.c.UpdateProject(ctx, id, title, description)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.removeProjectLocked(id)
	s.projects = append([]model.Project{*p}, s.projects...)
	s.mu.Unlock()
	return p, nil
}

func (s *Store) DeleteProject(ctx context.Context, id int) error {
	if err := s.c.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.removeProjectLocked(id)
	delete(s.tasks, id)
	s.mu.Unlock()
	return nil
}

func (s *Store) CreateTask(ctx context.Context, projectID int, in NewTask) (*model.Task, error) {
	t, err := s.c.CreateTask(ctx, projectID, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if tasks, ok := s.tasks[projectID]; ok {
		// default ordering is creation order ascending
		s.tasks[projectID] = append(tasks, *t)
	}
	s.mu.Unlock()
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, projectID, taskID int, patch TaskPatch) (*model.Task, error) {
	t, err := s.c.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if tasks, ok := s.tasks[projectID]; ok {
		for i := range tasks {
			if tasks[i].ID == taskID {
				tasks[i] = *t
				break
			}
		}
	}
	s.mu.Unlock()
	return t, nil
}

func (s *Store) DeleteTask(ctx context.Context, projectID, taskID int) error {
	if err := s.c.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	s.mu.Lock()
	if tasks, ok := s.tasks[projectID]; ok {
		kept := tasks[:0]
		for _, t := range tasks {
			if t.ID != taskID {
				kept = append(kept, t)
			}
		}
		s.tasks[projectID] = kept
	}
	s.mu.Unlock()
	return nil
}

// CycleTaskStatus advances a task one step along the forward cycle.
func (s *Store) CycleTaskStatus(ctx context.Context, projectID, taskID int) (*model.Task, error) {
	t, err := s.c.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	next := NextStatus(t.Status)
	return s.UpdateTask(ctx, projectID, taskID, TaskPatch{Status: &next})
}

func (s *Store) removeProjectLocked(id int) {
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
}

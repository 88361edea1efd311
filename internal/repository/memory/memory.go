// Package memory holds in-memory store implementations with the same
// semantics as the pgx repositories. They back the unit and router
// tests, which do not get a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskboard/internal/model"
)

type UserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[int]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: make(map[int]model.User)}
}

func (s *UserStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = s.nextID
	s.nextID++
	u.CreatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *UserStore) FindByID(_ context.Context, id int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := u
	return &out, nil
}

type ProjectStore struct {
	mu       sync.Mutex
	nextID   int
	projects map[int]model.Project
	tasks    *TaskStore
}

// NewProjectStore returns a project store that cascades deletes into
// tasks, matching the transactional SQL delete.
func NewProjectStore(tasks *TaskStore) *ProjectStore {
	return &ProjectStore{nextID: 1, projects: make(map[int]model.Project), tasks: tasks}
}

func (s *ProjectStore) Insert(_ context.Context, p *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.projects[p.ID] = *p
	return nil
}

func (s *ProjectStore) ListByOwner(_ context.Context, userID int) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Project{}
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *ProjectStore) FindByID(_ context.Context, id int) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *ProjectStore) Update(_ context.Context, p *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.projects[p.ID]
	if !ok {
		return model.ErrNotFound
	}
	stored.Title = p.Title
	stored.Description = p.Description
	stored.UpdatedAt = time.Now()
	s.projects[p.ID] = stored
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *ProjectStore) DeleteWithTasks(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.projects, id)
	s.tasks.deleteByProject(id)
	return nil
}

type TaskStore struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]model.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{nextID: 1, tasks: make(map[int]model.Task)}
}

func (s *TaskStore) Insert(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	s.nextID++
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = *t
	return nil
}

func (s *TaskStore) ListByProject(_ context.Context, projectID int, status, sortBy string, desc bool) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Task{}
	for _, t := range s.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}

	less := taskLess(sortBy)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if desc {
			a, b = b, a
		}
		if l, eq := less(a, b); !eq {
			return l
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// taskLess returns a comparison for the given sort key; unknown keys
// fall back to creation order, as the SQL whitelist does.
func taskLess(sortBy string) func(a, b model.Task) (less, equal bool) {
	switch sortBy {
	case "title":
		return func(a, b model.Task) (bool, bool) {
			cmp := strings.Compare(a.Title, b.Title)
			return cmp < 0, cmp == 0
		}
	case "status":
		return func(a, b model.Task) (bool, bool) {
			cmp := strings.Compare(a.Status, b.Status)
			return cmp < 0, cmp == 0
		}
	case "dueDate":
		return func(a, b model.Task) (bool, bool) {
			at, bt := time.Time{}, time.Time{}
			if a.DueDate != nil {
				at = *a.DueDate
			}
			if b.DueDate != nil {
				bt = *b.DueDate
			}
			return at.Before(bt), at.Equal(bt)
		}
	case "updatedAt":
		return func(a, b model.Task) (bool, bool) {
			return a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
		}
	default:
		return func(a, b model.Task) (bool, bool) {
			return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
	}
}

func (s *TaskStore) FindByID(_ context.Context, id int) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := t
	return &out, nil
}

func (s *TaskStore) Update(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[t.ID]
	if !ok {
		return model.ErrNotFound
	}
	stored.Title = t.Title
	stored.Description = t.Description
	stored.Status = t.Status
	stored.DueDate = t.DueDate
	stored.UpdatedAt = time.Now()
	s.tasks[t.ID] = stored
	t.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *TaskStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *TaskStore) deleteByProject(projectID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tasks {
		if t.ProjectID == projectID {
			delete(s.tasks, id)
		}
	}
}

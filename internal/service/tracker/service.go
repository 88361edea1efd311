// Package tracker is the project/task domain service. Every operation
// enforces ownership transitively: a task is reachable only through a
// project owned by the requesting user, and an ownership mismatch is
// reported as not-found so nothing leaks about other users' data.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/cache"
	"taskboard/internal/model"
	"taskboard/pkg/metrics"
)

// ProjectStore is the persistence surface for projects.
type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) error
	ListByOwner(ctx context.Context, userID int) ([]model.Project, error)
	FindByID(ctx context.Context, id int) (*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	DeleteWithTasks(ctx context.Context, id int) error
}

// TaskStore is the persistence surface for tasks.
type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) error
	ListByProject(ctx context.Context, projectID int, status, sortBy string, desc bool) ([]model.Task, error)
	FindByID(ctx context.Context, id int) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int) error
}

// TaskFilter carries the optional list parameters. An invalid status is
// ignored rather than rejected; an unknown sort key falls back to
// creation order.
type TaskFilter struct {
	Status string
	SortBy string
	Order  string
}

// CreateTaskInput carries raw task fields; DueDate is parsed here.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	DueDate     string
}

// UpdateTaskInput merges into the stored task: nil fields are left as
// previously stored. Note the asymmetry with project update, which
// overwrites.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *string
}

type Service struct {
	projects ProjectStore
	tasks    TaskStore
	cache    *cache.ProjectCache
	logger   *zap.Logger
}

func NewService(projects ProjectStore, tasks TaskStore, projectCache *cache.ProjectCache, logger *zap.Logger) *Service {
	return &Service{
		projects: projects,
		tasks:    tasks,
		cache:    projectCache,
		logger:   logger,
	}
}

// ListProjects returns the user's projects, most recently updated first.
func (s *Service) ListProjects(ctx context.Context, userID int) ([]model.Project, error) {
	if projects, ok := s.cache.GetList(ctx, userID); ok {
		return projects, nil
	}

	projects, err := s.projects.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.SetList(ctx, userID, projects)
	return projects, nil
}

// CreateProject creates a project owned by userID.
func (s *Service) CreateProject(ctx context.Context, userID int, title, description string) (*model.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		metrics.IncrementProjectOp("create", "failed")
		return nil, fmt.Errorf("%w: project title is required", model.ErrInvalidInput)
	}

	p := &model.Project{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		metrics.IncrementProjectOp("create", "failed")
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	metrics.IncrementProjectOp("create", "success")
	return p, nil
}

// GetProject returns the project if it exists and is owned by userID.
func (s *Service) GetProject(ctx context.Context, userID, projectID int) (*model.Project, error) {
	return s.getOwnedProject(ctx, userID, projectID)
}

// UpdateProject overwrites the project's title and description. Fields
// omitted by the caller become unset; there is no merge.
func (s *Service) UpdateProject(ctx context.Context, userID, projectID int, title, description string) (*model.Project, error) {
	p, err := s.getOwnedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		metrics.IncrementProjectOp("update", "failed")
		return nil, fmt.Errorf("%w: project title is required", model.ErrInvalidInput)
	}

	p.Title = title
	p.Description = strings.TrimSpace(description)
	if err := s.projects.Update(ctx, p); err != nil {
		metrics.IncrementProjectOp("update", "failed")
		return nil, err
	}

	s.cache.InvalidateProject(ctx, projectID, userID)
	metrics.IncrementProjectOp("update", "success")
	return p, nil
}

// DeleteProject removes the project and every task belonging to it.
// A second delete of the same id reports not-found, not success.
func (s *Service) DeleteProject(ctx context.Context, userID, projectID int) error {
	if _, err := s.getOwnedProject(ctx, userID, projectID); err != nil {
		return err
	}

	if err := s.projects.DeleteWithTasks(ctx, projectID); err != nil {
		metrics.IncrementProjectOp("delete", "failed")
		return err
	}

	s.cache.InvalidateProject(ctx, projectID, userID)
	metrics.IncrementProjectOp("delete", "success")
	s.logger.Info("Project deleted with its tasks",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
	)
	return nil
}

// ListTasks returns the project's tasks after verifying ownership.
func (s *Service) ListTasks(ctx context.Context, userID, projectID int, filter TaskFilter) ([]model.Task, error) {
	if _, err := s.getOwnedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	status := filter.Status
	if !model.ValidStatus(status) {
		status = ""
	}
	desc := filter.Order == "desc"

	return s.tasks.ListByProject(ctx, projectID, status, filter.SortBy, desc)
}

// CreateTask creates a task under the project after verifying ownership.
func (s *Service) CreateTask(ctx context.Context, userID, projectID int, in CreateTaskInput) (*model.Task, error) {
	if _, err := s.getOwnedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		metrics.IncrementTaskOp("create", "failed")
		return nil, fmt.Errorf("%w: task title is required", model.ErrInvalidInput)
	}

	status := in.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !model.ValidStatus(status) {
		metrics.IncrementTaskOp("create", "failed")
		return nil, fmt.Errorf("%w: invalid task status %q", model.ErrInvalidInput, in.Status)
	}

	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		metrics.IncrementTaskOp("create", "failed")
		return nil, err
	}

	t := &model.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		DueDate:     dueDate,
	}
	if err := s.tasks.Insert(ctx, t); err != nil {
		metrics.IncrementTaskOp("create", "failed")
		return nil, err
	}

	metrics.IncrementTaskOp("create", "success")
	return t, nil
}

// GetTask returns the task if its parent project is owned by userID.
func (s *Service) GetTask(ctx context.Context, userID, taskID int) (*model.Task, error) {
	t, _, err := s.authorizeTaskAccess(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask merges the provided fields into the stored task. Omitted
// fields keep their previous values.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID int, in UpdateTaskInput) (*model.Task, error) {
	t, _, err := s.authorizeTaskAccess(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			metrics.IncrementTaskOp("update", "failed")
			return nil, fmt.Errorf("%w: task title is required", model.ErrInvalidInput)
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if !model.ValidStatus(*in.Status) {
			metrics.IncrementTaskOp("update", "failed")
			return nil, fmt.Errorf("%w: invalid task status %q", model.ErrInvalidInput, *in.Status)
		}
		t.Status = *in.Status
	}
	if in.DueDate != nil && *in.DueDate != "" {
		dueDate, err := parseDueDate(*in.DueDate)
		if err != nil {
			metrics.IncrementTaskOp("update", "failed")
			return nil, err
		}
		t.DueDate = dueDate
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		metrics.IncrementTaskOp("update", "failed")
		return nil, err
	}

	metrics.IncrementTaskOp("update", "success")
	return t, nil
}

// DeleteTask removes the task after verifying ownership. Deleting an
// already-deleted task reports not-found.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID int) error {
	if _, _, err := s.authorizeTaskAccess(ctx, userID, taskID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		metrics.IncrementTaskOp("delete", "failed")
		return err
	}

	metrics.IncrementTaskOp("delete", "success")
	return nil
}

// authorizeTaskAccess is the single authorization step every task
// operation goes through: resolve the task, resolve its parent project,
// compare the project's owner. Tasks are never checked against a user
// field of their own.
func (s *Service) authorizeTaskAccess(ctx context.Context, userID, taskID int) (*model.Task, *model.Project, error) {
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.getOwnedProject(ctx, userID, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	return t, p, nil
}

// getOwnedProject resolves a project and verifies ownership. Absence
// and ownership mismatch both come back as model.ErrNotFound.
func (s *Service) getOwnedProject(ctx context.Context, userID, projectID int) (*model.Project, error) {
	if p, ok := s.cache.GetProject(ctx, projectID); ok {
		if p.UserID != userID {
			return nil, model.ErrNotFound
		}
		return p, nil
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, model.ErrNotFound
	}

	s.cache.SetProject(ctx, p)
	return p, nil
}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid due date %q", model.ErrInvalidInput, raw)
}

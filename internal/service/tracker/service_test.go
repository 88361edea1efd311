package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository/memory"
)

func newTestService() *Service {
	tasks := memory.NewTaskStore()
	projects := memory.NewProjectStore(tasks)
	return NewService(projects, tasks, nil, zap.NewNop())
}

func TestCreateProjectTrimsTitle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "  Foo  ", "  bar  ")
	require.NoError(t, err)
	require.Equal(t, "Foo", p.Title)
	require.Equal(t, "bar", p.Description)
	require.Equal(t, 1, p.UserID)
	require.NotZero(t, p.ID)
}

func TestCreateProjectEmptyTitle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, 1, "   ", "")
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.CreateProject(ctx, 1, "", "")
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestProjectOwnershipIsolation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	roadmap, err := svc.CreateProject(ctx, 1, "Roadmap", "")
	require.NoError(t, err)

	// owner sees it
	mine, err := svc.ListProjects(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	// another user sees nothing, and a direct get is indistinguishable
	// from a missing project
	theirs, err := svc.ListProjects(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, theirs)

	_, err = svc.GetProject(ctx, 2, roadmap.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.GetProject(ctx, 2, 9999)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestListProjectsNewestUpdatedFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.CreateProject(ctx, 1, "A", "")
	require.NoError(t, err)
	b, err := svc.CreateProject(ctx, 1, "B", "")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = svc.UpdateProject(ctx, 1, a.ID, "A2", "")
	require.NoError(t, err)

	projects, err := svc.ListProjects(ctx, 1)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, a.ID, projects[0].ID)
	require.Equal(t, b.ID, projects[1].ID)
}

func TestUpdateProjectOverwrites(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "Title", "some description")
	require.NoError(t, err)

	// omitted description becomes unset, not merged
	updated, err := svc.UpdateProject(ctx, 1, p.ID, "New title", "")
	require.NoError(t, err)
	require.Equal(t, "New title", updated.Title)
	require.Empty(t, updated.Description)

	_, err = svc.UpdateProject(ctx, 1, p.ID, "  ", "x")
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.UpdateProject(ctx, 2, p.ID, "hijack", "")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteProjectCascades(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "X", "")
	require.NoError(t, err)

	t1, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T1"})
	require.NoError(t, err)
	t2, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T2"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, 1, p.ID))

	_, err = svc.ListTasks(ctx, 1, p.ID, TaskFilter{})
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.GetTask(ctx, 1, t1.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.GetTask(ctx, 1, t2.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	// second delete is not a silent no-op
	err = svc.DeleteProject(ctx, 1, p.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteProjectRequiresOwnership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "Mine", "")
	require.NoError(t, err)

	err = svc.DeleteProject(ctx, 2, p.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	// still there for the owner
	_, err = svc.GetProject(ctx, 1, p.ID)
	require.NoError(t, err)
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "P", "")
	require.NoError(t, err)

	task, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "  T1  "})
	require.NoError(t, err)
	require.Equal(t, "T1", task.Title)
	require.Equal(t, model.StatusTodo, task.Status)
	require.Nil(t, task.DueDate)

	done, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T2", Status: "done"})
	require.NoError(t, err)
	require.Equal(t, model.StatusDone, done.Status)
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "P", "")
	require.NoError(t, err)

	_, err = svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "   "})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T", Status: "blocked"})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T", DueDate: "not-a-date"})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	// project owned by someone else looks missing
	_, err = svc.CreateTask(ctx, 2, p.ID, CreateTaskInput{Title: "T"})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateTaskDueDateFormats(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "P", "")
	require.NoError(t, err)

	task, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T", DueDate: "2026-09-15"})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	require.Equal(t, 2026, task.DueDate.Year())

	task, err = svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T", DueDate: "2026-09-15T12:30:00Z"})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	require.Equal(t, 12, task.DueDate.Hour())
}

func TestUpdateTaskPartialMerge(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "P", "")
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{
		Title:       "T1",
		Description: "details",
		DueDate:     "2026-09-15",
	})
	require.NoError(t, err)

	status := model.StatusInProgress
	updated, err := svc.UpdateTask(ctx, 1, task.ID, UpdateTaskInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, model.StatusInProgress, updated.Status)

	// everything else survived the partial update
	got, err := svc.GetTask(ctx, 1, task.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusInProgress, got.Status)
	require.Equal(t, "T1", got.Title)
	require.Equal(t, "details", got.Description)
	require.NotNil(t, got.DueDate)
}

func TestUpdateTaskValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "P", "")
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T1"})
	require.NoError(t, err)

	empty := "   "
	_, err = svc.UpdateTask(ctx, 1, task.ID, UpdateTaskInput{Title: &empty})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	bad := "archived"
	_, err = svc.UpdateTask(ctx, 1, task.ID, UpdateTaskInput{Status: &bad})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	badDate := "tomorrow"
	_, err = svc.UpdateTask(ctx, 1, task.ID, UpdateTaskInput{DueDate: &badDate})
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestTaskAccessThroughParentProjectOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "P", "")
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T1"})
	require.NoError(t, err)

	// another user cannot see, change or delete the task
	_, err = svc.GetTask(ctx, 2, task.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	title := "stolen"
	_, err = svc.UpdateTask(ctx, 2, task.ID, UpdateTaskInput{Title: &title})
	require.ErrorIs(t, err, model.ErrNotFound)

	err = svc.DeleteTask(ctx, 2, task.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	// missing task looks the same
	_, err = svc.GetTask(ctx, 1, 9999)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteTaskTwice(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "P", "")
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, 1, task.ID))

	err = svc.DeleteTask(ctx, 1, task.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestListTasksStatusFilter(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "X", "")
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "T1"})
	require.NoError(t, err)

	done, err := svc.ListTasks(ctx, 1, p.ID, TaskFilter{Status: "done"})
	require.NoError(t, err)
	require.Empty(t, done)

	todo, err := svc.ListTasks(ctx, 1, p.ID, TaskFilter{Status: "todo"})
	require.NoError(t, err)
	require.Len(t, todo, 1)
	require.Equal(t, "T1", todo[0].Title)

	// an unknown status is ignored, not rejected
	all, err := svc.ListTasks(ctx, 1, p.ID, TaskFilter{Status: "bogus"})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestListTasksSorting(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, 1, "P", "")
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "banana"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, 1, p.ID, CreateTaskInput{Title: "apple"})
	require.NoError(t, err)

	byTitle, err := svc.ListTasks(ctx, 1, p.ID, TaskFilter{SortBy: "title"})
	require.NoError(t, err)
	require.Equal(t, []string{"apple", "banana"}, []string{byTitle[0].Title, byTitle[1].Title})

	reversed, err := svc.ListTasks(ctx, 1, p.ID, TaskFilter{SortBy: "title", Order: "desc"})
	require.NoError(t, err)
	require.Equal(t, "banana", reversed[0].Title)

	// unknown sort key falls back to creation order ascending
	fallback, err := svc.ListTasks(ctx, 1, p.ID, TaskFilter{SortBy: "favoriteColor"})
	require.NoError(t, err)
	require.Equal(t, "banana", fallback[0].Title)
	require.Equal(t, "apple", fallback[1].Title)
}

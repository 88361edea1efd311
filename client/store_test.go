package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/handler"
	"taskboard/internal/httpserver"
	"taskboard/internal/model"
	"taskboard/internal/repository/memory"
	"taskboard/internal/service/auth"
	"taskboard/internal/service/tracker"
)

// newTestBackend runs the real router over in-memory stores so the
// store is exercised against actual server behavior.
func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	users := memory.NewUserStore()
	tasks := memory.NewTaskStore()
	projects := memory.NewProjectStore(tasks)

	authService := auth.NewService(users, "client-test-secret")
	trackerService := tracker.NewService(projects, tasks, nil, log)

	r := httpserver.NewRouter(
		handler.NewAuthHandler(authService, log),
		handler.NewProjectHandler(trackerService, log),
		handler.NewTaskHandler(trackerService, log),
		"client-test-secret",
		log,
		nil,
	)

	srv := httptest.NewServer(r.Engine)
	t.Cleanup(srv.Close)
	return srv
}

func TestNextStatus(t *testing.T) {
	require.Equal(t, model.StatusInProgress, NextStatus(model.StatusTodo))
	require.Equal(t, model.StatusDone, NextStatus(model.StatusInProgress))
	require.Equal(t, model.StatusTodo, NextStatus(model.StatusDone))
}

func TestStoreProjectLifecycle(t *testing.T) {
	srv := newTestBackend(t)
	ctx := context.Background()

	c := New(srv.URL)
	_, err := c.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	store := NewStore(c)
	require.NoError(t, store.Refresh(ctx))
	require.Empty(t, store.Projects())

	p, err := store.CreateProject(ctx, "Roadmap", "plan")
	require.NoError(t, err)

	// mirror was patched without a refetch
	projects := store.Projects()
	require.Len(t, projects, 1)
	require.Equal(t, p.ID, projects[0].ID)

	updated, err := store.UpdateProject(ctx, p.ID, "Roadmap v2", "")
	require.NoError(t, err)
	require.Equal(t, "Roadmap v2", store.Projects()[0].Title)
	require.Empty(t, updated.Description)

	require.NoError(t, store.DeleteProject(ctx, p.ID))
	require.Empty(t, store.Projects())

	// refresh agrees with the server
	require.NoError(t, store.Refresh(ctx))
	require.Empty(t, store.Projects())
}

func TestStoreTaskLifecycle(t *testing.T) {
	srv := newTestBackend(t)
	ctx := context.Background()

	c := New(srv.URL)
	_, err := c.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	store := NewStore(c)
	p, err := store.CreateProject(ctx, "X", "")
	require.NoError(t, err)

	_, err = store.LoadTasks(ctx, p.ID)
	require.NoError(t, err)

	task, err := store.CreateTask(ctx, p.ID, NewTask{Title: "T1"})
	require.NoError(t, err)
	require.Equal(t, model.StatusTodo, task.Status)

	cached, ok := store.Tasks(p.ID)
	require.True(t, ok)
	require.Len(t, cached, 1)

	cycled, err := store.CycleTaskStatus(ctx, p.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusInProgress, cycled.Status)

	cached, _ = store.Tasks(p.ID)
	require.Equal(t, model.StatusInProgress, cached[0].Status)

	require.NoError(t, store.DeleteTask(ctx, p.ID, task.ID))
	cached, _ = store.Tasks(p.ID)
	require.Empty(t, cached)

	// a second delete surfaces the server's not-found
	err = store.DeleteTask(ctx, p.ID, task.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 404, apiErr.StatusCode)
}

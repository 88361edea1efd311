package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/handler"
	"taskboard/internal/repository/memory"
	"taskboard/internal/service/auth"
	"taskboard/internal/service/tracker"
)

const testSecret = "router-test-secret"

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	users := memory.NewUserStore()
	tasks := memory.NewTaskStore()
	projects := memory.NewProjectStore(tasks)

	authService := auth.NewService(users, testSecret)
	trackerService := tracker.NewService(projects, tasks, nil, log)

	r := NewRouter(
		handler.NewAuthHandler(authService, log),
		handler.NewProjectHandler(trackerService, log),
		handler.NewTaskHandler(trackerService, log),
		testSecret,
		log,
		nil,
	)
	return r.Engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func registerUser(t *testing.T, engine *gin.Engine, email, password string) string {
	t.Helper()

	code, resp := doJSON(t, engine, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, code)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndMe(t *testing.T) {
	engine := newTestRouter()

	token := registerUser(t, engine, "alice@example.com", "secret1")

	code, resp := doJSON(t, engine, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	user := resp["user"].(map[string]interface{})
	require.Equal(t, "alice@example.com", user["email"])
}

func TestRegisterValidationErrors(t *testing.T) {
	engine := newTestRouter()

	code, _ := doJSON(t, engine, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, engine, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, code)

	registerUser(t, engine, "alice@example.com", "secret1")
	code, _ = doJSON(t, engine, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret2",
	})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestLoginFlow(t *testing.T) {
	engine := newTestRouter()
	registerUser(t, engine, "alice@example.com", "secret1")

	code, resp := doJSON(t, engine, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, resp["token"])

	code, _ = doJSON(t, engine, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, code)

	code, resp = doJSON(t, engine, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, resp["message"])
}

func TestAuthRequired(t *testing.T) {
	engine := newTestRouter()

	for _, path := range []string{"/auth/me", "/projects"} {
		code, _ := doJSON(t, engine, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, code, path)
	}

	code, _ := doJSON(t, engine, http.MethodGet, "/projects", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestProjectIsolationBetweenUsers(t *testing.T) {
	engine := newTestRouter()

	aliceToken := registerUser(t, engine, "alice@example.com", "secret1")
	bobToken := registerUser(t, engine, "bob@example.com", "secret2")

	code, resp := doJSON(t, engine, http.MethodPost, "/projects", aliceToken, map[string]string{
		"title": "Roadmap",
	})
	require.Equal(t, http.StatusOK, code)
	project := resp["project"].(map[string]interface{})
	projectID := int(project["id"].(float64))

	// bob sees an empty list
	code, resp = doJSON(t, engine, http.MethodGet, "/projects", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, resp["projects"])

	// and a direct fetch 404s rather than revealing the project exists
	code, _ = doJSON(t, engine, http.MethodGet, "/projects/"+itoa(projectID), bobToken, nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestProjectCRUD(t *testing.T) {
	engine := newTestRouter()
	token := registerUser(t, engine, "alice@example.com", "secret1")

	code, _ := doJSON(t, engine, http.MethodPost, "/projects", token, map[string]string{
		"title": "   ",
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, resp := doJSON(t, engine, http.MethodPost, "/projects", token, map[string]string{
		"title":       "  Roadmap  ",
		"description": "plan",
	})
	require.Equal(t, http.StatusOK, code)
	project := resp["project"].(map[string]interface{})
	require.Equal(t, "Roadmap", project["title"])
	projectID := int(project["id"].(float64))

	code, _ = doJSON(t, engine, http.MethodGet, "/projects/not-a-number", token, nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, resp = doJSON(t, engine, http.MethodPut, "/projects/"+itoa(projectID), token, map[string]string{
		"title": "Roadmap v2",
	})
	require.Equal(t, http.StatusOK, code)
	project = resp["project"].(map[string]interface{})
	require.Equal(t, "Roadmap v2", project["title"])

	code, _ = doJSON(t, engine, http.MethodDelete, "/projects/"+itoa(projectID), token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, engine, http.MethodDelete, "/projects/"+itoa(projectID), token, nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestTaskLifecycle(t *testing.T) {
	engine := newTestRouter()
	token := registerUser(t, engine, "alice@example.com", "secret1")

	_, resp := doJSON(t, engine, http.MethodPost, "/projects", token, map[string]string{"title": "X"})
	projectID := int(resp["project"].(map[string]interface{})["id"].(float64))
	tasksPath := "/projects/" + itoa(projectID) + "/tasks"

	code, resp := doJSON(t, engine, http.MethodPost, tasksPath, token, map[string]string{
		"title": "T1",
	})
	require.Equal(t, http.StatusOK, code)
	task := resp["task"].(map[string]interface{})
	require.Equal(t, "todo", task["status"])
	taskID := int(task["id"].(float64))

	// filtered listing
	code, resp = doJSON(t, engine, http.MethodGet, tasksPath+"?status=done", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, resp["tasks"])

	code, resp = doJSON(t, engine, http.MethodGet, tasksPath+"?status=todo", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp["tasks"], 1)

	// partial update
	code, resp = doJSON(t, engine, http.MethodPut, "/tasks/"+itoa(taskID), token, map[string]string{
		"status": "in-progress",
	})
	require.Equal(t, http.StatusOK, code)
	task = resp["task"].(map[string]interface{})
	require.Equal(t, "in-progress", task["status"])
	require.Equal(t, "T1", task["title"])

	// cascade: deleting the project takes the task with it
	code, _ = doJSON(t, engine, http.MethodDelete, "/projects/"+itoa(projectID), token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, engine, http.MethodGet, "/tasks/"+itoa(taskID), token, nil)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, engine, http.MethodGet, tasksPath, token, nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestTaskOwnershipThroughProject(t *testing.T) {
	engine := newTestRouter()
	aliceToken := registerUser(t, engine, "alice@example.com", "secret1")
	bobToken := registerUser(t, engine, "bob@example.com", "secret2")

	_, resp := doJSON(t, engine, http.MethodPost, "/projects", aliceToken, map[string]string{"title": "X"})
	projectID := int(resp["project"].(map[string]interface{})["id"].(float64))

	_, resp = doJSON(t, engine, http.MethodPost, "/projects/"+itoa(projectID)+"/tasks", aliceToken, map[string]string{"title": "T1"})
	taskID := int(resp["task"].(map[string]interface{})["id"].(float64))

	code, _ := doJSON(t, engine, http.MethodGet, "/tasks/"+itoa(taskID), bobToken, nil)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, engine, http.MethodDelete, "/tasks/"+itoa(taskID), bobToken, nil)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, engine, http.MethodPost, "/projects/"+itoa(projectID)+"/tasks", bobToken, map[string]string{"title": "T2"})
	require.Equal(t, http.StatusNotFound, code)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

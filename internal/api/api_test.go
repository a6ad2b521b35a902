package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcourtner/taskdeck-be/internal/api"
	"github.com/jcourtner/taskdeck-be/internal/auth"
	"github.com/jcourtner/taskdeck-be/internal/database"
	"github.com/jcourtner/taskdeck-be/internal/models"
	"github.com/jcourtner/taskdeck-be/internal/services"
	ws "github.com/jcourtner/taskdeck-be/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	hub := ws.NewHub()
	go hub.Run()

	tokens := auth.NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, eventService)
	todoService := services.NewTodoService(db, hub, eventService)

	return api.NewRouter("http://localhost:3000", tokens, hub, userService, todoService, eventService)
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, handler http.Handler, username string) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestRegisterAndCreateTodo(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var session struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, "a@x.com", session.Email)
	require.NotEmpty(t, session.Token)

	rec = doJSON(t, srv, http.MethodPost, "/api/todos", session.Token, map[string]string{
		"title": "Buy milk", "priority": "HIGH",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var todo models.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
	assert.False(t, todo.Completed)
	assert.Equal(t, "HIGH", todo.Priority)
	assert.Equal(t, "Buy milk", todo.Title)
}

func TestRegisterConflictAndValidation(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "elsewhere@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusConflict, body.Status)
	assert.NotEmpty(t, body.Message)

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "email": "b@x.com", "password": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFailuresShareOnePayload(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	wrongPassword := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"usernameOrEmail": "alice", "password": "wrong",
	})
	noSuchUser := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"usernameOrEmail": "mallory", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, noSuchUser.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), noSuchUser.Body.String())
}

func TestLoginByEmail(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"usernameOrEmail": "alice@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var session struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "alice", session.Username)
	assert.NotEmpty(t, session.Token)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/todos", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTodoLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/todos", token, map[string]string{"title": "draft"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var todo models.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))

	rec = doJSON(t, srv, http.MethodPut, "/api/todos/"+todo.ID, token, map[string]string{
		"title": "final", "priority": "LOW",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
	assert.Equal(t, "final", todo.Title)
	assert.Equal(t, "LOW", todo.Priority)

	rec = doJSON(t, srv, http.MethodPatch, "/api/todos/"+todo.ID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
	assert.True(t, todo.Completed)

	rec = doJSON(t, srv, http.MethodDelete, "/api/todos/"+todo.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/todos/"+todo.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOwnershipHiddenOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := register(t, srv, "alice")
	bobToken := register(t, srv, "bob")

	rec := doJSON(t, srv, http.MethodPost, "/api/todos", aliceToken, map[string]string{"title": "private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var todo models.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))

	rec = doJSON(t, srv, http.MethodGet, "/api/todos/"+todo.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/todos/"+todo.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/todos", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page models.TodoPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Content)
}

func TestListQueryParamsOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	for i := 0; i < 15; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/todos", token, map[string]string{
			"title": fmt.Sprintf("task %02d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/todos?page=1&size=10&sortBy=title&sortDir=asc", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.TodoPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Content, 5)
	assert.Equal(t, 15, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "task 10", page.Content[0].Title)

	rec = doJSON(t, srv, http.MethodGet, "/api/todos?completed=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/todos?sortBy=nope", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = doJSON(t, srv, http.MethodPut, "/api/users/me/password", token, map[string]string{
		"currentPassword": "secret1", "newPassword": "newsecret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/events?limit=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.NotEmpty(t, events)

	rec = doJSON(t, srv, http.MethodDelete, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The token now points at a deleted account.
	rec = doJSON(t, srv, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/system/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
}

package services_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/jcourtner/taskdeck-be/internal/database"
	"github.com/jcourtner/taskdeck-be/internal/models"
	"github.com/jcourtner/taskdeck-be/internal/services"
	ws "github.com/jcourtner/taskdeck-be/internal/websocket"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a fresh sqlite database in a per-test temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newServices(t *testing.T) (*services.UserService, *services.TodoService, *services.EventService) {
	t.Helper()
	db := newTestDB(t)
	events := services.NewEventService(db)
	users := services.NewUserService(db, events)
	// The hub is not running in tests; BroadcastTo on an empty hub is a no-op.
	todos := services.NewTodoService(db, ws.NewHub(), events)
	return users, todos, events
}

func registerUser(t *testing.T, users *services.UserService, username string) models.User {
	t.Helper()
	user, err := users.Register(username, username+"@example.com", "secret1")
	require.NoError(t, err)
	return user
}

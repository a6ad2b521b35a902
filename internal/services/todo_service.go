package services

import (
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jcourtner/taskdeck-be/internal/models"
	ws "github.com/jcourtner/taskdeck-be/internal/websocket"
)

// TodoServiceProvider defines the interface for todo services.
type TodoServiceProvider interface {
	CreateTodo(ownerID string, in TodoInput) (models.Todo, error)
	GetTodo(ownerID, id string) (models.Todo, error)
	UpdateTodo(ownerID, id string, in TodoInput) (models.Todo, error)
	DeleteTodo(ownerID, id string) error
	ToggleTodo(ownerID, id string) (models.Todo, error)
	ListTodos(ownerID string, q TodoQuery) (models.TodoPage, error)
}

// TodoInput carries the client-settable fields of a todo.
type TodoInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// TodoQuery describes one listing request. Filter applies before sorting and
// pagination.
type TodoQuery struct {
	Page      int
	Size      int
	SortBy    string
	SortDir   string
	Completed *bool
}

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
	defaultPageSize      = 10
	maxPageSize          = 100
)

// Priority sorts by domain order (HIGH > MEDIUM > LOW), everything else by
// the column itself.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"title":     "title",
	"priority":  "CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END",
}

// TodoService provides business logic for todo management. Every operation is
// scoped to the owning user; a todo belonging to someone else is
// indistinguishable from one that does not exist.
type TodoService struct {
	db     *sql.DB
	hub    *ws.Hub
	events EventServiceProvider
}

// NewTodoService creates a new TodoService.
func NewTodoService(db *sql.DB, hub *ws.Hub, events EventServiceProvider) *TodoService {
	return &TodoService{db: db, hub: hub, events: events}
}

// CreateTodo validates the input and persists a new todo owned by ownerID.
func (s *TodoService) CreateTodo(ownerID string, in TodoInput) (models.Todo, error) {
	if err := validateTodoInput(&in); err != nil {
		return models.Todo{}, err
	}

	now := time.Now().UTC()
	todo := models.Todo{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   false,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(
		`INSERT INTO todos(id, user_id, title, description, completed, priority, due_date, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.Completed,
		todo.Priority, todo.DueDate, todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		return models.Todo{}, fmt.Errorf("failed to insert todo: %w", err)
	}

	s.events.Record(ownerID, "todo.created", "info", "Created todo: "+todo.Title, &todo.ID)
	s.notify("todo.created", todo)
	return todo, nil
}

// GetTodo retrieves a single todo owned by ownerID.
func (s *TodoService) GetTodo(ownerID, id string) (models.Todo, error) {
	row := s.db.QueryRow(selectTodo+" WHERE id = ? AND user_id = ?", id, ownerID)
	todo, err := scanTodo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, err
	}
	return todo, nil
}

// UpdateTodo replaces the client-settable fields of a todo. The ownership
// check and the write share one transaction so the row cannot vanish between
// them.
func (s *TodoService) UpdateTodo(ownerID, id string, in TodoInput) (models.Todo, error) {
	if err := validateTodoInput(&in); err != nil {
		return models.Todo{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Todo{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(selectTodo+" WHERE id = ? AND user_id = ?", id, ownerID)
	todo, err := scanTodo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, err
	}

	todo.Title = in.Title
	todo.Description = in.Description
	todo.Priority = in.Priority
	todo.DueDate = in.DueDate
	todo.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(
		"UPDATE todos SET title = ?, description = ?, priority = ?, due_date = ?, updated_at = ? WHERE id = ?",
		todo.Title, todo.Description, todo.Priority, todo.DueDate, todo.UpdatedAt, todo.ID)
	if err != nil {
		return models.Todo{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Todo{}, err
	}

	s.events.Record(ownerID, "todo.updated", "info", "Updated todo: "+todo.Title, &todo.ID)
	s.notify("todo.updated", todo)
	return todo, nil
}

// DeleteTodo removes a todo owned by ownerID.
func (s *TodoService) DeleteTodo(ownerID, id string) error {
	res, err := s.db.Exec("DELETE FROM todos WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.events.Record(ownerID, "todo.deleted", "info", "Deleted todo", &id)
	s.notify("todo.deleted", models.Todo{ID: id, UserID: ownerID})
	return nil
}

// ToggleTodo flips the completed flag of a todo owned by ownerID.
func (s *TodoService) ToggleTodo(ownerID, id string) (models.Todo, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Todo{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(selectTodo+" WHERE id = ? AND user_id = ?", id, ownerID)
	todo, err := scanTodo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, err
	}

	todo.Completed = !todo.Completed
	todo.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec("UPDATE todos SET completed = ?, updated_at = ? WHERE id = ?",
		todo.Completed, todo.UpdatedAt, todo.ID)
	if err != nil {
		return models.Todo{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Todo{}, err
	}

	eventType := "todo.reopened"
	if todo.Completed {
		eventType = "todo.completed"
	}
	s.events.Record(ownerID, eventType, "info", "Toggled todo: "+todo.Title, &todo.ID)
	s.notify(eventType, todo)
	return todo, nil
}

// ListTodos returns one page of the owner's todos. The completed filter is
// applied before sorting and pagination; pages are 0-indexed.
func (s *TodoService) ListTodos(ownerID string, q TodoQuery) (models.TodoPage, error) {
	if q.Page < 0 {
		return models.TodoPage{}, NewValidationError("page must not be negative")
	}
	if q.Size <= 0 {
		q.Size = defaultPageSize
	}
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	orderExpr, ok := sortColumns[q.SortBy]
	if !ok {
		return models.TodoPage{}, NewValidationError("unknown sort field: " + q.SortBy)
	}
	switch q.SortDir {
	case "":
		q.SortDir = "desc"
	case "asc", "desc":
	default:
		return models.TodoPage{}, NewValidationError("sort direction must be asc or desc")
	}

	where := " WHERE user_id = ?"
	args := []interface{}{ownerID}
	if q.Completed != nil {
		where += " AND completed = ?"
		args = append(args, *q.Completed)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM todos"+where, args...).Scan(&total); err != nil {
		return models.TodoPage{}, err
	}

	// created_at breaks ties so page boundaries are stable.
	query := fmt.Sprintf("%s%s ORDER BY %s %s, created_at DESC LIMIT ? OFFSET ?",
		selectTodo, where, orderExpr, q.SortDir)
	args = append(args, q.Size, q.Page*q.Size)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return models.TodoPage{}, err
	}
	defer rows.Close()

	content := make([]models.Todo, 0, q.Size)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return models.TodoPage{}, err
		}
		content = append(content, todo)
	}
	if err := rows.Err(); err != nil {
		return models.TodoPage{}, err
	}

	return models.TodoPage{
		Content:       content,
		Page:          q.Page,
		Size:          q.Size,
		TotalElements: total,
		TotalPages:    (total + q.Size - 1) / q.Size,
	}, nil
}

const selectTodo = "SELECT id, user_id, title, description, completed, priority, due_date, created_at, updated_at FROM todos"

// scanTodo is a helper to scan a todo from a row or rows object.
func scanTodo(scanner interface{ Scan(...interface{}) error }) (models.Todo, error) {
	var todo models.Todo
	var desc, dueDate sql.NullString

	err := scanner.Scan(
		&todo.ID, &todo.UserID, &todo.Title, &desc, &todo.Completed,
		&todo.Priority, &dueDate, &todo.CreatedAt, &todo.UpdatedAt,
	)
	if err != nil {
		return todo, err
	}

	todo.Description = desc.String
	if dueDate.Valid {
		todo.DueDate = &dueDate.String
	}
	return todo, nil
}

func (s *TodoService) notify(action string, todo models.Todo) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastTo(todo.UserID, ws.NewEventMessage(action, todo))
}

func validateTodoInput(in *TodoInput) error {
	if in.Title == "" {
		return NewValidationError("title is required")
	}
	// Limits are in characters, not bytes.
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return NewValidationError(fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return NewValidationError(fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(in.Priority) {
		return NewValidationError("priority must be LOW, MEDIUM or HIGH")
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			in.DueDate = nil
		} else if _, err := time.Parse("2006-01-02", *in.DueDate); err != nil {
			return NewValidationError("dueDate must be a calendar date in YYYY-MM-DD format")
		}
	}
	return nil
}

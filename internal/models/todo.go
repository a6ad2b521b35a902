package models

import "time"

// Priority levels for a todo. Sorting uses domain order (HIGH > MEDIUM > LOW),
// not lexical order.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Todo represents a single task owned by exactly one user.
type Todo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"` // Ownership is implied by the authenticated request
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    string    `json:"priority"`
	DueDate     *string   `json:"dueDate,omitempty"` // Calendar date, YYYY-MM-DD
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TodoPage is one window of a filtered, sorted todo listing.
type TodoPage struct {
	Content       []Todo `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int    `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
}

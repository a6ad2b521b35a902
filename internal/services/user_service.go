package services

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jcourtner/taskdeck-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, email, password string) (models.User, error)
	Authenticate(usernameOrEmail, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	UpdatePassword(id, currentPassword, newPassword string) error
	DeleteUser(id string) error
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 6

// UserService provides business logic for user accounts and credentials.
type UserService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, events EventServiceProvider) *UserService {
	return &UserService{db: db, events: events}
}

// Register validates the input, hashes the password and persists a new user.
// Duplicate usernames or emails fail with ErrConflict; the uniqueness check
// and the insert run in one transaction so a concurrent registration cannot
// slip between them.
func (s *UserService) Register(username, email, password string) (models.User, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var taken int
	err = tx.QueryRow("SELECT COUNT(*) FROM users WHERE username = ? OR email = ?", username, email).Scan(&taken)
	if err != nil {
		return models.User{}, err
	}
	if taken > 0 {
		return models.User{}, ErrConflict
	}

	_, err = tx.Exec("INSERT INTO users(id, username, email, password_hash) VALUES(?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		// The UNIQUE constraint backstops the pre-check.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.User{}, ErrConflict
		}
		return models.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	s.events.Record(user.ID, "user.registered", "info", "Account created", nil)

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies credentials against a username or an email. A missing
// account and a wrong password return the same ErrUnauthorized so accounts
// cannot be enumerated.
func (s *UserService) Authenticate(usernameOrEmail, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = ? OR email = ?",
		usernameOrEmail, usernameOrEmail)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrUnauthorized
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdatePassword verifies the current password, then hashes and sets a new
// password. The password is the only mutable field on an account. The verify
// and the write share one transaction so the account cannot vanish or change
// between them.
func (s *UserService) UpdatePassword(id, currentPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < minPasswordLength {
		return NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var currentHash string
	row := tx.QueryRow("SELECT password_hash FROM users WHERE id = ?", id)
	if err := row.Scan(&currentHash); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(currentPassword)); err != nil {
		return ErrUnauthorized
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	res, err := tx.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hashedPassword), id)
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
	if err := tx.Commit(); err != nil {
		return err
	}

	s.events.Record(id, "user.password_changed", "info", "Password changed", nil)
	return nil
}

// DeleteUser removes a user and everything they own. The cascade is an
// explicit two-step deletion inside one transaction rather than a
// schema-level ON DELETE CASCADE, so the contract stays visible.
func (s *UserService) DeleteUser(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM todos WHERE user_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM events WHERE user_id = ?", id); err != nil {
		return err
	}

	res, err := tx.Exec("DELETE FROM users WHERE id = ?", id)
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

	return tx.Commit()
}

func validateRegistration(username, email, password string) error {
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return NewValidationError("username must be between 3 and 50 characters")
	}
	if !emailPattern.MatchString(email) {
		return NewValidationError("email address is not valid")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

// Package store provides persistence for catalog courses.
package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNotFound is returned when a course is not found.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateCode is returned when creating a course whose code already exists.
	ErrDuplicateCode = errors.New("course with this code already exists")

	// ErrConnectionFailed is returned when database connection fails.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when database migration fails.
	ErrMigrationFailed = errors.New("database migration failed")

	// ErrTxFailed is returned when a transaction operation fails.
	ErrTxFailed = errors.New("transaction failed")

	// ErrUnsupportedDriver is returned for a driver name other than sqlite3 or postgres.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// StoreError wraps errors with additional context.
type StoreError struct {
	Op      string // Operation that failed (e.g., "CreateCourse")
	Entity  string // Entity type (e.g., "course")
	ID      string // Entity ID or code if applicable
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, id, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}

package store

import (
	"context"

	"github.com/artpar/coursecatalog/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for courses.
type Store interface {
	// Course operations
	ListCourses(ctx context.Context) ([]domain.Course, error)
	GetCourse(ctx context.Context, id int64) (*domain.Course, error)
	GetCourseByCode(ctx context.Context, code string) (*domain.Course, error)
	CreateCourse(ctx context.Context, course *domain.Course) error
	DeleteCourse(ctx context.Context, id int64) error

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Backend() Backend
	Close() error
}

// =============================================================================
// Backend
// =============================================================================

// Supported driver names, as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Backend describes the database a store is connected to.
type Backend struct {
	Driver string
	Host   string
}

// Type returns a human-readable name for the backend.
func (b Backend) Type() string {
	switch b.Driver {
	case DriverPostgres:
		return "PostgreSQL"
	case DriverSQLite:
		return "SQLite"
	default:
		return b.Driver
	}
}

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/artpar/coursecatalog/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// =============================================================================
// SQLStore
// =============================================================================

// Config selects the database driver and connection for a SQLStore.
type Config struct {
	Driver string // DriverSQLite or DriverPostgres
	DSN    string
	Host   string // Reported by Backend; not used to connect
}

// SQLStore implements Store on top of sqlx for SQLite and PostgreSQL.
type SQLStore struct {
	db      *sqlx.DB
	backend Backend
}

// Open connects to the configured database and runs migrations.
func Open(ctx context.Context, cfg Config) (*SQLStore, error) {
	if cfg.Driver != DriverSQLite && cfg.Driver != DriverPostgres {
		return nil, NewStoreError("Open", "", "", fmt.Sprintf("driver %q", cfg.Driver), ErrUnsupportedDriver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, NewStoreError("Open", "", "", "failed to open database", ErrConnectionFailed)
	}

	// SQLite serializes writers, and each ":memory:" connection is its own database.
	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewStoreError("Open", "", "", "failed to ping database", ErrConnectionFailed)
	}

	s := &SQLStore{db: db, backend: Backend{Driver: cfg.Driver, Host: cfg.Host}}

	m, err := s.migrator()
	if err != nil {
		db.Close()
		return nil, NewStoreError("Open", "", "", err.Error(), ErrMigrationFailed)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, NewStoreError("Open", "", "", err.Error(), ErrMigrationFailed)
	}

	return s, nil
}

// NewSQLiteStore opens a SQLite database at dsn and runs migrations.
func NewSQLiteStore(dsn string) (*SQLStore, error) {
	return Open(context.Background(), Config{Driver: DriverSQLite, DSN: dsn, Host: dsn})
}

// migrator builds a migrate instance for the store's driver using the embedded SQL files.
func (s *SQLStore) migrator() (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch s.backend.Driver {
	case DriverSQLite:
		driver, err = sqlite3.WithInstance(s.db.DB, &sqlite3.Config{})
	case DriverPostgres:
		driver, err = postgres.WithInstance(s.db.DB, &postgres.Config{})
	default:
		return nil, ErrUnsupportedDriver
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+s.backend.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, s.backend.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// Reset drops the schema with the down migrations and recreates it.
// Every stored course is lost.
func (s *SQLStore) Reset(ctx context.Context) error {
	m, err := s.migrator()
	if err != nil {
		return NewStoreError("Reset", "", "", err.Error(), ErrMigrationFailed)
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return NewStoreError("Reset", "", "", err.Error(), ErrMigrationFailed)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return NewStoreError("Reset", "", "", err.Error(), ErrMigrationFailed)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStoreError("Ping", "", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

// Backend reports which database the store is using.
func (s *SQLStore) Backend() Backend {
	return s.backend
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Course Operations
// =============================================================================

// courseRow represents a course row in the database.
type courseRow struct {
	ID          int64     `db:"id"`
	Code        string    `db:"coursecode"`
	Name        string    `db:"coursename"`
	Syllabus    string    `db:"syllabus"`
	Progression string    `db:"progression"`
	CreatedAt   time.Time `db:"created_at"`
}

func (s *SQLStore) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return listCourses(ctx, s.db)
}

func (s *SQLStore) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	return getCourse(ctx, s.db, id)
}

func (s *SQLStore) GetCourseByCode(ctx context.Context, code string) (*domain.Course, error) {
	return getCourseByCode(ctx, s.db, code)
}

func (s *SQLStore) CreateCourse(ctx context.Context, course *domain.Course) error {
	return createCourse(ctx, s.db, course)
}

func (s *SQLStore) DeleteCourse(ctx context.Context, id int64) error {
	return deleteCourse(ctx, s.db, id)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txStore{tx: tx, backend: s.backend}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txStore implements Store within a transaction.
type txStore struct {
	tx      *sqlx.Tx
	backend Backend
}

func (s *txStore) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return listCourses(ctx, s.tx)
}

func (s *txStore) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	return getCourse(ctx, s.tx, id)
}

func (s *txStore) GetCourseByCode(ctx context.Context, code string) (*domain.Course, error) {
	return getCourseByCode(ctx, s.tx, code)
}

func (s *txStore) CreateCourse(ctx context.Context, course *domain.Course) error {
	return createCourse(ctx, s.tx, course)
}

func (s *txStore) DeleteCourse(ctx context.Context, id int64) error {
	return deleteCourse(ctx, s.tx, id)
}

func (s *txStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txStore) Ping(ctx context.Context) error {
	return nil
}

func (s *txStore) Backend() Backend {
	return s.backend
}

func (s *txStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Implementation Functions
// =============================================================================

const courseColumns = `id, coursecode, coursename, syllabus, progression, created_at`

func listCourses(ctx context.Context, exec executor) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC, id DESC`

	var rows []courseRow
	if err := exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, NewStoreError("ListCourses", "course", "", err.Error(), err)
	}

	courses := make([]domain.Course, 0, len(rows))
	for i := range rows {
		courses = append(courses, *rowToCourse(&rows[i]))
	}
	return courses, nil
}

func getCourse(ctx context.Context, exec executor, id int64) (*domain.Course, error) {
	query := exec.Rebind(`SELECT ` + courseColumns + ` FROM courses WHERE id = ?`)
	idStr := strconv.FormatInt(id, 10)

	var row courseRow
	if err := exec.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetCourse", "course", idStr, "course not found", ErrNotFound)
		}
		return nil, NewStoreError("GetCourse", "course", idStr, err.Error(), err)
	}
	return rowToCourse(&row), nil
}

func getCourseByCode(ctx context.Context, exec executor, code string) (*domain.Course, error) {
	query := exec.Rebind(`SELECT ` + courseColumns + ` FROM courses WHERE coursecode = ?`)

	var row courseRow
	if err := exec.GetContext(ctx, &row, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetCourseByCode", "course", code, "course not found", ErrNotFound)
		}
		return nil, NewStoreError("GetCourseByCode", "course", code, err.Error(), err)
	}
	return rowToCourse(&row), nil
}

// createCourse inserts the course and fills in its ID and CreatedAt.
func createCourse(ctx context.Context, exec executor, course *domain.Course) error {
	query := exec.Rebind(`
		INSERT INTO courses (coursecode, coursename, syllabus, progression, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	createdAt := time.Now().UTC()

	var id int64
	err := exec.GetContext(ctx, &id, query,
		course.Code,
		course.Name,
		course.SyllabusURL,
		string(course.ProgressionLevel),
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateCourse", "course", course.Code, "course with this code already exists", ErrDuplicateCode)
		}
		return NewStoreError("CreateCourse", "course", course.Code, err.Error(), err)
	}

	course.ID = id
	course.CreatedAt = createdAt
	return nil
}

func deleteCourse(ctx context.Context, exec executor, id int64) error {
	query := exec.Rebind(`DELETE FROM courses WHERE id = ?`)
	idStr := strconv.FormatInt(id, 10)

	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return NewStoreError("DeleteCourse", "course", idStr, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeleteCourse", "course", idStr, "course not found", ErrNotFound)
	}
	return nil
}

func rowToCourse(row *courseRow) *domain.Course {
	return &domain.Course{
		ID:               row.ID,
		Code:             row.Code,
		Name:             row.Name,
		SyllabusURL:      row.Syllabus,
		ProgressionLevel: domain.ProgressionLevel(row.Progression),
		CreatedAt:        row.CreatedAt.UTC(),
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/artpar/coursecatalog/internal/core/domain"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func newTestCourse(t *testing.T, code string) *domain.Course {
	t.Helper()
	in, errs := domain.ValidateCourseInput(domain.RawCourseInput{
		Code:             code,
		Name:             "Course " + code,
		SyllabusURL:      "https://example.com/" + code,
		ProgressionLevel: "a",
	})
	require.Nil(t, errs)
	return in.NewCourse()
}

func createTestCourse(t *testing.T, store Store, code string) *domain.Course {
	t.Helper()
	course := newTestCourse(t, code)
	require.NoError(t, store.CreateCourse(context.Background(), course))
	return course
}

// =============================================================================
// Open Tests
// =============================================================================

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestOpen_StartsEmpty(t *testing.T) {
	store := setupTestStore(t)

	courses, err := store.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	dsn := fmt.Sprintf("file:%s/catalog.db", t.TempDir())

	first, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	createTestCourse(t, first, "DT207G")
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer second.Close()

	courses, err := second.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestBackend_SQLite(t *testing.T) {
	store := setupTestStore(t)
	assert.Equal(t, DriverSQLite, store.Backend().Driver)
	assert.Equal(t, "SQLite", store.Backend().Type())
}

func TestBackend_Type(t *testing.T) {
	assert.Equal(t, "PostgreSQL", Backend{Driver: DriverPostgres}.Type())
	assert.Equal(t, "SQLite", Backend{Driver: DriverSQLite}.Type())
	assert.Equal(t, "other", Backend{Driver: "other"}.Type())
}

func TestPing(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

// =============================================================================
// Course CRUD Tests
// =============================================================================

func TestCreateCourse_Success(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	course := newTestCourse(t, "dt207g")
	before := time.Now().UTC()
	require.NoError(t, store.CreateCourse(ctx, course))

	assert.Positive(t, course.ID)
	assert.WithinDuration(t, before, course.CreatedAt, 5*time.Second)

	retrieved, err := store.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, retrieved.ID)
	assert.Equal(t, "DT207G", retrieved.Code)
	assert.Equal(t, course.Name, retrieved.Name)
	assert.Equal(t, course.SyllabusURL, retrieved.SyllabusURL)
	assert.Equal(t, domain.ProgressionA, retrieved.ProgressionLevel)
	assert.WithinDuration(t, course.CreatedAt, retrieved.CreatedAt, time.Second)
}

func TestCreateCourse_DuplicateCode(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestCourse(t, store, "DT207G")

	duplicate := newTestCourse(t, "DT207G")
	duplicate.Name = "Another name"

	err := store.CreateCourse(ctx, duplicate)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateCode)
	assert.Zero(t, duplicate.ID)
}

func TestCreateCourse_CaseVariantIsDuplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestCourse(t, store, "dt207g")

	err := store.CreateCourse(ctx, newTestCourse(t, "DT207G"))
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestGetCourse_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetCourse(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCourseByCode_Success(t *testing.T) {
	store := setupTestStore(t)
	course := createTestCourse(t, store, "DT200G")

	retrieved, err := store.GetCourseByCode(context.Background(), "DT200G")
	require.NoError(t, err)
	assert.Equal(t, course.ID, retrieved.ID)
}

func TestGetCourseByCode_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetCourseByCode(context.Background(), "XX999X")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCourses_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := createTestCourse(t, store, "AA100A")
	second := createTestCourse(t, store, "BB200B")
	third := createTestCourse(t, store, "CC300C")

	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, third.ID, courses[0].ID)
	assert.Equal(t, second.ID, courses[1].ID)
	assert.Equal(t, first.ID, courses[2].ID)
}

func TestDeleteCourse_Success(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	course := createTestCourse(t, store, "DT207G")

	require.NoError(t, store.DeleteCourse(ctx, course.ID))

	_, err := store.GetCourse(ctx, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCourse_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.DeleteCourse(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCourse_FreesCode(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	course := createTestCourse(t, store, "DT207G")
	require.NoError(t, store.DeleteCourse(ctx, course.ID))

	again := newTestCourse(t, "DT207G")
	require.NoError(t, store.CreateCourse(ctx, again))
	assert.NotEqual(t, course.ID, again.ID)
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestWithTx_Commit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx Store) error {
		return tx.CreateCourse(ctx, newTestCourse(t, "DT207G"))
	})
	require.NoError(t, err)

	_, err = store.GetCourseByCode(ctx, "DT207G")
	assert.NoError(t, err)
}

func TestWithTx_Rollback(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx Store) error {
		require.NoError(t, tx.CreateCourse(ctx, newTestCourse(t, "DT207G")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.GetCourseByCode(ctx, "DT207G")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithTx_Nested(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx Store) error {
		return tx.WithTx(ctx, func(inner Store) error {
			assert.Equal(t, DriverSQLite, inner.Backend().Driver)
			return inner.CreateCourse(ctx, newTestCourse(t, "DT207G"))
		})
	})
	require.NoError(t, err)

	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

// =============================================================================
// Reset and Seed Tests
// =============================================================================

func TestReset_DropsCourses(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestCourse(t, store, "DT207G")
	require.NoError(t, store.Reset(ctx))

	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestSeed_InsertsSamples(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n, err := Seed(ctx, store, SampleCourses())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dt207g, err := store.GetCourseByCode(ctx, "DT207G")
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressionB, dt207g.ProgressionLevel)
}

func TestSeed_SkipsExisting(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := Seed(ctx, store, SampleCourses())
	require.NoError(t, err)

	n, err := Seed(ctx, store, SampleCourses())
	require.NoError(t, err)
	assert.Zero(t, n)

	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}

func TestSeed_InvalidCourseRollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	courses := append(SampleCourses(), domain.RawCourseInput{Code: "bad"})
	_, err := Seed(ctx, store, courses)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCodeFormat)

	stored, err := store.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

// =============================================================================
// Error Tests
// =============================================================================

func TestIsUniqueViolation_Postgres(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	assert.True(t, isUniqueViolation(err))

	err = &pq.Error{Code: "23502"}
	assert.False(t, isUniqueViolation(err))
}

func TestIsUniqueViolation_Other(t *testing.T) {
	assert.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed")))
	assert.False(t, isUniqueViolation(nil))
}

func TestStoreError_Format(t *testing.T) {
	err := NewStoreError("GetCourse", "course", "7", "course not found", ErrNotFound)
	assert.Equal(t, "GetCourse course 7: course not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	err = NewStoreError("Open", "", "", "failed to ping database", ErrConnectionFailed)
	assert.Equal(t, "Open: failed to ping database", err.Error())
}

package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/artpar/coursecatalog/internal/core/domain"
	"github.com/artpar/coursecatalog/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInstall_SeedsSampleCourses(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, install(ctx, s, options{Seed: true}, discardLogger()))

	courses, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, len(store.SampleCourses()))
}

func TestInstall_RunTwiceKeepsOneCopy(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, install(ctx, s, options{Seed: true}, discardLogger()))
	require.NoError(t, install(ctx, s, options{Seed: true}, discardLogger()))

	courses, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}

func TestInstall_ResetRemovesUserCourses(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, install(ctx, s, options{Seed: true}, discardLogger()))
	_, err := s.GetCourseByCode(ctx, "DT207G")
	require.NoError(t, err)

	in, errs := domain.ValidateCourseInput(domain.RawCourseInput{
		Code:             "XX100A",
		Name:             "Added after install",
		SyllabusURL:      "https://example.com/xx100a",
		ProgressionLevel: "C",
	})
	require.Nil(t, errs)
	extra := in.NewCourse()
	require.NoError(t, s.CreateCourse(ctx, extra))

	require.NoError(t, install(ctx, s, options{Reset: true, Seed: true}, discardLogger()))

	courses, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	_, err = s.GetCourseByCode(ctx, extra.Code)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInstall_SchemaOnly(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, install(ctx, s, options{Reset: true}, discardLogger()))

	courses, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

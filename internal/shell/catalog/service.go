// Package catalog provides the course catalog service with I/O.
// This is part of the Imperative Shell - it handles storage and calls the pure validator.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/artpar/coursecatalog/internal/core/domain"
	"github.com/artpar/coursecatalog/internal/core/validation"
	"github.com/artpar/coursecatalog/internal/shell/store"
)

// =============================================================================
// Service Errors
// =============================================================================

// InputError reports a submission the user can correct: failed field rules or
// a duplicate course code. Messages are in display order.
type InputError struct {
	Messages  []string
	Duplicate bool
}

func (e *InputError) Error() string {
	return "invalid course input: " + strings.Join(e.Messages, "; ")
}

func duplicateError() *InputError {
	return &InputError{
		Messages:  []string{validation.DuplicateCodeMessage},
		Duplicate: true,
	}
}

// =============================================================================
// Catalog Service
// =============================================================================

// Service lists, adds, and deletes courses.
type Service struct {
	store   store.Store
	metrics *Metrics
	logger  *slog.Logger
}

// NewService creates a new catalog service.
// metrics may be nil, in which case collectors go to a private registry.
func NewService(s store.Store, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		store:   s,
		metrics: metrics,
		logger:  logger,
	}
}

// ListCourses returns every course, newest first.
func (s *Service) ListCourses(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		s.logger.Error("failed to list courses", "error", err)
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// AddCourse validates raw input and stores the course.
//
// Returns *InputError when a field rule fails or the normalized code is taken.
// The pre-insert lookup is not atomic with the insert; a unique-constraint
// violation from a concurrent submission is reported as the same duplicate.
func (s *Service) AddCourse(ctx context.Context, raw domain.RawCourseInput) (*domain.Course, error) {
	in, errs := domain.ValidateCourseInput(raw)
	if errs != nil {
		s.metrics.rejected.WithLabelValues(ReasonValidation).Inc()
		return nil, &InputError{Messages: validation.Messages(errs)}
	}

	_, err := s.store.GetCourseByCode(ctx, in.Code)
	switch {
	case err == nil:
		s.metrics.rejected.WithLabelValues(ReasonDuplicate).Inc()
		return nil, duplicateError()
	case !errors.Is(err, store.ErrNotFound):
		s.logger.Error("failed to check course code", "code", in.Code, "error", err)
		return nil, fmt.Errorf("check course code: %w", err)
	}

	course := in.NewCourse()
	if err := s.store.CreateCourse(ctx, course); err != nil {
		if errors.Is(err, store.ErrDuplicateCode) {
			s.logger.Debug("course code taken by concurrent insert", "code", in.Code)
			s.metrics.rejected.WithLabelValues(ReasonDuplicate).Inc()
			return nil, duplicateError()
		}
		s.logger.Error("failed to create course", "code", in.Code, "error", err)
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.metrics.created.Inc()
	s.logger.Info("course created", "id", course.ID, "code", course.Code)
	return course, nil
}

// DeleteCourse removes a course by id. Deleting an id that does not exist is a no-op.
func (s *Service) DeleteCourse(ctx context.Context, id int64) error {
	err := s.store.DeleteCourse(ctx, id)
	switch {
	case err == nil:
		s.metrics.deleted.Inc()
		s.logger.Info("course deleted", "id", id)
		return nil
	case errors.Is(err, store.ErrNotFound):
		s.logger.Debug("delete of unknown course ignored", "id", id)
		return nil
	default:
		s.logger.Error("failed to delete course", "id", id, "error", err)
		return fmt.Errorf("delete course: %w", err)
	}
}

// Backend reports the storage backend, for the about page.
func (s *Service) Backend() store.Backend {
	return s.store.Backend()
}

// Ready checks that storage is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

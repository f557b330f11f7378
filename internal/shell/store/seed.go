package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/coursecatalog/internal/core/domain"
)

// =============================================================================
// Seed Data
// =============================================================================

// SampleCourses returns the courses inserted by a fresh install.
func SampleCourses() []domain.RawCourseInput {
	return []domain.RawCourseInput{
		{
			Code:             "DT207G",
			Name:             "Backend-based Web Development",
			SyllabusURL:      "https://www.miun.se/utbildning/kursplaner-och-utbildningsplaner/DT207G/",
			ProgressionLevel: "B",
		},
		{
			Code:             "DT200G",
			Name:             "Graphic Techniques for the Web",
			SyllabusURL:      "https://www.miun.se/utbildning/kursplaner-och-utbildningsplaner/DT200G/",
			ProgressionLevel: "A",
		},
	}
}

// Seed validates and inserts the given courses in one transaction.
// Courses whose code is already stored are skipped. Returns how many were inserted.
func Seed(ctx context.Context, s Store, courses []domain.RawCourseInput) (int, error) {
	inserted := 0
	err := s.WithTx(ctx, func(tx Store) error {
		for _, raw := range courses {
			in, errs := domain.ValidateCourseInput(raw)
			if errs != nil {
				return fmt.Errorf("seed course %q: %w", raw.Code, errors.Join(errs...))
			}

			_, err := tx.GetCourseByCode(ctx, in.Code)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}

			if err := tx.CreateCourse(ctx, in.NewCourse()); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

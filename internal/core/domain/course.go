// Package domain contains the core domain types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// =============================================================================
// Errors
// =============================================================================

// The messages below are shown to users verbatim, in the order the checks run.
var (
	ErrCodeFormat   = errors.New("Course code must follow format (e.g. DT207G)")
	ErrNameTooShort = errors.New("Course name must be at least 3 characters")
	ErrNameTooLong  = errors.New("Course name must be at most 64 characters")
	ErrSyllabusURL  = errors.New("Invalid syllabus URL format")
	ErrProgression  = errors.New("Progression must be A, B, C, or D")
)

// =============================================================================
// Limits
// =============================================================================

const (
	NameMinLength = 3
	NameMaxLength = 64
	CodeMaxLength = 10
)

var codeRegex = regexp.MustCompile(`^[A-Z]{2}[0-9]{3}[A-Z]$`)

// =============================================================================
// Progression Level
// =============================================================================

// ProgressionLevel is the single-letter tier of a course.
type ProgressionLevel string

const (
	ProgressionA ProgressionLevel = "A"
	ProgressionB ProgressionLevel = "B"
	ProgressionC ProgressionLevel = "C"
	ProgressionD ProgressionLevel = "D"
)

// ProgressionLevels lists the allowed levels in display order.
func ProgressionLevels() []ProgressionLevel {
	return []ProgressionLevel{ProgressionA, ProgressionB, ProgressionC, ProgressionD}
}

// IsValid checks if the progression level is one of the allowed levels.
func (p ProgressionLevel) IsValid() bool {
	switch p {
	case ProgressionA, ProgressionB, ProgressionC, ProgressionD:
		return true
	default:
		return false
	}
}

// =============================================================================
// Course
// =============================================================================

// Course is a persisted catalog entry. ID and CreatedAt are assigned by storage.
type Course struct {
	ID               int64            `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	SyllabusURL      string           `json:"syllabus_url"`
	ProgressionLevel ProgressionLevel `json:"progression_level"`
	CreatedAt        time.Time        `json:"created_at"`
}

// RawCourseInput carries untrusted form values. Missing fields are empty strings.
type RawCourseInput struct {
	Code             string
	Name             string
	SyllabusURL      string
	ProgressionLevel string
}

// CourseInput is a validated and normalized course, ready to be stored.
type CourseInput struct {
	Code             string
	Name             string
	SyllabusURL      string
	ProgressionLevel ProgressionLevel
}

// NewCourse builds an unsaved Course from validated input.
func (in CourseInput) NewCourse() *Course {
	return &Course{
		Code:             in.Code,
		Name:             in.Name,
		SyllabusURL:      in.SyllabusURL,
		ProgressionLevel: in.ProgressionLevel,
	}
}

// =============================================================================
// Normalization (Pure)
// =============================================================================

// NormalizeCode trims and uppercases a course code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeName trims surrounding whitespace from a course name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeProgression trims and uppercases a progression level.
func NormalizeProgression(level string) ProgressionLevel {
	return ProgressionLevel(strings.ToUpper(strings.TrimSpace(level)))
}

// =============================================================================
// Validation Functions (Pure)
// =============================================================================

// ValidateCode validates an already normalized course code.
func ValidateCode(code string) error {
	if !codeRegex.MatchString(code) {
		return ErrCodeFormat
	}
	return nil
}

// ValidateName checks the rune length of an already trimmed course name.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < NameMinLength {
		return ErrNameTooShort
	}
	if n > NameMaxLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateSyllabusURL checks that the URL starts with an http:// or https:// scheme.
func ValidateSyllabusURL(url string) error {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return nil
	}
	return ErrSyllabusURL
}

// ValidateProgression validates an already normalized progression level.
func ValidateProgression(level ProgressionLevel) error {
	if !level.IsValid() {
		return ErrProgression
	}
	return nil
}

// ValidateCourseInput normalizes raw input and runs every check.
//
// Checks never short-circuit: each failing rule appends its error, in the order
// code, name, syllabus, progression. Exactly one of the return values is non-nil.
//
// Example:
//
//	in, errs := ValidateCourseInput(RawCourseInput{Code: "dt207g", ...})
//	// in.Code == "DT207G"
func ValidateCourseInput(raw RawCourseInput) (*CourseInput, []error) {
	in := CourseInput{
		Code:             NormalizeCode(raw.Code),
		Name:             NormalizeName(raw.Name),
		SyllabusURL:      raw.SyllabusURL,
		ProgressionLevel: NormalizeProgression(raw.ProgressionLevel),
	}

	var errs []error
	if err := ValidateCode(in.Code); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateName(in.Name); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateSyllabusURL(in.SyllabusURL); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateProgression(in.ProgressionLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &in, nil
}

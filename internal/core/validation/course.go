package validation

import (
	"errors"
	"strconv"
	"strings"
)

// =============================================================================
// Course Request Validation
// =============================================================================

// DuplicateCodeMessage is shown when a course with the same normalized code exists.
const DuplicateCodeMessage = "A course with this code already exists."

// ErrInvalidCourseID is returned when a course id is not a positive integer.
var ErrInvalidCourseID = errors.New("course id must be a positive integer")

// ParseCourseID parses a course id taken from a form field or URL segment.
//
// Example:
//
//	id, err := ParseCourseID("42") // 42, nil
//	_, err = ParseCourseID("abc")  // 0, ErrInvalidCourseID
func ParseCourseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidCourseID
	}
	return id, nil
}

// Messages converts errors to display strings, keeping their order.
func Messages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

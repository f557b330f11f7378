// Package validation provides pure request-level checks for the web handlers.
//
// Field rules for a course live in the domain package; this package covers the
// pieces that only exist at the request boundary. All functions are pure (no I/O,
// no side effects).
//
// # Functions
//
//   - ParseCourseID: Parse the id of a course to delete
//   - Messages: Render a list of validation errors for display
//
// # Usage
//
//	id, err := validation.ParseCourseID(r.FormValue("courseid"))
//	if err != nil {
//	    // Render 400 Bad Request
//	}
package validation

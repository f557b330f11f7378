package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/artpar/coursecatalog/internal/core/domain"
	"github.com/artpar/coursecatalog/internal/shell/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names, one per file under templates/.
const (
	pageIndex     = "index"
	pageAddCourse = "add-course"
	pageAbout     = "about"
	pageError     = "error"
)

// pages holds one template set per page, each combining the layout with the
// page's "content" block.
type pages map[string]*template.Template

// parsePages parses the layout once and clones it for every page.
func parsePages() (pages, error) {
	layout, err := template.ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	p := make(pages)
	for _, name := range []string{pageIndex, pageAddCourse, pageAbout, pageError} {
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		t, err := clone.ParseFS(templatesFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		p[name] = t
	}
	return p, nil
}

// render executes a page into a buffer first so a template failure never
// leaves a half-written response.
func (p pages) render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := p[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// staticHandler serves the embedded stylesheet and other assets under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// =============================================================================
// Page Data
// =============================================================================

type indexPage struct {
	Title   string
	Courses []domain.Course
}

type addCoursePage struct {
	Title  string
	Errors []string
	Values domain.RawCourseInput
	Levels []domain.ProgressionLevel
}

type aboutPage struct {
	Title   string
	Backend store.Backend
}

type errorPage struct {
	Title      string
	Status     int
	StatusText string
	Message    string
}

// Package web provides the HTML pages and HTTP handlers of the course catalog.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/artpar/coursecatalog/internal/core/domain"
	"github.com/artpar/coursecatalog/internal/core/validation"
	"github.com/artpar/coursecatalog/internal/shell/catalog"
	"github.com/artpar/coursecatalog/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// =============================================================================
// Handler
// =============================================================================

// CourseService is the catalog behavior the handlers depend on.
type CourseService interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)
	AddCourse(ctx context.Context, raw domain.RawCourseInput) (*domain.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
	Backend() store.Backend
	Ready(ctx context.Context) error
}

// Config holds the dependencies of a Handler.
type Config struct {
	Service CourseService
	Logger  *slog.Logger

	// Registry receives the HTTP collectors and is served on /metrics.
	// A nil Registry gets a fresh one.
	Registry *prometheus.Registry
}

// Handler provides the HTTP handlers for the catalog.
type Handler struct {
	service  CourseService
	pages    pages
	logger   *slog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// NewHandler creates a new handler and parses the embedded page templates.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	p, err := parsePages()
	if err != nil {
		return nil, err
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})
	if err := cfg.Registry.Register(requests); err != nil {
		return nil, err
	}

	return &Handler{
		service:  cfg.Service,
		pages:    p,
		logger:   cfg.Logger,
		registry: cfg.Registry,
		requests: requests,
	}, nil
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(h.recoverer)
	r.Use(h.requestIDHeader)

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(h.handleMethodNotAllowed)

	// Pages
	r.Get("/", h.handleIndex)
	r.Get("/add-course", h.handleAddCourseForm)
	r.Post("/add-course", h.handleAddCourse)
	r.Post("/delete-course", h.handleDeleteCourse)
	r.Post("/delete-course/{id}", h.handleDeleteCourse)
	r.Get("/about", h.handleAbout)

	// Assets
	r.Handle("/static/*", staticHandler())

	// Operations
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	r.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))

	return r
}

// =============================================================================
// Page Handlers
// =============================================================================

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		h.serveError(w, r, http.StatusInternalServerError, "Failed to load courses")
		return
	}
	h.render(w, r, http.StatusOK, pageIndex, indexPage{
		Title:   "Courses",
		Courses: courses,
	})
}

func (h *Handler) handleAddCourseForm(w http.ResponseWriter, r *http.Request) {
	h.renderAddCourse(w, r, http.StatusOK, domain.RawCourseInput{}, nil)
}

func (h *Handler) handleAddCourse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.serveError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}

	raw := domain.RawCourseInput{
		Code:             r.PostForm.Get("coursecode"),
		Name:             r.PostForm.Get("coursename"),
		SyllabusURL:      r.PostForm.Get("syllabus"),
		ProgressionLevel: r.PostForm.Get("progression"),
	}

	_, err := h.service.AddCourse(r.Context(), raw)
	if err != nil {
		var inputErr *catalog.InputError
		if errors.As(err, &inputErr) {
			h.renderAddCourse(w, r, http.StatusUnprocessableEntity, raw, inputErr.Messages)
			return
		}
		h.serveError(w, r, http.StatusInternalServerError, "An error occurred while accessing the database.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		if err := r.ParseForm(); err != nil {
			h.serveError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
			return
		}
		raw = r.PostForm.Get("courseid")
	}

	id, err := validation.ParseCourseID(raw)
	if err != nil {
		h.serveError(w, r, http.StatusBadRequest, "Invalid course id.")
		return
	}

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		h.serveError(w, r, http.StatusInternalServerError, "An error occurred while accessing the database.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageAbout, aboutPage{
		Title:   "About",
		Backend: h.service.Backend(),
	})
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.serveError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.serveError(w, r, http.StatusMethodNotAllowed, "This page does not accept that request method.")
}

// =============================================================================
// Health Handlers
// =============================================================================

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Ready(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "not_ready",
			Checks: map[string]string{"database": "failed"},
		})
		return
	}
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
		Checks: map[string]string{"database": "ok"},
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) renderAddCourse(w http.ResponseWriter, r *http.Request, status int, values domain.RawCourseInput, errs []string) {
	h.render(w, r, status, pageAddCourse, addCoursePage{
		Title:  "Add course",
		Errors: errs,
		Values: values,
		Levels: domain.ProgressionLevels(),
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := h.pages.render(w, status, page, data); err != nil {
		h.logger.Error("failed to render page",
			"page", page,
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// serveError renders the error page. Messages are generic; details stay in the logs.
func (h *Handler) serveError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.Warn("request failed",
		"status", status,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)

	data := errorPage{
		Title:      http.StatusText(status),
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    message,
	}
	if err := h.pages.render(w, status, pageError, data); err != nil {
		h.logger.Error("failed to render error page", "error", err)
		http.Error(w, message, status)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

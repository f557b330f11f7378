package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded by Metrics.
const (
	ReasonValidation = "validation"
	ReasonDuplicate  = "duplicate"
)

// Metrics holds the Prometheus collectors updated by the catalog service.
type Metrics struct {
	created  prometheus.Counter
	deleted  prometheus.Counter
	rejected *prometheus.CounterVec
}

// NewMetrics registers the catalog collectors with reg.
// A nil reg uses a private registry, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		created: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "courses_created_total",
			Help:      "Courses inserted through the add-course form.",
		}),
		deleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "courses_deleted_total",
			Help:      "Courses removed by id.",
		}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "course_submissions_rejected_total",
			Help:      "Add-course submissions rejected, by reason.",
		}, []string{"reason"}),
	}
}

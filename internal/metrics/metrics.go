// Package metrics wires the Prometheus collectors the server exports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	RecipeSaves        *prometheus.CounterVec
	RecipeSaveDuration prometheus.Histogram
	DashboardSnapshots prometheus.Counter
}

// New creates a fresh registry with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RecipeSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "costmanager_recipe_saves_total",
			Help: "Recipe create/update transactions by outcome.",
		}, []string{"outcome"}),
		RecipeSaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "costmanager_recipe_save_duration_seconds",
			Help:    "Wall time of the recipe save transaction.",
			Buckets: prometheus.DefBuckets,
		}),
		DashboardSnapshots: factory.NewCounter(prometheus.CounterOpts{
			Name: "costmanager_dashboard_snapshots_total",
			Help: "Dashboard snapshot computations served.",
		}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

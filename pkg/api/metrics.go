package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conuredb/rosterdb/db"
)

type metrics struct {
	registry *prometheus.Registry
	inserts  prometheus.Counter
	lookups  *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

func newMetrics(database *db.DB) *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &metrics{
		registry: reg,
		inserts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rosterdb",
			Name:      "inserts_total",
			Help:      "Students inserted through this node.",
		}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rosterdb",
			Name:      "lookups_total",
			Help:      "Contains lookups served, by outcome.",
		}, []string{"found"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rosterdb",
			Name:      "http_errors_total",
			Help:      "Failed API requests, by route and status code.",
		}, []string{"route", "code"}),
	}

	gauge := func(name, help string, value func() int) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "rosterdb",
			Subsystem: "tree",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value()) })
	}
	gauge("students", "Students held in the roster tree.", func() int { return database.Stats().Size })
	gauge("height", "Height of the roster tree.", func() int { return database.Stats().Height })
	gauge("nodes", "Live nodes in the roster tree.", func() int { return database.Stats().Nodes })
	gauge("splits", "Node splits since the roster tree was built.", func() int { return database.Stats().Splits })

	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

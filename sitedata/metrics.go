package sitedata

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	mutations *prometheus.CounterVec
	toolUsage *prometheus.CounterVec
}

// WithMetrics registers the store's counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Store) {
		s.metrics = &metrics{
			mutations: registerCounterVec(reg, prometheus.CounterOpts{
				Namespace: "siteengine",
				Name:      "store_mutations_total",
				Help:      "Content mutations by kind, operation and result.",
			}, "kind", "op", "result"),
			toolUsage: registerCounterVec(reg, prometheus.CounterOpts{
				Namespace: "siteengine",
				Name:      "tool_usage_total",
				Help:      "Uses of the public AI and interactive tools.",
			}, "tool"),
		}
	}
}

func (m *metrics) observeMutation(kind, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(kind, op, result).Inc()
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

package fitness

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// trialsTotal counts recognition trials by outcome (matched, missed).
	trialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swypesim_fitness_trials_total",
		Help: "Total Monte Carlo recognition trials by outcome",
	}, []string{"outcome"})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swypesim_fitness_evaluation_duration_seconds",
		Help:    "Wall time of a complete fitness evaluation",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
	})

	lastFitness = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swypesim_fitness_last",
		Help: "Fitness of the most recent completed evaluation",
	})
)

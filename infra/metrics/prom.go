package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/sectionsched/core/metrics"
)

// PromOptions configures a PromSink.
type PromOptions struct {
	Namespace string `json:"namespace"`
	// Textfile, when set, receives the gathered metrics after every solve in
	// the node_exporter textfile format.
	Textfile string `json:"textfile"`
}

// PromSink records solve runs in Prometheus metrics.
type PromSink struct {
	runs         *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	objective    prometheus.Gauge
	nodes        prometheus.Counter
	improvements *prometheus.CounterVec

	gatherer prometheus.Gatherer
	textfile string
}

// NewPromSink registers the solve metrics on reg. A nil registerer defaults
// to the global Prometheus registerer. Metrics already registered by an
// earlier sink are reused.
func NewPromSink(opts PromOptions, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := opts.Namespace
	if ns == "" {
		ns = "sectionsched"
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "solve_runs_total",
		Help:      "Solve runs by final status",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "solve_duration_seconds",
		Help:      "Wall clock time spent in the solver",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
	}, []string{"status"})
	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "solve_objective",
		Help:      "Weighted completion time of the last schedule found",
	})
	nodes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "search_nodes_total",
		Help:      "Branch and bound nodes expanded",
	})
	improvements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "incumbent_improvements_total",
		Help:      "Improved schedules found, by search strategy",
	}, []string{"strategy"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if objective, err = register(reg, objective); err != nil {
		return nil, err
	}
	if nodes, err = register(reg, nodes); err != nil {
		return nil, err
	}
	if improvements, err = register(reg, improvements); err != nil {
		return nil, err
	}

	s := &PromSink{
		runs:         runs,
		duration:     duration,
		objective:    objective,
		nodes:        nodes,
		improvements: improvements,
		textfile:     opts.Textfile,
		gatherer:     prometheus.DefaultGatherer,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		s.gatherer = g
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve updates the run metrics and refreshes the textfile if configured.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.runs.WithLabelValues(ev.Status).Inc()
	s.duration.WithLabelValues(ev.Status).Observe(ev.Elapsed.Seconds())
	if ev.Status == "OPTIMAL" || ev.Status == "FEASIBLE" {
		s.objective.Set(float64(ev.Objective))
	}
	if ev.Nodes > 0 {
		s.nodes.Add(float64(ev.Nodes))
	}
	if s.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.textfile, s.gatherer)
}

// RecordImprovement counts an improved schedule.
func (s *PromSink) RecordImprovement(ev coremetrics.ImprovementEvent) error {
	s.improvements.WithLabelValues(ev.Strategy).Inc()
	return nil
}

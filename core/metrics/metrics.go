package metrics

import "time"

// SolveEvent summarises one solve run.
type SolveEvent struct {
	RunID     string
	Status    string
	Objective int64
	Trains    int
	Tracks    int
	Horizon   int
	Nodes     int64
	Elapsed   time.Duration
	Time      time.Time
}

// MetricsSink records solve runs for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// ImprovementEvent is a new best schedule found while a run is in progress.
type ImprovementEvent struct {
	RunID     string
	Objective int64
	Strategy  string
	Elapsed   time.Duration
	Time      time.Time
}

// ImprovementRecorder is implemented by sinks that track search progress.
type ImprovementRecorder interface {
	RecordImprovement(ev ImprovementEvent) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error             { return nil }
func (NopSink) RecordImprovement(ImprovementEvent) error { return nil }

package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/sectionsched/core/clock"
	"github.com/kilianp07/sectionsched/core/logger"
	"github.com/kilianp07/sectionsched/core/model"
	"github.com/kilianp07/sectionsched/core/solver"
)

// Scheduler holds the immutable inputs of one scheduling run.
type Scheduler struct {
	trains    []model.Train
	tracks    model.Catalog
	cfg       Config
	log       logger.Logger
	onImprove func(solver.Improvement)
	runID     string
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used during runs.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithProgress registers a callback for every improved incumbent.
func WithProgress(fn func(solver.Improvement)) Option {
	return func(s *Scheduler) { s.onImprove = fn }
}

// WithRunID fixes the run identifier instead of generating one per Run.
func WithRunID(id string) Option {
	return func(s *Scheduler) { s.runID = id }
}

// New validates and captures the inputs. The slices are copied so later
// changes by the caller do not affect the run.
func New(trains []model.Train, tracks model.Catalog, cfg Config, opts ...Option) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler config: %w", err)
	}
	if len(trains) == 0 {
		return nil, &InputError{Kind: "trains", Index: -1, Err: errors.New("no trains to schedule")}
	}
	for i, t := range trains {
		if err := t.Validate(); err != nil {
			return nil, &InputError{Kind: "train", Index: i, Err: err}
		}
	}
	for i, t := range tracks {
		if err := t.Validate(); err != nil {
			return nil, &InputError{Kind: "track", Index: i, Err: err}
		}
	}
	s := &Scheduler{
		trains: append([]model.Train(nil), trains...),
		tracks: append(model.Catalog(nil), tracks...),
		cfg:    cfg,
		log:    logger.NopLogger{},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Model builds the constraint model for the captured inputs.
func (s *Scheduler) Model() (Model, error) {
	return BuildModel(s.trains, s.tracks, s.cfg.HorizonBuffer())
}

// Run solves the model and extracts the schedule. When the search ends
// without a schedule the returned Result still carries the run id, status
// and search statistics, and the error is ErrInfeasible or ErrNoSolution.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	runID := s.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	m, err := s.Model()
	if err != nil {
		return Result{}, err
	}
	for _, i := range m.Clamped {
		s.log.Warnf("train %s: priority %d clamped to weight 1", s.trains[i].Label(), s.trains[i].Priority)
	}
	s.log.Debugw("model built", map[string]any{
		"run_id":    runID,
		"trains":    len(s.trains),
		"tracks":    len(s.tracks),
		"durations": m.Durations,
		"horizon":   m.Horizon,
	})

	opts := solver.Options{
		TimeLimit: s.cfg.TimeLimit(),
		Workers:   s.cfg.Workers,
		OnImprove: func(im solver.Improvement) {
			s.log.Debugw("incumbent improved", map[string]any{
				"run_id":    runID,
				"objective": im.Objective,
				"strategy":  im.Strategy,
				"elapsed":   im.Elapsed.String(),
			})
			if s.onImprove != nil {
				s.onImprove(im)
			}
		},
	}
	sol, err := solver.Solve(ctx, m.Problem(), opts)
	if err != nil {
		return Result{}, fmt.Errorf("solve: %w", err)
	}
	s.log.Infof("run %s: status %s after %s (%d nodes)", runID, sol.Status, sol.Elapsed, sol.Nodes)

	if !sol.Status.HasSolution() {
		res := Result{
			RunID:              runID,
			Status:             sol.Status,
			LastClearanceClock: clock.NoClearance,
			Horizon:            m.Horizon,
			Nodes:              sol.Nodes,
			Elapsed:            sol.Elapsed,
			Tracks:             len(s.tracks),
		}
		if sol.Status == solver.StatusInfeasible {
			return res, ErrInfeasible
		}
		return res, ErrNoSolution
	}

	res, err := Extract(m, s.trains, sol)
	if err != nil {
		return Result{}, err
	}
	res.RunID = runID
	res.Tracks = len(s.tracks)
	s.log.Infof("run %s: objective %d, last clearance %s (day %d)", runID, res.Objective, res.LastClearanceClock, res.LastClearanceDay)
	return res, nil
}

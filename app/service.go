// Package app wires the solve pipeline: load the dataset, schedule it, write
// and publish the schedule, then report the run to metrics, the run log and
// the error monitor.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/sectionsched/config"
	coremetrics "github.com/kilianp07/sectionsched/core/metrics"
	coremon "github.com/kilianp07/sectionsched/core/monitoring"
	"github.com/kilianp07/sectionsched/core/runlog"
	"github.com/kilianp07/sectionsched/core/scheduler"
	"github.com/kilianp07/sectionsched/core/solver"
	"github.com/kilianp07/sectionsched/infra/logger"
	inframetrics "github.com/kilianp07/sectionsched/infra/metrics"
	"github.com/kilianp07/sectionsched/infra/monitoring"
	"github.com/kilianp07/sectionsched/infra/mqtt"
	"github.com/kilianp07/sectionsched/internal/dataset"
	"github.com/kilianp07/sectionsched/internal/eventbus"
	"github.com/kilianp07/sectionsched/pkg/export"
)

// Publisher delivers a solved schedule to downstream consumers.
type Publisher interface {
	PublishSchedule(ctx context.Context, res scheduler.Result) error
	Close()
}

// Service runs solves according to one configuration.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	sink      coremetrics.MetricsSink
	runs      runlog.Store
	monitor   coremon.Monitor
	publisher Publisher
	stdout    io.Writer
	progress  func(solver.Improvement)
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger replaces the logger built from the logging section.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

// WithMetricsSink replaces the sinks built from the metrics section.
func WithMetricsSink(m coremetrics.MetricsSink) Option { return func(s *Service) { s.sink = m } }

// WithRunLog replaces the store built from the runlog section.
func WithRunLog(r runlog.Store) Option { return func(s *Service) { s.runs = r } }

// WithMonitor replaces the monitor built from the sentry section.
func WithMonitor(m coremon.Monitor) Option { return func(s *Service) { s.monitor = m } }

// WithPublisher replaces the MQTT publisher built from the publish section.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithStdout sets where the schedule goes when no output path is configured.
func WithStdout(w io.Writer) Option { return func(s *Service) { s.stdout = w } }

// WithProgress observes every improved schedule found during a solve.
func WithProgress(fn func(solver.Improvement)) Option { return func(s *Service) { s.progress = fn } }

// New builds a Service. Components not injected through options are created
// from cfg; on error everything created so far is closed.
func New(cfg *config.Config, opts ...Option) (svc *Service, err error) {
	s := &Service{cfg: cfg, stdout: os.Stdout}
	for _, o := range opts {
		o(s)
	}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()
	if s.log == nil {
		s.log = cfg.Logging.Logger("service")
	}
	if s.monitor == nil {
		if s.monitor, err = monitoring.NewSentryMonitor(cfg.Sentry); err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
	}
	if s.sink == nil {
		if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sinks: %w", err)
		}
	}
	if s.runs == nil {
		if s.runs, err = runlog.Open(cfg.RunLog); err != nil {
			return nil, fmt.Errorf("runlog: %w", err)
		}
	}
	if s.publisher == nil && cfg.Publish.MQTT.Enabled {
		p, perr := mqtt.NewPublisher(cfg.Publish.MQTT,
			mqtt.WithLogger(cfg.Logging.Logger("mqtt_publisher")), mqtt.WithMonitor(s.monitor))
		if perr != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", perr)
		}
		s.publisher = p
	}
	return s, nil
}

// Run loads the configured dataset, solves it and delivers the schedule.
func (s *Service) Run(ctx context.Context) (scheduler.Result, error) {
	if s.cfg.Input.Path == "" {
		return scheduler.Result{}, fmt.Errorf("no input: set input.path or pass a dataset file")
	}
	ds, err := dataset.Load(s.cfg.Input.Path)
	if err != nil {
		return scheduler.Result{}, fmt.Errorf("%w: %w", scheduler.ErrInvalidInput, err)
	}
	res, err := s.Solve(ctx, ds, s.cfg.Input.Path)
	if err != nil {
		return res, err
	}
	return res, s.Deliver(ctx, res)
}

// Solve schedules ds and reports the run. source only labels the run log.
func (s *Service) Solve(ctx context.Context, ds *dataset.Dataset, source string) (scheduler.Result, error) {
	runID := uuid.NewString()
	bus := eventbus.NewTyped[solver.Improvement](64)
	sched, err := scheduler.New(ds.Trains, ds.Tracks, s.cfg.Solver,
		scheduler.WithLogger(s.log),
		scheduler.WithRunID(runID),
		scheduler.WithProgress(func(im solver.Improvement) { bus.Publish(im) }),
	)
	if err != nil {
		return scheduler.Result{}, err
	}

	collected := inframetrics.StartProgressCollector(ctx, runID, bus, s.sink, s.log)
	var observers sync.WaitGroup
	if s.progress != nil {
		sub := bus.Subscribe()
		observers.Add(1)
		go func() {
			defer observers.Done()
			for im := range sub {
				s.progress(im)
			}
		}()
	}

	started := time.Now()
	res, runErr := sched.Run(ctx)
	bus.Close()
	<-collected
	observers.Wait()

	if res.RunID == "" {
		res.RunID = runID
	}
	s.report(ctx, res, runErr, len(ds.Trains), len(ds.Tracks), source, started)
	return res, runErr
}

func (s *Service) report(ctx context.Context, res scheduler.Result, runErr error, trains, tracks int, source string, started time.Time) {
	status := res.Status.String()
	elapsed := res.Elapsed
	if elapsed == 0 {
		elapsed = time.Since(started)
	}
	if err := s.sink.RecordSolve(coremetrics.SolveEvent{
		RunID:     res.RunID,
		Status:    status,
		Objective: res.Objective,
		Trains:    trains,
		Tracks:    tracks,
		Horizon:   res.Horizon,
		Nodes:     res.Nodes,
		Elapsed:   elapsed,
		Time:      started,
	}); err != nil {
		s.log.Warnf("record metrics for run %s: %v", res.RunID, err)
	}

	rec := runlog.Record{
		RunID:            res.RunID,
		Timestamp:        started,
		Source:           source,
		Status:           status,
		Objective:        res.Objective,
		Trains:           trains,
		Tracks:           tracks,
		Horizon:          res.Horizon,
		Nodes:            res.Nodes,
		ElapsedMS:        elapsed.Milliseconds(),
		LastClearance:    res.LastClearanceClock,
		LastClearanceDay: res.LastClearanceDay,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
		s.monitor.CaptureException(runErr, coremon.RunTags("scheduler", res.RunID, "status", status))
	}
	// The run log outlives a canceled solve.
	if err := s.runs.Append(context.WithoutCancel(ctx), rec); err != nil {
		s.log.Warnf("append run log for run %s: %v", res.RunID, err)
	}
}

// Deliver writes the schedule to the configured outputs and publishes it.
// Only successful results are delivered.
func (s *Service) Deliver(ctx context.Context, res scheduler.Result) error {
	if !res.Published() {
		return fmt.Errorf("%w (status %s)", export.ErrNotPublished, res.Status)
	}
	var errs []error
	if s.cfg.Output.Path == "" {
		if err := export.WriteJSON(s.stdout, res); err != nil {
			errs = append(errs, fmt.Errorf("write schedule: %w", err))
		}
	} else if err := writeFile(s.cfg.Output.Path, func(w io.Writer) error { return export.WriteJSON(w, res) }); err != nil {
		errs = append(errs, fmt.Errorf("write schedule: %w", err))
	}
	if s.cfg.Output.CSVPath != "" {
		if err := writeFile(s.cfg.Output.CSVPath, func(w io.Writer) error { return export.WriteCSV(w, res) }); err != nil {
			errs = append(errs, fmt.Errorf("write csv: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSchedule(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeFile replaces path atomically with what write produces.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// RunLog exposes the run log store.
func (s *Service) RunLog() runlog.Store { return s.runs }

// Close releases the publisher, sinks and run log, and flushes the monitor.
func (s *Service) Close() error {
	var errs []error
	if s.publisher != nil {
		s.publisher.Close()
	}
	if c, ok := s.sink.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if s.runs != nil {
		errs = append(errs, s.runs.Close())
	}
	if s.monitor != nil {
		s.monitor.Flush(2 * time.Second)
	}
	return errors.Join(errs...)
}

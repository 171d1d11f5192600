package scenarios

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/sectionsched/core/logger"
	coremetrics "github.com/kilianp07/sectionsched/core/metrics"
	"github.com/kilianp07/sectionsched/core/model"
	"github.com/kilianp07/sectionsched/core/scheduler"
	"github.com/kilianp07/sectionsched/infra/metrics"
)

// RunScenario solves sc and reports every mismatch with its expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSink(metrics.PromOptions{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	cfg := scheduler.Config{TimeLimitSeconds: 10, HorizonBufferMinutes: sc.HorizonBuffer}
	s, err := scheduler.New(sc.TrainModels(), model.Catalog(sc.Tracks), cfg, scheduler.WithLogger(logger.NopLogger{}))
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}
	res, runErr := s.Run(context.Background())
	if runErr != nil && !errors.Is(runErr, scheduler.ErrInfeasible) && !errors.Is(runErr, scheduler.ErrNoSolution) {
		t.Fatalf("scenario %s: %v", sc.Name, runErr)
	}
	if err := sink.RecordSolve(coremetrics.SolveEvent{
		RunID:     res.RunID,
		Status:    res.Status.String(),
		Objective: res.Objective,
		Trains:    len(sc.Trains),
		Tracks:    len(sc.Tracks),
		Elapsed:   res.Elapsed,
		Time:      time.Now(),
	}); err != nil {
		t.Errorf("record solve: %v", err)
	}
	if n := countRuns(t, reg, sc.Expected.Status); n != 1 {
		t.Errorf("scenario %s: %v runs recorded with status %s", sc.Name, n, sc.Expected.Status)
	}

	exp := sc.Expected
	if got := res.Status.String(); got != exp.Status {
		t.Fatalf("scenario %s: status %s, want %s", sc.Name, got, exp.Status)
	}
	if !res.Published() {
		if res.Trains != nil {
			t.Errorf("scenario %s: unsolved run carries a schedule", sc.Name)
		}
		return
	}
	checkSchedule(t, sc, s, res)
	if exp.Objective != nil && res.Objective != *exp.Objective {
		t.Errorf("scenario %s: objective %d, want %d", sc.Name, res.Objective, *exp.Objective)
	}
	if exp.LastClearance != "" && res.LastClearanceClock != exp.LastClearance {
		t.Errorf("scenario %s: last clearance %s, want %s", sc.Name, res.LastClearanceClock, exp.LastClearance)
	}
	if exp.LastClearanceDay != nil && res.LastClearanceDay != *exp.LastClearanceDay {
		t.Errorf("scenario %s: last clearance day %d, want %d", sc.Name, res.LastClearanceDay, *exp.LastClearanceDay)
	}
	byID := make(map[string]model.ScheduledTrain, len(res.Trains))
	for _, st := range res.Trains {
		byID[st.Train.ID] = st
	}
	for id, want := range exp.Trains {
		st, ok := byID[id]
		if !ok {
			t.Errorf("scenario %s: train %s not scheduled", sc.Name, id)
			continue
		}
		if want.Track != 0 && st.Track != want.Track {
			t.Errorf("scenario %s: train %s on track %d, want %d", sc.Name, id, st.Track, want.Track)
		}
		if want.Entry != "" && st.EntryClock != want.Entry {
			t.Errorf("scenario %s: train %s enters %s, want %s", sc.Name, id, st.EntryClock, want.Entry)
		}
		if want.Exit != "" && st.ExitClock != want.Exit {
			t.Errorf("scenario %s: train %s exits %s, want %s", sc.Name, id, st.ExitClock, want.Exit)
		}
	}
	if exp.DistinctTracks {
		seen := map[int]string{}
		for _, st := range res.Trains {
			if other, dup := seen[st.Track]; dup {
				t.Errorf("scenario %s: trains %s and %s share track %d", sc.Name, other, st.Train.ID, st.Track)
			}
			seen[st.Track] = st.Train.ID
		}
	}
}

// checkSchedule verifies release, duration and per-track exclusivity.
func checkSchedule(t *testing.T, sc *Scenario, s *scheduler.Scheduler, res scheduler.Result) {
	t.Helper()
	m, err := s.Model()
	if err != nil {
		t.Fatalf("scenario %s: model: %v", sc.Name, err)
	}
	a := scheduler.Assignment{
		Track: make([]int, len(res.Trains)),
		Start: make([]int, len(res.Trains)),
		End:   make([]int, len(res.Trains)),
	}
	for i, st := range res.Trains {
		a.Track[i] = st.Track - 1
		a.Start[i] = st.Entry
		a.End[i] = st.Exit
	}
	if err := m.Check(a); err != nil {
		t.Errorf("scenario %s: %v", sc.Name, err)
	}
}

func countRuns(t *testing.T, g prometheus.Gatherer, status string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "sectionsched_solve_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

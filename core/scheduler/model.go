package scheduler

import (
	"fmt"

	"github.com/kilianp07/sectionsched/core/model"
	"github.com/kilianp07/sectionsched/core/solver"
)

// Model is the constraint model of one run. For every train t it holds the
// domain of start_t and end_t, [Releases[t], Horizon] and [0, Horizon], and
// the weight of end_t in the objective. Track k is shared by all trains and
// takes Durations[k] minutes.
//
// Constraints, verified by Check:
//
//	(a) start_t >= release_t
//	(b) exactly one track per train
//	(c) end_t = start_t + duration(track_t)
//	(d) no slack: end_t is fixed by the chosen track only
//	(e) for trains sharing a track, [start, end) intervals do not overlap
type Model struct {
	Releases  []int
	Weights   []int
	Durations []int
	Horizon   int
	// Clamped lists the trains whose weight was raised to 1.
	Clamped []int
}

// Assignment is a full valuation of the model, indexed by train. Track is
// 0-based.
type Assignment struct {
	Track []int
	Start []int
	End   []int
}

// BuildModel derives durations, releases, weights and the horizon. Inputs are
// expected to be validated; malformed arrival times still fail here.
func BuildModel(trains []model.Train, tracks model.Catalog, buffer int) (Model, error) {
	m := Model{
		Releases:  make([]int, len(trains)),
		Weights:   make([]int, len(trains)),
		Durations: tracks.Durations(),
	}
	for i, t := range trains {
		r, err := t.Release()
		if err != nil {
			return Model{}, &InputError{Kind: "train", Index: i, Err: err}
		}
		m.Releases[i] = r
		m.Weights[i] = Weight(t.Priority)
		if t.Priority > MaxWeight {
			m.Clamped = append(m.Clamped, i)
		}
	}
	m.Horizon = Horizon(m.Releases, m.Durations, buffer)
	return m, nil
}

// Problem converts the model to the solver's numeric form.
func (m Model) Problem() solver.Problem {
	return solver.Problem{
		Release:  m.Releases,
		Weight:   m.Weights,
		Duration: m.Durations,
		Horizon:  m.Horizon,
	}
}

// Check verifies that a satisfies every constraint of the model.
func (m Model) Check(a Assignment) error {
	n := len(m.Releases)
	if len(a.Track) != n || len(a.Start) != n || len(a.End) != n {
		return fmt.Errorf("assignment covers %d/%d/%d of %d trains", len(a.Track), len(a.Start), len(a.End), n)
	}
	byTrack := make([][]int, len(m.Durations))
	for t := 0; t < n; t++ {
		k := a.Track[t]
		if k < 0 || k >= len(m.Durations) {
			return fmt.Errorf("train %d: track %d does not exist", t+1, k+1)
		}
		if a.Start[t] < m.Releases[t] {
			return fmt.Errorf("train %d: entry %d before release %d", t+1, a.Start[t], m.Releases[t])
		}
		if a.End[t] != a.Start[t]+m.Durations[k] {
			return fmt.Errorf("train %d: exit %d != entry %d + duration %d", t+1, a.End[t], a.Start[t], m.Durations[k])
		}
		if a.Start[t] < 0 || a.End[t] > m.Horizon {
			return fmt.Errorf("train %d: [%d, %d) outside horizon %d", t+1, a.Start[t], a.End[t], m.Horizon)
		}
		for _, o := range byTrack[k] {
			if a.Start[t] < a.End[o] && a.Start[o] < a.End[t] {
				return fmt.Errorf("trains %d and %d overlap on track %d", o+1, t+1, k+1)
			}
		}
		byTrack[k] = append(byTrack[k], t)
	}
	return nil
}

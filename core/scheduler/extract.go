package scheduler

import (
	"fmt"

	"github.com/kilianp07/sectionsched/core/clock"
	"github.com/kilianp07/sectionsched/core/model"
	"github.com/kilianp07/sectionsched/core/solver"
)

// Extract projects a solved assignment onto the train records. It refuses
// solutions without a usable schedule so that nothing partial is published.
func Extract(m Model, trains []model.Train, sol solver.Solution) (Result, error) {
	if !sol.Status.HasSolution() {
		return Result{}, fmt.Errorf("extract: solver status %s carries no schedule", sol.Status)
	}
	a := Assignment{Track: sol.Track, Start: sol.Start, End: sol.End}
	if err := m.Check(a); err != nil {
		return Result{}, fmt.Errorf("extract: %w", err)
	}
	res := Result{
		Status:    sol.Status,
		Trains:    make([]model.ScheduledTrain, len(trains)),
		Objective: m.Objective(sol.End),
		Horizon:   m.Horizon,
		Nodes:     sol.Nodes,
		Elapsed:   sol.Elapsed,
	}
	last := 0
	for i, t := range trains {
		st := model.ScheduledTrain{
			Train: t,
			Track: sol.Track[i] + 1,
			Entry: sol.Start[i],
			Exit:  sol.End[i],
		}
		st.EntryDay, st.EntryClock = clock.Split(st.Entry)
		st.ExitDay, st.ExitClock = clock.Split(st.Exit)
		res.Trains[i] = st
		last = max(last, st.Exit)
	}
	res.LastClearance = last
	res.LastClearanceDay, res.LastClearanceClock = clock.Split(last)
	return res, nil
}

package scheduler

import (
	"time"

	"github.com/kilianp07/sectionsched/core/model"
	"github.com/kilianp07/sectionsched/core/solver"
)

// Result is the outcome of one run. Trains is only populated when
// Status.HasSolution() is true.
type Result struct {
	RunID  string
	Status solver.Status
	Trains []model.ScheduledTrain

	LastClearance      int
	LastClearanceClock string
	LastClearanceDay   int

	Objective int64
	Horizon   int
	Nodes     int64
	Elapsed   time.Duration
	Tracks    int
}

// Published reports whether the result may be written out.
func (r Result) Published() bool {
	return r.Status.HasSolution() && r.Trains != nil
}

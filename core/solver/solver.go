package solver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeLimit is the search budget applied when Options.TimeLimit is zero.
const DefaultTimeLimit = 10 * time.Second

// Status describes the outcome of a search.
type Status int

const (
	StatusUnknown Status = iota
	// StatusOptimal means the search space was exhausted; the schedule is proven best.
	StatusOptimal
	// StatusFeasible means the budget expired with a valid but unproven schedule.
	StatusFeasible
	// StatusInfeasible means the search space was exhausted without any valid schedule.
	StatusInfeasible
	// StatusTimeout means the budget expired before any valid schedule was found.
	StatusTimeout
)

// String returns the status name used in logs and output records.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusTimeout:
		return "TIMEOUT_NO_SOLUTION"
	default:
		return "UNKNOWN"
	}
}

// HasSolution reports whether the status carries a usable schedule.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Problem is the numeric form of a scheduling instance. Trains and tracks are
// identified by their slice index.
type Problem struct {
	Release  []int // per train, earliest start minute
	Weight   []int // per train, objective weight, >= 1
	Duration []int // per track, traversal minutes, >= 0
	Horizon  int   // upper bound for every start and end
}

// Validate checks the problem dimensions and value ranges.
func (p Problem) Validate() error {
	if len(p.Release) != len(p.Weight) {
		return fmt.Errorf("release/weight length mismatch: %d != %d", len(p.Release), len(p.Weight))
	}
	if p.Horizon < 0 {
		return fmt.Errorf("negative horizon %d", p.Horizon)
	}
	for j, r := range p.Release {
		if r < 0 {
			return fmt.Errorf("train %d: negative release %d", j, r)
		}
		if p.Weight[j] < 1 {
			return fmt.Errorf("train %d: weight must be >= 1, got %d", j, p.Weight[j])
		}
	}
	for k, d := range p.Duration {
		if d < 0 {
			return fmt.Errorf("track %d: negative duration %d", k, d)
		}
	}
	return nil
}

// Objective returns the weighted completion time of the given end times.
func (p Problem) Objective(end []int) int64 {
	var sum int64
	for j, e := range end {
		sum += int64(p.Weight[j]) * int64(e)
	}
	return sum
}

// Improvement is emitted every time the shared incumbent gets better.
type Improvement struct {
	Objective int64
	Strategy  string
	Elapsed   time.Duration
}

// Options tune a search.
type Options struct {
	// TimeLimit is a hard wall-clock limit. Zero means DefaultTimeLimit.
	TimeLimit time.Duration
	// Workers is the number of concurrent branching strategies. Zero picks
	// min(GOMAXPROCS, number of strategies).
	Workers int
	// OnImprove, when set, is called synchronously for each new incumbent.
	OnImprove func(Improvement)
}

func (o Options) withDefaults() Options {
	if o.TimeLimit <= 0 {
		o.TimeLimit = DefaultTimeLimit
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Workers > len(strategies) {
		o.Workers = len(strategies)
	}
	return o
}

// Solution is the outcome of Solve. Track, Start and End are indexed by train
// and only populated when Status.HasSolution() is true.
type Solution struct {
	Status    Status
	Track     []int
	Start     []int
	End       []int
	Objective int64
	Strategy  string // strategy that found the returned schedule
	Nodes     int64
	Elapsed   time.Duration
}

var errProven = errors.New("search space exhausted")

// Solve searches for an assignment minimizing the weighted completion time.
// An error is returned only for malformed problems; search outcomes are
// reported through Solution.Status.
func Solve(ctx context.Context, p Problem, opts Options) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}
	opts = opts.withDefaults()
	began := time.Now()

	if len(p.Release) == 0 {
		return Solution{Status: StatusOptimal, Track: []int{}, Start: []int{}, End: []int{}}, nil
	}
	if len(p.Duration) == 0 {
		return Solution{Status: StatusInfeasible, Elapsed: time.Since(began)}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeLimit)
	defer cancel()

	inc := newIncumbent(began, opts.OnImprove)
	for _, rule := range greedyRules {
		if track, start, ok := greedy(p, rule.pick); ok {
			inc.offer(p.Objective(ends(p, track, start)), track, start, rule.name)
		}
	}

	var nodes atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, strat := range strategies[:opts.Workers] {
		w := newWorker(gctx, p, strat, inc)
		g.Go(func() error {
			err := w.search()
			nodes.Add(w.nodes)
			if err == nil {
				return errProven
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		})
	}
	err := g.Wait()
	proven := errors.Is(err, errProven)
	if err != nil && !proven {
		return Solution{}, err
	}

	sol := Solution{Nodes: nodes.Load(), Elapsed: time.Since(began)}
	cost, track, start, strategy, ok := inc.snapshot()
	switch {
	case ok && proven:
		sol.Status = StatusOptimal
	case ok:
		sol.Status = StatusFeasible
	case proven:
		sol.Status = StatusInfeasible
	default:
		sol.Status = StatusTimeout
	}
	if ok {
		sol.Track = track
		sol.Start = start
		sol.End = ends(p, track, start)
		sol.Objective = cost
		sol.Strategy = strategy
	}
	return sol, nil
}

func ends(p Problem, track, start []int) []int {
	out := make([]int, len(start))
	for j := range start {
		out[j] = start[j] + p.Duration[track[j]]
	}
	return out
}

package solver

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// incumbent is the best schedule found so far, shared by all workers.
// cost is readable without the lock so workers can prune cheaply.
type incumbent struct {
	cost atomic.Int64

	mu        sync.Mutex
	track     []int
	start     []int
	strategy  string
	began     time.Time
	onImprove func(Improvement)
}

func newIncumbent(began time.Time, onImprove func(Improvement)) *incumbent {
	in := &incumbent{began: began, onImprove: onImprove}
	in.cost.Store(math.MaxInt64)
	return in
}

func (in *incumbent) bound() int64 { return in.cost.Load() }

// offer installs the schedule when it is strictly cheaper, or equally cheap
// and lexicographically smaller in (track, start) train order. onImprove runs
// under the lock so callbacks observe strictly decreasing objectives.
func (in *incumbent) offer(cost int64, track, start []int, strategy string) bool {
	if cost > in.cost.Load() {
		return false
	}
	in.mu.Lock()
	cur := in.cost.Load()
	if cost > cur || (cost == cur && !lexLess(track, start, in.track, in.start)) {
		in.mu.Unlock()
		return false
	}
	in.track = append(in.track[:0], track...)
	in.start = append(in.start[:0], start...)
	in.strategy = strategy
	in.cost.Store(cost)
	if in.onImprove != nil && cost < cur {
		in.onImprove(Improvement{Objective: cost, Strategy: strategy, Elapsed: time.Since(in.began)})
	}
	in.mu.Unlock()
	return true
}

func (in *incumbent) snapshot() (int64, []int, []int, string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.track == nil {
		return 0, nil, nil, "", false
	}
	track := append([]int(nil), in.track...)
	start := append([]int(nil), in.start...)
	return in.cost.Load(), track, start, in.strategy, true
}

func lexLess(trackA, startA, trackB, startB []int) bool {
	for j := range trackA {
		if trackA[j] != trackB[j] {
			return trackA[j] < trackB[j]
		}
		if startA[j] != startB[j] {
			return startA[j] < startB[j]
		}
	}
	return false
}

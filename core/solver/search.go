package solver

import (
	"context"
	"math"
	"slices"
)

// checkMask controls how often a worker polls its context.
const checkMask = 1<<10 - 1

type strategy struct {
	name  string
	order pickRule
}

var strategies = []strategy{
	{name: "bnb-earliest-finish", order: byEarliestFinish},
	{name: "bnb-priority", order: byPriority},
	{name: "bnb-earliest-start", order: byEarliestStart},
}

// worker runs one depth-first branch and bound. Placements are generated in
// non-decreasing (start, track, train) order, so every semi-active schedule
// is produced exactly once up to the symmetry rules below.
type worker struct {
	ctx   context.Context
	p     Problem
	strat strategy
	inc   *incumbent

	n, m   int
	avail  []int
	used   []bool
	placed []bool
	track  []int
	start  []int
	cost   int64
	nodes  int64
	cands  [][]candidate

	// twinJob[j] is the closest lower-index train with the same release and
	// weight, -1 if none. Such trains are placed in index order.
	twinJob []int
	// twinTrack[k] is the closest lower-index track with the same duration,
	// -1 if none. An unused track is skipped while its twin is unused too.
	twinTrack []int
	// byWeight lists trains by decreasing weight for the slot bound.
	byWeight []int
	slotCnt  []int
}

func newWorker(ctx context.Context, p Problem, strat strategy, inc *incumbent) *worker {
	n, m := len(p.Release), len(p.Duration)
	w := &worker{
		ctx: ctx, p: p, strat: strat, inc: inc,
		n: n, m: m,
		avail:     make([]int, m),
		used:      make([]bool, m),
		placed:    make([]bool, n),
		track:     make([]int, n),
		start:     make([]int, n),
		cands:     make([][]candidate, n),
		twinJob:   make([]int, n),
		twinTrack: make([]int, m),
		byWeight:  make([]int, n),
		slotCnt:   make([]int, m),
	}
	for j := range w.byWeight {
		w.byWeight[j] = j
	}
	slices.SortStableFunc(w.byWeight, func(a, b int) int { return p.Weight[b] - p.Weight[a] })
	for j := 0; j < n; j++ {
		w.twinJob[j] = -1
		for i := j - 1; i >= 0; i-- {
			if p.Release[i] == p.Release[j] && p.Weight[i] == p.Weight[j] {
				w.twinJob[j] = i
				break
			}
		}
	}
	for k := 0; k < m; k++ {
		w.twinTrack[k] = -1
		for i := k - 1; i >= 0; i-- {
			if p.Duration[i] == p.Duration[k] {
				w.twinTrack[k] = i
				break
			}
		}
	}
	return w
}

// search explores the whole tree. It returns nil once the tree is exhausted
// and the context error when interrupted.
func (w *worker) search() error {
	return w.dfs(0, -1, -1, -1)
}

func (w *worker) dfs(depth, lastStart, lastTrack, lastJob int) error {
	w.nodes++
	if w.nodes&checkMask == 1 {
		if err := w.ctx.Err(); err != nil {
			return err
		}
	}
	if depth == w.n {
		w.inc.offer(w.cost, w.track, w.start, w.strat.name)
		return nil
	}
	lb, ok := w.lowerBound(lastStart)
	if !ok || lb >= w.inc.bound() {
		return nil
	}

	cands := w.expand(depth, lastStart, lastTrack, lastJob)
	for _, c := range cands {
		prevAvail, prevUsed := w.avail[c.track], w.used[c.track]
		w.placed[c.job] = true
		w.track[c.job] = c.track
		w.start[c.job] = c.start
		w.avail[c.track] = c.end
		w.used[c.track] = true
		w.cost += int64(c.weight) * int64(c.end)

		err := w.dfs(depth+1, c.start, c.track, c.job)

		w.cost -= int64(c.weight) * int64(c.end)
		w.used[c.track] = prevUsed
		w.avail[c.track] = prevAvail
		w.placed[c.job] = false
		if err != nil {
			return err
		}
	}
	return nil
}

// lowerBound returns the committed cost plus the larger of two relaxations
// for the unplaced trains:
//
//   - every train finishes at its own earliest possible completion, ignoring
//     the others;
//   - trains ignore their releases but queue: track k can complete its i-th
//     remaining train no earlier than a_k + i*d_k, and the heaviest trains
//     take the earliest of those slots.
//
// ok is false when the remaining trains cannot all finish within the horizon.
func (w *worker) lowerBound(lastStart int) (int64, bool) {
	var own int64
	remaining := 0
	minRelease := math.MaxInt
	for j := 0; j < w.n; j++ {
		if w.placed[j] {
			continue
		}
		remaining++
		minRelease = min(minRelease, w.p.Release[j])
		best := math.MaxInt
		for k := 0; k < w.m; k++ {
			e := max(w.p.Release[j], w.avail[k], lastStart) + w.p.Duration[k]
			if e <= w.p.Horizon && e < best {
				best = e
			}
		}
		if best == math.MaxInt {
			return 0, false
		}
		own += int64(w.p.Weight[j]) * int64(best)
	}
	if remaining == 0 {
		return w.cost, true
	}

	var queued int64
	for k := range w.slotCnt {
		w.slotCnt[k] = 0
	}
	for _, j := range w.byWeight {
		if w.placed[j] {
			continue
		}
		slot, at := math.MaxInt, -1
		for k := 0; k < w.m; k++ {
			c := max(w.avail[k], lastStart, minRelease) + (w.slotCnt[k]+1)*w.p.Duration[k]
			if c < slot {
				slot, at = c, k
			}
		}
		if slot > w.p.Horizon {
			return 0, false
		}
		w.slotCnt[at]++
		queued += int64(w.p.Weight[j]) * int64(slot)
	}
	return w.cost + max(own, queued), true
}

// expand lists the placements allowed after (lastStart, lastTrack, lastJob),
// ordered by the worker strategy.
func (w *worker) expand(depth, lastStart, lastTrack, lastJob int) []candidate {
	cands := w.cands[depth][:0]
	for j := 0; j < w.n; j++ {
		if w.placed[j] {
			continue
		}
		if t := w.twinJob[j]; t >= 0 && !w.placed[t] {
			continue
		}
		for k := 0; k < w.m; k++ {
			if t := w.twinTrack[k]; t >= 0 && !w.used[k] && !w.used[t] {
				continue
			}
			s := max(w.p.Release[j], w.avail[k])
			if s < lastStart {
				continue
			}
			if s == lastStart && (k < lastTrack || (k == lastTrack && j < lastJob)) {
				continue
			}
			e := s + w.p.Duration[k]
			if e > w.p.Horizon {
				continue
			}
			if s > w.avail[k] && w.gapFits(j, k, s) {
				continue
			}
			cands = append(cands, candidate{job: j, track: k, start: s, end: e, weight: w.p.Weight[j]})
		}
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		switch {
		case w.strat.order(a, b):
			return -1
		case w.strat.order(b, a):
			return 1
		default:
			return 0
		}
	})
	w.cands[depth] = cands
	return cands
}

// gapFits reports whether another unplaced train could cross track k entirely
// inside the idle gap left before s. Such a placement is dominated: moving that
// train into the gap finishes it strictly earlier and delays nobody.
func (w *worker) gapFits(job, k, s int) bool {
	for i := 0; i < w.n; i++ {
		if i == job || w.placed[i] {
			continue
		}
		if max(w.avail[k], w.p.Release[i])+w.p.Duration[k] < s {
			return true
		}
	}
	return false
}

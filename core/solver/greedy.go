package solver

// candidate is one (train, track) placement.
type candidate struct {
	job, track int
	start, end int
	weight     int
}

// pickRule reports whether a should be placed before b by a greedy pass.
type pickRule func(a, b candidate) bool

type greedyRule struct {
	name string
	pick pickRule
}

var greedyRules = []greedyRule{
	{name: "greedy-earliest-finish", pick: byEarliestFinish},
	{name: "greedy-priority", pick: byPriority},
	{name: "greedy-weighted-finish", pick: byWeightedFinish},
}

func byEarliestFinish(a, b candidate) bool {
	if a.end != b.end {
		return a.end < b.end
	}
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	return tieBreak(a, b)
}

func byPriority(a, b candidate) bool {
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	if a.end != b.end {
		return a.end < b.end
	}
	return tieBreak(a, b)
}

func byWeightedFinish(a, b candidate) bool {
	// a.end/a.weight < b.end/b.weight without division.
	l, r := int64(a.end)*int64(b.weight), int64(b.end)*int64(a.weight)
	if l != r {
		return l < r
	}
	return byEarliestFinish(a, b)
}

func byEarliestStart(a, b candidate) bool {
	if a.start != b.start {
		return a.start < b.start
	}
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	if a.end != b.end {
		return a.end < b.end
	}
	return tieBreak(a, b)
}

// tieBreak orders by lowest track id, then lowest train id.
func tieBreak(a, b candidate) bool {
	if a.track != b.track {
		return a.track < b.track
	}
	return a.job < b.job
}

// greedy builds a list schedule: at every step the best (train, track)
// placement according to pick is committed at its earliest start. It fails
// when a placement would cross the horizon.
func greedy(p Problem, pick pickRule) ([]int, []int, bool) {
	n, m := len(p.Release), len(p.Duration)
	avail := make([]int, m)
	placed := make([]bool, n)
	track := make([]int, n)
	start := make([]int, n)
	for step := 0; step < n; step++ {
		var best candidate
		found := false
		for j := 0; j < n; j++ {
			if placed[j] {
				continue
			}
			for k := 0; k < m; k++ {
				s := max(p.Release[j], avail[k])
				c := candidate{job: j, track: k, start: s, end: s + p.Duration[k], weight: p.Weight[j]}
				if !found || pick(c, best) {
					best, found = c, true
				}
			}
		}
		if !found || best.end > p.Horizon {
			return nil, nil, false
		}
		placed[best.job] = true
		track[best.job] = best.track
		start[best.job] = best.start
		avail[best.track] = best.end
	}
	return track, start, true
}

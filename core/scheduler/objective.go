package scheduler

// MaxWeight is the weight of a priority-1 train.
const MaxWeight = 9

// Weight maps a priority (1 is most important) to its objective weight,
// 10 - priority clamped to at least 1 so that low-importance trains never
// get a zero or negative weight.
func Weight(priority int) int {
	return max(1, MaxWeight+1-priority)
}

// Objective is the priority-weighted sum of section exit minutes.
func (m Model) Objective(end []int) int64 {
	var sum int64
	for t, e := range end {
		sum += int64(m.Weights[t]) * int64(e)
	}
	return sum
}

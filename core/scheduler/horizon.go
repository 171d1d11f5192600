package scheduler

// Horizon bounds every entry and exit minute: the latest release plus the
// longest traversal plus a queuing buffer. Empty inputs contribute zero.
func Horizon(releases, durations []int, buffer int) int {
	latest, longest := 0, 0
	for _, r := range releases {
		latest = max(latest, r)
	}
	for _, d := range durations {
		longest = max(longest, d)
	}
	return latest + longest + buffer
}

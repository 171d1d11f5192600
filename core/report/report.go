// Package report summarizes a published schedule: waiting and exit times per
// priority class and occupancy per track.
package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/sectionsched/core/model"
)

// PriorityStats aggregates the trains sharing one priority.
type PriorityStats struct {
	Priority   int     `json:"priority"`
	Trains     int     `json:"trains"`
	MeanWait   float64 `json:"mean_wait_minutes"`
	StdDevWait float64 `json:"stddev_wait_minutes"`
	MaxWait    float64 `json:"max_wait_minutes"`
	MeanExit   float64 `json:"mean_exit_minute"`
}

// TrackStats describes the use of one track. Track is 1-based.
type TrackStats struct {
	Track       int     `json:"track"`
	Trains      int     `json:"trains"`
	BusyMinutes int     `json:"busy_minutes"`
	Utilization float64 `json:"utilization"`
}

// Summary is the full report of a schedule.
type Summary struct {
	Priorities []PriorityStats `json:"priorities"`
	Tracks     []TrackStats    `json:"tracks"`
	MeanWait   float64         `json:"mean_wait_minutes"`
	// Span is the time between the first entry and the last exit.
	Span int `json:"span_minutes"`
}

// Summarize computes the report. trackCount sizes the track table so that
// unused tracks appear with zero load. Trains whose arrival cannot be parsed
// count as having waited zero minutes.
func Summarize(trains []model.ScheduledTrain, trackCount int) Summary {
	var sum Summary
	if len(trains) == 0 {
		return sum
	}
	waits := map[int][]float64{}
	exits := map[int][]float64{}
	var all []float64
	first, last := trains[0].Entry, trains[0].Exit
	tracks := make([]TrackStats, max(trackCount, maxTrack(trains)))
	for i := range tracks {
		tracks[i].Track = i + 1
	}
	for _, st := range trains {
		wait := 0.0
		if rel, err := st.Train.Release(); err == nil {
			wait = float64(st.Entry - rel)
		}
		p := st.Train.Priority
		waits[p] = append(waits[p], wait)
		exits[p] = append(exits[p], float64(st.Exit))
		all = append(all, wait)
		first = min(first, st.Entry)
		last = max(last, st.Exit)
		if st.Track >= 1 {
			ts := &tracks[st.Track-1]
			ts.Trains++
			ts.BusyMinutes += st.Exit - st.Entry
		}
	}
	sum.Span = last - first
	sum.MeanWait = stat.Mean(all, nil)
	for p, w := range waits {
		ps := PriorityStats{
			Priority: p,
			Trains:   len(w),
			MeanWait: stat.Mean(w, nil),
			MeanExit: stat.Mean(exits[p], nil),
		}
		if len(w) > 1 {
			ps.StdDevWait = stat.StdDev(w, nil)
		}
		for _, v := range w {
			ps.MaxWait = max(ps.MaxWait, v)
		}
		sum.Priorities = append(sum.Priorities, ps)
	}
	sort.Slice(sum.Priorities, func(i, j int) bool { return sum.Priorities[i].Priority < sum.Priorities[j].Priority })
	for i := range tracks {
		if sum.Span > 0 {
			tracks[i].Utilization = float64(tracks[i].BusyMinutes) / float64(sum.Span)
		}
	}
	sum.Tracks = tracks
	return sum
}

func maxTrack(trains []model.ScheduledTrain) int {
	n := 0
	for _, st := range trains {
		n = max(n, st.Track)
	}
	return n
}

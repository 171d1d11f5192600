package model

import (
	"fmt"
	"math"

	"github.com/kilianp07/sectionsched/core/clock"
)

// MaxTrackMinutes caps a single traversal at one week.
const MaxTrackMinutes = 7 * clock.MinutesPerDay

// Track is one lane across the shared section. Its traversal duration depends
// on the track only, never on the train using it.
type Track struct {
	LengthKM  float64 `json:"length_km" yaml:"length_km"`
	SpeedKMPH float64 `json:"speed_kmph" yaml:"speed_kmph"`
}

// Validate checks that the track yields a finite, non-negative duration no
// longer than MaxTrackMinutes.
func (t Track) Validate() error {
	if math.IsNaN(t.LengthKM) || math.IsInf(t.LengthKM, 0) || t.LengthKM < 0 {
		return fmt.Errorf("length_km must be a non-negative number, got %v", t.LengthKM)
	}
	if math.IsNaN(t.SpeedKMPH) || math.IsInf(t.SpeedKMPH, 0) || t.SpeedKMPH <= 0 {
		return fmt.Errorf("speed_kmph must be positive, got %v", t.SpeedKMPH)
	}
	if m := t.LengthKM / t.SpeedKMPH * 60; m > MaxTrackMinutes {
		return fmt.Errorf("traversal of %.6g min exceeds %d min (length_km %v, speed_kmph %v)", m, MaxTrackMinutes, t.LengthKM, t.SpeedKMPH)
	}
	return nil
}

// Duration returns the traversal time in whole minutes, truncated.
func (t Track) Duration() int {
	return int(math.Floor(t.LengthKM / t.SpeedKMPH * 60))
}

// Catalog is the ordered set of section tracks. Index i is track i+1 in
// reports.
type Catalog []Track

// Validate checks every track and reports the first invalid one by number.
func (c Catalog) Validate() error {
	for i, t := range c {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("track %d: %w", i+1, err)
		}
	}
	return nil
}

// Durations returns the traversal duration of every track.
func (c Catalog) Durations() []int {
	out := make([]int, len(c))
	for i, t := range c {
		out[i] = t.Duration()
	}
	return out
}

// MaxDuration returns the longest traversal duration, 0 for an empty catalog.
func (c Catalog) MaxDuration() int {
	longest := 0
	for _, t := range c {
		if d := t.Duration(); d > longest {
			longest = d
		}
	}
	return longest
}

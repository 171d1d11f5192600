package model

// ScheduledTrain is a train with its engine-assigned crossing.
type ScheduledTrain struct {
	Train Train
	// Track is 1-based.
	Track      int
	Entry      int
	Exit       int
	EntryClock string
	ExitClock  string
	EntryDay   int
	ExitDay    int
}

// Record merges the schedule into a copy of the input attributes.
func (s ScheduledTrain) Record() map[string]any {
	out := make(map[string]any, len(s.Train.Attributes)+5)
	for k, v := range s.Train.Attributes {
		out[k] = v
	}
	out["section_entry_time"] = s.EntryClock
	out["section_exit_time"] = s.ExitClock
	out["section_entry_day"] = s.EntryDay
	out["section_exit_day"] = s.ExitDay
	out["assigned_track"] = s.Track
	return out
}

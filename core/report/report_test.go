package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sectionsched/core/model"
)

func scheduled(priority int, arrival string, track, entry, exit int) model.ScheduledTrain {
	return model.ScheduledTrain{
		Train: model.Train{Name: arrival, Priority: priority, Arrival: arrival},
		Track: track, Entry: entry, Exit: exit,
	}
}

func TestSummarize(t *testing.T) {
	trains := []model.ScheduledTrain{
		scheduled(1, "08:00", 1, 480, 500),
		scheduled(5, "08:05", 1, 500, 520),
		scheduled(5, "08:00", 2, 480, 500),
	}
	sum := Summarize(trains, 3)

	require.Len(t, sum.Priorities, 2)
	assert.Equal(t, 1, sum.Priorities[0].Priority)
	assert.Equal(t, 0.0, sum.Priorities[0].MeanWait)
	assert.Equal(t, 500.0, sum.Priorities[0].MeanExit)
	assert.Equal(t, 5, sum.Priorities[1].Priority)
	assert.Equal(t, 2, sum.Priorities[1].Trains)
	assert.InDelta(t, 7.5, sum.Priorities[1].MeanWait, 1e-9)
	assert.Equal(t, 15.0, sum.Priorities[1].MaxWait)
	assert.InDelta(t, 510.0, sum.Priorities[1].MeanExit, 1e-9)
	assert.Greater(t, sum.Priorities[1].StdDevWait, 0.0)

	assert.Equal(t, 40, sum.Span)
	assert.InDelta(t, 5.0, sum.MeanWait, 1e-9)
	require.Len(t, sum.Tracks, 3)
	assert.Equal(t, 2, sum.Tracks[0].Trains)
	assert.Equal(t, 40, sum.Tracks[0].BusyMinutes)
	assert.InDelta(t, 1.0, sum.Tracks[0].Utilization, 1e-9)
	assert.InDelta(t, 0.5, sum.Tracks[1].Utilization, 1e-9)
	assert.Equal(t, 0, sum.Tracks[2].Trains)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil, 2)
	assert.Empty(t, sum.Priorities)
	assert.Empty(t, sum.Tracks)
}

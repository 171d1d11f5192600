package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackDurationTruncates(t *testing.T) {
	assert.Equal(t, 20, Track{LengthKM: 20, SpeedKMPH: 60}.Duration())
	assert.Equal(t, 7, Track{LengthKM: 5, SpeedKMPH: 40}.Duration()) // 7.5 min
	assert.Equal(t, 0, Track{LengthKM: 0.5, SpeedKMPH: 100}.Duration())
}

func TestTrackValidate(t *testing.T) {
	assert.NoError(t, Track{LengthKM: 1, SpeedKMPH: 1}.Validate())
	assert.Error(t, Track{LengthKM: 1, SpeedKMPH: 0}.Validate())
	assert.Error(t, Track{LengthKM: -1, SpeedKMPH: 10}.Validate())
	assert.Error(t, Track{LengthKM: math.NaN(), SpeedKMPH: 10}.Validate())
	assert.Error(t, Track{LengthKM: 1, SpeedKMPH: math.Inf(1)}.Validate())
}

func TestTrackValidateBoundsDuration(t *testing.T) {
	assert.NoError(t, Track{LengthKM: MaxTrackMinutes, SpeedKMPH: 60}.Validate())
	assert.Error(t, Track{LengthKM: MaxTrackMinutes + 1, SpeedKMPH: 60}.Validate())

	err := Track{LengthKM: 1e300, SpeedKMPH: 1e-300}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
	assert.Error(t, Track{LengthKM: math.MaxFloat64, SpeedKMPH: 1}.Validate())
	assert.Error(t, Track{LengthKM: 1, SpeedKMPH: math.SmallestNonzeroFloat64}.Validate())

	err = Catalog{{LengthKM: 1, SpeedKMPH: 60}, {LengthKM: 1e12, SpeedKMPH: 1}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "track 2")
}

func TestCatalog(t *testing.T) {
	c := Catalog{{LengthKM: 10, SpeedKMPH: 60}, {LengthKM: 30, SpeedKMPH: 60}}
	assert.Equal(t, []int{10, 30}, c.Durations())
	assert.Equal(t, 30, c.MaxDuration())
	assert.Equal(t, 0, Catalog{}.MaxDuration())

	c = append(c, Track{LengthKM: 1})
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "track 3")
}

func TestTrainValidate(t *testing.T) {
	tr := Train{Name: "Express", Priority: 1, Arrival: "08:00"}
	require.NoError(t, tr.Validate())
	rel, err := tr.Release()
	require.NoError(t, err)
	assert.Equal(t, 480, rel)

	bad := tr
	bad.Priority = 0
	assert.Error(t, bad.Validate())
	bad = tr
	bad.Arrival = "8h00"
	assert.Error(t, bad.Validate())
	bad = tr
	bad.Name = " "
	assert.Error(t, bad.Validate())
}

func TestRecordKeepsAttributes(t *testing.T) {
	s := ScheduledTrain{
		Train: Train{Attributes: map[string]any{"id": 7, "travel_time": "2h", "assigned_track": "stale"}},
		Track: 2, EntryClock: "08:00 AM", ExitClock: "08:20 AM",
	}
	rec := s.Record()
	assert.Equal(t, 7, rec["id"])
	assert.Equal(t, "2h", rec["travel_time"])
	assert.Equal(t, 2, rec["assigned_track"])
	assert.Equal(t, "stale", s.Train.Attributes["assigned_track"])
}

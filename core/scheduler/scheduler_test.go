package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/sectionsched/core/clock"
	"github.com/kilianp07/sectionsched/core/model"
	"github.com/kilianp07/sectionsched/core/solver"
)

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debugf(string, ...any)         {}
func (l *recordingLogger) Debugw(string, map[string]any) {}
func (l *recordingLogger) Infof(string, ...any)          {}
func (l *recordingLogger) Errorf(string, ...any)         {}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func train(name string, priority int, arrival string) model.Train {
	return model.Train{
		ID:       name,
		Name:     name,
		Priority: priority,
		Arrival:  arrival,
		Attributes: map[string]any{
			"train_name":   name,
			"priority":     priority,
			"arrival_time": arrival,
		},
	}
}

// track returns a track whose traversal takes exactly minutes.
func track(minutes int) model.Track {
	return model.Track{LengthKM: float64(minutes), SpeedKMPH: 60}
}

var testCfg = Config{TimeLimitSeconds: 5}

func run(t *testing.T, trains []model.Train, tracks model.Catalog) Result {
	t.Helper()
	s, err := New(trains, tracks, testCfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Published())
	return res
}

// assertInvariants checks every structural property of a published result.
func assertInvariants(t *testing.T, trains []model.Train, tracks model.Catalog, res Result) {
	t.Helper()
	require.Len(t, res.Trains, len(trains))
	last := 0
	for i, st := range res.Trains {
		rel, err := trains[i].Release()
		require.NoError(t, err)
		require.True(t, st.Track >= 1 && st.Track <= len(tracks), "train %d track %d", i, st.Track)
		assert.GreaterOrEqual(t, st.Entry, rel)
		assert.Equal(t, st.Entry+tracks[st.Track-1].Duration(), st.Exit)
		day, c := clock.Split(st.Entry)
		assert.Equal(t, c, st.EntryClock)
		assert.Equal(t, day, st.EntryDay)
		for j := 0; j < i; j++ {
			o := res.Trains[j]
			if o.Track == st.Track {
				assert.True(t, o.Exit <= st.Entry || st.Exit <= o.Entry, "trains %d and %d overlap", j, i)
			}
		}
		last = max(last, st.Exit)
	}
	assert.Equal(t, last, res.LastClearance)
	assert.Equal(t, clock.ToClock(last), res.LastClearanceClock)
}

func TestScenarioForcedWait(t *testing.T) {
	trains := []model.Train{train("T1", 1, "08:00"), train("T2", 5, "08:05")}
	tracks := model.Catalog{track(20)}
	res := run(t, trains, tracks)
	assertInvariants(t, trains, tracks, res)

	assert.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, "08:00 AM", res.Trains[0].EntryClock)
	assert.Equal(t, "08:20 AM", res.Trains[0].ExitClock)
	assert.Equal(t, "08:20 AM", res.Trains[1].EntryClock)
	assert.Equal(t, "08:40 AM", res.Trains[1].ExitClock)
	assert.Equal(t, "08:40 AM", res.LastClearanceClock)
	assert.Equal(t, int64(9*500+5*520), res.Objective)
}

func TestScenarioParallelTracks(t *testing.T) {
	trains := []model.Train{train("A", 3, "09:00"), train("B", 3, "09:00")}
	tracks := model.Catalog{track(15), track(15)}
	res := run(t, trains, tracks)
	assertInvariants(t, trains, tracks, res)

	assert.Equal(t, "09:00 AM", res.Trains[0].EntryClock)
	assert.Equal(t, "09:00 AM", res.Trains[1].EntryClock)
	assert.ElementsMatch(t, []int{1, 2}, []int{res.Trains[0].Track, res.Trains[1].Track})
	assert.Equal(t, "09:15 AM", res.LastClearanceClock)
}

func TestScenarioNoTracks(t *testing.T) {
	s, err := New([]model.Train{train("A", 1, "10:00")}, nil, testCfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrInfeasible)
	assert.Equal(t, solver.StatusInfeasible, res.Status)
	assert.False(t, res.Published())
	assert.Nil(t, res.Trains)
	assert.Equal(t, clock.NoClearance, res.LastClearanceClock)
	assert.NotEmpty(t, res.RunID)
}

func TestScenarioPriorityOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	var important, minor []float64
	for iter := 0; iter < 15; iter++ {
		trains := make([]model.Train, 10)
		for i := range trains {
			priority := 1 + rng.Intn(9)
			arrival := fmt.Sprintf("07:%02d", rng.Intn(30))
			trains[i] = train(fmt.Sprintf("T%d", i), priority, arrival)
		}
		tracks := model.Catalog{track(20), track(25)}
		res := run(t, trains, tracks)
		assertInvariants(t, trains, tracks, res)
		for _, st := range res.Trains {
			switch {
			case st.Train.Priority <= 3:
				important = append(important, float64(st.Exit))
			case st.Train.Priority >= 7:
				minor = append(minor, float64(st.Exit))
			}
		}
	}
	require.NotEmpty(t, important)
	require.NotEmpty(t, minor)
	assert.Less(t, stat.Mean(important, nil), stat.Mean(minor, nil))
}

// bruteForceObjective enumerates every train order and track vector and
// returns the smallest weighted completion time of the resulting schedules.
func bruteForceObjective(m Model) int64 {
	n := len(m.Releases)
	best := int64(math.MaxInt64)
	order := make([]int, n)
	tracks := make([]int, n)
	used := make([]bool, n)
	var pickTrack func(int)
	var pickOrder func(int)
	pickOrder = func(pos int) {
		if pos == n {
			avail := make([]int, len(m.Durations))
			end := make([]int, n)
			for _, t := range order {
				k := tracks[t]
				s := max(m.Releases[t], avail[k])
				end[t] = s + m.Durations[k]
				avail[k] = end[t]
			}
			if obj := m.Objective(end); obj < best {
				best = obj
			}
			return
		}
		for t := 0; t < n; t++ {
			if used[t] {
				continue
			}
			used[t] = true
			order[pos] = t
			pickOrder(pos + 1)
			used[t] = false
		}
	}
	pickTrack = func(t int) {
		if t == n {
			pickOrder(0)
			return
		}
		for k := range m.Durations {
			tracks[t] = k
			pickTrack(t + 1)
		}
	}
	pickTrack(0)
	return best
}

func TestRunIsOptimalOnSmallInstances(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 25; iter++ {
		n := 2 + rng.Intn(4)
		trains := make([]model.Train, n)
		for i := range trains {
			trains[i] = train(fmt.Sprintf("T%d", i), 1+rng.Intn(12), fmt.Sprintf("1%d:%02d", rng.Intn(2), rng.Intn(60)))
		}
		tracks := model.Catalog{{LengthKM: 7 + float64(rng.Intn(20)), SpeedKMPH: 45}}
		if rng.Intn(2) == 0 {
			tracks = append(tracks, model.Track{LengthKM: 12, SpeedKMPH: 80})
		}
		s, err := New(trains, tracks, testCfg)
		require.NoError(t, err)
		res, err := s.Run(context.Background())
		require.NoError(t, err)
		assertInvariants(t, trains, tracks, res)
		m, err := s.Model()
		require.NoError(t, err)
		assert.Equal(t, bruteForceObjective(m), res.Objective, "iter %d", iter)
	}
}

func TestRunKeepsInputAttributes(t *testing.T) {
	tr := train("Rajdhani", 1, "06:30")
	tr.Attributes["travel_time"] = "16h"
	tr.Attributes["total_distance"] = 1384.5
	tr.Attributes["days_of_running"] = []any{"Mon", "Thu"}
	tr.Attributes["fare_details"] = map[string]any{"1A": 4500}
	res := run(t, []model.Train{tr}, model.Catalog{track(12)})

	rec := res.Trains[0].Record()
	for k, v := range tr.Attributes {
		assert.Equal(t, v, rec[k], k)
	}
	assert.Equal(t, "06:30 AM", rec["section_entry_time"])
	assert.Equal(t, "06:42 AM", rec["section_exit_time"])
	assert.Equal(t, 1, rec["assigned_track"])
	assert.NotContains(t, tr.Attributes, "assigned_track")
}

func TestRunRollsOverMidnight(t *testing.T) {
	trains := []model.Train{train("Night", 2, "23:50"), train("Late", 4, "23:55")}
	res := run(t, trains, model.Catalog{track(30)})
	assert.Equal(t, 0, res.Trains[0].EntryDay)
	assert.Equal(t, 1, res.Trains[0].ExitDay)
	assert.Equal(t, "12:20 AM", res.Trains[0].ExitClock)
	assert.Equal(t, 1, res.LastClearanceDay)
	assert.Equal(t, "12:50 AM", res.LastClearanceClock)
}

func TestRunClampsLowPriorityWeight(t *testing.T) {
	log := &recordingLogger{}
	trains := []model.Train{train("Freight", 12, "05:00"), train("Local", 10, "05:00")}
	s, err := New(trains, model.Catalog{track(10)}, testCfg, WithLogger(log))
	require.NoError(t, err)
	m, err := s.Model()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, m.Weights)
	assert.Equal(t, []int{0, 1}, m.Clamped)

	_, err = s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, log.warns, 2)
	assert.Contains(t, log.warns[0], "Freight")
}

func TestRunInfeasibleWithinHorizon(t *testing.T) {
	trains := make([]model.Train, 5)
	for i := range trains {
		trains[i] = train(fmt.Sprintf("T%d", i), 1, "00:00")
	}
	cfg := Config{TimeLimitSeconds: 5, HorizonBufferMinutes: BufferMinutes(1)}
	s, err := New(trains, model.Catalog{track(30)}, cfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrInfeasible)
	assert.Equal(t, solver.StatusInfeasible, res.Status)
}

func TestRunZeroHorizonBuffer(t *testing.T) {
	cfg := Config{TimeLimitSeconds: 5, HorizonBufferMinutes: BufferMinutes(0)}
	s, err := New([]model.Train{train("A", 1, "08:00")}, model.Catalog{track(10)}, cfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 490, res.Horizon)
	assert.Equal(t, 490, res.LastClearance)

	two := []model.Train{train("A", 1, "08:00"), train("B", 2, "08:00")}
	s, err = New(two, model.Catalog{track(10)}, cfg)
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestRunTimeoutWithoutSolution(t *testing.T) {
	trains := make([]model.Train, 40)
	for i := range trains {
		trains[i] = train(fmt.Sprintf("T%d", i), 1+i%9, "00:00")
	}
	cfg := Config{TimeLimitSeconds: 5, HorizonBufferMinutes: BufferMinutes(1)}
	s, err := New(trains, model.Catalog{track(30)}, cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx)
	require.ErrorIs(t, err, ErrNoSolution)
	assert.Equal(t, solver.StatusTimeout, res.Status)
	assert.False(t, res.Published())
}

func TestRunReportsProgress(t *testing.T) {
	var mu sync.Mutex
	var seen []solver.Improvement
	trains := []model.Train{train("A", 1, "08:00"), train("B", 2, "08:01"), train("C", 9, "08:00")}
	s, err := New(trains, model.Catalog{track(10)}, testCfg, WithProgress(func(im solver.Improvement) {
		mu.Lock()
		seen = append(seen, im)
		mu.Unlock()
	}))
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, seen)
	assert.Equal(t, res.Objective, seen[len(seen)-1].Objective)
}

func TestNewValidation(t *testing.T) {
	ok := []model.Train{train("A", 1, "08:00")}
	cases := []struct {
		name   string
		trains []model.Train
		tracks model.Catalog
	}{
		{"no trains", nil, model.Catalog{track(5)}},
		{"bad clock", []model.Train{train("A", 1, "8am")}, model.Catalog{track(5)}},
		{"bad priority", []model.Train{train("A", 0, "08:00")}, model.Catalog{track(5)}},
		{"zero speed", ok, model.Catalog{{LengthKM: 5}}},
		{"overlong track", ok, model.Catalog{track(5), {LengthKM: 1e18, SpeedKMPH: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.trains, tc.tracks, testCfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			var ie *InputError
			assert.True(t, errors.As(err, &ie))
		})
	}
	_, err := New(ok, model.Catalog{track(5)}, Config{Workers: -1})
	assert.Error(t, err)
}

func TestNewCopiesInputs(t *testing.T) {
	trains := []model.Train{train("A", 1, "08:00")}
	tracks := model.Catalog{track(10)}
	s, err := New(trains, tracks, testCfg)
	require.NoError(t, err)
	trains[0].Arrival = "09:00"
	tracks[0] = track(50)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "08:00 AM", res.Trains[0].EntryClock)
	assert.Equal(t, "08:10 AM", res.Trains[0].ExitClock)
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trains := []model.Train{train("A", 1, fmt.Sprintf("0%d:00", i+1)), train("B", 2, fmt.Sprintf("0%d:00", i+1))}
			s, err := New(trains, model.Catalog{track(10 + i)}, testCfg)
			if err != nil {
				return
			}
			results[i], _ = s.Run(context.Background())
		}(i)
	}
	wg.Wait()
	ids := map[string]bool{}
	for i, r := range results {
		require.True(t, r.Published(), "run %d", i)
		assert.Equal(t, (i+1)*60+2*(10+i), r.LastClearance)
		ids[r.RunID] = true
	}
	assert.Len(t, ids, len(results))
}

func TestRunUsesFixedRunID(t *testing.T) {
	s, err := New([]model.Train{train("A", 1, "08:00")}, model.Catalog{track(5)}, testCfg, WithRunID("run-42"))
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-42", res.RunID)

	s, err = New([]model.Train{train("A", 1, "08:00")}, model.Catalog{track(5)}, testCfg)
	require.NoError(t, err)
	a, err := s.Run(context.Background())
	require.NoError(t, err)
	b, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
}

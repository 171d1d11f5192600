package clock

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"08:05": 485,
		"23:59": 1439,
		"24:30": 1470,
		" 9:00": 540,
	}
	for in, want := range cases {
		got, err := ToMinutes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestToMinutesErrors(t *testing.T) {
	for _, in := range []string{"", "08", "08:00:00", "ab:10", "08:xx", "-1:00", "08:60", "08:-5"} {
		_, err := ToMinutes(in)
		require.Error(t, err, in)
		var fe *FormatError
		assert.True(t, errors.As(err, &fe), in)
		assert.True(t, errors.Is(err, ErrFormat), in)
		assert.Equal(t, in, fe.Input)
	}
}

func TestToClock(t *testing.T) {
	assert.Equal(t, "12:00 AM", ToClock(0))
	assert.Equal(t, "08:20 AM", ToClock(500))
	assert.Equal(t, "12:00 PM", ToClock(720))
	assert.Equal(t, "11:59 PM", ToClock(1439))
	assert.Equal(t, "12:10 AM", ToClock(1450))
}

func TestSplit(t *testing.T) {
	day, c := Split(1450)
	assert.Equal(t, 1, day)
	assert.Equal(t, "12:10 AM", c)

	day, c = Split(485)
	assert.Equal(t, 0, day)
	assert.Equal(t, "08:05 AM", c)

	day, c = Split(3*MinutesPerDay + 60)
	assert.Equal(t, 3, day)
	assert.Equal(t, "01:00 AM", c)
}

func TestRoundTrip(t *testing.T) {
	for m := 0; m < MinutesPerDay; m += 7 {
		in := fmt.Sprintf("%02d:%02d", m/60, m%60)
		got, err := ToMinutes(in)
		require.NoError(t, err)
		parsed, err := time.Parse(layout, ToClock(got))
		require.NoError(t, err)
		assert.Equal(t, m, parsed.Hour()*60+parsed.Minute(), in)
	}
}

func TestFromClock(t *testing.T) {
	for _, m := range []int{0, 1, 59, 60, 719, 720, 721, 1439} {
		got, err := FromClock(ToClock(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := FromClock("13:00")
	assert.ErrorIs(t, err, ErrFormat)
}

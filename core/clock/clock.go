// Package clock converts between "HH:MM" clock-of-day strings and integer
// minute offsets counted from midnight of the service day.
//
// Offsets may exceed one day. ToClock only renders the time of day; callers
// that need to signal a rollover use Split, which returns the day index
// alongside the clock string.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes in one service day.
const MinutesPerDay = 24 * 60

// NoClearance is reported in place of a clearance time when no schedule exists.
const NoClearance = "N/A"

const layout = "03:04 PM"

// ErrFormat is wrapped by every FormatError.
var ErrFormat = errors.New("malformed clock string")

// FormatError reports a clock string that could not be parsed.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("clock %q: %s", e.Input, e.Reason)
}

// Unwrap allows errors.Is(err, ErrFormat).
func (e *FormatError) Unwrap() error { return ErrFormat }

// ToMinutes parses "HH:MM" into minutes after midnight. Hours above 23 are
// accepted and denote a later service day.
func ToMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, &FormatError{Input: s, Reason: fmt.Sprintf("expected 2 fields, got %d", len(parts))}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, &FormatError{Input: s, Reason: "hour is not a number"}
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &FormatError{Input: s, Reason: "minute is not a number"}
	}
	if h < 0 {
		return 0, &FormatError{Input: s, Reason: "negative hour"}
	}
	if m < 0 || m >= 60 {
		return 0, &FormatError{Input: s, Reason: "minute out of range"}
	}
	return h*60 + m, nil
}

// ToClock renders the time of day of a minute offset in 12-hour form, e.g.
// "08:05 AM". The day component is dropped; see Split.
func ToClock(minutes int) string {
	mod := minutes % MinutesPerDay
	if mod < 0 {
		mod += MinutesPerDay
	}
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(mod) * time.Minute).Format(layout)
}

// Split returns the day index of a minute offset together with its clock string.
func Split(minutes int) (int, string) {
	day := minutes / MinutesPerDay
	if minutes < 0 && minutes%MinutesPerDay != 0 {
		day--
	}
	return day, ToClock(minutes)
}

// FromClock parses a string produced by ToClock back into minutes after
// midnight.
func FromClock(s string) (int, error) {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return 0, &FormatError{Input: s, Reason: "expected hh:mm AM/PM"}
	}
	return t.Hour()*60 + t.Minute(), nil
}

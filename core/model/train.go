package model

import (
	"fmt"
	"strings"

	"github.com/kilianp07/sectionsched/core/clock"
)

// Train is a train waiting to cross the section.
type Train struct {
	ID        string `json:"-" yaml:"-"`
	Name      string `json:"train_name" yaml:"train_name"`
	Type      string `json:"type" yaml:"type"`
	Priority  int    `json:"priority" yaml:"priority"` // 1 is the most important
	From      string `json:"starting_station" yaml:"starting_station"`
	To        string `json:"destination_station" yaml:"destination_station"`
	Departure string `json:"departure_time" yaml:"departure_time"`
	Arrival   string `json:"arrival_time" yaml:"arrival_time"`

	// Attributes holds the record exactly as decoded, including fields the
	// scheduler does not interpret (days_of_running, fare_details, ...). It
	// is copied onto the output record untouched, whatever their shape.
	Attributes map[string]any `json:"-" yaml:"-"`
}

// Release returns the arrival time in minutes, the earliest section entry.
func (t Train) Release() (int, error) {
	return clock.ToMinutes(t.Arrival)
}

// Validate checks the fields the scheduler depends on.
func (t Train) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("train_name is required")
	}
	if t.Priority < 1 {
		return fmt.Errorf("priority must be >= 1, got %d", t.Priority)
	}
	if t.Arrival == "" {
		return fmt.Errorf("arrival_time is required")
	}
	if _, err := t.Release(); err != nil {
		return fmt.Errorf("arrival_time: %w", err)
	}
	return nil
}

// Label identifies the train in logs and errors.
func (t Train) Label() string {
	if t.ID != "" {
		return t.ID + " " + t.Name
	}
	return t.Name
}

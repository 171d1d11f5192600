// Package scenarios runs scheduling scenarios described in YAML files and
// checks their outcome against the expectations recorded in the file.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/sectionsched/core/model"
)

// TrainDef is a train as written in a scenario file.
type TrainDef struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	Arrival  string `yaml:"arrival"`
}

func (d TrainDef) ToModel() model.Train {
	id := d.ID
	if id == "" {
		id = d.Name
	}
	return model.Train{ID: id, Name: d.Name, Priority: d.Priority, Arrival: d.Arrival}
}

// Placement is the expected slot of one train.
type Placement struct {
	Track int    `yaml:"track,omitempty"`
	Entry string `yaml:"entry,omitempty"`
	Exit  string `yaml:"exit,omitempty"`
}

type Expected struct {
	Status           string               `yaml:"status"`
	Objective        *int64               `yaml:"objective,omitempty"`
	LastClearance    string               `yaml:"last_clearance,omitempty"`
	LastClearanceDay *int                 `yaml:"last_clearance_day,omitempty"`
	Trains           map[string]Placement `yaml:"trains,omitempty"`
	// DistinctTracks requires every train to use a different track.
	DistinctTracks bool `yaml:"distinct_tracks,omitempty"`
}

type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Tracks      []model.Track `yaml:"tracks"`
	Trains      []TrainDef    `yaml:"trains"`
	// HorizonBuffer overrides the default queuing slack, in minutes.
	HorizonBuffer *int     `yaml:"horizon_buffer,omitempty"`
	Expected      Expected `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	if sc.Expected.Status == "" {
		return nil, fmt.Errorf("%s: expected.status is required", path)
	}
	return &sc, nil
}

// TrainModels converts the scenario trains.
func (sc *Scenario) TrainModels() []model.Train {
	out := make([]model.Train, len(sc.Trains))
	for i, d := range sc.Trains {
		out[i] = d.ToModel()
	}
	return out
}

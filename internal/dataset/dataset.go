// Package dataset decodes the input record set: section tracks and the trains
// waiting to cross them. JSON and YAML encodings are supported.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/sectionsched/core/model"
)

// Dataset is one validated input record set.
type Dataset struct {
	Tracks model.Catalog
	Trains []model.Train
}

type document struct {
	Junction *struct {
		Tracks model.Catalog `json:"tracks" yaml:"tracks"`
	} `json:"junction" yaml:"junction"`
	Tracks model.Catalog  `json:"tracks" yaml:"tracks"`
	Trains []model.Train `json:"trains" yaml:"trains"`
}

type rawDocument struct {
	Junction *struct {
		Tracks []map[string]any `json:"tracks" yaml:"tracks"`
	} `json:"junction" yaml:"junction"`
	Tracks []map[string]any `json:"tracks" yaml:"tracks"`
	Trains []map[string]any `json:"trains" yaml:"trains"`
}

// Load reads a dataset file; the format follows the extension.
func Load(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return Decode(bytes.NewReader(b), "yaml")
	case ".json":
		return Decode(bytes.NewReader(b), "json")
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", ext)
	}
}

// Decode reads a dataset in the given format ("json" or "yaml") and checks
// the fields the scheduler relies on.
func Decode(r io.Reader, format string) (*Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc document
	var raw rawDocument
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	ds := &Dataset{Tracks: doc.Tracks, Trains: doc.Trains}
	rawTracks := raw.Tracks
	if doc.Junction != nil {
		ds.Tracks = doc.Junction.Tracks
		rawTracks = raw.Junction.Tracks
	}
	for i, tr := range rawTracks {
		for _, field := range requiredTrackFields {
			if v, ok := tr[field]; !ok || v == nil {
				return nil, fmt.Errorf("track %d: missing field %q", i+1, field)
			}
		}
	}
	for i := range ds.Trains {
		attrs := raw.Trains[i]
		for _, field := range requiredTrainFields {
			if _, ok := attrs[field]; !ok {
				return nil, fmt.Errorf("train %d: missing field %q", i+1, field)
			}
		}
		ds.Trains[i].Attributes = attrs
		if id, ok := attrs["id"]; ok {
			ds.Trains[i].ID = fmt.Sprint(id)
		}
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

var (
	requiredTrackFields = []string{"length_km", "speed_kmph"}
	requiredTrainFields = []string{"train_name", "priority", "arrival_time"}
)

// Validate checks every track and train.
func (d *Dataset) Validate() error {
	if err := d.Tracks.Validate(); err != nil {
		return err
	}
	if len(d.Trains) == 0 {
		return fmt.Errorf("dataset has no trains")
	}
	for i, t := range d.Trains {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("train %d (%s): %w", i+1, t.Name, err)
		}
	}
	return nil
}

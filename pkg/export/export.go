// Package export writes a published schedule as the output record set (JSON)
// or as a flat table (CSV), and reads the JSON form back.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/sectionsched/core/clock"
	"github.com/kilianp07/sectionsched/core/model"
	"github.com/kilianp07/sectionsched/core/scheduler"
)

// ErrNotPublished is returned when a result without a schedule is exported.
var ErrNotPublished = errors.New("result has no schedule to export")

// Document is the output record set.
type Document struct {
	RunID            string           `json:"run_id"`
	Status           string           `json:"status"`
	Trains           []map[string]any `json:"trains"`
	LastClearance    string           `json:"last_section_clearance_time"`
	LastClearanceDay int              `json:"last_section_clearance_day"`
}

// NewDocument builds the output record set of a successful run.
func NewDocument(res scheduler.Result) (Document, error) {
	if !res.Published() {
		return Document{}, fmt.Errorf("%w (status %s)", ErrNotPublished, res.Status)
	}
	doc := Document{
		RunID:            res.RunID,
		Status:           res.Status.String(),
		Trains:           make([]map[string]any, len(res.Trains)),
		LastClearance:    res.LastClearanceClock,
		LastClearanceDay: res.LastClearanceDay,
	}
	for i, st := range res.Trains {
		doc.Trains[i] = st.Record()
	}
	return doc, nil
}

// WriteJSON writes the output record set of res to w, indented.
func WriteJSON(w io.Writer, res scheduler.Result) error {
	doc, err := NewDocument(res)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// MarshalJSON returns the compact output record set, as published on MQTT.
func MarshalJSON(res scheduler.Result) ([]byte, error) {
	doc, err := NewDocument(res)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

var csvHeader = []string{
	"train_id", "train_name", "priority", "arrival_time", "assigned_track",
	"section_entry_time", "section_entry_day", "section_exit_time", "section_exit_day", "wait_minutes",
}

// WriteCSV writes one row per train, in input order.
func WriteCSV(w io.Writer, res scheduler.Result) error {
	if !res.Published() {
		return fmt.Errorf("%w (status %s)", ErrNotPublished, res.Status)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, st := range res.Trains {
		wait := ""
		if rel, err := st.Train.Release(); err == nil {
			wait = strconv.Itoa(st.Entry - rel)
		}
		rec := []string{
			st.Train.ID,
			st.Train.Name,
			strconv.Itoa(st.Train.Priority),
			st.Train.Arrival,
			strconv.Itoa(st.Track),
			st.EntryClock,
			strconv.Itoa(st.EntryDay),
			st.ExitClock,
			strconv.Itoa(st.ExitDay),
			wait,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var scheduleKeys = []string{"section_entry_time", "section_exit_time", "section_entry_day", "section_exit_day", "assigned_track"}

type scheduleFields struct {
	EntryTime string `json:"section_entry_time"`
	ExitTime  string `json:"section_exit_time"`
	EntryDay  int    `json:"section_entry_day"`
	ExitDay   int    `json:"section_exit_day"`
	Track     int    `json:"assigned_track"`
}

// ReadJSON decodes an output record set and rebuilds the scheduled trains,
// with entry and exit as absolute minute offsets.
func ReadJSON(r io.Reader) (Document, []model.ScheduledTrain, error) {
	var raw struct {
		RunID            string            `json:"run_id"`
		Status           string            `json:"status"`
		Trains           []json.RawMessage `json:"trains"`
		LastClearance    string            `json:"last_section_clearance_time"`
		LastClearanceDay int               `json:"last_section_clearance_day"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, nil, fmt.Errorf("decode schedule: %w", err)
	}
	doc := Document{
		RunID:            raw.RunID,
		Status:           raw.Status,
		Trains:           make([]map[string]any, len(raw.Trains)),
		LastClearance:    raw.LastClearance,
		LastClearanceDay: raw.LastClearanceDay,
	}
	out := make([]model.ScheduledTrain, len(raw.Trains))
	for i, msg := range raw.Trains {
		st, rec, err := decodeTrain(msg)
		if err != nil {
			return Document{}, nil, fmt.Errorf("train %d: %w", i+1, err)
		}
		doc.Trains[i] = rec
		out[i] = st
	}
	return doc, out, nil
}

func decodeTrain(msg json.RawMessage) (model.ScheduledTrain, map[string]any, error) {
	var st model.ScheduledTrain
	var sf scheduleFields
	if err := json.Unmarshal(msg, &st.Train); err != nil {
		return st, nil, err
	}
	if err := json.Unmarshal(msg, &sf); err != nil {
		return st, nil, err
	}
	var rec map[string]any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return st, nil, err
	}
	entry, err := clock.FromClock(sf.EntryTime)
	if err != nil {
		return st, nil, fmt.Errorf("section_entry_time: %w", err)
	}
	exit, err := clock.FromClock(sf.ExitTime)
	if err != nil {
		return st, nil, fmt.Errorf("section_exit_time: %w", err)
	}
	attrs := make(map[string]any, len(rec))
	for k, v := range rec {
		attrs[k] = v
	}
	for _, k := range scheduleKeys {
		delete(attrs, k)
	}
	if id, ok := attrs["id"]; ok {
		st.Train.ID = fmt.Sprint(id)
	}
	st.Train.Attributes = attrs
	st.Track = sf.Track
	st.EntryDay, st.ExitDay = sf.EntryDay, sf.ExitDay
	st.EntryClock, st.ExitClock = sf.EntryTime, sf.ExitTime
	st.Entry = sf.EntryDay*clock.MinutesPerDay + entry
	st.Exit = sf.ExitDay*clock.MinutesPerDay + exit
	return st, rec, nil
}

package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/sectionsched/core/metrics"
	"github.com/kilianp07/sectionsched/infra/logger"
)

// InfluxOptions configures an InfluxSink.
type InfluxOptions struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// Junction tags every point, useful when several sections report to one bucket.
	Junction string `json:"junction"`
}

// InfluxSink writes solve runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	junction string
	log      logger.Logger
}

// NewInfluxSink creates a sink configured for the given InfluxDB endpoint.
func NewInfluxSink(opts InfluxOptions) *InfluxSink {
	base := strings.TrimSuffix(opts.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, opts.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(opts.Org, opts.Bucket),
		junction: opts.Junction,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails, so an unreachable database never
// fails a solve.
func NewInfluxSinkWithFallback(opts InfluxOptions) coremetrics.MetricsSink {
	sink := NewInfluxSink(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve writes one solve_run point.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solve_run").
		AddTag("run_id", ev.RunID).
		AddTag("status", ev.Status)
	if s.junction != "" {
		p = p.AddTag("junction", s.junction)
	}
	p = p.AddField("objective", ev.Objective).
		AddField("trains", ev.Trains).
		AddField("tracks", ev.Tracks).
		AddField("horizon_min", ev.Horizon).
		AddField("nodes", ev.Nodes).
		AddField("elapsed_ms", ev.Elapsed.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordImprovement writes one incumbent point.
func (s *InfluxSink) RecordImprovement(ev coremetrics.ImprovementEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("incumbent").
		AddTag("run_id", ev.RunID).
		AddTag("strategy", ev.Strategy).
		AddField("objective", ev.Objective).
		AddField("elapsed_ms", ev.Elapsed.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

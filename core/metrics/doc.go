// Package metrics defines the sinks solve runs are reported to. Concrete
// sinks (Prometheus, InfluxDB) live in infra/metrics and register themselves
// with the factory registry; NewMetricsSink wraps several configured sinks in
// a MultiSink.
package metrics

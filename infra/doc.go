// Package infra contains technical adapters: the zerolog logger, the
// Prometheus and InfluxDB metrics sinks, the MQTT schedule publisher and the
// Sentry monitor. These packages depend only on the interfaces defined in the
// core packages.
package infra

// Package metrics defines interfaces for observing the object registry.
// Sinks like the Prometheus sink in infra/metrics record lookups,
// constructions, aliases and frees, and can be combined with NewMultiSink.
// NewMetricsSink builds sinks by type name from configuration and returns a
// MultiSink automatically when several are configured.
package metrics

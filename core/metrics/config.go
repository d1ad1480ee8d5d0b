package metrics

// SinkConfig contains the type name and raw configuration for a sink.
type SinkConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// Config defines settings for metrics sinks and the Prometheus exporter.
type Config struct {
	Sinks []SinkConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint. Empty
	// disables the HTTP exporter.
	PrometheusAddr string `json:"prometheus_addr"`
}

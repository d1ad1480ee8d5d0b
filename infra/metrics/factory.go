package metrics

import (
	"fmt"

	"github.com/kilianp07/objreg/core/configure"
	coremetrics "github.com/kilianp07/objreg/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// promConf is the raw configuration accepted by the "prometheus" sink.
type promConf struct {
	// Registry selects "default" (global registerer) or "private" (a fresh
	// registry, useful in tests).
	Registry string `json:"registry"`
}

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		c, err := configure.Apply(&promConf{Registry: "default"}, conf)
		if err != nil {
			return nil, err
		}
		if c.Registry == "private" {
			return NewPromSinkWithRegistry(prometheus.NewRegistry())
		}
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})
	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		o, err := configure.Apply(&InfluxOptions{}, conf)
		if err != nil {
			return nil, err
		}
		if o.URL == "" {
			return nil, fmt.Errorf("influx sink: url is required")
		}
		return NewInfluxSinkWithFallback(*o), nil
	})
}

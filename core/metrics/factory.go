package metrics

import (
	"fmt"

	"github.com/kilianp07/objreg/core/constructor"
)

// Factory builds a sink from its raw configuration.
type Factory func(conf map[string]any) (MetricsSink, error)

var sinkCatalog = constructor.NewCatalog()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f Factory) error {
	if f == nil {
		return fmt.Errorf("factory nil for %s", name)
	}
	return sinkCatalog.Register(name, f)
}

// SinkTypes lists the registered sink type names.
func SinkTypes() []string { return sinkCatalog.Names() }

// NewMetricsSink creates a MetricsSink from the provided configuration.
func NewMetricsSink(cfgs []SinkConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		inst, err := sinkCatalog.Construct(c.Type, []any{c.Conf})
		if err != nil {
			return nil, fmt.Errorf("metrics sink %q: %w", c.Type, err)
		}
		sinks[i] = inst.(MetricsSink)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

func init() {
	_ = RegisterMetricsSink("nop", func(map[string]any) (MetricsSink, error) {
		return NopSink{}, nil
	})
}

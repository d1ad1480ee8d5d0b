package metrics

import (
	"strconv"

	coremetrics "github.com/kilianp07/objreg/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records registry activity in Prometheus metrics.
type PromSink struct {
	lookups       *prometheus.CounterVec
	constructions *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	aliases       *prometheus.CounterVec
	freed         prometheus.Counter
	entries       prometheus.Gauge
	gatherer      prometheus.Gatherer
}

// NewPromSink registers registry metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer, ok := reg.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	s := &PromSink{
		gatherer: gatherer,
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "objreg_lookups_total",
			Help: "Total number of registry lookups by operation and result",
		}, []string{"op", "hit"}),
		constructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "objreg_constructions_total",
			Help: "Total number of constructor invocations",
		}, []string{"type_id", "kind", "failed"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "objreg_construction_seconds",
			Help:    "Time spent in constructors",
			Buckets: prometheus.DefBuckets,
		}, []string{"type_id", "kind"}),
		aliases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "objreg_aliases_total",
			Help: "Total number of alias publications",
		}, []string{"type_id", "replaced"}),
		freed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "objreg_freed_keys_total",
			Help: "Total number of keys removed by free",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "objreg_entries",
			Help: "Number of keys currently held by the registry store",
		}),
	}

	var err error
	if s.lookups, err = register(reg, s.lookups); err != nil {
		return nil, err
	}
	if s.constructions, err = register(reg, s.constructions); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.aliases, err = register(reg, s.aliases); err != nil {
		return nil, err
	}
	if s.freed, err = register(reg, s.freed); err != nil {
		return nil, err
	}
	if s.entries, err = register(reg, s.entries); err != nil {
		return nil, err
	}
	return s, nil
}

// Gatherer returns the registry the sink's collectors are gathered from.
func (s *PromSink) Gatherer() prometheus.Gatherer { return s.gatherer }

// GathererFor returns the gatherer of the first Prometheus sink found in
// sink, looking inside a MultiSink, or the default gatherer.
func GathererFor(sink coremetrics.MetricsSink) prometheus.Gatherer {
	switch s := sink.(type) {
	case interface{ Gatherer() prometheus.Gatherer }:
		return s.Gatherer()
	case *coremetrics.MultiSink:
		for _, child := range s.Sinks {
			if g, ok := child.(interface{ Gatherer() prometheus.Gatherer }); ok {
				return g.Gatherer()
			}
		}
	}
	return prometheus.DefaultGatherer
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordLookup increments the lookup counter.
func (s *PromSink) RecordLookup(res coremetrics.LookupResult) error {
	s.lookups.WithLabelValues(res.Op, strconv.FormatBool(res.Hit)).Inc()
	return nil
}

// RecordConstruction counts the constructor call and observes its duration.
func (s *PromSink) RecordConstruction(cs coremetrics.ConstructionSample) error {
	s.constructions.WithLabelValues(cs.TypeID, cs.Kind, strconv.FormatBool(cs.Failed)).Inc()
	s.latency.WithLabelValues(cs.TypeID, cs.Kind).Observe(cs.Duration.Seconds())
	return nil
}

// RecordAlias counts alias publications.
func (s *PromSink) RecordAlias(typeID string, replaced bool) error {
	s.aliases.WithLabelValues(typeID, strconv.FormatBool(replaced)).Inc()
	return nil
}

// RecordFree adds the number of removed keys.
func (s *PromSink) RecordFree(removed int) error {
	s.freed.Add(float64(removed))
	return nil
}

// RecordEntries sets the entries gauge.
func (s *PromSink) RecordEntries(n int) error {
	s.entries.Set(float64(n))
	return nil
}

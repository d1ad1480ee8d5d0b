package metrics

import (
	"errors"
	"io"
)

// MultiSink fans out registry metrics to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordLookup forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordLookup(res LookupResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordLookup(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordConstruction forwards construction samples when supported by the sink.
func (m *MultiSink) RecordConstruction(cs ConstructionSample) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ConstructionRecorder); ok {
			if err := rec.RecordConstruction(cs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAlias forwards alias publications.
func (m *MultiSink) RecordAlias(typeID string, replaced bool) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AliasRecorder); ok {
			if err := rec.RecordAlias(typeID, replaced); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFree forwards free results.
func (m *MultiSink) RecordFree(removed int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FreeRecorder); ok {
			if err := rec.RecordFree(removed); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordEntries forwards the entry count.
func (m *MultiSink) RecordEntries(n int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EntriesRecorder); ok {
			if err := rec.RecordEntries(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that implements io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

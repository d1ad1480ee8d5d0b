package metrics

import "time"

// Lookup operations reported by the registry.
const (
	OpUse    = "use"
	OpNew    = "new"
	OpObtain = "obtain"
)

// LookupResult records whether a registry lookup found an existing entry.
type LookupResult struct {
	Op  string
	Hit bool
}

// MetricsSink records registry activity for observability purposes.
type MetricsSink interface {
	RecordLookup(res LookupResult) error
}

// ConstructionSample describes one constructor invocation.
type ConstructionSample struct {
	TypeID   string
	Kind     string
	Duration time.Duration
	Failed   bool
}

// ConstructionRecorder records constructor invocations.
type ConstructionRecorder interface {
	RecordConstruction(s ConstructionSample) error
}

// AliasRecorder records alias publications.
type AliasRecorder interface {
	RecordAlias(typeID string, replaced bool) error
}

// FreeRecorder records the number of keys removed by a free.
type FreeRecorder interface {
	RecordFree(removed int) error
}

// EntriesRecorder records the current number of registry entries.
type EntriesRecorder interface {
	RecordEntries(n int) error
}

// NopSink implements every recorder interface with no-op methods.
type NopSink struct{}

func (NopSink) RecordLookup(LookupResult) error             { return nil }
func (NopSink) RecordConstruction(ConstructionSample) error { return nil }
func (NopSink) RecordAlias(string, bool) error              { return nil }
func (NopSink) RecordFree(int) error                        { return nil }
func (NopSink) RecordEntries(int) error                     { return nil }

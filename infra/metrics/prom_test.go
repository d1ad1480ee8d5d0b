package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/objreg/core/metrics"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	sink, ok := sinkIf.(*PromSink)
	require.True(t, ok, "expected PromSink")

	require.NoError(t, sink.RecordLookup(coremetrics.LookupResult{Op: coremetrics.OpObtain, Hit: true}))
	require.NoError(t, sink.RecordLookup(coremetrics.LookupResult{Op: coremetrics.OpObtain, Hit: true}))
	require.NoError(t, sink.RecordLookup(coremetrics.LookupResult{Op: coremetrics.OpUse, Hit: false}))

	expected := `
# HELP objreg_lookups_total Total number of registry lookups by operation and result
# TYPE objreg_lookups_total counter
objreg_lookups_total{hit="false",op="use"} 1
objreg_lookups_total{hit="true",op="obtain"} 2
`
	if err := testutil.CollectAndCompare(sink.lookups, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	require.NoError(t, sink.RecordConstruction(coremetrics.ConstructionSample{
		TypeID: "app.Widget", Kind: "obtain", Duration: 5 * time.Millisecond,
	}))
	if c := testutil.CollectAndCount(sink.latency); c == 0 {
		t.Errorf("latency not recorded")
	}
	if v := testutil.ToFloat64(sink.constructions.WithLabelValues("app.Widget", "obtain", "false")); v != 1 {
		t.Errorf("constructions = %v, want 1", v)
	}

	require.NoError(t, sink.RecordAlias("app.Widget", true))
	require.NoError(t, sink.RecordFree(3))
	require.NoError(t, sink.RecordEntries(7))
	if v := testutil.ToFloat64(sink.aliases.WithLabelValues("app.Widget", "true")); v != 1 {
		t.Errorf("aliases = %v, want 1", v)
	}
	if v := testutil.ToFloat64(sink.freed); v != 3 {
		t.Errorf("freed = %v, want 3", v)
	}
	expectedEntries := `
# HELP objreg_entries Number of keys currently held by the registry store
# TYPE objreg_entries gauge
objreg_entries 7
`
	if err := testutil.CollectAndCompare(sink.entries, strings.NewReader(expectedEntries)); err != nil {
		t.Errorf("unexpected entries metric: %v", err)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordLookup(coremetrics.LookupResult{Op: "use"}))
	require.NoError(t, second.RecordLookup(coremetrics.LookupResult{Op: "use"}))
	if v := testutil.ToFloat64(first.(*PromSink).lookups.WithLabelValues("use", "false")); v != 2 {
		t.Fatalf("expected shared counter, got %v", v)
	}
}

func TestPrometheusSinkFactory(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]coremetrics.SinkConfig{
		{Type: "prometheus", Conf: map[string]any{"registry": "private"}},
	})
	require.NoError(t, err)
	require.IsType(t, &PromSink{}, s)
}

func TestGathererFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.Same(t, reg, GathererFor(sink))
	require.Same(t, reg, GathererFor(coremetrics.NewMultiSink(coremetrics.NopSink{}, sink)))
	require.Equal(t, prometheus.DefaultGatherer, GathererFor(coremetrics.NopSink{}))
}

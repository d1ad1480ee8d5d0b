package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count int
}

func (r *recordSink) RecordLookup(LookupResult) error {
	r.count++
	return nil
}

func (r *recordSink) RecordConstruction(ConstructionSample) error {
	r.count++
	return nil
}

// TestMultiSink ensures records are forwarded to all sinks and optional
// recorders are skipped for sinks that do not implement them.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, NopSink{})
	if err := m.RecordLookup(LookupResult{Op: OpObtain, Hit: true}); err != nil {
		t.Fatalf("record lookup: %v", err)
	}
	if err := m.RecordConstruction(ConstructionSample{TypeID: "w"}); err != nil {
		t.Fatalf("record construction: %v", err)
	}
	if err := m.RecordAlias("w", false); err != nil {
		t.Fatalf("record alias: %v", err)
	}
	if err := m.RecordFree(2); err != nil {
		t.Fatalf("record free: %v", err)
	}
	if err := m.RecordEntries(3); err != nil {
		t.Fatalf("record entries: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded: %d %d", s1.count, s2.count)
	}
}

type closingSink struct {
	NopSink
	closed bool
	err    error
}

func (c *closingSink) Close() error {
	c.closed = true
	return c.err
}

func TestMultiSink_Close(t *testing.T) {
	ok := &closingSink{}
	failing := &closingSink{err: errors.New("flush failed")}
	m := NewMultiSink(ok, NopSink{}, failing)
	err := m.Close()
	if !errors.Is(err, failing.err) {
		t.Fatalf("expected close error, got %v", err)
	}
	if !ok.closed || !failing.closed {
		t.Fatalf("not every sink was closed")
	}
}

package registry

import (
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/kilianp07/objreg/core/logger"
	"github.com/kilianp07/objreg/core/metrics"
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the store logger.
func WithStoreLogger(l logger.Logger) StoreOption {
	return func(s *Store) { s.log = logger.OrNop(l) }
}

// WithStoreMetrics sets the sink receiving entry counts.
func WithStoreMetrics(sink metrics.MetricsSink) StoreOption {
	return func(s *Store) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// Store maps keys to instances. The same instance may be stored under
// several keys. It is safe for concurrent use.
type Store struct {
	id      uuid.UUID
	mu      sync.RWMutex
	entries map[Key]any
	flights singleflight.Group
	log     logger.Logger
	sink    metrics.MetricsSink
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		id:      uuid.New(),
		entries: make(map[Key]any),
		log:     logger.NopLogger{},
		sink:    metrics.NopSink{},
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// ID identifies the store in logs.
func (s *Store) ID() uuid.UUID { return s.id }

// Lookup returns the instance stored under k, if any.
func (s *Store) Lookup(k Key) (any, bool) {
	s.mu.RLock()
	inst, ok := s.entries[k]
	s.mu.RUnlock()
	return inst, ok
}

// InsertIfAbsent returns the instance stored under k, building and storing
// it first when absent. build runs at most once per key across concurrent
// callers; callers that arrive while it runs wait for and share its result.
// built is true only for the caller whose build produced the instance.
// A failing build stores nothing.
func (s *Store) InsertIfAbsent(k Key, build func() (any, error)) (inst any, built bool, err error) {
	if inst, ok := s.Lookup(k); ok {
		return inst, false, nil
	}
	inst, err, _ = s.flights.Do(k.String(), func() (any, error) {
		if inst, ok := s.Lookup(k); ok {
			return inst, nil
		}
		inst, err := build()
		if err != nil {
			return nil, err
		}
		if isNil(inst) {
			return nil, ErrNilInstance
		}
		s.mu.Lock()
		if prev, ok := s.entries[k]; ok {
			s.mu.Unlock()
			return prev, nil
		}
		s.entries[k] = inst
		n := len(s.entries)
		s.mu.Unlock()
		built = true
		s.recordEntries(n)
		s.log.Debugw("instance stored", map[string]any{"store": s.id.String(), "key": k.String(), "entries": n})
		return inst, nil
	})
	if err != nil {
		return nil, false, err
	}
	return inst, built, nil
}

// StoreOverwrite binds k to inst, replacing any previous binding of k only.
// It returns the stored instance and whether k was already bound.
func (s *Store) StoreOverwrite(k Key, inst any) (stored any, replaced bool) {
	s.mu.Lock()
	_, replaced = s.entries[k]
	s.entries[k] = inst
	n := len(s.entries)
	s.mu.Unlock()
	s.recordEntries(n)
	return inst, replaced
}

// RemoveAllKeysFor deletes every key bound to inst and returns how many were
// removed. Values are compared by identity: pointers, maps, channels and
// slices must share storage; other values must be ==.
func (s *Store) RemoveAllKeysFor(inst any) int {
	s.mu.Lock()
	removed := 0
	for k, v := range s.entries {
		if sameInstance(v, inst) {
			delete(s.entries, k)
			removed++
		}
	}
	n := len(s.entries)
	s.mu.Unlock()
	if removed > 0 {
		s.recordEntries(n)
		s.log.Debugw("instance removed", map[string]any{"store": s.id.String(), "keys": removed, "entries": n})
	}
	return removed
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns all stored keys in deterministic (lexicographic hex) order.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Reset drops every entry.
func (s *Store) Reset() {
	s.mu.Lock()
	s.entries = make(map[Key]any)
	s.mu.Unlock()
	s.recordEntries(0)
}

func (s *Store) recordEntries(n int) {
	if rec, ok := s.sink.(metrics.EntriesRecorder); ok {
		if err := rec.RecordEntries(n); err != nil {
			s.log.Warnf("record entries: %v", err)
		}
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func sameInstance(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if !ta.Comparable() {
		return false
	}
	// Structs with interface fields are Comparable but panic when those
	// fields hold uncomparable values.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

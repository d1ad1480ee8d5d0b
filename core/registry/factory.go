package registry

import (
	"fmt"
	"time"

	"github.com/mitchellh/copystructure"

	"github.com/kilianp07/objreg/core/events"
	"github.com/kilianp07/objreg/core/logger"
	"github.com/kilianp07/objreg/core/metrics"
	"github.com/kilianp07/objreg/internal/eventbus"
)

// Constructor resolves type names and builds instances on cache misses.
// constructor.Catalog is the standard implementation.
type Constructor interface {
	ResolveTypeID(name string) string
	Construct(typeID string, args []any) (any, error)
}

// Cloner lets an instance produce its own independent copy for New, taking
// precedence over the reflective deep copy. Types with unexported state
// should implement it.
type Cloner interface {
	Clone() any
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the factory logger.
func WithLogger(l logger.Logger) Option { return func(f *Factory) { f.log = logger.OrNop(l) } }

// WithMetrics sets the sink receiving lookup results.
func WithMetrics(sink metrics.MetricsSink) Option {
	return func(f *Factory) {
		if sink != nil {
			f.sink = sink
		}
	}
}

// WithEventBus publishes lifecycle events (see package events) on bus.
func WithEventBus(bus eventbus.EventBus) Option { return func(f *Factory) { f.bus = bus } }

// WithCopier replaces the deep copy used by New for instances that do not
// implement Cloner.
func WithCopier(fn func(any) (any, error)) Option {
	return func(f *Factory) {
		if fn != nil {
			f.copy = fn
		}
	}
}

// Factory exposes the registry operations on top of a Store and a
// Constructor. Every operation takes the type id explicitly; it is resolved
// through the Constructor before keys are derived.
type Factory struct {
	store *Store
	ctor  Constructor
	copy  func(any) (any, error)
	bus   eventbus.EventBus
	sink  metrics.MetricsSink
	log   logger.Logger
}

// NewFactory returns a Factory. A nil store is replaced by an empty one.
func NewFactory(store *Store, ctor Constructor, opts ...Option) *Factory {
	if store == nil {
		store = NewStore()
	}
	f := &Factory{
		store: store,
		ctor:  ctor,
		copy:  copystructure.Copy,
		sink:  metrics.NopSink{},
		log:   logger.NopLogger{},
	}
	for _, fn := range opts {
		fn(f)
	}
	return f
}

// Store returns the underlying store.
func (f *Factory) Store() *Store { return f.store }

// Use returns the instance published under alias for typeID. It never
// constructs; a missing alias yields a *NotFoundError.
func (f *Factory) Use(typeID, alias string) (any, error) {
	id := f.ctor.ResolveTypeID(typeID)
	inst, ok := f.store.Lookup(AliasKey(id, alias))
	f.recordLookup(metrics.OpUse, ok)
	if !ok {
		return nil, &NotFoundError{TypeID: id, Alias: alias}
	}
	return inst, nil
}

// Obtain returns the shared instance for typeID and args, constructing it on
// first use. Every caller receives the same reference.
func (f *Factory) Obtain(typeID string, args ...any) (any, error) {
	return f.shared(KindObtain, typeID, args)
}

// New returns an independent deep copy of the canonical instance for typeID
// and args. The canonical instance is cached separately from the one Obtain
// shares, so mutations made through Obtain never leak into New copies.
func (f *Factory) New(typeID string, args ...any) (any, error) {
	inst, err := f.shared(KindNew, typeID, args)
	if err != nil {
		return nil, err
	}
	if c, ok := inst.(Cloner); ok {
		return c.Clone(), nil
	}
	dup, err := f.copy(inst)
	if err != nil {
		return nil, fmt.Errorf("copy %s: %w", f.ctor.ResolveTypeID(typeID), err)
	}
	return dup, nil
}

func (f *Factory) shared(kind Kind, typeID string, args []any) (any, error) {
	id := f.ctor.ResolveTypeID(typeID)
	k, err := ConstructionKey(kind, id, args)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", kind, id, err)
	}
	inst, built, err := f.store.InsertIfAbsent(k, func() (any, error) {
		start := time.Now()
		inst, err := f.ctor.Construct(id, args)
		f.publish(events.ConstructedEvent{
			TypeID:   id,
			Kind:     string(kind),
			Key:      k.String(),
			Duration: time.Since(start),
			Err:      err,
		})
		return inst, err
	})
	f.recordLookup(string(kind), err == nil && !built)
	if err != nil {
		return nil, err
	}
	if built {
		f.log.Debugw("instance constructed", map[string]any{"type_id": id, "kind": string(kind), "key": k.String()})
	}
	return inst, nil
}

// As publishes inst under alias for typeID, replacing whatever that alias
// pointed to before. Other keys of the previous instance are left intact.
func (f *Factory) As(inst any, typeID, alias string) (any, error) {
	if isNil(inst) {
		return nil, ErrNilInstance
	}
	id := f.ctor.ResolveTypeID(typeID)
	k := AliasKey(id, alias)
	stored, replaced := f.store.StoreOverwrite(k, inst)
	f.publish(events.AliasedEvent{TypeID: id, Alias: alias, Key: k.String(), Replaced: replaced})
	f.log.Debugw("instance aliased", map[string]any{"type_id": id, "alias": alias, "replaced": replaced})
	return stored, nil
}

// Free removes inst from every key it is stored under and returns the number
// of keys removed. Freeing an unknown instance is a no-op.
func (f *Factory) Free(inst any) int {
	removed := f.store.RemoveAllKeysFor(inst)
	f.publish(events.FreedEvent{Removed: removed})
	return removed
}

func (f *Factory) publish(ev eventbus.Event) {
	if f.bus != nil {
		f.bus.Publish(ev)
	}
}

func (f *Factory) recordLookup(op string, hit bool) {
	if err := f.sink.RecordLookup(metrics.LookupResult{Op: op, Hit: hit}); err != nil {
		f.log.Warnf("record lookup: %v", err)
	}
}

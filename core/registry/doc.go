// Package registry implements a process-wide object registry with memoized
// instantiation.
//
// A Factory hands out instances keyed by (operation, type id, arguments) or
// (type id, alias):
//
//   - Obtain returns the single shared instance for a type and argument list,
//     constructing it on first use.
//   - New returns a deep copy of a separately cached canonical instance, so
//     callers may mutate it freely.
//   - As publishes an instance under an alias and Use retrieves it.
//   - Free removes an instance from every key it is stored under.
//
// Keys are SHA-256 digests over a canonical string (see ConstructionKey and
// AliasKey). The Store guarantees at most one construction per key, even when
// many goroutines miss on the same key at once.
//
// Typical usage:
//
//	cat := constructor.NewCatalog()
//	cat.MustRegister("app.Widget", NewWidget)
//	f := registry.NewFactory(registry.NewStore(), cat)
//	w, err := registry.For[*Widget](f, "app.Widget").Obtain(42)
package registry

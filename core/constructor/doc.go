// Package constructor provides the construction capability used by the
// object registry: a Catalog maps canonical type identifiers to constructor
// functions and invokes them reflectively with caller-supplied arguments.
//
// Constructors are plain functions returning either T or (T, error):
//
//	cat := constructor.NewCatalog()
//	cat.MustRegister("app.Widget", func(size int) *Widget { return &Widget{Size: size} })
//	w, err := cat.Construct("app.Widget", []any{42})
//
// Descriptors for registered constructors (reflected function value and
// parameter types) are computed on first use and cached for the lifetime of
// the catalog.
//
// The catalog also guards reflective method calls: CheckPublicMethod and Call
// refuse unexported method names with a *VisibilityError.
package constructor

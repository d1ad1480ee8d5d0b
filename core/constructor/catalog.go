package constructor

import (
	"fmt"
	"go/token"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/kilianp07/objreg/core/logger"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithCaseFold makes type ids case-insensitive by lowercasing them on
// resolution.
func WithCaseFold() Option { return func(c *Catalog) { c.caseFold = true } }

// WithLogger sets the logger used for registration and construction failures.
func WithLogger(l logger.Logger) Option { return func(c *Catalog) { c.log = logger.OrNop(l) } }

// RegOption modifies per-entry registration parameters.
type RegOption func(*entry)

// WithDoc attaches a human-readable note to the entry.
func WithDoc(doc string) RegOption { return func(e *entry) { e.doc = doc } }

// WithInternal registers a constructor that Construct refuses to invoke.
// The entry still resolves for CheckPublicMethod.
func WithInternal() RegOption { return func(e *entry) { e.internal = true } }

type entry struct {
	ctor     any
	doc      string
	internal bool

	once sync.Once
	desc *descriptor
}

// descriptor is the cached reflection data for a constructor.
type descriptor struct {
	signature
	fn         reflect.Value
	out        reflect.Type
	returnsErr bool
}

func (e *entry) describe() *descriptor {
	e.once.Do(func() {
		fn := reflect.ValueOf(e.ctor)
		t := fn.Type()
		e.desc = &descriptor{
			signature:  newSignature(t),
			fn:         fn,
			out:        t.Out(0),
			returnsErr: t.NumOut() == 2,
		}
	})
	return e.desc
}

// Catalog maps type ids to constructor functions. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	caseFold bool
	log      logger.Logger
}

// NewCatalog returns an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{entries: make(map[string]*entry), log: logger.NopLogger{}}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

// ResolveTypeID canonicalizes a type name: surrounding space is trimmed,
// "::" becomes "." and backslashes become "/", leading and trailing
// separators are dropped, and the result is lowercased when the catalog
// folds case.
func (c *Catalog) ResolveTypeID(name string) string {
	id := strings.TrimSpace(name)
	id = strings.ReplaceAll(id, "::", ".")
	id = strings.ReplaceAll(id, `\`, "/")
	id = strings.Trim(id, "/.")
	if c.caseFold {
		id = strings.ToLower(id)
	}
	return id
}

// Register adds a constructor under name. ctor must be a function returning
// T or (T, error). An empty name registers the constructor under the type id
// of T.
func (c *Catalog) Register(name string, ctor any, ropts ...RegOption) error {
	t := reflect.TypeOf(ctor)
	if t == nil || t.Kind() != reflect.Func {
		return fmt.Errorf("constructor for %q must be a function, got %T", name, ctor)
	}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return fmt.Errorf("constructor for %q must return T or (T, error), got %s", name, t)
	}
	if name == "" {
		name = typeIDOfType(t.Out(0))
	}
	id := c.ResolveTypeID(name)
	if id == "" {
		return fmt.Errorf("constructor: empty type id")
	}

	e := &entry{ctor: ctor}
	for _, fn := range ropts {
		fn(e)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[id]; exists {
		return fmt.Errorf("%s: %w", id, ErrDuplicate)
	}
	c.entries[id] = e
	c.log.Debugw("constructor registered", map[string]any{"type_id": id, "signature": t.String()})
	return nil
}

// MustRegister panics on registration error. Useful from init() blocks.
func (c *Catalog) MustRegister(name string, ctor any, ropts ...RegOption) {
	if err := c.Register(name, ctor, ropts...); err != nil {
		panic(err)
	}
}

func (c *Catalog) lookup(id string) (*entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	return e, ok
}

// Construct invokes the constructor registered for typeID with args.
// Every failure is returned as a *ConstructionError.
func (c *Catalog) Construct(typeID string, args []any) (any, error) {
	id := c.ResolveTypeID(typeID)
	inst, err := c.construct(id, args)
	if err != nil {
		c.log.Warnf("construct %s failed: %v", id, err)
		return nil, err
	}
	return inst, nil
}

func (c *Catalog) construct(id string, args []any) (any, error) {
	e, ok := c.lookup(id)
	if !ok {
		return nil, &ConstructionError{TypeID: id, Reason: "no constructor registered", Err: ErrUnknownType}
	}
	if e.internal {
		return nil, &ConstructionError{TypeID: id, Reason: "constructor is internal", Err: ErrNotInvocable}
	}
	d := e.describe()
	in, err := d.bind(args)
	if err != nil {
		return nil, &ConstructionError{TypeID: id, Reason: err.Error(), Err: ErrArguments}
	}
	out, err := invoke(d.fn, in)
	if err != nil {
		return nil, &ConstructionError{TypeID: id, Reason: "constructor failed", Err: err}
	}
	if d.returnsErr {
		if cerr, _ := out[1].Interface().(error); cerr != nil {
			return nil, &ConstructionError{TypeID: id, Reason: "constructor returned an error", Err: cerr}
		}
	}
	if isNilValue(out[0]) {
		return nil, &ConstructionError{TypeID: id, Reason: "constructor failed", Err: errNilResult}
	}
	return out[0].Interface(), nil
}

// CheckPublicMethod verifies that instances built for typeID expose method as
// an exported, reflectively callable method. Unexported names fail with a
// *VisibilityError; missing methods wrap ErrNoMethod.
func (c *Catalog) CheckPublicMethod(typeID, method string) error {
	id := c.ResolveTypeID(typeID)
	if !token.IsExported(method) {
		return &VisibilityError{TypeID: id, Method: method}
	}
	e, ok := c.lookup(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownType)
	}
	if _, ok := e.describe().out.MethodByName(method); !ok {
		return fmt.Errorf("%s.%s: %w", id, method, ErrNoMethod)
	}
	return nil
}

// Call invokes the exported method on inst with args and returns its results.
func (c *Catalog) Call(inst any, method string, args ...any) ([]any, error) {
	if !token.IsExported(method) {
		return nil, &VisibilityError{TypeID: TypeIDOf(inst), Method: method}
	}
	m := reflect.ValueOf(inst).MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("%s.%s: %w", TypeIDOf(inst), method, ErrNoMethod)
	}
	in, err := newSignature(m.Type()).bind(args)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w: %v", TypeIDOf(inst), method, ErrArguments, err)
	}
	out, err := invoke(m, in)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", TypeIDOf(inst), method, err)
	}
	res := make([]any, len(out))
	for i, v := range out {
		res[i] = v.Interface()
	}
	return res, nil
}

// Names returns all registered type ids in lexicographic order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.entries))
	for id := range c.entries {
		names = append(names, id)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Doc returns the note attached with WithDoc, if any.
func (c *Catalog) Doc(typeID string) string {
	if e, ok := c.lookup(c.ResolveTypeID(typeID)); ok {
		return e.doc
	}
	return ""
}

// TypeIDOf returns the canonical type id of v's dynamic type: the package
// path and type name of the value, with pointers dereferenced.
func TypeIDOf(v any) string {
	if v == nil {
		return "<nil>"
	}
	return typeIDOfType(reflect.TypeOf(v))
}

func typeIDOfType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t.Name() == "":
		return t.String()
	case t.PkgPath() == "":
		return t.Name()
	default:
		return t.PkgPath() + "." + t.Name()
	}
}

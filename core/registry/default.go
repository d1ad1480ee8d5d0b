package registry

import (
	"sync"

	"github.com/kilianp07/objreg/core/constructor"
)

var (
	defaultCatalog = constructor.NewCatalog()
	defaultFactory *Factory
	defaultOnce    sync.Once
)

// Default returns the process-wide factory backed by DefaultCatalog. It is
// created on first call unless InitDefault ran before.
func Default() *Factory {
	defaultOnce.Do(func() {
		defaultFactory = NewFactory(NewStore(), defaultCatalog)
	})
	return defaultFactory
}

// DefaultCatalog returns the catalog used by Default.
func DefaultCatalog() *constructor.Catalog { return defaultCatalog }

// InitDefault installs f as the process-wide factory. Only the first call to
// InitDefault or Default has any effect.
func InitDefault(f *Factory) {
	defaultOnce.Do(func() {
		defaultFactory = f
	})
}

// ResetDefault forgets the process-wide factory so the next Default call
// builds a fresh one. It is not safe for concurrent use; tests only.
func ResetDefault() {
	defaultOnce = sync.Once{}
	defaultFactory = nil
}

// Register adds a constructor to DefaultCatalog.
func Register(name string, ctor any, ropts ...constructor.RegOption) error {
	return defaultCatalog.Register(name, ctor, ropts...)
}

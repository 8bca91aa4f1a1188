package schemas

import (
	"sort"
	"sync"
)

// Catalog maps schema names to definitions so reference fields can be
// resolved by name at query time. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]Definition
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{schemas: make(map[string]Definition)}
}

// Register stores def under def.Name. Registering a name again replaces the
// previous definition.
func (c *Catalog) Register(def Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[def.Name] = def
}

// Lookup returns the definition registered under name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.schemas[name]
	return def, ok
}

// Names returns the registered schema names in lexical order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered schemas.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schemas)
}

// Process-wide catalog for callers that do not inject their own.
var defaultCatalog = NewCatalog()

// Default returns the process-wide catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Register adds def to the process-wide catalog.
func Register(def Definition) {
	defaultCatalog.Register(def)
}

// Lookup resolves name in the process-wide catalog.
func Lookup(name string) (Definition, bool) {
	return defaultCatalog.Lookup(name)
}

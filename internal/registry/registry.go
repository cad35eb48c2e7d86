package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Module is the interface that all part modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the part definitions registered for a single application
// instance.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]*Definition),
	}
}

// Register adds a part definition. Registering two parts under the same name
// is a programming error and panics.
func (r *Registry) Register(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.definitions[def.Name()]; exists {
		panic(fmt.Sprintf("part with name '%s' already registered", def.Name()))
	}
	slog.Debug("Registering part.", "name", def.Name(), "imports", len(def.imports), "exports", len(def.exports))
	r.definitions[def.Name()] = def
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[name]
	return def, ok
}

// Names returns the registered part names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the registered definitions sorted by name.
func (r *Registry) Definitions() []*Definition {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(names))
	for _, name := range names {
		if def, ok := r.definitions[name]; ok {
			out = append(out, def)
		}
	}
	return out
}

// replace swaps in a reconciled definition for an already registered part.
func (r *Registry) replace(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Name()] = def
}

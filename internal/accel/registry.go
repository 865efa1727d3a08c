package accel

import (
	"sort"
	"sync"

	"github.com/leengari/hybrideval/internal/expr"
)

// HandlerFunc inspects a call expression and either produces an accelerated
// Result or declines with ok=false (NoMatch). Declining is an expected,
// frequent outcome on the hot path: wrong argument count, an argument that
// is not a resolvable column symbol, or an unsupported column type all mean
// "fall back to generic evaluation", never an error.
type HandlerFunc func(call *expr.Call, resolver Resolver, argCount int) (Result, bool)

// Registry maps function names to handlers in a thread-safe way. Intended
// lifecycle: populated during initialization (built-ins) or by explicit user
// registration, read-only during evaluation. The lock makes late
// registration safe anyway.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register inserts or overwrites the handler for name. Duplicate
// registration is not an error: the last write wins, silently.
func (r *Registry) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// Lookup returns the handler registered for name, if any.
func (r *Registry) Lookup(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry is the process-wide registry, populated with built-in
// handlers at package initialization.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register adds a handler to the process-wide registry.
func Register(name string, fn HandlerFunc) { defaultRegistry.Register(name, fn) }

// Lookup queries the process-wide registry.
func Lookup(name string) (HandlerFunc, bool) { return defaultRegistry.Lookup(name) }

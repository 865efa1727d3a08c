package accel

import "github.com/leengari/hybrideval/internal/expr"

// GetHandler decides whether a call expression can be accelerated. It
// rejects calls whose function position is not a plain symbol, looks the
// name up in the registry and, if a handler exists, lets the handler inspect
// the arguments through the resolver. The handler alone decides whether to
// match; ambiguity in argument shape is its responsibility to reject.
func (r *Registry) GetHandler(call *expr.Call, resolver Resolver) (Result, bool) {
	name, ok := call.FuncName()
	if !ok {
		return nil, false
	}

	fn, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}

	return fn(call, resolver, len(call.Args))
}

// GetHandler dispatches against the process-wide registry.
func GetHandler(call *expr.Call, resolver Resolver) (Result, bool) {
	return defaultRegistry.GetHandler(call, resolver)
}

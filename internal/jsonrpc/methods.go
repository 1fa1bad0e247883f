package jsonrpc

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
)

// Handler answers one method call with a result or an *Error.
type Handler func(ctx context.Context, params json.RawMessage) (any, *Error)

// MethodRegistry holds the handlers a Server dispatches to.
type MethodRegistry struct {
	methods map[string]Handler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]Handler)}
}

// Register binds handler to method. Registering a name twice panics, as
// http.ServeMux does for duplicate patterns.
func (r *MethodRegistry) Register(method string, handler Handler) {
	if _, dup := r.methods[method]; dup {
		panic("jsonrpc: method " + method + " registered twice")
	}
	r.methods[method] = handler
}

// Lookup returns nil for an unknown method.
func (r *MethodRegistry) Lookup(method string) Handler {
	return r.methods[method]
}

// Methods lists the registered method names in sorted order.
func (r *MethodRegistry) Methods() []string {
	return slices.Sorted(maps.Keys(r.methods))
}

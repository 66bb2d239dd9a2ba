// Package dispatcher implements the RPC method registry and batch
// execution rules (C6): a namespace_operation keyed table of handlers,
// the three parameter-layout transforms, and batch processing with a
// size cap and a forbidden-method list.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"
)

// RequestContext carries the per-invocation metadata used only for
// logging and rate-limiter keys; it is never persisted.
type RequestContext struct {
	RequestID    string
	ClientIP     string
	ConnectionID string
}

// Layout selects how a method's raw params are reshaped before the
// handler is invoked.
type Layout int

const (
	// LayoutDefault spreads params as positional args then appends RequestContext.
	LayoutDefault Layout = iota
	// LayoutRequestDetailsOnly discards params; only RequestContext is passed.
	LayoutRequestDetailsOnly
	// LayoutCustom applies Method.Reshape to params before invocation.
	LayoutCustom
)

// Handler is the shape every registered method implements.
type Handler func(ctx context.Context, args []any, reqCtx RequestContext) (any, error)

// Validate is an optional per-method parameter check run before Handler.
type Validate func(params []any) error

// Method is one registry entry.
type Method struct {
	Name     string // "namespace_operation"
	Layout   Layout
	Reshape  func(params []any) []any // required when Layout == LayoutCustom
	Validate Validate
	Handler  Handler
}

func (m Method) args(params []any, reqCtx RequestContext) []any {
	switch m.Layout {
	case LayoutRequestDetailsOnly:
		return []any{reqCtx}
	case LayoutCustom:
		return append(m.Reshape(params), reqCtx)
	default:
		return append(append([]any{}, params...), reqCtx)
	}
}

// Registry maps a fully-qualified method name to its Method.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]Method
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]Method)}
}

// Register adds method to the registry, keyed by its Name.
func (r *Registry) Register(method Method) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[method.Name] = method
}

// Lookup returns the registered method, if any.
func (r *Registry) Lookup(name string) (Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[name]
	return m, ok
}

// Invoke validates and dispatches a single call by method name.
func (r *Registry) Invoke(ctx context.Context, name string, params []any, reqCtx RequestContext) (any, error) {
	method, ok := r.Lookup(name)
	if !ok {
		return nil, pkgError.MethodNotFoundError(fmt.Sprintf("Method not found: %s", name))
	}

	if method.Validate != nil {
		if err := method.Validate(params); err != nil {
			return nil, err
		}
	}

	return method.Handler(ctx, method.args(params, reqCtx), reqCtx)
}

package scope

import (
	"context"
	"sync/atomic"
)

// Provider stores active scopes and enumerates them.
type Provider interface {
	// Push adds v on top of the stack carried by ctx. The release function
	// retires the entry; calling it more than once has no further effect.
	Push(ctx context.Context, v Value) (context.Context, func())
	// ForEach visits the active scopes of ctx from outermost to innermost.
	ForEach(ctx context.Context, fn func(Value))
}

type ctxKey struct{}

type node struct {
	value    Value
	parent   *node
	released atomic.Bool
}

// ContextProvider keeps scope stacks as context values. All instances
// share the same context key, so swapping providers does not hide scopes
// that are already active.
type ContextProvider struct{}

// NewContextProvider creates a provider backed by context values.
func NewContextProvider() *ContextProvider {
	return &ContextProvider{}
}

// Push implements Provider.
func (p *ContextProvider) Push(ctx context.Context, v Value) (context.Context, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, _ := ctx.Value(ctxKey{}).(*node)
	n := &node{value: v, parent: parent}
	return context.WithValue(ctx, ctxKey{}, n), func() { n.released.Store(true) }
}

// ForEach implements Provider.
func (p *ContextProvider) ForEach(ctx context.Context, fn func(Value)) {
	if ctx == nil {
		return
	}
	top, _ := ctx.Value(ctxKey{}).(*node)
	if top == nil {
		return
	}

	var stack []*node
	for n := top; n != nil; n = n.parent {
		if !n.released.Load() {
			stack = append(stack, n)
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		fn(stack[i].value)
	}
}

// Depth returns the number of active scopes in ctx.
func (p *ContextProvider) Depth(ctx context.Context) int {
	depth := 0
	p.ForEach(ctx, func(Value) { depth++ })
	return depth
}

package lifetime

import (
	"context"
	"sync/atomic"

	"github.com/petermattis/goid"
)

var (
	resolveSeq atomic.Uint64
	threadSeq  atomic.Int64
)

// Context identifies the resolve call a lifetime runs under. Nested resolves
// issued with the context handed to a factory share the outer ResolveID.
type Context struct {
	ResolveID uint64
	ThreadID  int64
}

type lifetimeCtxKey struct{}

type threadCtxKey struct{}

// Enter returns the lifetime context already carried by ctx, or opens a new
// one. The returned ctx carries the lifetime context for nested resolves.
func Enter(ctx context.Context) (context.Context, *Context) {
	if lc, ok := FromContext(ctx); ok {
		return ctx, lc
	}

	lc := &Context{
		ResolveID: resolveSeq.Add(1),
		ThreadID:  ThreadID(ctx),
	}
	return context.WithValue(ctx, lifetimeCtxKey{}, lc), lc
}

func FromContext(ctx context.Context) (*Context, bool) {
	lc, ok := ctx.Value(lifetimeCtxKey{}).(*Context)
	return lc, ok
}

// WithThread binds a fresh logical thread identity to ctx. Per-thread
// lifetimes key on it instead of the goroutine. Bound identities are negative
// so they never collide with goroutine ids.
func WithThread(ctx context.Context) context.Context {
	return context.WithValue(ctx, threadCtxKey{}, -threadSeq.Add(1))
}

// ThreadID returns the thread identity bound to ctx, falling back to the id
// of the calling goroutine.
func ThreadID(ctx context.Context) int64 {
	if ctx != nil {
		if id, ok := ctx.Value(threadCtxKey{}).(int64); ok {
			return id
		}
	}
	return goid.Get()
}

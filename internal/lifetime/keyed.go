package lifetime

import (
	"context"
	"io"
	"sync"

	"go.uber.org/multierr"

	"github.com/danpasecinic/spool/internal/resolution"
)

// Selector derives the cache key a KeyBased lifetime partitions on.
type Selector[K comparable] func(lc *Context, cc resolution.CreationContext) K

// KeyBased keeps one base lifetime per distinct selector value, created on
// first use. The base lifetime is a Singleton unless configured otherwise.
type KeyBased[K comparable] struct {
	name      string
	selector  Selector[K]
	newBase   func() Lifetime
	onNew     func(k K, evict func() error)
	mu        sync.Mutex
	lifetimes map[K]*keyedBase
	closed    bool
}

type keyedBase struct {
	base Lifetime
	next Chain
}

func NewKeyBased[K comparable](name string, selector Selector[K], newBase func() Lifetime) *KeyBased[K] {
	if newBase == nil {
		newBase = func() Lifetime { return NewSingleton() }
	}
	return &KeyBased[K]{
		name:      name,
		selector:  selector,
		newBase:   newBase,
		lifetimes: make(map[K]*keyedBase),
	}
}

func (l *KeyBased[K]) Create(ctx context.Context, lc *Context, cc resolution.CreationContext, next Chain) (any, error) {
	k := l.selector(lc, cc)
	base, created, err := l.base(k, next)
	if err != nil {
		return nil, err
	}
	if created && l.onNew != nil {
		l.onNew(k, func() error { return l.Evict(k) })
	}
	return base.Create(ctx, lc, cc, next)
}

func (l *KeyBased[K]) base(k K, next Chain) (Lifetime, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, false, ErrDisposed
	}

	e, ok := l.lifetimes[k]
	if !ok {
		e = &keyedBase{base: l.newBase(), next: next}
		l.lifetimes[k] = e
	}
	return e.base, !ok, nil
}

// Evict drops the base lifetime kept for k and closes it. Instances it held
// are released to the rest of the chain.
func (l *KeyBased[K]) Evict(k K) error {
	l.mu.Lock()
	e, ok := l.lifetimes[k]
	delete(l.lifetimes, k)
	l.mu.Unlock()

	if !ok {
		return nil
	}

	var released []any
	if s, ok := e.base.(*Singleton); ok {
		released = s.Instances()
	}

	err := e.base.Close()
	for _, instance := range released {
		err = multierr.Append(err, e.next.Release(instance))
	}
	return err
}

// Len reports how many distinct keys have a base lifetime.
func (l *KeyBased[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lifetimes)
}

func (l *KeyBased[K]) Close() error {
	l.mu.Lock()
	l.closed = true
	lifetimes := l.lifetimes
	l.lifetimes = make(map[K]*keyedBase)
	l.mu.Unlock()

	var err error
	for _, e := range lifetimes {
		err = multierr.Append(err, e.base.Close())
	}
	return err
}

func (l *KeyBased[K]) String() string { return l.name }

// NewPerResolve shares one instance across a single top-level resolve call
// and everything it resolves.
func NewPerResolve() *KeyBased[uint64] {
	return NewKeyBased("per-resolve", func(lc *Context, _ resolution.CreationContext) uint64 {
		return lc.ResolveID
	}, nil)
}

// NewPerThread shares one instance per goroutine, or per thread identity
// bound with WithThread.
func NewPerThread() *KeyBased[int64] {
	return NewKeyBased("per-thread", func(lc *Context, _ resolution.CreationContext) int64 {
		return lc.ThreadID
	}, nil)
}

// NewPerContainer shares one instance per requesting container. When the
// requesting container can own resources, closing it evicts its instance.
func NewPerContainer() *KeyBased[resolution.Registry] {
	l := NewKeyBased("per-container", func(_ *Context, cc resolution.CreationContext) resolution.Registry {
		return cc.ResolverContext.Container
	}, nil)
	l.onNew = func(reg resolution.Registry, evict func() error) {
		if o, ok := reg.(owner); ok {
			o.Own(closeFunc(evict))
		}
	}
	return l
}

type owner interface {
	Own(io.Closer)
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

// NewPerState shares one instance per state provider supplied at resolve
// time. State providers must be comparable; *resolution.Args is.
func NewPerState() *KeyBased[resolution.StateProvider] {
	return NewKeyBased("per-state", func(_ *Context, cc resolution.CreationContext) resolution.StateProvider {
		return cc.StateProvider
	}, nil)
}

package lifetime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/resolution"
)

// Singleton caches one instance per distinct generic argument list of the
// requested contract, so one open-generic registration serves Repo[string]
// and Repo[int] with independent instances.
type Singleton struct {
	mu     sync.Mutex
	slots  map[string]*singletonSlot
	closed bool
}

// singletonSlot holds its lock across construction so concurrent first
// resolves build at most one instance. owner is the resolve currently
// building the instance; a nested request from that same resolve would wait
// on its own lock.
type singletonSlot struct {
	mu       sync.Mutex
	owner    atomic.Uint64
	ready    bool
	instance any
}

func NewSingleton() *Singleton {
	return &Singleton{slots: make(map[string]*singletonSlot)}
}

func (l *Singleton) Create(ctx context.Context, lc *Context, cc resolution.CreationContext, next Chain) (any, error) {
	slot, err := l.slot(key.GenericArgsKey(cc.ResolverContext.Key))
	if err != nil {
		return nil, err
	}

	if lc != nil && lc.ResolveID != 0 && slot.owner.Load() == lc.ResolveID {
		return nil, fmt.Errorf("%w: %s requested again while its singleton is being built",
			ErrCircularDependency, cc.ResolverContext.Key)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.ready {
		return slot.instance, nil
	}

	if lc != nil {
		slot.owner.Store(lc.ResolveID)
		defer slot.owner.Store(0)
	}

	instance, err := next.Next(ctx, lc, cc)
	if err != nil {
		return nil, err
	}

	slot.instance = instance
	slot.ready = true
	return instance, nil
}

func (l *Singleton) slot(args string) (*singletonSlot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrDisposed
	}

	s, ok := l.slots[args]
	if !ok {
		s = &singletonSlot{}
		l.slots[args] = s
	}
	return s, nil
}

// Len reports the number of cached instances.
func (l *Singleton) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, s := range l.slots {
		if s.mu.TryLock() {
			if s.ready {
				n++
			}
			s.mu.Unlock()
		}
	}
	return n
}

// Instances returns the instances built so far, waiting for builds in
// progress.
func (l *Singleton) Instances() []any {
	l.mu.Lock()
	slots := make([]*singletonSlot, 0, len(l.slots))
	for _, s := range l.slots {
		slots = append(slots, s)
	}
	l.mu.Unlock()

	var out []any
	for _, s := range slots {
		s.mu.Lock()
		if s.ready {
			out = append(out, s.instance)
		}
		s.mu.Unlock()
	}
	return out
}

// Close releases every cached instance. Disposing them is left to an
// auto-disposing lifetime further down the chain.
func (l *Singleton) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.slots = make(map[string]*singletonSlot)
	return nil
}

func (*Singleton) String() string { return "singleton" }

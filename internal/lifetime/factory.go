package lifetime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/resolution"
)

var (
	ErrCircularDependency = errors.New("circular dependency")
	ErrMaxDepth           = errors.New("maximum resolve depth exceeded")
)

// Guard bounds nested resolution. With DetectCycles set, re-entering a
// registration for the same generic arguments within one resolve call fails
// with ErrCircularDependency instead of recursing. MaxDepth <= 0 disables
// the depth limit.
type Guard struct {
	DetectCycles bool
	MaxDepth     int
}

type frame struct {
	registration *resolution.RegistryContext
	args         string
	label        string
}

type pathCtxKey struct{}

// CycleError carries the chain of keys that led back to itself.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularDependency, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCircularDependency }

func (g Guard) enter(ctx context.Context, rc *resolution.ResolverContext) (context.Context, error) {
	if !g.DetectCycles && g.MaxDepth <= 0 {
		return ctx, nil
	}

	path, _ := ctx.Value(pathCtxKey{}).([]frame)
	current := frame{
		registration: rc.RegistryContext,
		args:         key.GenericArgsKey(rc.Key),
		label:        rc.Key.String(),
	}

	if g.DetectCycles {
		for i, f := range path {
			if f.registration == current.registration && f.args == current.args {
				labels := make([]string, 0, len(path)-i+1)
				for _, p := range path[i:] {
					labels = append(labels, p.label)
				}
				return nil, &CycleError{Path: append(labels, current.label)}
			}
		}
	}

	if g.MaxDepth > 0 && len(path) >= g.MaxDepth {
		return nil, fmt.Errorf("%w (%d) resolving %s", ErrMaxDepth, g.MaxDepth, current.label)
	}

	next := make([]frame, len(path), len(path)+1)
	copy(next, path)
	return context.WithValue(ctx, pathCtxKey{}, append(next, current)), nil
}

// Factory assembles the lifetimes declared on a registration into a chain
// terminated by Transient.
type Factory struct {
	lifetimes []Lifetime
	guard     Guard

	mu     sync.RWMutex
	closed bool
}

func NewFactory(exts []resolution.Extension, guard Guard) *Factory {
	lifetimes := make([]Lifetime, 0, len(exts)+1)
	for _, ext := range exts {
		l, ok := ext.(Lifetime)
		if !ok {
			continue
		}
		if _, transient := l.(*Transient); transient {
			continue
		}
		lifetimes = append(lifetimes, l)
	}
	lifetimes = append(lifetimes, NewTransient())

	return &Factory{lifetimes: lifetimes, guard: guard}
}

// Create opens (or joins) the lifetime context and walks the chain.
func (f *Factory) Create(ctx context.Context, rc *resolution.ResolverContext) (any, error) {
	f.mu.RLock()
	closed := f.closed
	f.mu.RUnlock()
	if closed {
		return nil, ErrDisposed
	}

	ctx, lc := Enter(ctx)

	ctx, err := f.guard.enter(ctx, rc)
	if err != nil {
		return nil, err
	}

	return NewChain(f.lifetimes...).Next(ctx, lc, resolution.NewCreationContext(rc))
}

// Lifetimes returns the assembled chain, terminal lifetime included.
func (f *Factory) Lifetimes() []Lifetime {
	return append([]Lifetime(nil), f.lifetimes...)
}

func (f *Factory) String() string {
	names := make([]string, len(f.lifetimes))
	for i, l := range f.lifetimes {
		names[i] = l.String()
	}
	return strings.Join(names, " > ")
}

// Close closes every lifetime in the chain, outermost first. All lifetimes
// are closed even when some fail.
func (f *Factory) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	var err error
	for _, l := range f.lifetimes {
		err = multierr.Append(err, l.Close())
	}
	return err
}

// Package resolution holds the value types threaded through registration and
// resolution, and the narrow seams the registry consumes: factories, scopes
// and state providers.
package resolution

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danpasecinic/spool/internal/key"
)

var (
	ErrNoKeys           = errors.New("registration requires at least one key")
	ErrNilFactory       = errors.New("registration requires a factory")
	ErrDuplicateScope   = errors.New("registration declares more than one scope")
	ErrComparerMismatch = errors.New("registration declares more than one key comparer")
)

// Registry is the part of a container visible to contexts, lifetimes and
// factories.
type Registry interface {
	ID() string
	ParentRegistry() Registry
	TryCreateResolverContext(k key.Key, state StateProvider) (*ResolverContext, bool)
	Resolve(ctx context.Context, rc *ResolverContext) (any, error)
}

// Factory produces an instance for a resolver context.
type Factory interface {
	Create(ctx context.Context, rc *ResolverContext) (any, error)
}

type FactoryFunc func(ctx context.Context, rc *ResolverContext) (any, error)

func (f FactoryFunc) Create(ctx context.Context, rc *ResolverContext) (any, error) {
	return f(ctx, rc)
}

// Scope governs where in a container hierarchy a registration lives and from
// which containers it may be resolved.
type Scope interface {
	AllowRegistration(r Registry) bool
	AllowResolving(rc *ResolverContext) bool
}

// Extension is an opaque strategy attached to a registration: a Scope, a
// key.Comparer or a lifetime.
type Extension any

// RegistryContext describes one registration: its keys, its factory and its
// extensions. It is immutable once built.
type RegistryContext struct {
	Container  Registry
	Keys       []key.Key
	Factory    Factory
	Extensions []Extension
}

func NewRegistryContext(r Registry, keys []key.Key, f Factory, exts ...Extension) (*RegistryContext, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	for i, k := range keys {
		if k == nil {
			return nil, fmt.Errorf("%w: key %d is nil", key.ErrInvalidKey, i)
		}
	}
	if f == nil {
		return nil, ErrNilFactory
	}

	var scopes, comparers int
	for _, ext := range exts {
		switch ext.(type) {
		case Scope:
			scopes++
		case key.Comparer:
			comparers++
		}
	}
	if scopes > 1 {
		return nil, ErrDuplicateScope
	}
	if comparers > 1 {
		return nil, ErrComparerMismatch
	}

	return &RegistryContext{
		Container:  r,
		Keys:       append([]key.Key(nil), keys...),
		Factory:    f,
		Extensions: append([]Extension(nil), exts...),
	}, nil
}

// Rebind returns a copy owned by r. Used when a scope moves a registration up
// the hierarchy.
func (c *RegistryContext) Rebind(r Registry) *RegistryContext {
	cp := *c
	cp.Container = r
	return &cp
}

func (c *RegistryContext) Scope() Scope {
	for _, ext := range c.Extensions {
		if s, ok := ext.(Scope); ok {
			return s
		}
	}
	return nil
}

func (c *RegistryContext) Comparer() key.Comparer {
	for _, ext := range c.Extensions {
		if cmp, ok := ext.(key.Comparer); ok {
			return cmp
		}
	}
	return key.DefaultComparer
}

func (c *RegistryContext) String() string {
	parts := make([]string, len(c.Keys))
	for i, k := range c.Keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, " | ")
}

// ResolverContext is a lookup in flight: which container asked, for which
// key, and which registration answers it.
type ResolverContext struct {
	Container       Registry
	Key             key.Key
	Factory         Factory
	StateProvider   StateProvider
	RegistryContext *RegistryContext
}

func NewResolverContext(r Registry, rc *RegistryContext, k key.Key, state StateProvider) *ResolverContext {
	if state == nil {
		state = EmptyState
	}
	return &ResolverContext{
		Container:       r,
		Key:             k,
		Factory:         rc.Factory,
		StateProvider:   state,
		RegistryContext: rc,
	}
}

// Rebind returns a copy requested from r with the given state.
func (c *ResolverContext) Rebind(r Registry, state StateProvider) *ResolverContext {
	if state == nil {
		state = EmptyState
	}
	cp := *c
	cp.Container = r
	cp.StateProvider = state
	return &cp
}

func (c *ResolverContext) String() string {
	return fmt.Sprintf("resolve %s from %s (registered in %s)", c.Key, c.Container.ID(), c.RegistryContext.Container.ID())
}

// CreationContext is what a lifetime sees when asked for an instance.
type CreationContext struct {
	ResolverContext *ResolverContext
	StateProvider   StateProvider
}

func NewCreationContext(rc *ResolverContext) CreationContext {
	return CreationContext{ResolverContext: rc, StateProvider: rc.StateProvider}
}

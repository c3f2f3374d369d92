package spool

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/danpasecinic/spool/internal/container"
	"github.com/danpasecinic/spool/internal/key"
)

// Resolver is implemented by *Container and by the *Request handed to
// providers.
type Resolver interface {
	ResolveKey(ctx context.Context, k Key, state StateProvider) (any, error)
	HasKey(k Key) bool
	KeyFactory() KeyFactory
}

func (c *Container) ResolveKey(ctx context.Context, k Key, state StateProvider) (any, error) {
	return resolveKey(ctx, c.internal, k, state)
}

func (c *Container) HasKey(k Key) bool {
	if k == nil {
		return false
	}
	return c.internal.Has(k)
}

func resolveKey(ctx context.Context, ic *container.Container, k Key, state StateProvider) (any, error) {
	if k == nil {
		return nil, errResolutionFailed("", key.ErrInvalidKey)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	instance, err := ic.ResolveKey(ctx, k, state)
	if err != nil {
		return nil, resolveError(k.String(), err)
	}
	return instance, nil
}

type ResolveOption func(*resolveConfig)

type resolveConfig struct {
	key   keySpec
	args  []any
	typed map[int]reflect.Type
}

func (cfg *resolveConfig) setArg(index int, value any, typ reflect.Type) {
	for len(cfg.args) <= index {
		cfg.args = append(cfg.args, nil)
	}
	cfg.args[index] = value
	if typ == nil {
		delete(cfg.typed, index)
		return
	}
	if cfg.typed == nil {
		cfg.typed = make(map[int]reflect.Type)
	}
	cfg.typed[index] = typ
}

// ByTag narrows the lookup to registrations carrying the tags.
func ByTag(values ...any) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.key.tags = append(cfg.key.tags, values...)
	}
}

// WithArgs supplies positional state. Every non-nil argument also adds a
// state key of its dynamic type at its index to the lookup key. Use WithArg
// when the registration declares an interface type or the value is nil.
func WithArgs(values ...any) ResolveOption {
	return func(cfg *resolveConfig) {
		for i, v := range values {
			cfg.setArg(i, v, nil)
		}
	}
}

// WithArg supplies the state value at index and keys it as T, regardless of
// the value's dynamic type. A nil value still adds the state key.
func WithArg[T any](index int, value T) ResolveOption {
	return func(cfg *resolveConfig) {
		if index < 0 {
			return
		}
		cfg.setArg(index, value, reflect.TypeFor[T]())
	}
}

func newResolveConfig[T any](opts []ResolveOption) *resolveConfig {
	cfg := &resolveConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	cfg.key.contracts = []reflect.Type{reflect.TypeFor[T]()}
	for i, a := range cfg.args {
		if typ, ok := cfg.typed[i]; ok {
			cfg.key.states = append(cfg.key.states, stateDecl{index: i, typ: typ})
			continue
		}
		if a == nil {
			continue
		}
		cfg.key.states = append(cfg.key.states, stateDecl{index: i, typ: reflect.TypeOf(a)})
	}
	return cfg
}

func (cfg *resolveConfig) state() StateProvider {
	if cfg.args == nil {
		return nil
	}
	return NewArgs(cfg.args...)
}

func Resolve[T any](ctx context.Context, r Resolver, opts ...ResolveOption) (T, error) {
	var zero T
	cfg := newResolveConfig[T](opts)

	k, err := cfg.key.lookupKey(r.KeyFactory())
	if err != nil {
		return zero, errResolutionFailed(cfg.key.label(), err)
	}

	instance, err := r.ResolveKey(ctx, k, cfg.state())
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errResolutionFailed(
			k.String(),
			fmt.Errorf("registration produced %T, not %s", instance, reflect.TypeFor[T]()),
		)
	}
	return typed, nil
}

func MustResolve[T any](ctx context.Context, r Resolver, opts ...ResolveOption) T {
	v, err := Resolve[T](ctx, r, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

func TryResolve[T any](ctx context.Context, r Resolver, opts ...ResolveOption) (T, bool) {
	v, err := Resolve[T](ctx, r, opts...)
	return v, err == nil
}

func Has[T any](r Resolver, opts ...ResolveOption) bool {
	cfg := newResolveConfig[T](opts)

	k, err := cfg.key.lookupKey(r.KeyFactory())
	if err != nil {
		return false
	}
	return r.HasKey(k)
}

type Optional[T any] struct {
	value   T
	present bool
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

func (o Optional[T]) Value() T {
	return o.value
}

func (o Optional[T]) Present() bool {
	return o.present
}

func (o Optional[T]) OrElse(defaultValue T) T {
	if o.present {
		return o.value
	}
	return defaultValue
}

func (o Optional[T]) OrElseFunc(fn func() T) T {
	if o.present {
		return o.value
	}
	return fn()
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, present: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// ResolveOptional reports an unregistered T as None. Other failures,
// including a factory error, are returned.
func ResolveOptional[T any](ctx context.Context, r Resolver, opts ...ResolveOption) (Optional[T], error) {
	v, err := Resolve[T](ctx, r, opts...)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Code == ErrCodeNotFound {
			return None[T](), nil
		}
		return None[T](), err
	}
	return Some(v), nil
}

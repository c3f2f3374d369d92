package spool

import (
	"context"
	"fmt"
	"reflect"

	"github.com/danpasecinic/spool/internal/lifetime"
	"github.com/danpasecinic/spool/internal/resolution"
)

type Provider[T any] func(ctx context.Context, r *Request) (T, error)

type ProviderOption func(*providerConfig)

type providerConfig struct {
	key        keySpec
	lifetimes  []LifetimeFactory
	decorators []lifetime.Lifetime
	scope      Scope
	hasScope   bool
	comparer   Comparer
}

func newProviderConfig(impl reflect.Type, opts []ProviderOption) *providerConfig {
	cfg := &providerConfig{}
	cfg.key.contracts = []reflect.Type{impl}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (cfg *providerConfig) extensions() []Extension {
	exts := make([]Extension, 0, len(cfg.lifetimes)+len(cfg.decorators)+2)
	for _, newLifetime := range cfg.lifetimes {
		exts = append(exts, newLifetime())
	}
	for _, d := range cfg.decorators {
		exts = append(exts, d)
	}
	if cfg.hasScope {
		exts = append(exts, cfg.scope)
	}
	if cfg.comparer != nil {
		exts = append(exts, cfg.comparer)
	}
	return exts
}

func (cfg *providerConfig) validate() error {
	impl := cfg.key.contracts[0]
	for _, t := range cfg.key.contracts[1:] {
		if !impl.AssignableTo(t) {
			return fmt.Errorf("%s does not implement %s", impl, t)
		}
	}
	return nil
}

func (c *Container) provide(cfg *providerConfig, factory Factory) (*Registration, error) {
	label := cfg.key.label()

	if err := cfg.validate(); err != nil {
		return nil, errInvalidRegistration(label, err)
	}

	keys, err := cfg.key.registrationKeys(c.KeyFactory())
	if err != nil {
		return nil, errInvalidRegistration(label, err)
	}

	return c.Register(keys, factory, cfg.extensions()...)
}

func Provide[T any](c *Container, provider Provider[T], opts ...ProviderOption) (*Registration, error) {
	cfg := newProviderConfig(reflect.TypeFor[T](), opts)

	factory := resolution.FactoryFunc(func(ctx context.Context, rc *resolution.ResolverContext) (any, error) {
		instance, err := provider(ctx, newRequest(rc))
		if err != nil {
			return nil, err
		}
		return instance, nil
	})
	return c.provide(cfg, factory)
}

func ProvideValue[T any](c *Container, value T, opts ...ProviderOption) (*Registration, error) {
	return Provide(c, func(context.Context, *Request) (T, error) {
		return value, nil
	}, opts...)
}

// ProvideOpen registers a factory for every instantiation of a generic type.
// T names the definition through any instantiation; the factory reads the
// requested instantiation from Request.Type.
func ProvideOpen[T any](
	c *Container, factory func(ctx context.Context, r *Request) (any, error), opts ...ProviderOption,
) (*Registration, error) {
	cfg := newProviderConfig(reflect.TypeFor[T](), opts)
	cfg.key.open = true

	return c.provide(cfg, resolution.FactoryFunc(func(ctx context.Context, rc *resolution.ResolverContext) (any, error) {
		return factory(ctx, newRequest(rc))
	}))
}

func MustProvide[T any](c *Container, provider Provider[T], opts ...ProviderOption) *Registration {
	reg, err := Provide(c, provider, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

func MustProvideValue[T any](c *Container, value T, opts ...ProviderOption) *Registration {
	reg, err := ProvideValue(c, value, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

// WithTag adds tags to every key of the registration.
func WithTag(values ...any) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.key.tags = append(cfg.key.tags, values...)
	}
}

// WithState declares that the registration consumes a positional state value
// of type T at index.
func WithState[T any](index int) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.key.states = append(cfg.key.states, stateDecl{index: index, typ: reflect.TypeFor[T]()})
	}
}

// As also registers the provider under contract I.
func As[I any]() ProviderOption {
	return func(cfg *providerConfig) {
		cfg.key.contracts = append(cfg.key.contracts, reflect.TypeFor[I]())
	}
}

// WithLifetime wraps construction in lifetimes, outermost first.
func WithLifetime(lifetimes ...LifetimeFactory) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.lifetimes = append(cfg.lifetimes, lifetimes...)
	}
}

func WithScope(s Scope) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.scope = s
		cfg.hasScope = true
	}
}

func WithComparer(cmp Comparer) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.comparer = cmp
	}
}

package spool

import (
	"context"
	"fmt"
	"reflect"

	"github.com/danpasecinic/spool/internal/lifetime"
	"github.com/danpasecinic/spool/internal/resolution"
)

type Decorator[T any] func(ctx context.Context, r *Request, base T) (T, error)

// Bind registers I as an alias resolving T from the requesting container.
// Tags given in opts apply to I only; T is looked up untagged.
func Bind[I, T any](c *Container, opts ...ProviderOption) (*Registration, error) {
	iface := reflect.TypeFor[I]()
	impl := reflect.TypeFor[T]()

	if !impl.AssignableTo(iface) {
		return nil, errInvalidRegistration(iface.String(), fmt.Errorf("%s does not implement %s", impl, iface))
	}

	cfg := newProviderConfig(iface, opts)

	factory := resolution.FactoryFunc(func(ctx context.Context, rc *resolution.ResolverContext) (any, error) {
		instance, err := Resolve[T](ctx, newRequest(rc))
		if err != nil {
			return nil, err
		}
		return instance, nil
	})
	return c.provide(cfg, factory)
}

// WithDecorator wraps every instance the registration builds. Decorators run
// inside the lifetimes, so a singleton caches the decorated value.
func WithDecorator[T any](decorator Decorator[T]) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.decorators = append(cfg.decorators, &decorating[T]{decorator: decorator})
	}
}

type decorating[T any] struct {
	decorator Decorator[T]
}

func (d *decorating[T]) Create(
	ctx context.Context, lc *lifetime.Context, cc resolution.CreationContext, next lifetime.Chain,
) (any, error) {
	instance, err := next.Next(ctx, lc, cc)
	if err != nil {
		return nil, err
	}

	typed, ok := instance.(T)
	if !ok && instance != nil {
		return nil, errDecoratorTypeMismatch(reflect.TypeFor[T]().String(), instance)
	}
	return d.decorator(ctx, newRequest(cc.ResolverContext), typed)
}

func (d *decorating[T]) Close() error { return nil }

func (d *decorating[T]) String() string { return "decorator" }

func errDecoratorTypeMismatch(typeName string, instance any) *Error {
	return newError(
		ErrCodeFactoryFailed,
		fmt.Sprintf("decorator for %s received %T", typeName, instance),
		nil,
	)
}

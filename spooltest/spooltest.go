// Package spooltest wraps a spool container for tests: every helper fails
// the test instead of returning an error, and the container is closed on
// cleanup.
package spooltest

import (
	"context"
	"reflect"

	"github.com/danpasecinic/spool"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

type TestContainer struct {
	*spool.Container
	tb TB
}

func New(tb TB, opts ...spool.Option) *TestContainer {
	tb.Helper()

	c := spool.New(opts...)
	tc := &TestContainer{
		Container: c,
		tb:        tb,
	}

	tb.Cleanup(func() {
		if err := c.Close(); err != nil {
			tb.Fatalf("failed to close container: %v", err)
		}
	})

	return tc
}

// Child returns a child container closed with its parent.
func (tc *TestContainer) Child() *TestContainer {
	tc.tb.Helper()

	child, err := tc.NewChild()
	if err != nil {
		tc.tb.Fatalf("failed to create child container: %v", err)
	}
	return &TestContainer{Container: child, tb: tc.tb}
}

func (tc *TestContainer) RequireApply(modules ...*spool.Module) *spool.Registration {
	tc.tb.Helper()

	reg, err := tc.Apply(modules...)
	if err != nil {
		tc.tb.Fatalf("failed to apply modules: %v", err)
	}
	return reg
}

func Replace[T any](tc *TestContainer, value T, opts ...spool.ProviderOption) {
	tc.tb.Helper()

	if _, err := spool.ReplaceValue(tc.Container, value, opts...); err != nil {
		tc.tb.Fatalf("failed to replace %s: %v", typeName[T](), err)
	}
}

func ReplaceProvider[T any](tc *TestContainer, provider spool.Provider[T], opts ...spool.ProviderOption) {
	tc.tb.Helper()

	if _, err := spool.Replace(tc.Container, provider, opts...); err != nil {
		tc.tb.Fatalf("failed to replace provider %s: %v", typeName[T](), err)
	}
}

func AssertHas[T any](tc *TestContainer, opts ...spool.ResolveOption) {
	tc.tb.Helper()

	if !spool.Has[T](tc.Container, opts...) {
		tc.tb.Fatalf("expected container to have %s", typeName[T]())
	}
}

func AssertNotHas[T any](tc *TestContainer, opts ...spool.ResolveOption) {
	tc.tb.Helper()

	if spool.Has[T](tc.Container, opts...) {
		tc.tb.Fatalf("expected container to not have %s", typeName[T]())
	}
}

func MustResolve[T any](tc *TestContainer, opts ...spool.ResolveOption) T {
	tc.tb.Helper()

	v, err := spool.Resolve[T](context.Background(), tc.Container, opts...)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", typeName[T](), err)
	}
	return v
}

func MustProvide[T any](tc *TestContainer, provider spool.Provider[T], opts ...spool.ProviderOption) *spool.Registration {
	tc.tb.Helper()

	reg, err := spool.Provide(tc.Container, provider, opts...)
	if err != nil {
		tc.tb.Fatalf("failed to provide %s: %v", typeName[T](), err)
	}
	return reg
}

func MustProvideValue[T any](tc *TestContainer, value T, opts ...spool.ProviderOption) *spool.Registration {
	tc.tb.Helper()

	reg, err := spool.ProvideValue(tc.Container, value, opts...)
	if err != nil {
		tc.tb.Fatalf("failed to provide value %s: %v", typeName[T](), err)
	}
	return reg
}

func MustProvideFunc[T any](tc *TestContainer, constructor any, opts ...spool.ProviderOption) *spool.Registration {
	tc.tb.Helper()

	reg, err := spool.ProvideFunc[T](tc.Container, constructor, opts...)
	if err != nil {
		tc.tb.Fatalf("failed to provide constructor %s: %v", typeName[T](), err)
	}
	return reg
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

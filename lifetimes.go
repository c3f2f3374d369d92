package spool

import (
	"context"

	"github.com/danpasecinic/spool/internal/lifetime"
)

// Lifetime wraps instance construction for one registration. Lifetimes are
// stateful, so options take constructors and every registration gets fresh
// instances.
type Lifetime = lifetime.Lifetime

type LifetimeFactory func() Lifetime

// Singleton keeps one instance per registration, or one per generic
// instantiation for open generic registrations.
func Singleton() Lifetime { return lifetime.NewSingleton() }

// Transient builds a new instance on every resolve. It is the default.
func Transient() Lifetime { return lifetime.NewTransient() }

// AutoDisposing closes every io.Closer it sees built when the registration
// or its container is closed.
func AutoDisposing() Lifetime { return lifetime.NewAutoDisposing() }

// Controlled is AutoDisposing under the name used for instances whose
// disposal the container controls.
func Controlled() Lifetime { return lifetime.NewControlled() }

func PerResolve() Lifetime { return lifetime.NewPerResolve() }

func PerThread() Lifetime { return lifetime.NewPerThread() }

func PerContainer() Lifetime { return lifetime.NewPerContainer() }

func PerState() Lifetime { return lifetime.NewPerState() }

// WithThread binds a logical thread to ctx for PerThread lifetimes. Without
// it the calling goroutine is the thread.
func WithThread(ctx context.Context) context.Context {
	return lifetime.WithThread(ctx)
}

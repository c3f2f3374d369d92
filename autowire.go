package spool

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/danpasecinic/spool/internal/cache"
	spoolreflect "github.com/danpasecinic/spool/internal/reflect"
	"github.com/danpasecinic/spool/internal/resolution"
)

// signatureCache memoizes constructor metadata per function type. Entries
// stay alive while a registration's factory references them.
type signatureCache struct {
	mu      sync.Mutex
	entries *cache.Cache[reflect.Type, spoolreflect.FuncSignature]
}

func newSignatureCache() *signatureCache {
	return &signatureCache{
		entries: cache.New[reflect.Type, spoolreflect.FuncSignature](cache.Comparable[reflect.Type]()),
	}
}

func (s *signatureCache) get(ft reflect.Type) (*spoolreflect.FuncSignature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sig, ok := s.entries.TryGet(ft); ok {
		return sig, nil
	}

	sig, err := spoolreflect.FuncParamsOf(ft)
	if err != nil {
		return nil, err
	}
	s.entries.Set(ft, &sig)
	return &sig, nil
}

// ProvideFunc registers a constructor whose parameters are resolved from the
// requesting container. The constructor may take a leading context.Context
// and may return an error as its second result.
func ProvideFunc[T any](c *Container, constructor any, opts ...ProviderOption) (*Registration, error) {
	expected := reflect.TypeFor[T]()

	if constructor == nil {
		return nil, errInvalidRegistration(expected.String(), spoolreflect.ErrNotFunc)
	}

	sig, err := c.signatures.get(reflect.TypeOf(constructor))
	if err != nil {
		return nil, errInvalidRegistration(expected.String(), err)
	}

	if !sig.Result.AssignableTo(expected) {
		return nil, errInvalidRegistration(
			expected.String(),
			fmt.Errorf("constructor returns %s, expected %s", sig.Result, expected),
		)
	}

	fn := reflect.ValueOf(constructor)
	cfg := newProviderConfig(expected, opts)

	factory := resolution.FactoryFunc(func(ctx context.Context, rc *resolution.ResolverContext) (any, error) {
		r := newRequest(rc)

		args := make([]reflect.Value, 0, len(sig.Params)+1)
		if sig.TakesCtx {
			args = append(args, reflect.ValueOf(&ctx).Elem())
		}

		for i, p := range sig.Params {
			k, err := r.KeyFactory().Lookup(p)
			if err != nil {
				return nil, err
			}
			instance, err := r.ResolveKey(ctx, k, nil)
			if err != nil {
				return nil, fmt.Errorf("parameter %d (%s): %w", i, p, err)
			}
			if instance == nil {
				args = append(args, reflect.Zero(p))
			} else {
				args = append(args, reflect.ValueOf(instance))
			}
		}

		results := fn.Call(args)

		if sig.ReturnsErr && !results[1].IsNil() {
			return nil, errFactoryFailed(expected.String(), results[1].Interface().(error))
		}
		return results[0].Interface(), nil
	})

	return c.provide(cfg, factory)
}

func MustProvideFunc[T any](c *Container, constructor any, opts ...ProviderOption) *Registration {
	reg, err := ProvideFunc[T](c, constructor, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

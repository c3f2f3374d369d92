package spool

import (
	"context"
	"fmt"
	"reflect"

	"github.com/danpasecinic/spool/internal/container"
	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/resolution"
)

// Request is handed to providers. It resolves further dependencies from the
// container the resolve started in, which may be a child of the container
// that owns the registration, and exposes the resolve-time state.
type Request struct {
	rc *resolution.ResolverContext
}

func newRequest(rc *resolution.ResolverContext) *Request {
	return &Request{rc: rc}
}

func (r *Request) requester() *container.Container {
	return r.rc.Container.(*container.Container)
}

func (r *Request) ResolveKey(ctx context.Context, k Key, state StateProvider) (any, error) {
	return resolveKey(ctx, r.requester(), k, state)
}

func (r *Request) HasKey(k Key) bool {
	return r.requester().Has(k)
}

func (r *Request) KeyFactory() KeyFactory {
	return r.requester().KeyFactory()
}

// Key is the lookup key being resolved.
func (r *Request) Key() Key {
	return r.rc.Key
}

// Type is the requested contract type. For an open generic registration it
// is the concrete instantiation asked for.
func (r *Request) Type() reflect.Type {
	contracts := key.ContractsOf(r.rc.Key)
	if len(contracts) == 0 {
		return nil
	}
	return contracts[0].Type()
}

// TypeArgs lists the generic arguments of the requested contract.
func (r *Request) TypeArgs() []string {
	contracts := key.ContractsOf(r.rc.Key)
	if len(contracts) == 0 {
		return nil
	}
	return contracts[0].GenericTypeArguments()
}

// ContainerID names the container the resolve started in.
func (r *Request) ContainerID() string {
	return r.rc.Container.ID()
}

// OwnerID names the container that owns the registration.
func (r *Request) OwnerID() string {
	return r.rc.RegistryContext.Container.ID()
}

func (r *Request) State(index int, t reflect.Type) (any, error) {
	return r.rc.StateProvider.State(index, t)
}

func (r *Request) StateLen() int {
	return r.rc.StateProvider.Len()
}

// State reads the positional state value at index as T.
func State[T any](r *Request, index int) (T, error) {
	var zero T

	v, err := r.State(index, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: index %d is %T", resolution.ErrStateUnavailable, index, v)
	}
	return typed, nil
}

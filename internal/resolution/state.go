package resolution

import (
	"errors"
	"fmt"
	"reflect"
)

var ErrStateUnavailable = errors.New("state value unavailable")

// StateProvider supplies positional values given at resolve time.
type StateProvider interface {
	State(index int, t reflect.Type) (any, error)
	Len() int
}

type emptyState struct{}

func (emptyState) State(index int, _ reflect.Type) (any, error) {
	return nil, fmt.Errorf("%w: no state supplied for index %d", ErrStateUnavailable, index)
}

func (emptyState) Len() int { return 0 }

// EmptyState is used whenever a lookup carries no state.
var EmptyState StateProvider = emptyState{}

// Args is a StateProvider over a fixed list of values. It is used by pointer
// so its identity can key per-state lifetimes.
type Args struct {
	values []any
}

func NewArgs(values ...any) *Args {
	return &Args{values: append([]any(nil), values...)}
}

func (a *Args) Len() int { return len(a.values) }

func (a *Args) State(index int, t reflect.Type) (any, error) {
	if index < 0 || index >= len(a.values) {
		return nil, fmt.Errorf("%w: index %d out of range (%d values)", ErrStateUnavailable, index, len(a.values))
	}

	v := a.values[index]
	if t == nil {
		return v, nil
	}
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return nil, nil
		default:
			return nil, fmt.Errorf("%w: index %d is nil, want %s", ErrStateUnavailable, index, t)
		}
	}
	if !reflect.TypeOf(v).AssignableTo(t) {
		return nil, fmt.Errorf("%w: index %d is %T, want %s", ErrStateUnavailable, index, v, t)
	}
	return v, nil
}

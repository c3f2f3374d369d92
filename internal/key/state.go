package key

import (
	"fmt"
	"hash/maphash"
	"reflect"

	spoolreflect "github.com/danpasecinic/spool/internal/reflect"
)

// StateKey identifies a positional value supplied at resolve time.
type StateKey struct {
	index int
	typ   reflect.Type
}

func NewState(index int, t reflect.Type) (StateKey, error) {
	if index < 0 {
		return StateKey{}, fmt.Errorf("%w: negative state index %d", ErrInvalidKey, index)
	}
	if t == nil {
		return StateKey{}, fmt.Errorf("%w: state %d has no type", ErrInvalidKey, index)
	}
	return StateKey{index: index, typ: t}, nil
}

func (k StateKey) Index() int         { return k.index }
func (k StateKey) Type() reflect.Type { return k.typ }

func (k StateKey) Hash(f Filter) uint64 {
	if f.IgnoresStates() {
		return 0
	}
	return uint64(k.index)*hashPrime ^ maphash.String(seed, spoolreflect.TypeKeyOf(k.typ))
}

func (k StateKey) String() string {
	return fmt.Sprintf("state(%d:%s)", k.index, k.typ)
}

func (k StateKey) view() view {
	return view{states: []StateKey{k}}
}

func stateEqual(a, b StateKey) bool {
	return a.index == b.index && a.typ == b.typ
}

func sumStates(keys []StateKey) uint64 {
	var h uint64
	for _, k := range keys {
		h += k.Hash(FilterNone)
	}
	return h
}

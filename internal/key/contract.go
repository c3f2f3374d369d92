package key

import (
	"hash/maphash"
	"reflect"
	"strings"

	spoolreflect "github.com/danpasecinic/spool/internal/reflect"
)

// ContractKey identifies a contract type. For generic contracts the identity
// is the generic definition and the instantiation is kept as type arguments.
//
// A non-resolving key (a registration) without type arguments stands for the
// unbound generic and matches every instantiation of its definition.
type ContractKey struct {
	contract  string
	typ       reflect.Type
	args      []string
	resolving bool
}

func newContract(t reflect.Type, resolving, open bool) ContractKey {
	if g, ok := spoolreflect.GenericOf(t); ok {
		k := ContractKey{contract: g.Definition, typ: t, resolving: resolving}
		if !open {
			k.args = append([]string(nil), g.Args...)
		}
		return k
	}
	return ContractKey{contract: spoolreflect.TypeKeyOf(t), typ: t, resolving: resolving}
}

// NewContract builds a registration (non-resolving) contract key for t.
func NewContract(t reflect.Type) ContractKey {
	return newContract(t, false, false)
}

// NewLookup builds a resolving contract key for t.
func NewLookup(t reflect.Type) ContractKey {
	return newContract(t, true, false)
}

// NewOpenContract builds a registration key for the generic definition of t,
// dropping its type arguments. For non-generic types it equals NewContract.
func NewOpenContract(t reflect.Type) ContractKey {
	return newContract(t, false, true)
}

func (k ContractKey) ContractType() string           { return k.contract }
func (k ContractKey) Type() reflect.Type             { return k.typ }
func (k ContractKey) GenericTypeArguments() []string { return append([]string(nil), k.args...) }
func (k ContractKey) Resolving() bool                { return k.resolving }
func (k ContractKey) IsGeneric() bool                { return len(k.args) > 0 }

// Unbound reports whether k is a registration of an open generic definition.
func (k ContractKey) Unbound() bool { return !k.resolving && len(k.args) == 0 }

// ArgsKey joins the generic arguments into a single comparable value.
func (k ContractKey) ArgsKey() string { return strings.Join(k.args, ",") }

func (k ContractKey) Hash(Filter) uint64 {
	return maphash.String(seed, k.contract)
}

func (k ContractKey) String() string {
	if len(k.args) > 0 {
		return k.contract + "[" + strings.Join(k.args, ",") + "]"
	}
	if k.typ != nil {
		if _, generic := spoolreflect.GenericOf(k.typ); generic {
			return k.contract + "[]"
		}
	}
	return k.contract
}

func (k ContractKey) view() view {
	return view{contracts: []ContractKey{k}}
}

func contractEqual(a, b ContractKey) bool {
	if a.contract != b.contract {
		return false
	}
	if a.Unbound() || b.Unbound() {
		return true
	}
	if len(a.args) != len(b.args) {
		return false
	}
	for i := range a.args {
		if a.args[i] != b.args[i] {
			return false
		}
	}
	return true
}

func sumContracts(keys []ContractKey) uint64 {
	var h uint64
	for _, k := range keys {
		h += k.Hash(FilterNone)
	}
	return h
}

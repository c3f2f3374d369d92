// Package key implements the composite lookup keys used by the registry:
// contract, tag and state keys, their composite form, and the comparers that
// decide which key dimensions take part in a lookup.
//
// Key is a closed set of shapes. Equality across shapes is defined by viewing
// every key as a composite of (contracts, tags, states), so a composite with a
// single contract and nothing else is equal to the bare contract key.
package key

import (
	"fmt"
	"hash/maphash"
)

// Filter selects key dimensions that are ignored during comparison.
type Filter uint8

const (
	FilterNone   Filter = 0
	FilterTags   Filter = 1 << 0
	FilterStates Filter = 1 << 1
)

func (f Filter) IgnoresTags() bool   { return f&FilterTags != 0 }
func (f Filter) IgnoresStates() bool { return f&FilterStates != 0 }

func (f Filter) String() string {
	switch f {
	case FilterNone:
		return "exact"
	case FilterTags:
		return "any-tag"
	case FilterStates:
		return "any-state"
	case FilterTags | FilterStates:
		return "any-tag-any-state"
	default:
		return fmt.Sprintf("filter(%d)", uint8(f))
	}
}

// Key is one of ContractKey, TagKey, StateKey or CompositeKey.
type Key interface {
	fmt.Stringer
	Hash(f Filter) uint64
	view() view
}

const hashPrime = 397

var seed = maphash.MakeSeed()

type view struct {
	contracts []ContractKey
	tags      []TagKey
	states    []StateKey
}

func (v view) hash(f Filter) uint64 {
	h := sumContracts(v.contracts)
	if len(v.tags) > 0 && !f.IgnoresTags() {
		h = h*hashPrime ^ sumTags(v.tags)
	}
	if len(v.states) > 0 && !f.IgnoresStates() {
		h = h*hashPrime ^ sumStates(v.states)
	}
	return h
}

func (v view) equal(o view, f Filter) bool {
	if !sameSet(v.contracts, o.contracts, contractEqual) {
		return false
	}
	if !f.IgnoresTags() && !sameSet(v.tags, o.tags, tagEqual) {
		return false
	}
	if !f.IgnoresStates() && !sameSet(v.states, o.states, stateEqual) {
		return false
	}
	return true
}

// Equal compares two keys of any shape under the given filter.
func Equal(a, b Key, f Filter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch ak := a.(type) {
	case ContractKey:
		if bk, ok := b.(ContractKey); ok {
			return contractEqual(ak, bk)
		}
	case TagKey:
		if bk, ok := b.(TagKey); ok {
			return f.IgnoresTags() || tagEqual(ak, bk)
		}
	case StateKey:
		if bk, ok := b.(StateKey); ok {
			return f.IgnoresStates() || stateEqual(ak, bk)
		}
	case CompositeKey:
	default:
		panic(fmt.Sprintf("key: unknown key shape %T", a))
	}

	return a.view().equal(b.view(), f)
}

func sameSet[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !contains(b, x, eq) {
			return false
		}
	}
	return true
}

func contains[T any](set []T, x T, eq func(T, T) bool) bool {
	for _, y := range set {
		if eq(x, y) {
			return true
		}
	}
	return false
}

func dedup[T any](in []T, eq func(T, T) bool) []T {
	out := make([]T, 0, len(in))
	for _, x := range in {
		if !contains(out, x, eq) {
			out = append(out, x)
		}
	}
	return out
}

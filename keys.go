package spool

import (
	"reflect"

	"github.com/danpasecinic/spool/internal/key"
	"github.com/danpasecinic/spool/internal/resolution"
)

type (
	Key          = key.Key
	ContractKey  = key.ContractKey
	TagKey       = key.TagKey
	StateKey     = key.StateKey
	CompositeKey = key.CompositeKey
	Comparer     = key.Comparer
	KeyFactory   = key.Factory

	Factory         = resolution.Factory
	FactoryFunc     = resolution.FactoryFunc
	ResolverContext = resolution.ResolverContext
	Extension       = resolution.Extension
	StateProvider   = resolution.StateProvider
)

// Comparers select which key dimensions a registration is matched on.
var (
	ExactComparer          = key.DefaultComparer
	AnyTagComparer         = key.AnyTagComparer
	AnyStateComparer       = key.AnyStateComparer
	AnyTagAnyStateComparer = key.AnyTagAnyStateComparer
)

// NewArgs builds the positional state handed to factories at resolve time.
func NewArgs(values ...any) StateProvider {
	return resolution.NewArgs(values...)
}

// Contract returns the registration key for T.
func Contract[T any](r Resolver) (ContractKey, error) {
	return r.KeyFactory().Contract(reflect.TypeFor[T]())
}

// OpenContract returns a registration key for the generic definition of T
// that matches every instantiation, e.g. OpenContract[*Repo[any]] answers
// lookups of *Repo[User] and *Repo[Order].
func OpenContract[T any](r Resolver) (ContractKey, error) {
	return r.KeyFactory().OpenContract(reflect.TypeFor[T]())
}

// Lookup returns the resolve-side key for T.
func Lookup[T any](r Resolver) (ContractKey, error) {
	return r.KeyFactory().Lookup(reflect.TypeFor[T]())
}

func Tag(r Resolver, value any) (TagKey, error) {
	return r.KeyFactory().Tag(value)
}

func StateKeyOf[T any](r Resolver, index int) (StateKey, error) {
	return r.KeyFactory().State(index, reflect.TypeFor[T]())
}

func Composite(r Resolver, contracts []ContractKey, tags []TagKey, states []StateKey) (Key, error) {
	return r.KeyFactory().Composite(contracts, tags, states)
}

type stateDecl struct {
	index int
	typ   reflect.Type
}

// keySpec describes the key set of a registration or a lookup before it is
// built by a container's key factory.
type keySpec struct {
	contracts []reflect.Type
	open      bool
	tags      []any
	states    []stateDecl
}

// registrationKeys builds one key per contract, each carrying the shared
// tags and states.
func (s *keySpec) registrationKeys(f KeyFactory) ([]Key, error) {
	tags, states, err := s.parts(f)
	if err != nil {
		return nil, err
	}

	keys := make([]Key, 0, len(s.contracts))
	for _, t := range s.contracts {
		var c ContractKey
		if s.open {
			c, err = f.OpenContract(t)
		} else {
			c, err = f.Contract(t)
		}
		if err != nil {
			return nil, err
		}

		k, err := f.Composite([]ContractKey{c}, tags, states)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *keySpec) lookupKey(f KeyFactory) (Key, error) {
	tags, states, err := s.parts(f)
	if err != nil {
		return nil, err
	}

	contracts := make([]ContractKey, 0, len(s.contracts))
	for _, t := range s.contracts {
		c, err := f.Lookup(t)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return f.Composite(contracts, tags, states)
}

func (s *keySpec) parts(f KeyFactory) ([]TagKey, []StateKey, error) {
	tags := make([]TagKey, 0, len(s.tags))
	for _, v := range s.tags {
		t, err := f.Tag(v)
		if err != nil {
			return nil, nil, err
		}
		tags = append(tags, t)
	}

	states := make([]StateKey, 0, len(s.states))
	for _, d := range s.states {
		st, err := f.State(d.index, d.typ)
		if err != nil {
			return nil, nil, err
		}
		states = append(states, st)
	}
	return tags, states, nil
}

func (s *keySpec) label() string {
	if len(s.contracts) == 0 {
		return ""
	}
	return s.contracts[0].String()
}

package key

import (
	"fmt"
	"reflect"
)

// Factory builds keys from raw types, tag values and state declarations.
// One instance is owned by each root container and shared with its children.
type Factory interface {
	Contract(t reflect.Type) (ContractKey, error)
	OpenContract(t reflect.Type) (ContractKey, error)
	Lookup(t reflect.Type) (ContractKey, error)
	Tag(value any) (TagKey, error)
	State(index int, t reflect.Type) (StateKey, error)
	Composite(contracts []ContractKey, tags []TagKey, states []StateKey) (Key, error)
}

type factory struct{}

func NewFactory() Factory {
	return factory{}
}

func (factory) Contract(t reflect.Type) (ContractKey, error) {
	if t == nil {
		return ContractKey{}, fmt.Errorf("%w: nil contract type", ErrInvalidKey)
	}
	return NewContract(t), nil
}

func (factory) OpenContract(t reflect.Type) (ContractKey, error) {
	if t == nil {
		return ContractKey{}, fmt.Errorf("%w: nil contract type", ErrInvalidKey)
	}
	return NewOpenContract(t), nil
}

func (factory) Lookup(t reflect.Type) (ContractKey, error) {
	if t == nil {
		return ContractKey{}, fmt.Errorf("%w: nil contract type", ErrInvalidKey)
	}
	return NewLookup(t), nil
}

func (factory) Tag(value any) (TagKey, error) {
	return NewTag(value)
}

func (factory) State(index int, t reflect.Type) (StateKey, error) {
	return NewState(index, t)
}

// Composite returns the bare contract key when there is nothing but a single
// contract, and a CompositeKey otherwise.
func (factory) Composite(contracts []ContractKey, tags []TagKey, states []StateKey) (Key, error) {
	if len(contracts) == 0 {
		return nil, fmt.Errorf("%w: at least one contract is required", ErrInvalidKey)
	}
	k := NewComposite(contracts, tags, states)
	if len(k.contracts) == 1 && len(k.tags) == 0 && len(k.states) == 0 {
		return k.contracts[0], nil
	}
	return k, nil
}

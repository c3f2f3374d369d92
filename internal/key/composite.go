package key

import (
	"errors"
	"strings"
)

var ErrInvalidKey = errors.New("invalid key")

// CompositeKey is the full identity of a registration or lookup. Each
// dimension is a set: duplicates are dropped and order is irrelevant.
type CompositeKey struct {
	contracts []ContractKey
	tags      []TagKey
	states    []StateKey

	contractsHash uint64
	tagsHash      uint64
	statesHash    uint64
}

// NewComposite copies its inputs into fresh deduplicated sets.
func NewComposite(contracts []ContractKey, tags []TagKey, states []StateKey) CompositeKey {
	k := CompositeKey{
		contracts: dedup(contracts, contractEqual),
		tags:      dedup(tags, tagEqual),
		states:    dedup(states, stateEqual),
	}
	k.contractsHash = sumContracts(k.contracts)
	k.tagsHash = sumTags(k.tags)
	k.statesHash = sumStates(k.states)
	return k
}

func (k CompositeKey) Contracts() []ContractKey { return append([]ContractKey(nil), k.contracts...) }
func (k CompositeKey) Tags() []TagKey           { return append([]TagKey(nil), k.tags...) }
func (k CompositeKey) States() []StateKey       { return append([]StateKey(nil), k.states...) }

func (k CompositeKey) Hash(f Filter) uint64 {
	h := k.contractsHash
	if len(k.tags) > 0 && !f.IgnoresTags() {
		h = h*hashPrime ^ k.tagsHash
	}
	if len(k.states) > 0 && !f.IgnoresStates() {
		h = h*hashPrime ^ k.statesHash
	}
	return h
}

func (k CompositeKey) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range k.contracts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.String())
	}
	for _, t := range k.tags {
		b.WriteString(", ")
		b.WriteString(t.String())
	}
	for _, s := range k.states {
		b.WriteString(", ")
		b.WriteString(s.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (k CompositeKey) view() view {
	return view{contracts: k.contracts, tags: k.tags, states: k.states}
}

// ContractsOf returns the contract keys carried by any key shape.
func ContractsOf(k Key) []ContractKey {
	if k == nil {
		return nil
	}
	return append([]ContractKey(nil), k.view().contracts...)
}

// TagsOf returns the tag keys carried by any key shape.
func TagsOf(k Key) []TagKey {
	if k == nil {
		return nil
	}
	return append([]TagKey(nil), k.view().tags...)
}

// StatesOf returns the state keys carried by any key shape.
func StatesOf(k Key) []StateKey {
	if k == nil {
		return nil
	}
	return append([]StateKey(nil), k.view().states...)
}

// GenericArgsKey returns the generic arguments of the first generic contract
// in k, joined into one string. Non-generic keys yield "".
func GenericArgsKey(k Key) string {
	if k == nil {
		return ""
	}
	for _, c := range k.view().contracts {
		if c.IsGeneric() {
			return c.ArgsKey()
		}
	}
	return ""
}

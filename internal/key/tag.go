package key

import (
	"fmt"
	"hash/maphash"
	"reflect"
)

// TagKey wraps a discriminator value. The value must be comparable.
type TagKey struct {
	value any
}

func NewTag(value any) (TagKey, error) {
	if value != nil && !reflect.TypeOf(value).Comparable() {
		return TagKey{}, fmt.Errorf("%w: tag of type %T is not comparable", ErrInvalidKey, value)
	}
	return TagKey{value: value}, nil
}

func (k TagKey) Value() any { return k.value }

func (k TagKey) Hash(f Filter) uint64 {
	if f.IgnoresTags() {
		return 0
	}
	return maphash.Comparable(seed, k.value)
}

func (k TagKey) String() string {
	return fmt.Sprintf("tag(%v)", k.value)
}

func (k TagKey) view() view {
	return view{tags: []TagKey{k}}
}

func tagEqual(a, b TagKey) bool {
	return a.value == b.value
}

func sumTags(keys []TagKey) uint64 {
	var h uint64
	for _, k := range keys {
		h += k.Hash(FilterNone)
	}
	return h
}

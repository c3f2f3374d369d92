package key

import (
	"cmp"
	"slices"
)

// Map is a hash map keyed by Key under a Comparer. It is not synchronized.
type Map[V any] struct {
	comparer Comparer
	buckets  map[uint64][]entry[V]
	size     int
	seq      uint64
}

type entry[V any] struct {
	key   Key
	value V
	seq   uint64
}

func NewMap[V any](comparer Comparer) *Map[V] {
	if comparer == nil {
		comparer = DefaultComparer
	}
	return &Map[V]{
		comparer: comparer,
		buckets:  make(map[uint64][]entry[V]),
	}
}

func (m *Map[V]) Comparer() Comparer { return m.comparer }

func (m *Map[V]) Len() int { return m.size }

func (m *Map[V]) Get(k Key) (V, bool) {
	for _, e := range m.buckets[m.comparer.Hash(k)] {
		if m.comparer.Equal(e.key, k) {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Lookup returns the stored key equal to k along with its value.
func (m *Map[V]) Lookup(k Key) (Key, V, bool) {
	for _, e := range m.buckets[m.comparer.Hash(k)] {
		if m.comparer.Equal(e.key, k) {
			return e.key, e.value, true
		}
	}
	var zero V
	return nil, zero, false
}

// Add inserts k and reports false when an equal key is already present.
func (m *Map[V]) Add(k Key, v V) bool {
	h := m.comparer.Hash(k)
	for _, e := range m.buckets[h] {
		if m.comparer.Equal(e.key, k) {
			return false
		}
	}
	m.seq++
	m.buckets[h] = append(m.buckets[h], entry[V]{key: k, value: v, seq: m.seq})
	m.size++
	return true
}

// Set inserts or overwrites k.
func (m *Map[V]) Set(k Key, v V) {
	h := m.comparer.Hash(k)
	bucket := m.buckets[h]
	for i := range bucket {
		if m.comparer.Equal(bucket[i].key, k) {
			bucket[i] = entry[V]{key: k, value: v, seq: bucket[i].seq}
			return
		}
	}
	m.seq++
	m.buckets[h] = append(bucket, entry[V]{key: k, value: v, seq: m.seq})
	m.size++
}

func (m *Map[V]) Delete(k Key) bool {
	h := m.comparer.Hash(k)
	bucket := m.buckets[h]
	for i := range bucket {
		if m.comparer.Equal(bucket[i].key, k) {
			bucket = append(bucket[:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(m.buckets, h)
			} else {
				m.buckets[h] = bucket
			}
			m.size--
			return true
		}
	}
	return false
}

// Range calls fn for every entry in insertion order until fn returns false.
// Overwriting a key with Set keeps its original position.
func (m *Map[V]) Range(fn func(k Key, v V) bool) {
	entries := make([]entry[V], 0, m.size)
	for _, bucket := range m.buckets {
		entries = append(entries, bucket...)
	}
	slices.SortFunc(entries, func(a, b entry[V]) int { return cmp.Compare(a.seq, b.seq) })

	for _, e := range entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Package cache provides a small weak-reference cache. Entries do not keep
// their values alive: once a value has been collected the entry reads as a
// miss and is evicted.
//
// Cache is not synchronized; callers serialize access.
package cache

import (
	"hash/maphash"
	"weak"
)

// Hasher supplies equality and hashing for keys that are not usable as Go map
// keys directly.
type Hasher[K any] interface {
	Equal(a, b K) bool
	Hash(k K) uint64
}

type comparableHasher[K comparable] struct {
	seed maphash.Seed
}

// Comparable returns a Hasher for ordinary comparable keys.
func Comparable[K comparable]() Hasher[K] {
	return comparableHasher[K]{seed: maphash.MakeSeed()}
}

func (h comparableHasher[K]) Equal(a, b K) bool { return a == b }
func (h comparableHasher[K]) Hash(k K) uint64   { return maphash.Comparable(h.seed, k) }

type entry[K, V any] struct {
	key K
	ref weak.Pointer[V]
}

type Cache[K, V any] struct {
	hasher  Hasher[K]
	buckets map[uint64][]entry[K, V]
	size    int
}

func New[K, V any](hasher Hasher[K]) *Cache[K, V] {
	return &Cache[K, V]{
		hasher:  hasher,
		buckets: make(map[uint64][]entry[K, V]),
	}
}

func (c *Cache[K, V]) Len() int { return c.size }

// TryGet returns the live value for k. A collected value is evicted and
// reported as a miss.
func (c *Cache[K, V]) TryGet(k K) (*V, bool) {
	h := c.hasher.Hash(k)
	bucket := c.buckets[h]
	for i := range bucket {
		if !c.hasher.Equal(bucket[i].key, k) {
			continue
		}
		if v := bucket[i].ref.Value(); v != nil {
			return v, true
		}
		c.removeAt(h, i)
		return nil, false
	}
	return nil, false
}

// Set stores v under k, overwriting any previous entry.
func (c *Cache[K, V]) Set(k K, v *V) {
	h := c.hasher.Hash(k)
	bucket := c.buckets[h]
	for i := range bucket {
		if c.hasher.Equal(bucket[i].key, k) {
			bucket[i].ref = weak.Make(v)
			return
		}
	}
	c.buckets[h] = append(bucket, entry[K, V]{key: k, ref: weak.Make(v)})
	c.size++
}

func (c *Cache[K, V]) TryRemove(k K) bool {
	h := c.hasher.Hash(k)
	for i, e := range c.buckets[h] {
		if c.hasher.Equal(e.key, k) {
			c.removeAt(h, i)
			return true
		}
	}
	return false
}

// RemoveFunc drops every entry whose live value satisfies fn, together with
// entries whose value was already collected. It returns the number removed.
func (c *Cache[K, V]) RemoveFunc(fn func(k K, v *V) bool) int {
	removed := 0
	for h, bucket := range c.buckets {
		kept := bucket[:0]
		for _, e := range bucket {
			v := e.ref.Value()
			if v == nil || fn(e.key, v) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(c.buckets, h)
		} else {
			c.buckets[h] = kept
		}
	}
	c.size -= removed
	return removed
}

func (c *Cache[K, V]) Clear() {
	c.buckets = make(map[uint64][]entry[K, V])
	c.size = 0
}

func (c *Cache[K, V]) removeAt(h uint64, i int) {
	bucket := append(c.buckets[h][:i], c.buckets[h][i+1:]...)
	if len(bucket) == 0 {
		delete(c.buckets, h)
	} else {
		c.buckets[h] = bucket
	}
	c.size--
}

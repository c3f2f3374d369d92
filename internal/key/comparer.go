package key

// Comparer decides key equality and hashing for one registry partition.
type Comparer interface {
	Equal(a, b Key) bool
	Hash(k Key) uint64
}

// FilteredComparer compares keys while ignoring the dimensions in Filter.
type FilteredComparer struct {
	Filter Filter
}

func (c FilteredComparer) Equal(a, b Key) bool { return Equal(a, b, c.Filter) }

func (c FilteredComparer) Hash(k Key) uint64 {
	if k == nil {
		return 0
	}
	return k.Hash(c.Filter)
}

func (c FilteredComparer) String() string { return c.Filter.String() }

var (
	DefaultComparer        Comparer = FilteredComparer{Filter: FilterNone}
	AnyTagComparer         Comparer = FilteredComparer{Filter: FilterTags}
	AnyStateComparer       Comparer = FilteredComparer{Filter: FilterStates}
	AnyTagAnyStateComparer Comparer = FilteredComparer{Filter: FilterTags | FilterStates}
)

package stabs

import "github.com/elliotchance/orderedmap"

// TypeIndex is the per-file mapping from (file, type) number to parsed
// STABS type, used to resolve forward and backward references. It is
// mutated only while parsing; lowering treats it as read-only. The
// underlying ordered map preserves the order in which types were first
// defined, which a driver can use to walk the graph deterministically.
type TypeIndex struct {
	types *orderedmap.OrderedMap
}

// NewTypeIndex returns an empty index.
func NewTypeIndex() *TypeIndex {
	return &TypeIndex{types: orderedmap.NewOrderedMap()}
}

// Set records t under its own type number, overwriting any previous entry.
func (idx *TypeIndex) Set(t *Type) {
	idx.types.Set(t.Number, t)
}

// Find looks up a type by number. The second return value is false on a
// miss.
func (idx *TypeIndex) Find(number TypeNumber) (*Type, bool) {
	v, ok := idx.types.Get(number)
	if !ok {
		return nil, false
	}
	return v.(*Type), true
}

// Len returns the number of distinct type numbers recorded.
func (idx *TypeIndex) Len() int {
	return idx.types.Len()
}

// Numbers returns every recorded type number in the order it was first
// defined.
func (idx *TypeIndex) Numbers() []TypeNumber {
	keys := idx.types.Keys()
	numbers := make([]TypeNumber, len(keys))
	for i, k := range keys {
		numbers[i] = k.(TypeNumber)
	}
	return numbers
}

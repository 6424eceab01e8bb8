package stabs

import "testing"

func TestTypeIndex_SetAndFind(t *testing.T) {
	idx := NewTypeIndex()
	t1 := &Type{Number: TypeNumber{File: 0, Type: 1}, Descriptor: Builtin}
	t2 := &Type{Number: TypeNumber{File: 0, Type: 2}, Descriptor: Builtin}

	idx.Set(t1)
	idx.Set(t2)

	got, ok := idx.Find(TypeNumber{File: 0, Type: 1})
	if !ok || got != t1 {
		t.Fatalf("expected to find t1, got %+v, %v", got, ok)
	}

	if _, ok := idx.Find(TypeNumber{File: 0, Type: 99}); ok {
		t.Fatalf("expected a miss for an unregistered type number")
	}

	if idx.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", idx.Len())
	}
}

func TestTypeIndex_SetOverwritesAndPreservesOrder(t *testing.T) {
	idx := NewTypeIndex()
	n1 := TypeNumber{File: 0, Type: 1}
	n2 := TypeNumber{File: 0, Type: 2}

	idx.Set(&Type{Number: n1, Descriptor: Builtin})
	idx.Set(&Type{Number: n2, Descriptor: Builtin})
	idx.Set(&Type{Number: n1, Descriptor: Struct})

	if idx.Len() != 2 {
		t.Fatalf("expected overwriting an existing number not to grow the index, got %d entries", idx.Len())
	}

	got, _ := idx.Find(n1)
	if got.Descriptor != Struct {
		t.Fatalf("expected the later Set to win, got descriptor %v", got.Descriptor)
	}

	numbers := idx.Numbers()
	if len(numbers) != 2 || numbers[0] != n1 || numbers[1] != n2 {
		t.Fatalf("expected Numbers to preserve first-defined order, got %+v", numbers)
	}
}

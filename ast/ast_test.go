package ast

import "testing"

func TestSettersMutateCommonAttrs(t *testing.T) {
	n := &BuiltIn{Class: Signed32}

	SetName(n, "count")
	SetOffsetBytes(n, 4)
	SetSizeBits(n, 32)
	SetConst(n, true)
	SetVolatile(n, true)
	SetBaseClass(n, true)
	SetVtablePointer(n, true)
	SetConstructorOrDestructor(n, true)
	SetSpecialMemberFunction(n, true)
	SetOperatorMemberFunction(n, true)
	SetStorageClass(n, StorageStatic)
	SetAccessSpecifier(n, AccessProtected)

	got := CommonAttrs(n)
	want := Attrs{
		Name:                      "count",
		OffsetBytes:               4,
		SizeBits:                  32,
		IsConst:                   true,
		IsVolatile:                true,
		IsBaseClass:               true,
		IsVtablePointer:           true,
		IsConstructorOrDestructor: true,
		IsSpecialMemberFunction:   true,
		IsOperatorMemberFunction:  true,
		StorageClass:              StorageStatic,
		AccessSpecifier:           AccessProtected,
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCommonAttrsIsACopy(t *testing.T) {
	n := &BuiltIn{}
	SetName(n, "original")

	snapshot := CommonAttrs(n)
	SetName(n, "changed")

	if snapshot.Name != "original" {
		t.Fatalf("expected snapshot to be unaffected by later mutation, got %q", snapshot.Name)
	}
}

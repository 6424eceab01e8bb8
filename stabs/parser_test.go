package stabs

import "testing"

func TestJoinContinuations(t *testing.T) {
	symbols := []RawSymbol{
		{String: `foo:t1=s4a:1,0,32;` + `\`, IsNilClassZero: true},
		{String: `;`, IsNilClassZero: true},
		{String: `$ignored`, IsNilClassZero: true},
		{String: `bar:t2=r1;0;9;`, IsNilClassZero: true},
		{String: `notype`, IsNilClassZero: false},
	}
	got := JoinContinuations(symbols)
	want := []string{`foo:t1=s4a:1,0,32;;`, `bar:t2=r1;0;9;`}
	if len(got) != len(want) {
		t.Fatalf("got %d symbols, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseSymbol_Builtin(t *testing.T) {
	idx := NewTypeIndex()
	sym, err := ParseSymbol("int:t1=b1;", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.Name != "int" || sym.Descriptor != SymTypeName {
		t.Fatalf("unexpected symbol: %+v", sym)
	}
	if sym.Type.Descriptor != Builtin || sym.Type.Builtin.TypeID != 1 {
		t.Fatalf("unexpected type: %+v", sym.Type)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected 1 registered type, got %d", idx.Len())
	}
}

func TestParseSymbol_Range(t *testing.T) {
	idx := NewTypeIndex()
	sym, err := ParseSymbol("int:t1=r1;0;4294967295;", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rg := sym.Type.Range
	if rg == nil {
		t.Fatalf("expected range payload, got %+v", sym.Type)
	}
	if rg.Low != "0" || rg.High != "4294967295" {
		t.Fatalf("unexpected bounds: low=%q high=%q", rg.Low, rg.High)
	}
}

func TestParseSymbol_Pointer(t *testing.T) {
	idx := NewTypeIndex()
	sym, err := ParseSymbol("p:t1=*2=r2;0;4294967295;", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.Type.Descriptor != Pointer {
		t.Fatalf("expected pointer, got %v", sym.Type.Descriptor)
	}
	value := sym.Type.Pointer.ValueType
	if value.Descriptor != Range || value.Number.Type != 2 {
		t.Fatalf("unexpected pointee: %+v", value)
	}
}

func TestParseSymbol_Array(t *testing.T) {
	idx := NewTypeIndex()
	sym, err := ParseSymbol("a:t1=ar1;0;9;2", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := sym.Type.Array
	if arr == nil {
		t.Fatalf("expected array payload, got %+v", sym.Type)
	}
	if arr.ElementType.Descriptor != TypeReference {
		t.Fatalf("unexpected element type: %+v", arr.ElementType)
	}
}

func TestParseSymbol_EnumPreservesOrder(t *testing.T) {
	idx := NewTypeIndex()
	sym, err := ParseSymbol("Color:T1=eRED:2,GREEN:1,BLUE:0,;", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.Descriptor != SymEnumStructOrTypeTag {
		t.Fatalf("unexpected descriptor: %v", sym.Descriptor)
	}
	e := sym.Type.Enum
	if e == nil || len(e.Constants) != 3 {
		t.Fatalf("unexpected enum: %+v", sym.Type)
	}
	wantNames := []string{"RED", "GREEN", "BLUE"}
	wantValues := []int64{2, 1, 0}
	for i, c := range e.Constants {
		if c.Name != wantNames[i] || c.Value != wantValues[i] {
			t.Errorf("constant %d: got %+v, want %s=%d", i, c, wantNames[i], wantValues[i])
		}
	}
}

func TestParseSymbol_CrossReference(t *testing.T) {
	idx := NewTypeIndex()
	sym, err := ParseSymbol("p:t1=*xsFoo:", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	xref := sym.Type.Pointer.ValueType.CrossReference
	if xref == nil || xref.Identifier != "Foo" || xref.Kind != ForwardStruct {
		t.Fatalf("unexpected cross reference: %+v", xref)
	}
}

func TestParseSymbol_StructWithFieldsAndMemberFunctions(t *testing.T) {
	idx := NewTypeIndex()
	sym, err := ParseSymbol("Point:T1=s8x:2=r9;0;4294967295;,0,32;y:2,32,32;;Point::3:mangled;3A?;;", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	su := sym.Type.StructOrUnion
	if su == nil {
		t.Fatalf("expected struct payload, got %+v", sym.Type)
	}
	if su.SizeBytes != 8 {
		t.Fatalf("unexpected size: %d", su.SizeBytes)
	}
	if len(su.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %+v", len(su.Fields), su.Fields)
	}
	if su.Fields[0].Name != "x" || su.Fields[0].OffsetBits != 0 || su.Fields[0].SizeBits != 32 {
		t.Errorf("unexpected field 0: %+v", su.Fields[0])
	}
	if su.Fields[1].Name != "y" || su.Fields[1].OffsetBits != 32 || su.Fields[1].SizeBits != 32 {
		t.Errorf("unexpected field 1: %+v", su.Fields[1])
	}
	if len(su.MemberFunctions) != 1 || su.MemberFunctions[0].Name != "Point" {
		t.Fatalf("unexpected member functions: %+v", su.MemberFunctions)
	}
	overloads := su.MemberFunctions[0].Overloads
	if len(overloads) != 1 {
		t.Fatalf("expected 1 overload, got %d", len(overloads))
	}
	if !overloads[0].IsStatic {
		t.Errorf("expected static overload: %+v", overloads[0])
	}
}

func TestParseSymbol_Function(t *testing.T) {
	idx := NewTypeIndex()
	sym, err := ParseSymbol("f:t1=f2=r1;0;4294967295;", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := sym.Type.Function
	if fn == nil || fn.ReturnType.Descriptor != Range {
		t.Fatalf("unexpected function type: %+v", sym.Type)
	}
}

func TestParseSymbol_UnknownDescriptorIsError(t *testing.T) {
	idx := NewTypeIndex()
	if _, err := ParseSymbol("x:t1=/1;", 0, idx); err == nil {
		t.Fatal("expected error for unsupported descriptor letter")
	}
}

func TestParseSymbol_BackwardReferenceResolvesSameNode(t *testing.T) {
	idx := NewTypeIndex()
	if _, err := ParseSymbol("int:t1=r1;0;4294967295;", 0, idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, err := ParseSymbol("p:t2=*1", 0, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := sym.Type.Pointer.ValueType
	if ref.HasBody {
		t.Fatalf("expected body-less backward reference, got %+v", ref)
	}
	resolved, ok := idx.Find(ref.Number)
	if !ok || resolved.Descriptor != Range {
		t.Fatalf("expected backward reference to resolve to the range type, got %+v, ok=%v", resolved, ok)
	}
}

// Package stabs turns a STABS-encoded symbol string into a tree of type
// descriptors (the "STABS graph") and maintains a per-file index from type
// number to parsed type so that forward and backward references resolve
// to the same node.
package stabs

// TypeNumber identifies a STABS type within one file by its (file, type)
// pair, as assigned by the compiler in the symbol string itself.
type TypeNumber struct {
	File int32
	Type int32
}

// Descriptor tags the variant of a Type.
type Descriptor int

const (
	TypeReference Descriptor = iota
	Array
	Enum
	Function
	VolatileQualifier
	ConstQualifier
	Range
	Struct
	Union
	CrossReference
	FloatingPointBuiltin
	Method
	Pointer
	Reference
	TypeAttribute
	PointerToDataMember
	Builtin
)

// ForwardKind is the kind named by a CROSS_REFERENCE descriptor.
type ForwardKind int

const (
	ForwardStruct ForwardKind = iota
	ForwardUnion
	ForwardEnum
)

// FieldVisibility is the access level encoded for a struct/union field or
// member function overload.
type FieldVisibility int

const (
	VisibilityNone FieldVisibility = iota
	VisibilityPublic
	VisibilityProtected
	VisibilityPrivate
	VisibilityPublicOptimizedOut
	VisibilityIgnore
)

// MemberFunctionModifier records the const/volatile qualification of one
// member function overload; its virtual/static kind is kept in the
// overload's IsVirtual and IsStatic fields.
type MemberFunctionModifier int

const (
	ModifierNone MemberFunctionModifier = iota
	ModifierConst
	ModifierVolatile
	ModifierConstVolatile
)

// Type is one node of the STABS graph: a type number, a has-body flag
// distinguishing definitions from forward references, and a descriptor
// with variant-specific payload. For a type with a body, exactly one of the
// payload pointers below is non-nil, selected by Descriptor; a body-less
// reference carries no payload and is resolved by Number.
type Type struct {
	Number    TypeNumber
	HasBody   bool
	Anonymous bool
	HasName   bool
	Name      string
	IsRoot    bool

	Descriptor Descriptor

	TypeReference        *TypeReferencePayload
	Array                *ArrayPayload
	Enum                 *EnumPayload
	Function             *FunctionPayload
	Qualifier            *QualifierPayload
	Range                *RangePayload
	StructOrUnion        *StructOrUnionPayload
	CrossReference       *CrossReferencePayload
	FloatingPointBuiltin *FloatingPointBuiltinPayload
	Method               *MethodPayload
	Pointer              *PointerPayload
	Reference            *ReferencePayload
	TypeAttribute        *TypeAttributePayload
	PointerToDataMember  *PointerToDataMemberPayload
	Builtin              *BuiltinPayload
}

// TypeReferencePayload names another type by number without embedding it
// inline; the lowerer resolves Number through the index, same as any
// other body-less reference.
type TypeReferencePayload struct {
	Number TypeNumber
}

type ArrayPayload struct {
	IndexType   *Type
	ElementType *Type
}

type EnumConstant struct {
	Name  string
	Value int64
}

type EnumPayload struct {
	Constants []EnumConstant
}

type FunctionPayload struct {
	ReturnType *Type
}

// QualifierPayload backs both VOLATILE_QUALIFIER and CONST_QUALIFIER;
// Descriptor distinguishes which one applies.
type QualifierPayload struct {
	Type *Type
}

type RangePayload struct {
	Type *Type
	Low  string
	High string
}

type BaseClass struct {
	Visibility FieldVisibility
	Offset     int64
	Type       *Type
}

type Field struct {
	Name       string
	Type       *Type
	OffsetBits int64
	SizeBits   int64
	IsStatic   bool
	Visibility FieldVisibility
}

// MemberFunctionOverload is one STABS method signature within a named
// overload set.
type MemberFunctionOverload struct {
	Type         *Type
	Visibility   FieldVisibility
	Modifier     MemberFunctionModifier
	IsVirtual    bool
	IsStatic     bool
	VtableIndex  int64
}

// MemberFunctionSet groups all overloads sharing one mangled name.
type MemberFunctionSet struct {
	Name      string
	Overloads []MemberFunctionOverload
}

type StructOrUnionPayload struct {
	SizeBytes       int64
	BaseClasses     []BaseClass
	Fields          []Field
	MemberFunctions []MemberFunctionSet
}

type CrossReferencePayload struct {
	Identifier string
	Kind       ForwardKind
}

type FloatingPointBuiltinPayload struct {
	Bytes int64
}

type MethodPayload struct {
	ReturnType     *Type
	ParameterTypes []*Type
}

type PointerPayload struct {
	ValueType *Type
}

type ReferencePayload struct {
	ValueType *Type
}

type TypeAttributePayload struct {
	Type     *Type
	SizeBits int64
}

type PointerToDataMemberPayload struct {
	ClassType  *Type
	MemberType *Type
}

type BuiltinPayload struct {
	TypeID int64
}

// SymbolDescriptor is the letter preceding a STABS type string in a symbol,
// identifying the kind of thing being declared.
type SymbolDescriptor int

const (
	SymLocalVariable SymbolDescriptor = iota
	SymA
	SymLocalFunction
	SymGlobalFunction
	SymGlobalVariable
	SymRegisterParameter
	SymValueParameter
	SymRegisterVariable
	SymStaticGlobalVariable
	SymTypeName
	SymEnumStructOrTypeTag
	SymStaticLocalVariable
)

// Symbol is the result of parsing one (possibly continuation-joined) STABS
// symbol string: a name and its root type.
type Symbol struct {
	Name       string
	Descriptor SymbolDescriptor
	Type       *Type
}

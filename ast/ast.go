// Package ast defines the typed output of the lowering pipeline: a single
// tagged-variant Node with a common attribute block, and one concrete
// struct per variant.
package ast

// StorageClass tags a node's storage duration as declared in the source
// STABS field or symbol, used only to mark static struct members today.
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageStatic
)

// AccessSpecifier is the access level attached to a node after §4.4.9
// visibility mapping collapses the wider set of STABS visibilities.
type AccessSpecifier int

const (
	AccessPublic AccessSpecifier = iota
	AccessProtected
	AccessPrivate
)

// Attrs is embedded in every concrete node and carries the attributes
// common to all of them.
type Attrs struct {
	Name        string
	OffsetBytes int64
	SizeBits    int64

	IsConst    bool
	IsVolatile bool

	IsBaseClass               bool
	IsVtablePointer           bool
	IsConstructorOrDestructor bool
	IsSpecialMemberFunction   bool
	IsOperatorMemberFunction  bool

	StorageClass    StorageClass
	AccessSpecifier AccessSpecifier
}

// Node is implemented by every AST variant.
type Node interface {
	attrs() *Attrs
}

// CommonAttrs returns the attribute block shared by every node, for
// consumers that only need to inspect the common fields.
func CommonAttrs(n Node) Attrs {
	return *n.attrs()
}

// BuiltInClass enumerates the fixed set of built-in types the lowerer can
// produce; it is a closed, STABS-range-table-driven set, not a general
// type-system representation.
type BuiltInClass int

const (
	Void BuiltInClass = iota
	Bool8
	Unsigned8
	Unsigned16
	Unsigned32
	Unsigned64
	Unsigned128
	Signed8
	Signed16
	Signed32
	Signed64
	Signed128
	Unqualified8
	Unqualified128
	Float32
	Float64
	Float128
)

type BuiltIn struct {
	Attrs
	Class BuiltInClass
}

func (n *BuiltIn) attrs() *Attrs { return &n.Attrs }

type Array struct {
	Attrs
	ElementType  Node
	ElementCount uint32
}

func (n *Array) attrs() *Attrs { return &n.Attrs }

type EnumConstant struct {
	Name  string
	Value int64
}

type Enum struct {
	Attrs
	Constants []EnumConstant
}

func (n *Enum) attrs() *Attrs { return &n.Attrs }

// FunctionModifier records the const/volatile qualification carried over
// from the STABS member function overload that produced this node; static
// and virtual are carried by Function.IsStatic and VtableIndex instead.
type FunctionModifier int

const (
	ModifierNormal FunctionModifier = iota
	ModifierConst
	ModifierVolatile
	ModifierConstVolatile
)

type Function struct {
	Attrs
	ReturnType     Node
	Parameters     []Node
	Modifier       FunctionModifier
	IsStatic       bool
	VtableIndex    int64
	HasVtableIndex bool
}

func (n *Function) attrs() *Attrs { return &n.Attrs }

// A base class is lowered as an ordinary Node with IsBaseClass set on its
// Attrs, rather than a separate wrapper type, since it carries nothing a
// plain Node plus an access specifier and offset don't already have.
type StructOrUnion struct {
	Attrs
	IsStruct        bool
	BaseClasses     []Node
	Fields          []Node
	MemberFunctions []Node
}

func (n *StructOrUnion) attrs() *Attrs { return &n.Attrs }

// TypeNameSource distinguishes the three reasons the lowerer can emit an
// unresolved TypeName instead of expanding a type inline.
type TypeNameSource int

const (
	SourceReference TypeNameSource = iota
	SourceCrossReference
	SourceThis
)

// ForwardKind mirrors stabs.ForwardKind for cross-reference TypeNames,
// duplicated here so ast has no dependency on the stabs package.
type ForwardKind int

const (
	ForwardStruct ForwardKind = iota
	ForwardUnion
	ForwardEnum
)

// FileHandle is opaque to the core; the driver's identifier for the file
// a TypeName's type number is relative to, carried verbatim for a later
// cross-file resolution pass.
type FileHandle any

type TypeName struct {
	Attrs
	Source TypeNameSource

	// Populated when Source is SourceReference or SourceThis.
	FileHandle FileHandle
	TypeFile   int32
	TypeNumber int32

	// Populated when Source is SourceCrossReference.
	ForwardKind ForwardKind
}

func (n *TypeName) attrs() *Attrs { return &n.Attrs }

type BitField struct {
	Attrs
	UnderlyingType     Node
	BitfieldOffsetBits int64
}

func (n *BitField) attrs() *Attrs { return &n.Attrs }

type PointerOrReference struct {
	Attrs
	IsPointer bool
	ValueType Node
}

func (n *PointerOrReference) attrs() *Attrs { return &n.Attrs }

type PointerToDataMember struct {
	Attrs
	ClassType  Node
	MemberType Node
}

func (n *PointerToDataMember) attrs() *Attrs { return &n.Attrs }

type Error struct {
	Attrs
	Message string
}

func (n *Error) attrs() *Attrs { return &n.Attrs }

// The lowerer builds a node and then fills in the attributes common to
// every variant (name, offset, access, ...) from the STABS field, base
// class, or member function overload that produced it. These setters are
// the only way to reach the private attrs() accessor from outside this
// package, keeping the variant set closed while still letting the lowerer
// finish construction in one place.

func SetName(n Node, name string)                     { n.attrs().Name = name }
func SetOffsetBytes(n Node, v int64)                   { n.attrs().OffsetBytes = v }
func SetSizeBits(n Node, v int64)                      { n.attrs().SizeBits = v }
func SetConst(n Node, v bool)                          { n.attrs().IsConst = v }
func SetVolatile(n Node, v bool)                       { n.attrs().IsVolatile = v }
func SetBaseClass(n Node, v bool)                      { n.attrs().IsBaseClass = v }
func SetVtablePointer(n Node, v bool)                  { n.attrs().IsVtablePointer = v }
func SetConstructorOrDestructor(n Node, v bool)        { n.attrs().IsConstructorOrDestructor = v }
func SetSpecialMemberFunction(n Node, v bool)          { n.attrs().IsSpecialMemberFunction = v }
func SetOperatorMemberFunction(n Node, v bool)         { n.attrs().IsOperatorMemberFunction = v }
func SetStorageClass(n Node, v StorageClass)           { n.attrs().StorageClass = v }
func SetAccessSpecifier(n Node, v AccessSpecifier)     { n.attrs().AccessSpecifier = v }

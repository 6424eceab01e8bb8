package lower

import (
	"github.com/cualquiercosa327/ccc/ast"
	"github.com/cualquiercosa327/ccc/stabs"
)

func lowerStructOrUnion(t *stabs.Type, state *State, depth int) (ast.Node, error) {
	su := t.StructOrUnion
	node := &ast.StructOrUnion{IsStruct: t.Descriptor == stabs.Struct}
	ast.SetSizeBits(node, su.SizeBytes*8)

	bases, err := lowerBaseClasses(su.BaseClasses, t, state, depth)
	if err != nil {
		return nil, err
	}
	node.BaseClasses = bases

	fields, err := lowerFields(su.Fields, t, state, depth)
	if err != nil {
		return nil, err
	}
	node.Fields = fields

	memberFuncs, err := lowerMemberFunctions(su, t, state, depth)
	if err != nil {
		return nil, err
	}
	node.MemberFunctions = memberFuncs

	return node, nil
}

func lowerBaseClasses(bases []stabs.BaseClass, enclosing *stabs.Type, state *State, depth int) ([]ast.Node, error) {
	if len(bases) == 0 {
		return nil, nil
	}
	out := make([]ast.Node, 0, len(bases))
	for _, bc := range bases {
		node, err := Lower(bc.Type, enclosing, state, depth+1, true, true)
		if err != nil {
			return nil, err
		}
		ast.SetBaseClass(node, true)
		ast.SetOffsetBytes(node, bc.Offset)
		ast.SetAccessSpecifier(node, visibilityToAccess(bc.Visibility, state))
		out = append(out, node)
	}
	return out, nil
}

func lowerFields(fields []stabs.Field, enclosing *stabs.Type, state *State, depth int) ([]ast.Node, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]ast.Node, 0, len(fields))
	for _, f := range fields {
		node, err := lowerField(f, enclosing, state, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

// lowerField implements §4.4.6: decide whether the field is a bitfield,
// then lower its type and attach the common attributes.
func lowerField(field stabs.Field, enclosing *stabs.Type, state *State, depth int) (ast.Node, error) {
	isBitfield := false
	if !field.IsStatic {
		if bits, ok := resolveUnderlyingBits(field.Type, state); ok && field.SizeBits != bits {
			isBitfield = true
		}
	}

	if isBitfield {
		underlying, err := Lower(field.Type, enclosing, state, depth+1, true, false)
		if err != nil {
			return nil, err
		}
		name := field.Name
		if name == " " {
			name = ""
		}
		node := &ast.BitField{
			UnderlyingType:     underlying,
			BitfieldOffsetBits: field.OffsetBits % 8,
		}
		ast.SetName(node, name)
		ast.SetOffsetBytes(node, field.OffsetBits/8)
		ast.SetSizeBits(node, field.SizeBits)
		ast.SetAccessSpecifier(node, visibilityToAccess(field.Visibility, state))
		return node, nil
	}

	node, err := Lower(field.Type, enclosing, state, depth+1, true, false)
	if err != nil {
		return nil, err
	}
	ast.SetName(node, field.Name)
	ast.SetOffsetBytes(node, field.OffsetBits/8)
	ast.SetSizeBits(node, field.SizeBits)
	ast.SetAccessSpecifier(node, visibilityToAccess(field.Visibility, state))
	if vtablePointerPattern.MatchString(field.Name) {
		ast.SetVtablePointer(node, true)
	}
	if field.IsStatic {
		ast.SetStorageClass(node, ast.StorageStatic)
	}
	return node, nil
}

// resolveUnderlyingBits follows TYPE_REFERENCE, CONST_QUALIFIER,
// VOLATILE_QUALIFIER and body-less references for at most 50 steps,
// bailing out on a self-cycle or an unresolved reference, then reports
// the bit width implied by the terminal descriptor.
func resolveUnderlyingBits(t *stabs.Type, state *State) (int64, bool) {
	cur := t
	for i := 0; i < 50; i++ {
		switch {
		case !cur.HasBody:
			next, ok := state.Index.Find(cur.Number)
			if !ok || next == cur {
				return 0, false
			}
			cur = next
		case cur.Descriptor == stabs.TypeReference:
			next, ok := state.Index.Find(cur.TypeReference.Number)
			if !ok || next == cur {
				return 0, false
			}
			cur = next
		case cur.Descriptor == stabs.ConstQualifier || cur.Descriptor == stabs.VolatileQualifier:
			cur = cur.Qualifier.Type
		default:
			return underlyingBitsForDescriptor(cur)
		}
		if i == 49 {
			return 0, false
		}
	}
	return underlyingBitsForDescriptor(cur)
}

func underlyingBitsForDescriptor(t *stabs.Type) (int64, bool) {
	switch t.Descriptor {
	case stabs.Range:
		class, err := classifyRange(t.Range.Low, t.Range.High)
		if err != nil {
			return 0, false
		}
		return builtInClassBits(class), true
	case stabs.CrossReference:
		if t.CrossReference.Kind == stabs.ForwardEnum {
			return 32, true
		}
		return 0, false
	case stabs.TypeAttribute:
		return t.TypeAttribute.SizeBits, true
	case stabs.Builtin:
		return 8, true
	default:
		return 0, false
	}
}

// visibilityToAccess implements §4.4.9. PUBLIC_OPTIMIZED_OUT collapses to
// PUBLIC by default; under StrictVisibility it additionally records a
// diagnostic rather than changing the result.
func visibilityToAccess(v stabs.FieldVisibility, state *State) ast.AccessSpecifier {
	switch v {
	case stabs.VisibilityProtected:
		return ast.AccessProtected
	case stabs.VisibilityPrivate:
		return ast.AccessPrivate
	case stabs.VisibilityPublicOptimizedOut:
		if state.StrictVisibility {
			state.Diagnostics = append(state.Diagnostics, "field visibility PUBLIC_OPTIMIZED_OUT collapsed to PUBLIC")
		}
		return ast.AccessPublic
	default: // NONE, PUBLIC, IGNORE
		return ast.AccessPublic
	}
}

package lower

import (
	"strconv"
	"strings"

	"github.com/cualquiercosa327/ccc/ast"
	"github.com/cualquiercosa327/ccc/stabs"
	"rsc.io/binaryregexp"
)

var vtablePointerPattern = binaryregexp.MustCompile(`^(\$vf|_vptr\$|_vptr\.)`)

// Lower turns one parsed STABS type into its AST node, following §4.4:
// the recursion guard, name substitution, body-less reference resolution,
// then the descriptor dispatch table. enclosing is the struct or union
// currently being lowered, used only to detect an implicit this-parameter
// cycle through force_substitute; it is nil outside that context.
func Lower(t *stabs.Type, enclosing *stabs.Type, state *State, depth int, substituteTypeName, forceSubstitute bool) (ast.Node, error) {
	if depth > maxLowerDepth {
		if state.Flags&StrictParsing != 0 {
			return nil, &CallDepthExceededError{}
		}
		return &ast.Error{Message: "call depth exceeded"}, nil
	}

	eligibleName := t.HasName && t.Name != "" && t.Name != " " && t.Name != "void" && t.Name != "__builtin_va_list"
	if eligibleName && t.Descriptor != stabs.CrossReference {
		depthCondition := depth > 0 && (t.IsRoot || t.Descriptor == stabs.Range || t.Descriptor == stabs.Builtin)
		if substituteTypeName || depthCondition {
			node := &ast.TypeName{
				Source:     ast.SourceReference,
				FileHandle: state.FileHandle,
				TypeFile:   t.Number.File,
				TypeNumber: t.Number.Type,
			}
			ast.SetName(node, t.Name)
			return node, nil
		}
	}
	if forceSubstitute && !t.Anonymous && enclosing != nil && !enclosing.Anonymous && t.Number == enclosing.Number {
		return &ast.TypeName{
			Source:     ast.SourceThis,
			FileHandle: state.FileHandle,
			TypeFile:   t.Number.File,
			TypeNumber: t.Number.Type,
		}, nil
	}

	if !t.HasBody {
		resolved, ok := state.Index.Find(t.Number)
		if !ok {
			if state.Flags&StrictParsing != 0 {
				return nil, &UnknownTypeNumberError{File: t.Number.File, Type: t.Number.Type}
			}
			state.warn(t, "unknown type number")
			return &ast.Error{Message: "unknown type number"}, nil
		}
		return Lower(resolved, enclosing, state, depth+1, substituteTypeName, forceSubstitute)
	}

	switch t.Descriptor {
	case stabs.TypeReference:
		return lowerTypeReference(t, enclosing, state, depth, substituteTypeName, forceSubstitute)

	case stabs.Array:
		elem, err := Lower(t.Array.ElementType, enclosing, state, depth+1, true, forceSubstitute)
		if err != nil {
			return nil, err
		}
		count, err := arrayElementCount(t.Array.IndexType, state)
		if err != nil {
			return nil, err
		}
		return &ast.Array{ElementType: elem, ElementCount: count}, nil

	case stabs.Enum:
		constants := make([]ast.EnumConstant, len(t.Enum.Constants))
		for i, c := range t.Enum.Constants {
			constants[i] = ast.EnumConstant{Name: c.Name, Value: c.Value}
		}
		return &ast.Enum{Constants: constants}, nil

	case stabs.Function:
		ret, err := Lower(t.Function.ReturnType, enclosing, state, depth+1, true, forceSubstitute)
		if err != nil {
			return nil, err
		}
		return &ast.Function{ReturnType: ret}, nil

	case stabs.ConstQualifier:
		inner, err := Lower(t.Qualifier.Type, enclosing, state, depth+1, substituteTypeName, forceSubstitute)
		if err != nil {
			return nil, err
		}
		ast.SetConst(inner, true)
		return inner, nil

	case stabs.VolatileQualifier:
		inner, err := Lower(t.Qualifier.Type, enclosing, state, depth+1, substituteTypeName, forceSubstitute)
		if err != nil {
			return nil, err
		}
		ast.SetVolatile(inner, true)
		return inner, nil

	case stabs.Range:
		class, err := classifyRange(t.Range.Low, t.Range.High)
		if err != nil {
			if state.Flags&StrictParsing != 0 {
				return nil, err
			}
			state.warn(t, "%s", err.Error())
			return &ast.Error{Message: err.Error()}, nil
		}
		return &ast.BuiltIn{Class: class}, nil

	case stabs.Struct, stabs.Union:
		return lowerStructOrUnion(t, state, depth)

	case stabs.CrossReference:
		node := &ast.TypeName{Source: ast.SourceCrossReference, ForwardKind: ast.ForwardKind(t.CrossReference.Kind)}
		ast.SetName(node, t.CrossReference.Identifier)
		return node, nil

	case stabs.FloatingPointBuiltin:
		return &ast.BuiltIn{Class: floatingPointBuiltinClass(t.FloatingPointBuiltin.Bytes)}, nil

	case stabs.Method:
		ret, err := Lower(t.Method.ReturnType, enclosing, state, depth+1, true, true)
		if err != nil {
			return nil, err
		}
		params := make([]ast.Node, len(t.Method.ParameterTypes))
		for i, p := range t.Method.ParameterTypes {
			pn, err := Lower(p, enclosing, state, depth+1, true, true)
			if err != nil {
				return nil, err
			}
			params[i] = pn
		}
		return &ast.Function{ReturnType: ret, Parameters: params}, nil

	case stabs.Pointer:
		value, err := Lower(t.Pointer.ValueType, enclosing, state, depth+1, true, forceSubstitute)
		if err != nil {
			return nil, err
		}
		return &ast.PointerOrReference{IsPointer: true, ValueType: value}, nil

	case stabs.Reference:
		value, err := Lower(t.Reference.ValueType, enclosing, state, depth+1, true, forceSubstitute)
		if err != nil {
			return nil, err
		}
		return &ast.PointerOrReference{IsPointer: false, ValueType: value}, nil

	case stabs.TypeAttribute:
		inner, err := Lower(t.TypeAttribute.Type, enclosing, state, depth+1, substituteTypeName, forceSubstitute)
		if err != nil {
			return nil, err
		}
		ast.SetSizeBits(inner, t.TypeAttribute.SizeBits)
		return inner, nil

	case stabs.PointerToDataMember:
		class, err := Lower(t.PointerToDataMember.ClassType, enclosing, state, depth+1, true, true)
		if err != nil {
			return nil, err
		}
		member, err := Lower(t.PointerToDataMember.MemberType, enclosing, state, depth+1, true, true)
		if err != nil {
			return nil, err
		}
		return &ast.PointerToDataMember{ClassType: class, MemberType: member}, nil

	case stabs.Builtin:
		if t.Builtin.TypeID != 16 {
			err := &UnknownBuiltinError{ID: t.Builtin.TypeID}
			if state.Flags&StrictParsing != 0 {
				return nil, err
			}
			state.warn(t, "%s", err.Error())
			return &ast.Error{Message: err.Error()}, nil
		}
		return &ast.BuiltIn{Class: ast.Bool8}, nil

	default:
		return nil, &AssertionFailureError{Message: "unhandled type descriptor"}
	}
}

func lowerTypeReference(t *stabs.Type, enclosing *stabs.Type, state *State, depth int, substituteTypeName, forceSubstitute bool) (ast.Node, error) {
	target, ok := state.Index.Find(t.TypeReference.Number)
	if !ok {
		if state.Flags&StrictParsing != 0 {
			return nil, &UnknownTypeNumberError{File: t.TypeReference.Number.File, Type: t.TypeReference.Number.Type}
		}
		state.warn(t, "unknown type number")
		return &ast.Error{Message: "unknown type number"}, nil
	}
	if target.Anonymous || target.Number != t.Number {
		return Lower(target, enclosing, state, depth+1, substituteTypeName, forceSubstitute)
	}
	return &ast.BuiltIn{Class: ast.Void}, nil
}

// arrayElementCount resolves the array's index type, which must be a
// RANGE with low "0", and computes high+1 — except high==4294967295,
// which §4.4.4 treats as the wrap-around encoding of a zero-length array.
func arrayElementCount(indexType *stabs.Type, state *State) (uint32, error) {
	resolved := indexType
	if !resolved.HasBody {
		found, ok := state.Index.Find(resolved.Number)
		if !ok {
			return 0, &UnknownTypeNumberError{File: resolved.Number.File, Type: resolved.Number.Type}
		}
		resolved = found
	}
	if resolved.Descriptor != stabs.Range || resolved.Range == nil {
		return 0, &AssertionFailureError{Message: "array index type is not a range"}
	}
	if resolved.Range.Low != "0" {
		return 0, &AssertionFailureError{Message: "array index range does not start at 0"}
	}
	high, err := strconv.ParseInt(resolved.Range.High, 10, 64)
	if err != nil {
		return 0, &AssertionFailureError{Message: "array index high bound is not a valid decimal integer"}
	}
	if high == 4294967295 {
		return 0, nil
	}
	return uint32(high + 1), nil
}

func floatingPointBuiltinClass(bytes int64) ast.BuiltInClass {
	switch bytes {
	case 1:
		return ast.Unsigned8
	case 2:
		return ast.Unsigned16
	case 4:
		return ast.Unsigned32
	case 8:
		return ast.Unsigned64
	case 16:
		return ast.Unsigned128
	default:
		return ast.Unsigned8
	}
}

func stripTemplateArgs(name string) string {
	if idx := strings.IndexByte(name, '<'); idx >= 0 {
		return name[:idx]
	}
	return name
}

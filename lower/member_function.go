package lower

import (
	"strings"

	"github.com/cualquiercosa327/ccc/ast"
	"github.com/cualquiercosa327/ccc/demangle"
	"github.com/cualquiercosa327/ccc/stabs"
	"rsc.io/binaryregexp"
)

var (
	dollarPrefixPattern          = binaryregexp.MustCompile(`^\$`)
	specialFunctionPrefixPattern = binaryregexp.MustCompile(`^\$_`)
)

// lowerMemberFunctions implements §4.4.7.
func lowerMemberFunctions(su *stabs.StructOrUnionPayload, enclosing *stabs.Type, state *State, depth int) ([]ast.Node, error) {
	if state.Flags&NoMemberFunctions != 0 {
		return nil, nil
	}

	nameNoTemplateArgs := ""
	if enclosing.HasName {
		nameNoTemplateArgs = stripTemplateArgs(enclosing.Name)
	}

	filterGenerated := state.Flags&NoGeneratedMemberFunctions != 0

	if filterGenerated {
		allSpecial := true
		for _, set := range su.MemberFunctions {
			if !setIsAllSpecial(set, nameNoTemplateArgs) {
				allSpecial = false
				break
			}
		}
		if allSpecial {
			return nil, nil
		}
	}

	var out []ast.Node
	onlySpecial := true
	for _, set := range su.MemberFunctions {
		if filterGenerated && setIsAllSpecial(set, nameNoTemplateArgs) {
			continue
		}

		info := classifyMemberFunction(set.Name, nameNoTemplateArgs, state.Demangler)
		if !info.isSpecialMemberFunction {
			onlySpecial = false
		}

		for _, overload := range set.Overloads {
			node, err := Lower(overload.Type, enclosing, state, depth+1, true, true)
			if err != nil {
				return nil, err
			}
			ast.SetName(node, info.name)
			ast.SetConstructorOrDestructor(node, info.isConstructorOrDestructor)
			ast.SetSpecialMemberFunction(node, info.isSpecialMemberFunction)
			ast.SetOperatorMemberFunction(node, info.isOperatorMemberFunction)
			ast.SetAccessSpecifier(node, visibilityToAccess(overload.Visibility, state))
			if fn, ok := node.(*ast.Function); ok {
				fn.Modifier = memberFunctionModifier(overload.Modifier)
				fn.IsStatic = overload.IsStatic
				if overload.IsVirtual {
					fn.VtableIndex = overload.VtableIndex
					fn.HasVtableIndex = true
				}
			}
			out = append(out, node)
		}
	}

	if filterGenerated && onlySpecial {
		return nil, nil
	}
	return out, nil
}

// isSpecialOverload and setIsAllSpecial implement the raw, content-based
// "special" test §4.4.7 uses to decide which sets a NO_GENERATED_MEMBER_
// FUNCTIONS filter drops — distinct from classifyMemberFunction's
// demangled-name classification used once a set has already been kept.
func isSpecialOverload(setName string, overload stabs.MemberFunctionOverload, nameNoTemplateArgs string) bool {
	if setName == "__as" || setName == "operator=" || dollarPrefixPattern.MatchString(setName) {
		return true
	}
	if overload.Type.Descriptor == stabs.Method && len(overload.Type.Method.ParameterTypes) == 0 && setName == nameNoTemplateArgs {
		return true
	}
	return false
}

func setIsAllSpecial(set stabs.MemberFunctionSet, nameNoTemplateArgs string) bool {
	for _, overload := range set.Overloads {
		if overload.Type.Descriptor != stabs.Function && overload.Type.Descriptor != stabs.Method {
			continue
		}
		if !isSpecialOverload(set.Name, overload, nameNoTemplateArgs) {
			return false
		}
	}
	return true
}

type memberFunctionInfo struct {
	name                      string
	isConstructorOrDestructor bool
	isSpecialMemberFunction   bool
	isOperatorMemberFunction  bool
}

// classifyMemberFunction implements §4.4.8.
func classifyMemberFunction(mangledName, nameNoTemplateArgs string, demangler demangle.Functions) memberFunctionInfo {
	info := memberFunctionInfo{name: mangledName}
	if demangler.CplusDemangleOpname != nil {
		if demangled, ok := demangler.CplusDemangleOpname(mangledName); ok && demangled != "" {
			info.name = demangled
			info.isOperatorMemberFunction = true
		}
	}

	isConstructor := info.name == "__ct" || info.name == "__comp_ctor" || info.name == "__base_ctor"
	if !isConstructor && nameNoTemplateArgs != "" {
		isConstructor = info.name == nameNoTemplateArgs
	}

	isDestructor := info.name == "__dt" || info.name == "__comp_dtor" || info.name == "__base_dtor" || info.name == "__deleting_dtor"
	if !isDestructor && strings.HasPrefix(info.name, "~") {
		isDestructor = info.name[1:] == nameNoTemplateArgs
	}

	info.isConstructorOrDestructor = isConstructor || isDestructor || specialFunctionPrefixPattern.MatchString(info.name)
	info.isSpecialMemberFunction = info.isConstructorOrDestructor || info.name == "operator="
	return info
}

func memberFunctionModifier(m stabs.MemberFunctionModifier) ast.FunctionModifier {
	switch m {
	case stabs.ModifierConst:
		return ast.ModifierConst
	case stabs.ModifierVolatile:
		return ast.ModifierVolatile
	case stabs.ModifierConstVolatile:
		return ast.ModifierConstVolatile
	default:
		return ast.ModifierNormal
	}
}

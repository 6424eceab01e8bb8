package stabs

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a lexical or grammatical failure at a byte position
// within a STABS symbol string, per spec §7.
type ParseError struct {
	Position int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("stabs parse error at byte %d: %s", e.Position, e.Reason)
}

func newParseError(pos int, format string, args ...any) error {
	return &ParseError{Position: pos, Reason: fmt.Sprintf(format, args...)}
}

// RawSymbol is the minimal shape the continuation-joining pre-pass needs
// from a decoded local symbol (spec §4.3).
type RawSymbol struct {
	String string
	// IsNilClassZero is true when the symbol's storage type is NIL and its
	// storage class is 0 — only such symbols participate in continuation
	// joining and type declaration parsing.
	IsNilClassZero bool
}

// JoinContinuations concatenates continuation symbols (those whose string
// ends with '\\') with the symbol that follows, and drops any symbol whose
// string begins with '$' or whose storage type/class disqualifies it.
func JoinContinuations(symbols []RawSymbol) []string {
	var out []string
	var pending string
	for _, s := range symbols {
		if !s.IsNilClassZero {
			continue
		}
		if strings.HasPrefix(s.String, "$") {
			continue
		}
		str := pending + s.String
		pending = ""
		if strings.HasSuffix(str, `\`) {
			pending = str[:len(str)-1]
			continue
		}
		out = append(out, str)
	}
	return out
}

type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.s)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) eatByte() (byte, error) {
	if p.eof() {
		return 0, newParseError(p.pos, "unexpected end of input")
	}
	c := p.s[p.pos]
	p.pos++
	return c, nil
}

func (p *parser) expectByte(expected byte, subject string) error {
	c, err := p.eatByte()
	if err != nil {
		return err
	}
	if c != expected {
		return newParseError(p.pos-1, "expected %q in %s, got %q", expected, subject, c)
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// eatNumberLiteral consumes an optional leading '-' followed by one or
// more decimal digits and returns the raw text matched, unconverted. Used
// for RANGE bounds, which classify_range later needs as exact strings —
// some (128-bit, octal-encoded) values don't fit in an int64.
func (p *parser) eatNumberLiteral() (string, error) {
	start := p.pos
	if !p.eof() && p.s[p.pos] == '-' {
		p.pos++
	}
	digitsStart := p.pos
	for !p.eof() && isDigit(p.s[p.pos]) {
		p.pos++
	}
	if p.pos == digitsStart {
		return "", newParseError(p.pos, "expected a number")
	}
	return p.s[start:p.pos], nil
}

// eatS64Literal parses a decimal integer literal, matching stabs.cpp's
// eat_s64_literal: values too large for an int64 are clamped to 0 rather
// than failing the parse.
func (p *parser) eatS64Literal() (int64, error) {
	text, err := p.eatNumberLiteral()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func isIdentifierChar(c byte) bool {
	return c >= 0x20 && c < 0x7f && c != ':' && c != ';'
}

// eatIdentifier reads characters up to (but excluding) the next ':' or
// ';' or other non-printable byte.
func (p *parser) eatIdentifier() (string, error) {
	start := p.pos
	for !p.eof() {
		if !isIdentifierChar(p.s[p.pos]) {
			return p.s[start:p.pos], nil
		}
		p.pos++
	}
	return "", newParseError(p.pos, "unexpected end of input while parsing identifier")
}

// ParseSymbol parses one (already continuation-joined) STABS symbol
// string of the form "name:descriptor[t]type" and registers every
// intermediate numbered type it encounters into index.
func ParseSymbol(raw string, fileIndex int32, index *TypeIndex) (*Symbol, error) {
	p := &parser{s: raw}

	name, err := p.eatIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expectByte(':', "identifier"); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, newParseError(p.pos, "unexpected end of input")
	}

	sym := &Symbol{Name: name}
	if isDigit(p.peek()) {
		sym.Descriptor = SymLocalVariable
	} else {
		c, err := p.eatByte()
		if err != nil {
			return nil, err
		}
		desc, err := symbolDescriptorFromByte(c)
		if err != nil {
			return nil, err
		}
		sym.Descriptor = desc
	}
	if p.eof() {
		return nil, newParseError(p.pos, "unexpected end of input")
	}

	t, err := p.parseType(fileIndex, index, true)
	if err != nil {
		return nil, err
	}
	// A typedef ('t') or tag ('T') symbol names its root type; that name
	// is what §4.4.2 name substitution later emits as a by-name TypeName,
	// and what member-function classification compares set names against.
	if sym.Descriptor == SymTypeName || sym.Descriptor == SymEnumStructOrTypeTag {
		t.Name = name
		t.HasName = true
	}
	sym.Type = t
	return sym, nil
}

func symbolDescriptorFromByte(c byte) (SymbolDescriptor, error) {
	switch c {
	case 'A':
		return SymA, nil
	case 'f':
		return SymLocalFunction, nil
	case 'F':
		return SymGlobalFunction, nil
	case 'G':
		return SymGlobalVariable, nil
	case 'P':
		return SymRegisterParameter, nil
	case 'p':
		return SymValueParameter, nil
	case 'r':
		return SymRegisterVariable, nil
	case 'S':
		return SymStaticGlobalVariable, nil
	case 't':
		return SymTypeName, nil
	case 'T':
		return SymEnumStructOrTypeTag, nil
	case 'V':
		return SymStaticLocalVariable, nil
	default:
		return 0, newParseError(0, "unknown symbol descriptor %q", c)
	}
}

// parseType implements the STABS type grammar (spec §4.3 / stabs.cpp's
// parse_type). isRoot marks the outermost type of a symbol string.
func (p *parser) parseType(fileIndex int32, index *TypeIndex, isRoot bool) (*Type, error) {
	if p.eof() {
		return nil, newParseError(p.pos, "unexpected end of input")
	}

	t := &Type{IsRoot: isRoot}

	if isDigit(p.peek()) {
		t.Anonymous = false
		n, err := p.eatS64Literal()
		if err != nil {
			return nil, err
		}
		t.Number = TypeNumber{File: fileIndex, Type: int32(n)}
		if p.peek() != '=' {
			t.HasBody = false
			return t, nil
		}
		p.pos++ // consume '='
		// Register before descending so self-references within the body
		// resolve to this same node.
		index.Set(t)
	} else {
		t.Anonymous = true
	}
	t.HasBody = true

	if p.eof() {
		return nil, newParseError(p.pos, "unexpected end of input")
	}

	var descLetter byte
	if isDigit(p.peek()) {
		descLetter = 0 // handled as TYPE_REFERENCE below
	} else {
		c, err := p.eatByte()
		if err != nil {
			return nil, err
		}
		descLetter = c
	}

	if descLetter == 0 {
		t.Descriptor = TypeReference
		n, err := p.eatS64Literal()
		if err != nil {
			return nil, err
		}
		t.TypeReference = &TypeReferencePayload{Number: TypeNumber{File: fileIndex, Type: int32(n)}}
	} else if err := p.parseDescriptorBody(t, descLetter, fileIndex, index); err != nil {
		return nil, err
	}

	// Trailing "=<type>" aux suffix: present in the grammar for several
	// descriptors but unused by lowering, so it is consumed and discarded.
	if p.peek() == '=' {
		p.pos++
		if _, err := p.parseType(fileIndex, index, false); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (p *parser) parseDescriptorBody(t *Type, descLetter byte, fileIndex int32, index *TypeIndex) error {
	switch descLetter {
	case 'a': // ARRAY
		indexType, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return err
		}
		elem, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return err
		}
		t.Descriptor = Array
		t.Array = &ArrayPayload{IndexType: indexType, ElementType: elem}

	case 'e': // ENUM
		var constants []EnumConstant
		for p.peek() != ';' {
			name, err := p.eatIdentifier()
			if err != nil {
				return err
			}
			if err := p.expectByte(':', "enum constant"); err != nil {
				return err
			}
			value, err := p.eatS64Literal()
			if err != nil {
				return err
			}
			constants = append(constants, EnumConstant{Name: name, Value: value})
			c, err := p.eatByte()
			if err != nil {
				return err
			}
			if c != ',' {
				return newParseError(p.pos-1, "expected ',' while parsing enum, got %q", c)
			}
		}
		p.pos++ // consume ';'
		t.Descriptor = Enum
		t.Enum = &EnumPayload{Constants: constants}

	case 'f': // FUNCTION
		ret, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return err
		}
		t.Descriptor = Function
		t.Function = &FunctionPayload{ReturnType: ret}

	case 'k': // CONST_QUALIFIER
		inner, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return err
		}
		t.Descriptor = ConstQualifier
		t.Qualifier = &QualifierPayload{Type: inner}

	case 'B': // VOLATILE_QUALIFIER
		inner, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return err
		}
		t.Descriptor = VolatileQualifier
		t.Qualifier = &QualifierPayload{Type: inner}

	case 'r': // RANGE
		inner, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return err
		}
		if err := p.expectByte(';', "range type descriptor"); err != nil {
			return err
		}
		low, err := p.eatNumberLiteral()
		if err != nil {
			return err
		}
		if err := p.expectByte(';', "low range value"); err != nil {
			return err
		}
		high, err := p.eatNumberLiteral()
		if err != nil {
			return err
		}
		if err := p.expectByte(';', "high range value"); err != nil {
			return err
		}
		t.Descriptor = Range
		t.Range = &RangePayload{Type: inner, Low: low, High: high}

	case 's', 'u': // STRUCT / UNION
		size, err := p.eatS64Literal()
		if err != nil {
			return err
		}
		var baseClasses []BaseClass
		if p.peek() == '!' {
			p.pos++
			count, err := p.eatS64Literal()
			if err != nil {
				return err
			}
			if err := p.expectByte(',', "base class section"); err != nil {
				return err
			}
			for i := int64(0); i < count; i++ {
				if _, err := p.eatByte(); err != nil { // virtuality flag, unused
					return err
				}
				visByte, err := p.eatByte()
				if err != nil {
					return err
				}
				offset, err := p.eatS64Literal()
				if err != nil {
					return err
				}
				if err := p.expectByte(',', "base class section"); err != nil {
					return err
				}
				bt, err := p.parseType(fileIndex, index, false)
				if err != nil {
					return err
				}
				if err := p.expectByte(';', "base class section"); err != nil {
					return err
				}
				baseClasses = append(baseClasses, BaseClass{
					Visibility: fieldVisibilityFromByte(visByte),
					Offset:     offset,
					Type:       bt,
				})
			}
		}
		fields, err := p.parseFieldList(fileIndex, index)
		if err != nil {
			return err
		}
		memberFuncs, err := p.parseMemberFunctions(fileIndex, index)
		if err != nil {
			return err
		}
		if descLetter == 's' {
			t.Descriptor = Struct
		} else {
			t.Descriptor = Union
		}
		t.StructOrUnion = &StructOrUnionPayload{
			SizeBytes:       size,
			BaseClasses:     baseClasses,
			Fields:          fields,
			MemberFunctions: memberFuncs,
		}

	case 'x': // CROSS_REFERENCE
		kindByte, err := p.eatByte()
		if err != nil {
			return err
		}
		var kind ForwardKind
		switch kindByte {
		case 's':
			kind = ForwardStruct
		case 'u':
			kind = ForwardUnion
		case 'e':
			kind = ForwardEnum
		default:
			return newParseError(p.pos-1, "invalid cross reference type %q", kindByte)
		}
		identifier, err := p.eatIdentifier()
		if err != nil {
			return err
		}
		if err := p.expectByte(':', "cross reference"); err != nil {
			return err
		}
		t.Descriptor = CrossReference
		t.CrossReference = &CrossReferencePayload{Identifier: identifier, Kind: kind}

	case 'R': // FLOATING_POINT_BUILTIN
		if _, err := p.eatS64Literal(); err != nil { // fp type id, unused
			return err
		}
		if err := p.expectByte(';', "floating point builtin"); err != nil {
			return err
		}
		bytesSize, err := p.eatS64Literal()
		if err != nil {
			return err
		}
		if err := p.expectByte(';', "floating point builtin"); err != nil {
			return err
		}
		if _, err := p.eatS64Literal(); err != nil { // value, unused
			return err
		}
		if err := p.expectByte(';', "floating point builtin"); err != nil {
			return err
		}
		t.Descriptor = FloatingPointBuiltin
		t.FloatingPointBuiltin = &FloatingPointBuiltinPayload{Bytes: bytesSize}

	case '#': // METHOD
		if p.peek() == '#' {
			p.pos++
			ret, err := p.parseType(fileIndex, index, false)
			if err != nil {
				return err
			}
			if err := p.expectByte(';', "method"); err != nil {
				return err
			}
			t.Descriptor = Method
			t.Method = &MethodPayload{ReturnType: ret}
		} else {
			// The owning class type precedes the return type but is not
			// retained on MethodPayload — the enclosing STRUCT/UNION
			// already supplies that context.
			if _, err := p.parseType(fileIndex, index, false); err != nil {
				return err
			}
			if err := p.expectByte(',', "method"); err != nil {
				return err
			}
			ret, err := p.parseType(fileIndex, index, false)
			if err != nil {
				return err
			}
			var params []*Type
			for {
				if p.eof() {
					return newParseError(p.pos, "unexpected end of input in method")
				}
				if p.peek() == ';' {
					p.pos++
					break
				}
				if err := p.expectByte(',', "method"); err != nil {
					return err
				}
				param, err := p.parseType(fileIndex, index, false)
				if err != nil {
					return err
				}
				params = append(params, param)
			}
			t.Descriptor = Method
			t.Method = &MethodPayload{ReturnType: ret, ParameterTypes: params}
		}

	case '&': // REFERENCE
		value, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return err
		}
		t.Descriptor = Reference
		t.Reference = &ReferencePayload{ValueType: value}

	case '*': // POINTER
		value, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return err
		}
		t.Descriptor = Pointer
		t.Pointer = &PointerPayload{ValueType: value}

	case '@': // TYPE_ATTRIBUTE or POINTER_TO_DATA_MEMBER
		if p.peek() == 's' {
			p.pos++
			bits, err := p.eatS64Literal()
			if err != nil {
				return err
			}
			if err := p.expectByte(';', "type attribute"); err != nil {
				return err
			}
			inner, err := p.parseType(fileIndex, index, false)
			if err != nil {
				return err
			}
			t.Descriptor = TypeAttribute
			t.TypeAttribute = &TypeAttributePayload{Type: inner, SizeBits: bits}
		} else {
			classType, err := p.parseType(fileIndex, index, false)
			if err != nil {
				return err
			}
			if err := p.expectByte(',', "pointer to data member"); err != nil {
				return err
			}
			memberType, err := p.parseType(fileIndex, index, false)
			if err != nil {
				return err
			}
			t.Descriptor = PointerToDataMember
			t.PointerToDataMember = &PointerToDataMemberPayload{ClassType: classType, MemberType: memberType}
		}

	case 'b': // BUILTIN
		id, err := p.eatS64Literal()
		if err != nil {
			return err
		}
		if p.peek() == ';' {
			p.pos++
		}
		t.Descriptor = Builtin
		t.Builtin = &BuiltinPayload{TypeID: id}

	default:
		return newParseError(p.pos-1, "invalid type descriptor %q (0x%02x)", descLetter, descLetter)
	}
	return nil
}

// fieldVisibilityFromByte maps the byte following '/' in a field or base
// class declaration to a FieldVisibility. The exact byte values are this
// toolchain's own convention — the spec describes the resulting
// enumeration, not the wire encoding — so this picks one consistent
// assignment and sticks to it.
func fieldVisibilityFromByte(c byte) FieldVisibility {
	switch c {
	case '0':
		return VisibilityNone
	case '1':
		return VisibilityPrivate
	case '2':
		return VisibilityProtected
	case '3':
		return VisibilityPublic
	case '9':
		return VisibilityPublicOptimizedOut
	default:
		return VisibilityIgnore
	}
}

func (p *parser) parseFieldList(fileIndex int32, index *TypeIndex) ([]Field, error) {
	var fields []Field
	for !p.eof() {
		if p.peek() == ';' {
			p.pos++
			break
		}

		beforeField := p.pos
		name, err := p.eatIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expectByte(':', "identifier"); err != nil {
			return nil, err
		}

		visibility := VisibilityNone
		if p.peek() == '/' {
			p.pos++
			visByte, err := p.eatByte()
			if err != nil {
				return nil, err
			}
			visibility = fieldVisibilityFromByte(visByte)
		}

		if p.peek() == ':' {
			// Not actually a field; rewind — this is the start of the
			// member-function list.
			p.pos = beforeField
			break
		}

		fieldType, err := p.parseType(fileIndex, index, false)
		if err != nil {
			return nil, err
		}

		field := Field{Name: name, Type: fieldType, Visibility: visibility}

		switch {
		case strings.HasPrefix(name, "$"):
			if err := p.expectByte(',', "field type"); err != nil {
				return nil, err
			}
			offset, err := p.eatS64Literal()
			if err != nil {
				return nil, err
			}
			field.OffsetBits = offset
			field.IsStatic = true
			if err := p.expectByte(';', "field offset"); err != nil {
				return nil, err
			}
		case p.peek() == ':':
			p.pos++
			if _, err := p.eatIdentifier(); err != nil {
				return nil, err
			}
			if err := p.expectByte(';', "identifier"); err != nil {
				return nil, err
			}
		case p.peek() == ',':
			p.pos++
			offset, err := p.eatS64Literal()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(',', "field offset"); err != nil {
				return nil, err
			}
			size, err := p.eatS64Literal()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(';', "field size"); err != nil {
				return nil, err
			}
			field.OffsetBits = offset
			field.SizeBits = size
		default:
			c := p.peek()
			return nil, newParseError(p.pos, "expected ':' or ',', got %q", c)
		}

		fields = append(fields, field)
	}
	return fields, nil
}

func (p *parser) parseMemberFunctions(fileIndex int32, index *TypeIndex) ([]MemberFunctionSet, error) {
	if p.peek() == ',' {
		return nil, nil
	}

	var sets []MemberFunctionSet
	for !p.eof() {
		if p.peek() == ';' {
			p.pos++
			break
		}

		name, err := p.eatIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expectByte(':', "member function"); err != nil {
			return nil, err
		}
		if err := p.expectByte(':', "member function"); err != nil {
			return nil, err
		}

		set := MemberFunctionSet{Name: name}
		for !p.eof() {
			if p.peek() == ';' {
				p.pos++
				break
			}

			overload := MemberFunctionOverload{}
			overload.Type, err = p.parseType(fileIndex, index, false)
			if err != nil {
				return nil, err
			}

			if err := p.expectByte(':', "member function"); err != nil {
				return nil, err
			}
			if _, err := p.eatIdentifier(); err != nil {
				return nil, err
			}
			if err := p.expectByte(';', "member function"); err != nil {
				return nil, err
			}

			visByte, err := p.eatByte()
			if err != nil {
				return nil, err
			}
			overload.Visibility = fieldVisibilityFromByte(visByte)

			modByte, err := p.eatByte()
			if err != nil {
				return nil, err
			}
			switch modByte {
			case 'A':
				overload.Modifier = ModifierNone
			case 'B':
				overload.Modifier = ModifierConst
			case 'C':
				overload.Modifier = ModifierVolatile
			case 'D':
				overload.Modifier = ModifierConstVolatile
			case '?', '.':
				overload.Modifier = ModifierNone
			default:
				return nil, newParseError(p.pos-1, "invalid member function modifier %q", modByte)
			}

			kindByte, err := p.eatByte()
			if err != nil {
				return nil, err
			}
			switch kindByte {
			case '*': // virtual
				overload.IsVirtual = true
				vtIndex, err := p.eatS64Literal()
				if err != nil {
					return nil, err
				}
				overload.VtableIndex = vtIndex
				if err := p.expectByte(';', "virtual member function"); err != nil {
					return nil, err
				}
				if _, err := p.parseType(fileIndex, index, false); err != nil { // base class type, unused
					return nil, err
				}
				if err := p.expectByte(';', "virtual member function"); err != nil {
					return nil, err
				}
			case '?': // static
				overload.IsStatic = true
			case '.': // normal
			default:
				return nil, newParseError(p.pos-1, "invalid member function kind %q", kindByte)
			}

			set.Overloads = append(set.Overloads, overload)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

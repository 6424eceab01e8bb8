// Package lower turns a parsed STABS type graph into the typed ast.Node
// tree, following the recursive descent of stabs_type_to_ast: name
// substitution to stop infinite expansion, body-less reference resolution,
// a descriptor dispatch table, and the struct/union/member-function
// classification rules layered on top of it.
package lower

import (
	"fmt"

	"github.com/cualquiercosa327/ccc/ast"
	"github.com/cualquiercosa327/ccc/demangle"
	"github.com/cualquiercosa327/ccc/stabs"
)

// ParserFlags toggles optional strictness and filtering behavior, set by
// the driver from command-line flags.
type ParserFlags int

const (
	// StrictParsing turns conditions the lenient path would otherwise
	// record as a Warning and paper over with a placeholder node into a
	// hard error.
	StrictParsing ParserFlags = 1 << iota
	// NoMemberFunctions drops every member function from lowered
	// structs and unions, generated or not.
	NoMemberFunctions
	// NoGeneratedMemberFunctions drops compiler-generated member
	// functions (constructors, destructors, operator=) but keeps
	// user-written ones.
	NoGeneratedMemberFunctions
)

// Warning records a recoverable problem the lenient path papered over
// with a placeholder node, so a driver can report it without aborting the
// whole run.
type Warning struct {
	File    int32
	Type    int32
	Message string
}

// State carries everything Lower needs that isn't local to one call: the
// type index built while parsing, strictness flags, the optional
// demangler hook, and the warnings accumulated along the way.
type State struct {
	Index      *stabs.TypeIndex
	FileHandle ast.FileHandle
	Flags      ParserFlags
	Demangler  demangle.Functions

	// StrictVisibility additionally turns a PUBLIC_OPTIMIZED_OUT field
	// or member function visibility into a recorded diagnostic instead
	// of silently collapsing it to PUBLIC.
	StrictVisibility bool

	Warnings    []Warning
	Diagnostics []string
}

func (s *State) warn(t *stabs.Type, format string, args ...any) {
	s.Warnings = append(s.Warnings, Warning{
		File:    t.Number.File,
		Type:    t.Number.Type,
		Message: fmt.Sprintf(format, args...),
	})
}

// UnknownTypeNumberError reports a body-less reference that never resolves
// against the type index, under StrictParsing.
type UnknownTypeNumberError struct {
	File int32
	Type int32
}

func (e *UnknownTypeNumberError) Error() string {
	return fmt.Sprintf("unknown type number (%d,%d)", e.File, e.Type)
}

// UnclassifiedRangeError reports a RANGE whose bounds match neither the
// literal nor the numeric classification table.
type UnclassifiedRangeError struct {
	Low  string
	High string
}

func (e *UnclassifiedRangeError) Error() string {
	return fmt.Sprintf("unclassified range %s..%s", e.Low, e.High)
}

// UnknownBuiltinError reports a BUILTIN type id this lowerer does not
// recognize.
type UnknownBuiltinError struct {
	ID int64
}

func (e *UnknownBuiltinError) Error() string {
	return fmt.Sprintf("unknown builtin type id %d", e.ID)
}

// CallDepthExceededError reports a type graph whose lowering recursion
// exceeded the depth guard, under StrictParsing.
type CallDepthExceededError struct{}

func (e *CallDepthExceededError) Error() string {
	return "call depth exceeded while lowering type"
}

// AssertionFailureError reports an invariant the lowerer expected to hold
// (a one-of-many payload pointer set for the type's own descriptor) that
// didn't.
type AssertionFailureError struct {
	Message string
}

func (e *AssertionFailureError) Error() string {
	return "assertion failure: " + e.Message
}

const maxLowerDepth = 200

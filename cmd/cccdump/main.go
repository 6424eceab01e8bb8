// cccdump is a thin driver over the core: it opens a raw file, locates the
// ECOFF mdebug section, parses and lowers the STABS type of every local
// symbol of storage type NIL and class 0 whose string does not begin with
// '$', and prints the result as indented JSON.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cualquiercosa327/ccc/ast"
	"github.com/cualquiercosa327/ccc/byteview"
	"github.com/cualquiercosa327/ccc/lower"
	"github.com/cualquiercosa327/ccc/mdebug"
	"github.com/cualquiercosa327/ccc/stabs"
	"github.com/pkg/profile"
)

// SymbolOutput is one lowered local symbol, in source order within its
// file.
type SymbolOutput struct {
	Name       string
	Descriptor string
	Type       ast.Node
}

// FileOutput is one file descriptor's lowered symbols.
type FileOutput struct {
	Path    string
	Symbols []SymbolOutput
}

// Output is the top-level shape mainImpl returns and main prints.
type Output struct {
	Files    []FileOutput
	Warnings []lower.Warning
}

func symbolDescriptorName(d stabs.SymbolDescriptor) string {
	switch d {
	case stabs.SymLocalVariable:
		return "LOCAL_VARIABLE"
	case stabs.SymA:
		return "A"
	case stabs.SymLocalFunction:
		return "LOCAL_FUNCTION"
	case stabs.SymGlobalFunction:
		return "GLOBAL_FUNCTION"
	case stabs.SymGlobalVariable:
		return "GLOBAL_VARIABLE"
	case stabs.SymRegisterParameter:
		return "REGISTER_PARAMETER"
	case stabs.SymValueParameter:
		return "VALUE_PARAMETER"
	case stabs.SymRegisterVariable:
		return "REGISTER_VARIABLE"
	case stabs.SymStaticGlobalVariable:
		return "STATIC_GLOBAL_VARIABLE"
	case stabs.SymTypeName:
		return "TYPE_NAME"
	case stabs.SymEnumStructOrTypeTag:
		return "ENUM_STRUCT_OR_TYPE_TAG"
	case stabs.SymStaticLocalVariable:
		return "STATIC_LOCAL_VARIABLE"
	default:
		return "UNKNOWN"
	}
}

// findMdebugOffset scans for the 0x7009 little-endian magic and returns
// the first offset at which the section actually parses, since the magic
// value alone can appear by coincidence in unrelated data.
func findMdebugOffset(img *byteview.Image) (uint32, bool) {
	data := img.Bytes()
	for i := 0; i+1 < len(data); i++ {
		if data[i] != 0x09 || data[i+1] != 0x70 {
			continue
		}
		if _, err := mdebug.ParseSymbolTable(img, uint32(i)); err == nil {
			return uint32(i), true
		}
	}
	return 0, false
}

func mainImpl(fileName string, mdebugOffset int64, strict, noMemberFunctions, noGeneratedMemberFunctions bool) (Output, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return Output{}, fmt.Errorf("invalid file: %w", err)
	}
	img := byteview.NewImage(data)

	offset := uint32(mdebugOffset)
	if mdebugOffset < 0 {
		found, ok := findMdebugOffset(img)
		if !ok {
			return Output{}, fmt.Errorf("no mdebug section found; pass -mdebug-offset explicitly")
		}
		offset = found
	}

	table, err := mdebug.ParseSymbolTable(img, offset)
	if err != nil {
		return Output{}, fmt.Errorf("failed to parse mdebug section: %w", err)
	}

	var flags lower.ParserFlags
	if strict {
		flags |= lower.StrictParsing
	}
	if noMemberFunctions {
		flags |= lower.NoMemberFunctions
	}
	if noGeneratedMemberFunctions {
		flags |= lower.NoGeneratedMemberFunctions
	}

	out := Output{}
	for fileIndex, fd := range table.Files {
		idx := stabs.NewTypeIndex()
		state := &lower.State{Index: idx, FileHandle: fd.RawPath, Flags: flags}

		raw := make([]stabs.RawSymbol, len(fd.Symbols))
		for i, sym := range fd.Symbols {
			raw[i] = stabs.RawSymbol{
				String:         sym.String,
				IsNilClassZero: sym.StorageType == mdebug.SymbolTypeNil && sym.StorageClass == mdebug.SymbolClassNil,
			}
		}

		fileOutput := FileOutput{Path: fd.FullPath}
		for _, joined := range stabs.JoinContinuations(raw) {
			sym, err := stabs.ParseSymbol(joined, int32(fileIndex), idx)
			if err != nil {
				log.Printf("%s: skipping unparseable symbol %q: %v", fd.FullPath, joined, err)
				continue
			}

			node, err := lower.Lower(sym.Type, nil, state, 0, false, false)
			if err != nil {
				log.Printf("%s: skipping %q: %v", fd.FullPath, sym.Name, err)
				continue
			}

			fileOutput.Symbols = append(fileOutput.Symbols, SymbolOutput{
				Name:       sym.Name,
				Descriptor: symbolDescriptorName(sym.Descriptor),
				Type:       node,
			})
		}

		out.Files = append(out.Files, fileOutput)
		out.Warnings = append(out.Warnings, state.Warnings...)
	}

	return out, nil
}

func main() {
	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()

	log.SetFlags(0)
	log.SetPrefix("cccdump: ")

	mdebugOffset := flag.Int64("mdebug-offset", -1, "byte offset of the mdebug section; scans for the 0x7009 magic if omitted")
	strict := flag.Bool("strict", false, "treat recoverable lowering errors as failures (the symbol is logged and skipped) instead of emitting a placeholder")
	noMemberFunctions := flag.Bool("no-member-functions", false, "drop all member functions from lowered structs and unions")
	noGeneratedMemberFunctions := flag.Bool("no-generated-member-functions", false, "drop compiler-generated constructors, destructors, and operator=")
	profilePath := flag.String("profile", "", "write CPU profile data to this directory")

	flag.Parse()

	if *profilePath != "" {
		defer profile.Start(profile.ProfilePath(*profilePath)).Stop()
	}

	if flag.NArg() != 1 {
		log.Fatalf("usage: cccdump [flags] <file>")
	}

	out, err := mainImpl(flag.Arg(0), *mdebugOffset, *strict, *noMemberFunctions, *noGeneratedMemberFunctions)
	if err != nil {
		log.Fatalf("failed to parse file: %v", err)
	}

	jsonBytes, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		log.Fatalf("failed to format output: %v", err)
	}
	fmt.Fprintln(stdout, string(jsonBytes))
}

// Package mdebug decodes the ECOFF "mdebug" symbolic debugging section:
// its symbolic header, file descriptor table, and per-file local symbol and
// string tables. It does not parse procedure descriptors, line numbers,
// optimization symbols, auxiliary symbols, external symbols, or relative
// file descriptors — their offsets are retained for inspection but
// otherwise unused.
package mdebug

import (
	"fmt"
	"path"
	"strings"

	"github.com/cualquiercosa327/ccc/byteview"
)

// BadMagicError is returned when the symbolic header's magic field is not
// 0x7009.
type BadMagicError struct {
	Got int16
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("bad mdebug magic: got 0x%x, want 0x%x", uint16(e.Got), symbolicHeaderMagic)
}

// UnexpectedEndiannessError is returned when a file descriptor's
// f_big_endian flag is set.
type UnexpectedEndiannessError struct {
	FileIndex int
}

func (e *UnexpectedEndiannessError) Error() string {
	return fmt.Sprintf("file descriptor %d is not little-endian", e.FileIndex)
}

// Header carries the symbolic header's essential offsets, exposed so a
// driver can locate sub-tables this reader chose not to parse.
type Header struct {
	LineNumberCount             int32
	LineNumbersOffset           int32
	ProcedureDescriptorCount    int32
	ProcedureDescriptorsOffset  int32
	LocalSymbolCount            int32
	LocalSymbolsOffset          int32
	OptimizationSymbolCount     int32
	OptimizationSymbolsOffset   int32
	AuxiliarySymbolCount        int32
	AuxiliarySymbolsOffset      int32
	LocalStringsOffset          int32
	ExternalStringsOffset       int32
	FileDescriptorCount         int32
	FileDescriptorsOffset       int32
	RelativeFileDescriptorCount int32
	ExternalSymbolCount         int32
	ExternalSymbolsOffset       int32
}

// FileDescriptor is the derived per-file view described in spec §3.
type FileDescriptor struct {
	RawPath          string
	BasePath         string
	FullPath         string
	DetectedLanguage SourceLanguage
	Symbols          []Symbol

	Address      uint32
	StringsBase  uint32 // local_strings_offset + strings_offset, this file's string-window base
	IsymBase     int32
	SymbolCount  int32
	Language     uint8
}

// SymbolTable is the output of ParseSymbolTable: the symbolic header's
// essential offsets plus an ordered sequence of per-file views.
type SymbolTable struct {
	Header Header
	Files  []FileDescriptor
}

// ParseSymbolTable decodes the mdebug section located at sectionOffset
// within img, per spec §4.2.
func ParseSymbolTable(img *byteview.Image, sectionOffset uint32) (*SymbolTable, error) {
	hdrr, err := byteview.ReadRecord[symbolicHeader](img, sectionOffset, "MIPS debug section")
	if err != nil {
		return nil, err
	}
	if hdrr.Magic != symbolicHeaderMagic {
		return nil, &BadMagicError{Got: hdrr.Magic}
	}

	table := &SymbolTable{
		Header: Header{
			LineNumberCount:             hdrr.LineNumberCount,
			LineNumbersOffset:           hdrr.LineNumbersOffset,
			ProcedureDescriptorCount:    hdrr.ProcedureDescriptorCount,
			ProcedureDescriptorsOffset:  hdrr.ProcedureDescriptorsOffset,
			LocalSymbolCount:            hdrr.LocalSymbolCount,
			LocalSymbolsOffset:          hdrr.LocalSymbolsOffset,
			OptimizationSymbolCount:     hdrr.OptimizationSymbolCount,
			OptimizationSymbolsOffset:   hdrr.OptimizationSymbolsOffset,
			AuxiliarySymbolCount:        hdrr.AuxiliarySymbolCount,
			AuxiliarySymbolsOffset:      hdrr.AuxiliarySymbolsOffset,
			LocalStringsOffset:          hdrr.LocalStringsOffset,
			ExternalStringsOffset:       hdrr.ExternalStringsOffset,
			FileDescriptorCount:         hdrr.FileDescriptorCount,
			FileDescriptorsOffset:       hdrr.FileDescriptorsOffset,
			RelativeFileDescriptorCount: hdrr.RelativeFileDescriptorCount,
			ExternalSymbolCount:         hdrr.ExternalSymbolCount,
			ExternalSymbolsOffset:       hdrr.ExternalSymbolsOffset,
		},
	}

	for i := int32(0); i < hdrr.FileDescriptorCount; i++ {
		fdOffset := uint32(hdrr.FileDescriptorsOffset) + uint32(i)*fileDescriptorSize
		fdHeader, err := decodeFileDescriptor(img, fdOffset)
		if err != nil {
			return nil, err
		}
		if fdHeader.FBigEndian {
			return nil, &UnexpectedEndiannessError{FileIndex: int(i)}
		}

		stringsBase := uint32(hdrr.LocalStringsOffset) + uint32(fdHeader.StringsOffset)

		fd := FileDescriptor{
			Address:     fdHeader.Address,
			StringsBase: stringsBase,
			IsymBase:    fdHeader.IsymBase,
			SymbolCount: fdHeader.SymbolCount,
			Language:    fdHeader.Lang,
		}

		rawPath, err := img.ReadCString(stringsBase + uint32(fdHeader.FilePathStringOffset))
		if err != nil {
			return nil, err
		}
		fd.RawPath = rawPath
		fd.DetectedLanguage = detectLanguage(rawPath)

		for j := int32(0); j < fdHeader.SymbolCount; j++ {
			symOffset := uint32(hdrr.LocalSymbolsOffset) + uint32(fdHeader.IsymBase+j)*localSymbolSize
			symRec, err := decodeLocalSymbol(img, symOffset)
			if err != nil {
				return nil, err
			}
			str, err := img.ReadCString(stringsBase + symRec.Iss)
			if err != nil {
				return nil, err
			}

			sym := Symbol{
				String:       str,
				Value:        symRec.Value,
				StorageType:  symRec.ST,
				StorageClass: symRec.SC,
				Index:        symRec.Index,
			}
			fd.Symbols = append(fd.Symbols, sym)

			k := len(fd.Symbols) - 1
			if fd.BasePath == "" && k >= 2 &&
				symRec.Iss == uint32(fdHeader.FilePathStringOffset) &&
				sym.StorageType == SymbolTypeLabel &&
				fd.Symbols[k-1].StorageType == SymbolTypeLabel {
				fd.BasePath = fd.Symbols[k-1].String
			}
		}

		fd.FullPath = derivedFullPath(fd.BasePath, fd.RawPath)

		table.Files = append(table.Files, fd)
	}

	return table, nil
}

// detectLanguage infers a SourceLanguage from raw_path's lowercased suffix.
func detectLanguage(rawPath string) SourceLanguage {
	lower := strings.ToLower(rawPath)
	switch {
	case strings.HasSuffix(lower, ".c"):
		return LanguageC
	case strings.HasSuffix(lower, ".cpp"), strings.HasSuffix(lower, ".cc"), strings.HasSuffix(lower, ".cxx"):
		return LanguageCPP
	case strings.HasSuffix(lower, ".s"), strings.HasSuffix(lower, ".asm"):
		return LanguageAssembly
	default:
		return LanguageUnknown
	}
}

// derivedFullPath implements spec §4.2 step 7: normalize slashes, short
// circuit on absolute raw paths, else weakly canonicalize base+raw.
func derivedFullPath(basePath, rawPath string) string {
	base := strings.ReplaceAll(basePath, "\\", "/")
	raw := strings.ReplaceAll(rawPath, "\\", "/")

	if base == "" || isUnixAbsolute(raw) || isWindowsAbsolute(raw) {
		return raw
	}
	return weaklyCanonicalize(base + "/" + raw)
}

func isUnixAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

func isWindowsAbsolute(p string) bool {
	return len(p) >= 3 && isASCIILetter(p[0]) && p[1] == ':' && p[2] == '/'
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// weaklyCanonicalize collapses "." and ".." components lexically, without
// requiring the resulting path to exist on disk. path.Clean already does
// exactly this over forward-slash paths, which is why no third-party path
// library is pulled in for it.
func weaklyCanonicalize(p string) string {
	return path.Clean(p)
}

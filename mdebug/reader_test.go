package mdebug

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cualquiercosa327/ccc/byteview"
)

// buildStrings returns a NUL-separated string table and the offsets of
// each string within it, in the order given.
func buildStrings(strs ...string) ([]byte, []uint32) {
	var buf []byte
	offsets := make([]uint32, len(strs))
	for i, s := range strs {
		offsets[i] = uint32(len(buf))
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	return buf, offsets
}

func putFileDescriptor(buf []byte, offset uint32, pathOff, stringsOff, isymBase, symbolCount int32, bigEndian bool) {
	put32 := func(o uint32, v int32) {
		binary.LittleEndian.PutUint32(buf[offset+o:], uint32(v))
	}
	put32(0x00, 0) // address
	put32(0x04, pathOff)
	put32(0x08, stringsOff)
	put32(0x0c, 0) // cb_ss
	put32(0x10, isymBase)
	put32(0x14, symbolCount)
	flags := uint32(0)
	if bigEndian {
		flags |= 1 << 7
	}
	binary.LittleEndian.PutUint32(buf[offset+0x3c:], flags)
}

func putLocalSymbol(buf []byte, offset uint32, iss uint32, value int32, st SymbolType, sc SymbolClass, index uint32) {
	binary.LittleEndian.PutUint32(buf[offset+0x00:], iss)
	binary.LittleEndian.PutUint32(buf[offset+0x04:], uint32(value))
	word := uint32(st)&0x3f | (uint32(sc)&0x1f)<<6 | (index&0xfffff)<<12
	binary.LittleEndian.PutUint32(buf[offset+0x08:], word)
}

func putSymbolicHeader(buf []byte, offset uint32, magic int16, fdCount int32, fdOffset int32, localStringsOffset int32, localSymbolsOffset int32) {
	binary.LittleEndian.PutUint16(buf[offset+0x00:], uint16(magic))
	binary.LittleEndian.PutUint32(buf[offset+0x24:], uint32(localSymbolsOffset))
	binary.LittleEndian.PutUint32(buf[offset+0x3c:], uint32(localStringsOffset))
	binary.LittleEndian.PutUint32(buf[offset+0x48:], uint32(fdCount))
	binary.LittleEndian.PutUint32(buf[offset+0x4c:], uint32(fdOffset))
}

func TestParseSymbolTable_BadMagic(t *testing.T) {
	buf := make([]byte, symbolicHeaderSize)
	img := byteview.NewImage(buf)

	_, err := ParseSymbolTable(img, 0)
	var badMagic *BadMagicError
	if !errors.As(err, &badMagic) {
		t.Fatalf("expected BadMagicError, got %v", err)
	}
}

func TestParseSymbolTable_UnexpectedEndianness(t *testing.T) {
	const sectionOffset = 0
	const fdOffset = symbolicHeaderSize
	buf := make([]byte, fdOffset+fileDescriptorSize)
	putSymbolicHeader(buf, sectionOffset, symbolicHeaderMagic, 1, fdOffset, 0, 0)
	putFileDescriptor(buf, fdOffset, 0, 0, 0, 0, true)

	img := byteview.NewImage(buf)
	_, err := ParseSymbolTable(img, sectionOffset)
	var bad *UnexpectedEndiannessError
	if !errors.As(err, &bad) {
		t.Fatalf("expected UnexpectedEndiannessError, got %v", err)
	}
}

func TestParseSymbolTable_SingleFileWithSymbolsAndBasePath(t *testing.T) {
	strs, offs := buildStrings("foo.cpp", "/src/foo.cpp", "$END$")
	pathOff, basePathOff := offs[0], offs[1]

	const sectionOffset = 0
	const fdOffset = symbolicHeaderSize
	const symOffset = fdOffset + fileDescriptorSize
	const numSymbols = 2
	const stringsOffset = symOffset + numSymbols*localSymbolSize

	buf := make([]byte, stringsOffset+len(strs))
	putSymbolicHeader(buf, sectionOffset, symbolicHeaderMagic, 1, fdOffset, stringsOffset, symOffset)
	putFileDescriptor(buf, fdOffset, int32(pathOff), 0, 0, numSymbols, false)

	// Symbol 0: LABEL pointing at the absolute base path.
	putLocalSymbol(buf, symOffset, basePathOff, 0, SymbolTypeLabel, SymbolClassNil, 0)
	// Symbol 1: LABEL pointing at the same string as the path offset. At
	// k=1 this does not trigger base-path recovery, which needs k>=2 and
	// is exercised by the two-symbol-prefix test below.
	putLocalSymbol(buf, symOffset+localSymbolSize, pathOff, 0, SymbolTypeLabel, SymbolClassNil, 0)

	copy(buf[stringsOffset:], strs)

	img := byteview.NewImage(buf)
	table, err := ParseSymbolTable(img, sectionOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(table.Files))
	}
	fd := table.Files[0]
	if fd.RawPath != "foo.cpp" {
		t.Fatalf("unexpected raw path: %q", fd.RawPath)
	}
	if fd.DetectedLanguage != LanguageCPP {
		t.Fatalf("unexpected language: %v", fd.DetectedLanguage)
	}
	if len(fd.Symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(fd.Symbols))
	}
	// base-path recovery requires k >= 2, so with only 2 symbols it must
	// not have fired.
	if fd.BasePath != "" {
		t.Fatalf("expected no base path with only 2 symbols, got %q", fd.BasePath)
	}
	if fd.FullPath != "foo.cpp" {
		t.Fatalf("expected full path to fall back to raw path, got %q", fd.FullPath)
	}
}

func TestParseSymbolTable_BasePathRecovery(t *testing.T) {
	strs, offs := buildStrings("foo.cpp", "/src", "filler")
	pathOff, basePathOff, fillerOff := offs[0], offs[1], offs[2]

	const sectionOffset = 0
	const fdOffset = symbolicHeaderSize
	const symOffset = fdOffset + fileDescriptorSize
	const numSymbols = 3
	const stringsOffset = symOffset + numSymbols*localSymbolSize

	buf := make([]byte, stringsOffset+len(strs))
	putSymbolicHeader(buf, sectionOffset, symbolicHeaderMagic, 1, fdOffset, stringsOffset, symOffset)
	putFileDescriptor(buf, fdOffset, int32(pathOff), 0, 0, numSymbols, false)

	putLocalSymbol(buf, symOffset+0*localSymbolSize, fillerOff, 0, SymbolTypeLabel, SymbolClassNil, 0)
	putLocalSymbol(buf, symOffset+1*localSymbolSize, basePathOff, 0, SymbolTypeLabel, SymbolClassNil, 0)
	putLocalSymbol(buf, symOffset+2*localSymbolSize, pathOff, 0, SymbolTypeLabel, SymbolClassNil, 0)

	copy(buf[stringsOffset:], strs)

	img := byteview.NewImage(buf)
	table, err := ParseSymbolTable(img, sectionOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fd := table.Files[0]
	if fd.BasePath != "/src" {
		t.Fatalf("expected recovered base path /src, got %q", fd.BasePath)
	}
	if fd.FullPath != "/src/foo.cpp" {
		t.Fatalf("expected canonicalized full path, got %q", fd.FullPath)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]SourceLanguage{
		"foo.C":   LanguageC,
		"foo.cpp": LanguageCPP,
		"foo.CC":  LanguageCPP,
		"foo.cxx": LanguageCPP,
		"foo.s":   LanguageAssembly,
		"foo.ASM": LanguageAssembly,
		"foo.txt": LanguageUnknown,
	}
	for path, want := range cases {
		if got := detectLanguage(path); got != want {
			t.Errorf("detectLanguage(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDerivedFullPath(t *testing.T) {
	cases := []struct {
		base, raw, want string
	}{
		{"", "foo.cpp", "foo.cpp"},
		{"/src", "/abs/foo.cpp", "/abs/foo.cpp"},
		{"/src", "C:/abs/foo.cpp", "C:/abs/foo.cpp"},
		{"/src", "sub/../foo.cpp", "/src/foo.cpp"},
		{`C:\src`, `sub\foo.cpp`, "C:/src/sub/foo.cpp"},
	}
	for _, c := range cases {
		if got := derivedFullPath(c.base, c.raw); got != c.want {
			t.Errorf("derivedFullPath(%q, %q) = %q, want %q", c.base, c.raw, got, c.want)
		}
	}
}

package mdebug

import "github.com/cualquiercosa327/ccc/byteview"

// symbolicHeaderMagic is the expected magic value of a well-formed ECOFF
// mdebug section.
const symbolicHeaderMagic = 0x7009

const (
	symbolicHeaderSize = 0x60
	fileDescriptorSize = 0x48
	localSymbolSize    = 0x0c
)

// symbolicHeader is the fixed 0x60-byte record at the start of the mdebug
// section. It has no sub-byte fields, so it can be decoded directly with
// byteview.ReadRecord.
type symbolicHeader struct {
	Magic                       int16
	VersionStamp                int16
	LineNumberCount             int32
	LineNumbersSizeBytes        int32
	LineNumbersOffset           int32
	DenseNumbersCount           int32
	DenseNumbersOffset          int32
	ProcedureDescriptorCount    int32
	ProcedureDescriptorsOffset  int32
	LocalSymbolCount            int32
	LocalSymbolsOffset          int32
	OptimizationSymbolCount     int32
	OptimizationSymbolsOffset   int32
	AuxiliarySymbolCount        int32
	AuxiliarySymbolsOffset      int32
	LocalStringsSizeBytes       int32
	LocalStringsOffset          int32
	ExternalStringsSizeBytes    int32
	ExternalStringsOffset       int32
	FileDescriptorCount         int32
	FileDescriptorsOffset       int32
	RelativeFileDescriptorCount int32
	RelativeFileDescriptorsOffset int32
	ExternalSymbolCount         int32
	ExternalSymbolsOffset       int32
}

// fileDescriptor is the 0x48-byte per-translation-unit record. The flags
// word at 0x3c packs lang:5, f_merge:1, f_readin:1, f_big_endian:1 and is
// decoded by hand rather than via a Go bitfield (Go has none).
type fileDescriptor struct {
	Address              uint32
	FilePathStringOffset int32
	StringsOffset        int32
	CbSS                 int32
	IsymBase             int32
	SymbolCount          int32
	ILineBase            int32
	CLine                int32
	IOptBase             int32
	COpt                 int32
	IPDFirst             int16
	CPD                  int16
	IAuxBase             int32
	CAux                 int32
	RFDBase              int32
	CRFD                 int32
	Lang                 uint8
	FMerge               bool
	FReadin              bool
	FBigEndian           bool
	CbLineOffset         int32
	CbLine               int32
}

func decodeFileDescriptor(img *byteview.Image, offset uint32) (fileDescriptor, error) {
	var fd fileDescriptor

	address, err := img.ReadUint32LE(offset+0x00, "file descriptor address")
	if err != nil {
		return fd, err
	}
	fd.Address = address

	fields := []struct {
		off  uint32
		dst  *int32
		name string
	}{
		{0x04, &fd.FilePathStringOffset, "file descriptor path offset"},
		{0x08, &fd.StringsOffset, "file descriptor strings offset"},
		{0x0c, &fd.CbSS, "file descriptor cb_ss"},
		{0x10, &fd.IsymBase, "file descriptor isym_base"},
		{0x14, &fd.SymbolCount, "file descriptor symbol count"},
		{0x18, &fd.ILineBase, "file descriptor iline_base"},
		{0x1c, &fd.CLine, "file descriptor cline"},
		{0x20, &fd.IOptBase, "file descriptor iopt_base"},
		{0x24, &fd.COpt, "file descriptor copt"},
		{0x2c, &fd.IAuxBase, "file descriptor iaux_base"},
		{0x30, &fd.CAux, "file descriptor caux"},
		{0x34, &fd.RFDBase, "file descriptor rfd_base"},
		{0x38, &fd.CRFD, "file descriptor crfd"},
		{0x40, &fd.CbLineOffset, "file descriptor cb_line_offset"},
		{0x44, &fd.CbLine, "file descriptor cb_line"},
	}
	for _, f := range fields {
		raw, err := img.ReadUint32LE(offset+f.off, f.name)
		if err != nil {
			return fd, err
		}
		*f.dst = int32(raw)
	}

	ipdFirst, err := img.ReadInt16LE(offset+0x28, "file descriptor ipd_first")
	if err != nil {
		return fd, err
	}
	fd.IPDFirst = ipdFirst

	cpd, err := img.ReadInt16LE(offset+0x2a, "file descriptor cpd")
	if err != nil {
		return fd, err
	}
	fd.CPD = cpd

	flags, err := img.ReadUint32LE(offset+0x3c, "file descriptor flags")
	if err != nil {
		return fd, err
	}
	fd.Lang = uint8(flags & 0x1f)
	fd.FMerge = (flags>>5)&1 != 0
	fd.FReadin = (flags>>6)&1 != 0
	fd.FBigEndian = (flags>>7)&1 != 0

	return fd, nil
}

// localSymbol is the 0x0c-byte record. The second word packs st:6, sc:5,
// reserved:1, index:20 starting at the least significant bit.
type localSymbol struct {
	Iss   uint32
	Value int32
	ST    SymbolType
	SC    SymbolClass
	Index uint32
}

func decodeLocalSymbol(img *byteview.Image, offset uint32) (localSymbol, error) {
	var sym localSymbol

	iss, err := img.ReadUint32LE(offset+0x00, "local symbol iss")
	if err != nil {
		return sym, err
	}
	sym.Iss = iss

	value, err := img.ReadUint32LE(offset+0x04, "local symbol value")
	if err != nil {
		return sym, err
	}
	sym.Value = int32(value)

	word, err := img.ReadUint32LE(offset+0x08, "local symbol st/sc/index")
	if err != nil {
		return sym, err
	}
	sym.ST = SymbolType(word & 0x3f)
	sym.SC = SymbolClass((word >> 6) & 0x1f)
	sym.Index = (word >> 12) & 0xfffff

	return sym, nil
}

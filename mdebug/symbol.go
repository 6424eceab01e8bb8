package mdebug

// SymbolType is the 6-bit "st" field of a LocalSymbol, matching the MIPS
// ECOFF symbolic-debugging symbol type codes.
type SymbolType uint8

const (
	SymbolTypeNil SymbolType = iota
	SymbolTypeGlobal
	SymbolTypeStatic
	SymbolTypeParam
	SymbolTypeLocal
	SymbolTypeLabel
	SymbolTypeProc
	SymbolTypeBlock
	SymbolTypeEnd
	SymbolTypeMember
	SymbolTypeTypedef
	SymbolTypeFile
	_ // stRegReloc, unused by this reader
	_ // stForward, unused by this reader
	SymbolTypeStaticProc
	SymbolTypeConstant
)

func (t SymbolType) String() string {
	switch t {
	case SymbolTypeNil:
		return "NIL"
	case SymbolTypeGlobal:
		return "GLOBAL"
	case SymbolTypeStatic:
		return "STATIC"
	case SymbolTypeParam:
		return "PARAM"
	case SymbolTypeLocal:
		return "LOCAL"
	case SymbolTypeLabel:
		return "LABEL"
	case SymbolTypeProc:
		return "PROC"
	case SymbolTypeBlock:
		return "BLOCK"
	case SymbolTypeEnd:
		return "END"
	case SymbolTypeMember:
		return "MEMBER"
	case SymbolTypeTypedef:
		return "TYPEDEF"
	case SymbolTypeFile:
		return "FILE_SYMBOL"
	case SymbolTypeStaticProc:
		return "STATICPROC"
	case SymbolTypeConstant:
		return "CONSTANT"
	default:
		return "UNKNOWN"
	}
}

// SymbolClass is the 5-bit "sc" field of a LocalSymbol.
type SymbolClass uint8

const (
	SymbolClassNil SymbolClass = iota
	SymbolClassText
	SymbolClassData
	SymbolClassBss
	SymbolClassRegister
	SymbolClassAbs
	SymbolClassUndefined
	SymbolClassLocal
	SymbolClassBits
	SymbolClassDbx
	SymbolClassRegImage
	SymbolClassInfo
	SymbolClassUserStruct
	SymbolClassSData
	SymbolClassSBss
	SymbolClassRData
	SymbolClassVar
	SymbolClassCommon
	SymbolClassSCommon
	SymbolClassVarRegister
	SymbolClassVariant
	SymbolClassSUndefined
	SymbolClassInit
	SymbolClassBasedVar
	SymbolClassXData
	SymbolClassPData
	SymbolClassFini
	SymbolClassNonGP
)

func (c SymbolClass) String() string {
	names := [...]string{
		"NIL", "TEXT", "DATA", "BSS", "REGISTER", "ABS", "UNDEFINED", "LOCAL",
		"BITS", "DBX", "REG_IMAGE", "INFO", "USER_STRUCT", "SDATA", "SBSS",
		"RDATA", "VAR", "COMMON", "SCOMMON", "VAR_REGISTER", "VARIANT",
		"SUNDEFINED", "INIT", "BASED_VAR", "XDATA", "PDATA", "FINI", "NONGP",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "UNKNOWN"
}

// SourceLanguage is the language detected from a file descriptor's path
// suffix.
type SourceLanguage int

const (
	LanguageUnknown SourceLanguage = iota
	LanguageC
	LanguageCPP
	LanguageAssembly
)

func (l SourceLanguage) String() string {
	switch l {
	case LanguageC:
		return "C"
	case LanguageCPP:
		return "CPP"
	case LanguageAssembly:
		return "ASSEMBLY"
	default:
		return "UNKNOWN"
	}
}

// Symbol is one decoded local symbol, in source order within its file.
type Symbol struct {
	String       string
	Value        int32
	StorageType  SymbolType
	StorageClass SymbolClass
	Index        uint32
}

package lower

import (
	"strconv"
	"strings"

	"github.com/cualquiercosa327/ccc/ast"
)

// rangeLiteral is one row of the literal match table (§4.4.5.1): the
// ranges compilers emit for 64/128-bit and floating-point built-ins,
// which overflow a signed 64-bit integer and so can't go through the
// numeric table. Reproduced verbatim, Unix and IOP toolchain variants
// both included.
type rangeLiteral struct {
	low, high string
	class     ast.BuiltInClass
}

var rangeLiteralTable = []rangeLiteral{
	{"4", "0", ast.Float32},
	{"000000000000000000000000", "001777777777777777777777", ast.Unsigned64},
	{"00000000000000000000000000000000000000000000", "00000000000000000000001777777777777777777777", ast.Unsigned64},
	{"0000000000000", "01777777777777777777777", ast.Unsigned64},
	{"0", "18446744073709551615", ast.Unsigned64},
	{"001000000000000000000000", "000777777777777777777777", ast.Signed64},
	{"00000000000000000000001000000000000000000000", "00000000000000000000000777777777777777777777", ast.Signed64},
	{"01000000000000000000000", "0777777777777777777777", ast.Signed64},
	{"-9223372036854775808", "9223372036854775807", ast.Signed64},
	{"8", "0", ast.Float64},
	{"00000000000000000000000000000000000000000000", "03777777777777777777777777777777777777777777", ast.Unsigned128},
	{"02000000000000000000000000000000000000000000", "01777777777777777777777777777777777777777777", ast.Signed128},
	{"000000000000000000000000", "0377777777777777777777777777777777", ast.Unqualified128},
	{"16", "0", ast.Float128},
	{"0", "-1", ast.Unqualified128},
}

type rangeNumeric struct {
	low, high int64
	class     ast.BuiltInClass
}

var rangeNumericTable = []rangeNumeric{
	{0, 255, ast.Unsigned8},
	{-128, 127, ast.Signed8},
	{0, 127, ast.Unqualified8},
	{0, 65535, ast.Unsigned16},
	{-32768, 32767, ast.Signed16},
	{0, 4294967295, ast.Unsigned32},
	{-2147483648, 2147483647, ast.Signed32},
}

// classifyRange implements §4.4.5: a verbatim literal-string match, then a
// numeric fallback parsed with base 8 when a bound's text begins with
// "0", else base 10.
func classifyRange(low, high string) (ast.BuiltInClass, error) {
	for _, r := range rangeLiteralTable {
		if r.low == low && r.high == high {
			return r.class, nil
		}
	}

	lowValue, lowErr := strconv.ParseInt(low, rangeBase(low), 64)
	highValue, highErr := strconv.ParseInt(high, rangeBase(high), 64)
	if lowErr != nil || highErr != nil {
		return 0, &UnclassifiedRangeError{Low: low, High: high}
	}

	for _, r := range rangeNumericTable {
		if (r.low == lowValue || r.low == -lowValue) && r.high == highValue {
			return r.class, nil
		}
	}

	return 0, &UnclassifiedRangeError{Low: low, High: high}
}

func rangeBase(text string) int {
	if strings.HasPrefix(text, "0") {
		return 8
	}
	return 10
}

// builtInClassBits returns the bit width classify_range's result implies,
// used by bitfield detection (§4.4.6) to compare against a field's
// declared size_bits.
func builtInClassBits(c ast.BuiltInClass) int64 {
	switch c {
	case ast.Void:
		return 0
	case ast.Bool8, ast.Unsigned8, ast.Signed8, ast.Unqualified8:
		return 8
	case ast.Unsigned16, ast.Signed16:
		return 16
	case ast.Unsigned32, ast.Signed32, ast.Float32:
		return 32
	case ast.Unsigned64, ast.Signed64, ast.Float64:
		return 64
	case ast.Unsigned128, ast.Signed128, ast.Unqualified128, ast.Float128:
		return 128
	default:
		return 0
	}
}

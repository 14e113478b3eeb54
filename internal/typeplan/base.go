package typeplan

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/golang-repr/gorepr/dwarf"
)

type baseKey struct {
	encoding dwarf.Encoding
	size     int
}

// baseDispatch maps (encoding, byte size) to a render function. It covers
// more than a Go compiler's own DWARF emits (boolean; float of 4 or 8
// bytes; signed and unsigned integers of 1, 2, 4 or 8 bytes; 1-byte chars;
// UTF of 1, 2 or 4 bytes). There is no entry for 16-byte floats or
// integers: such members render as "???".
var baseDispatch = map[baseKey]RenderFunc{
	{dwarf.EncodingBoolean, 1}: renderBool,

	{dwarf.EncodingFloat, 4}: renderFloat(4),
	{dwarf.EncodingFloat, 8}: renderFloat(8),

	{dwarf.EncodingSigned, 1}: renderSigned(1),
	{dwarf.EncodingSigned, 2}: renderSigned(2),
	{dwarf.EncodingSigned, 4}: renderSigned(4),
	{dwarf.EncodingSigned, 8}: renderSigned(8),

	{dwarf.EncodingSignedChar, 1}: renderSigned(1),

	{dwarf.EncodingUnsigned, 1}: renderUnsigned(1),
	{dwarf.EncodingUnsigned, 2}: renderUnsigned(2),
	{dwarf.EncodingUnsigned, 4}: renderUnsigned(4),
	{dwarf.EncodingUnsigned, 8}: renderUnsigned(8),

	{dwarf.EncodingUnsignedChar, 1}: renderUnsigned(1),

	// DW_ATE_UTF is treated as unsigned: no code-point rendering.
	{dwarf.EncodingUTF, 1}: renderUnsigned(1),
	{dwarf.EncodingUTF, 2}: renderUnsigned(2),
	{dwarf.EncodingUTF, 4}: renderUnsigned(4),
}

func renderBool(w *strings.Builder, info any, data unsafe.Pointer) {
	if *(*byte)(data) != 0 {
		w.WriteString("true")
	} else {
		w.WriteString("false")
	}
}

// renderSigned returns a render function for a signed integer of the given
// byte width. Size-1 values are read as int8 but formatted through int64,
// which widens them the same way the spec's "widened to int32 textually"
// rule intends: never print as a character.
func renderSigned(size int) RenderFunc {
	return func(w *strings.Builder, info any, data unsafe.Pointer) {
		var v int64
		switch size {
		case 1:
			v = int64(*(*int8)(data))
		case 2:
			v = int64(*(*int16)(data))
		case 4:
			v = int64(*(*int32)(data))
		case 8:
			v = *(*int64)(data)
		}
		fmt.Fprintf(w, "%d", v)
	}
}

func renderUnsigned(size int) RenderFunc {
	return func(w *strings.Builder, info any, data unsafe.Pointer) {
		var v uint64
		switch size {
		case 1:
			v = uint64(*(*uint8)(data))
		case 2:
			v = uint64(*(*uint16)(data))
		case 4:
			v = uint64(*(*uint32)(data))
		case 8:
			v = *(*uint64)(data)
		}
		fmt.Fprintf(w, "%d", v)
	}
}

func renderFloat(size int) RenderFunc {
	return func(w *strings.Builder, info any, data unsafe.Pointer) {
		var v float64
		switch size {
		case 4:
			v = float64(*(*float32)(data))
		case 8:
			v = *(*float64)(data)
		}
		fmt.Fprintf(w, "%g", v)
	}
}

package typeplan

import (
	"fmt"
	"math"
	"strings"
	"unsafe"
)

// enumInfo is the side-table an enum printer reads: the enum's own
// display name and a map from the enumerator's raw bit pattern (truncated
// to the underlying width and zero-extended to 64 bits, for signed and
// unsigned enums alike, the same way the render function reads it) to its
// name.
type enumInfo struct {
	name   string
	signed bool
	values map[uint64]string
}

// enumDispatch returns one of the eight concrete enum printers for a given
// underlying width and signedness, mirroring the original's per-width
// specialization rather than one function branching on size at render
// time.
func enumDispatch(size int, signed bool) (RenderFunc, bool) {
	if signed {
		fn, ok := signedEnumRenderers[size]
		return fn, ok
	}
	fn, ok := unsignedEnumRenderers[size]
	return fn, ok
}

var signedEnumRenderers = map[int]RenderFunc{
	1: renderEnumSigned(1),
	2: renderEnumSigned(2),
	4: renderEnumSigned(4),
	8: renderEnumSigned(8),
}

var unsignedEnumRenderers = map[int]RenderFunc{
	1: renderEnumUnsigned(1),
	2: renderEnumUnsigned(2),
	4: renderEnumUnsigned(4),
	8: renderEnumUnsigned(8),
}

func renderEnumSigned(size int) RenderFunc {
	return func(w *strings.Builder, infoArg any, data unsafe.Pointer) {
		info := infoArg.(*enumInfo)
		var raw uint64
		var signed int64
		switch size {
		case 1:
			v := *(*int8)(data)
			raw, signed = uint64(uint8(v)), int64(v)
		case 2:
			v := *(*int16)(data)
			raw, signed = uint64(uint16(v)), int64(v)
		case 4:
			v := *(*int32)(data)
			raw, signed = uint64(uint32(v)), int64(v)
		case 8:
			v := *(*int64)(data)
			raw, signed = uint64(v), v
		}
		if name, ok := info.values[raw]; ok {
			w.WriteString(info.name)
			w.WriteString("::")
			w.WriteString(name)
			return
		}
		w.WriteString("static_cast<")
		w.WriteString(info.name)
		w.WriteString(">(")
		if signed == math.MinInt64 {
			w.WriteString("-9223372036854775807-1")
		} else {
			fmt.Fprintf(w, "%d", signed)
		}
		w.WriteString(")")
	}
}

func renderEnumUnsigned(size int) RenderFunc {
	return func(w *strings.Builder, infoArg any, data unsafe.Pointer) {
		info := infoArg.(*enumInfo)
		var raw uint64
		switch size {
		case 1:
			raw = uint64(*(*uint8)(data))
		case 2:
			raw = uint64(*(*uint16)(data))
		case 4:
			raw = uint64(*(*uint32)(data))
		case 8:
			raw = *(*uint64)(data)
		}
		if name, ok := info.values[raw]; ok {
			w.WriteString(info.name)
			w.WriteString("::")
			w.WriteString(name)
			return
		}
		w.WriteString("static_cast<")
		w.WriteString(info.name)
		w.WriteString(">(")
		fmt.Fprintf(w, "%d", raw)
		if raw > math.MaxInt64 {
			w.WriteString("ull")
		}
		w.WriteString(")")
	}
}

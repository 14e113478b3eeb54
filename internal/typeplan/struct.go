package typeplan

import (
	"strings"
	"unsafe"
)

// structInfo is the flattened member list a struct or class's printer
// walks: inherited members (via DWARF Inheritance DIEs) are already folded
// in with their base-class offset added, so rendering never needs to know
// about inheritance at all.
type structInfo struct {
	name    string
	members []memberInfo
}

type memberInfo struct {
	name    string
	offset  uint64
	printer *Printer
}

func renderStruct(w *strings.Builder, infoArg any, data unsafe.Pointer) {
	info := infoArg.(*structInfo)
	w.WriteByte('{')
	for i, m := range info.members {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteByte('.')
		w.WriteString(m.name)
		w.WriteByte('=')
		m.printer.RenderValue(w, unsafe.Pointer(uintptr(data)+uintptr(m.offset)))
	}
	w.WriteByte('}')
}

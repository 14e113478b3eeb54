package typeplan

import (
	"fmt"
	"strings"
	"unsafe"
)

// renderPointer is the single printer every PointerType DIE builds:
// pointer targets are never dereferenced or rendered (spec Non-goal), only
// the address itself, as a null marker or zero-padded hex.
func renderPointer(w *strings.Builder, info any, data unsafe.Pointer) {
	v := *(*uint64)(data)
	if v == 0 {
		w.WriteString("nullptr")
		return
	}
	fmt.Fprintf(w, "0x%016x", v)
}

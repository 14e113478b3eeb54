// Package typeplan turns a DWARF type DIE into a printer: a function that
// renders a raw value of that type into compiler-source-like syntax, plus
// whatever side-table the function needs (an enumerator value→name map, a
// struct's flattened member list). Printers are built once per (compilation
// unit, DIE offset) and reused for the life of the process.
package typeplan

import (
	"strings"
	"unsafe"
)

// RenderFunc renders the bytes at data, interpreted as the type that built
// it, into w. info is the Printer's own Info field, passed in rather than
// closed over so the eight concrete enum printers and the base-type
// printers stay plain functions parameterized only by width and
// signedness.
type RenderFunc func(w *strings.Builder, info any, data unsafe.Pointer)

// Printer is a built value-to-text plan for one type: a render function and
// whatever data that function needs (nil for base types and pointers).
type Printer struct {
	Render RenderFunc
	Info   any
}

// RenderValue runs the printer against data.
func (p *Printer) RenderValue(w *strings.Builder, data unsafe.Pointer) {
	p.Render(w, p.Info, data)
}

// Unknown is the "???" fallback printer: used for tags this module does
// not reconstruct a type-plan for, and for any type whose build failed in
// a way that should not poison the cache for unrelated types.
var Unknown = &Printer{Render: renderUnknown}

func renderUnknown(w *strings.Builder, info any, data unsafe.Pointer) {
	w.WriteString("???")
}

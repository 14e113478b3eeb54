// Package repr is a runtime pretty-printer for the host program's own
// types. It reads the running binary's own DWARF debug information —
// never generated or registered by the caller — to reconstruct each
// requested type's layout and render a value of it in compiler-source-like
// syntax ("Color::Green", "{.x=3, .y=4}", "0x00000000deadbeef").
//
// Repr is synchronous: the first call pays for locating and parsing the
// binary's debug sections, every call after that is a cache lookup plus a
// render. No goroutines are spawned.
package repr

import (
	"runtime"
	"strings"
	"unsafe"
)

// Repr renders v using this process's own debug information. If debug
// information cannot be loaded, or no type in it matches T, Repr returns
// "???" rather than panicking or returning an error — matching the
// library's policy that no failure inside the facility ever escapes a
// Repr call.
func Repr[T any](v T) string {
	initOnce.Do(initEngine)

	pc, _, _, ok := runtime.Caller(0)
	if !ok {
		return "???"
	}

	slotMu.Lock()
	p, cached := slots[pc]
	if !cached {
		p = resolvePrinter(pc)
		slots[pc] = p
	}
	slotMu.Unlock()

	var b strings.Builder
	p.RenderValue(&b, unsafe.Pointer(&v))
	return b.String()
}

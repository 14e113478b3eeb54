package repr

import (
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/golang-repr/gorepr/addr"
	"github.com/golang-repr/gorepr/dwarf"
	"github.com/golang-repr/gorepr/elf"
	"github.com/golang-repr/gorepr/internal/typeplan"
)

var logger = log.New(os.Stderr, "gorepr: ", 0)

// engine is the process-wide, one-shot-initialized DWARF loader: the
// mapped executable, its type-plan builder, and the load bias derived from
// the sentinel global. A nil or !ok engine means initialization failed and
// every Repr call degrades to "???", per the error-handling policy.
type engine struct {
	file    *elf.File
	builder *typeplan.Builder
	bias    int64
	ok      bool
}

var (
	initOnce sync.Once
	eng      *engine

	slotMu sync.Mutex
	slots  = make(map[uintptr]*typeplan.Printer)
)

func initEngine() {
	eng = &engine{}

	f, err := elf.Open("/proc/self/exe")
	if err != nil {
		logger.Printf("failed to open /proc/self/exe: %v", err)
		return
	}
	eng.file = f
	eng.builder = typeplan.NewBuilder(f.DWARF, logger)

	v, found, err := f.DWARF.FindVariable("librepr_global_offset_marker__")
	if err != nil {
		logger.Printf("searching for load-bias sentinel: %v", err)
		return
	}
	if !found {
		logger.Printf("load-bias sentinel not present in debug info")
		return
	}
	dwarfAddr, ok := v.GetOffset(dwarf.AttrLocation)
	if !ok {
		logger.Printf("load-bias sentinel has no usable DW_AT_location")
		return
	}

	live := addr.Address(uintptr(unsafe.Pointer(&librepr_global_offset_marker__)))
	eng.bias = live.Sub(dwarfAddr)
	eng.ok = true
}

// typeTags is the set of DIE tags findTypeDIE treats as a named type worth
// matching a generic instantiation's type argument against.
var typeTags = map[dwarf.Tag]bool{
	dwarf.TagEnumerationType: true,
	dwarf.TagStructureType:   true,
	dwarf.TagClassType:       true,
	dwarf.TagBaseType:        true,
	dwarf.TagTypedef:         true,
	dwarf.TagPointerType:     true,
}

// findTypeDIE does a linear, depth-tracked walk of every compilation unit
// looking for a named type DIE matching name exactly — the same shape of
// search as dwarf.Data.FindVariable, against a different tag set.
func findTypeDIE(d *dwarf.Data, name string) (*dwarf.Entry, bool, error) {
	for i := 0; i < d.NumUnits(); i++ {
		e, err := d.Root(i)
		if err != nil {
			return nil, false, err
		}
		if !e.HasChildren() {
			continue
		}
		depth := 0
		cur := e
		for {
			if typeTags[cur.Tag()] {
				if n, ok := cur.GetCString(dwarf.AttrName); ok && n == name {
					return cur, true, nil
				}
			}
			if cur.HasChildren() {
				depth++
			}
			next, err := cur.Next()
			if err != nil {
				return nil, false, err
			}
			if next.IsEnd() {
				depth--
				if depth == 0 {
					break
				}
			}
			cur = next
		}
	}
	return nil, false, nil
}

// extractTypeName pulls the bracketed type-argument list out of a generic
// instantiation's symbol name, e.g. ".../repr.Repr[main.Color]" yields
// "main.Color". This is this module's replacement for the
// TemplateTypeParameter/Variable DIE pairing walk the original source
// uses: Go's own per-instantiation symbol name already encodes the type.
func extractTypeName(symbol string) (string, bool) {
	start := strings.IndexByte(symbol, '[')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(symbol); i++ {
		switch symbol[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return symbol[start+1 : i], true
			}
		}
	}
	return "", false
}

// resolvePrinter builds (or falls back to Unknown for) the printer for the
// type instantiating Repr at pc. It never panics: a malformed-DWARF panic
// raised inside typeplan.Build is recovered here and turned into the "???"
// fallback for that one instantiation, without poisoning unrelated types.
func resolvePrinter(pc uintptr) (p *typeplan.Printer) {
	if !eng.ok {
		return typeplan.Unknown
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return typeplan.Unknown
	}
	typeName, ok := extractTypeName(fn.Name())
	if !ok {
		logger.Printf("could not extract a type name from symbol %q", fn.Name())
		return typeplan.Unknown
	}

	entry, found, err := findTypeDIE(eng.file.DWARF, typeName)
	if err != nil {
		logger.Printf("searching debug info for type %q: %v", typeName, err)
		return typeplan.Unknown
	}
	if !found {
		logger.Printf("no debug-info type found for %q", typeName)
		return typeplan.Unknown
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Printf("building printer for %q: %v", typeName, r)
			p = typeplan.Unknown
		}
	}()
	return eng.builder.Build(entry)
}

// Package dwarf parses the subset of DWARF versions 4 and 5 (32-bit format
// only) needed to reconstruct type information and global-variable
// addresses out of an ELF executable's own debug sections. It is written
// from scratch against the DWARF wire format rather than built on
// debug/dwarf: recognizing abbreviation tables, compilation unit headers,
// and DIE attribute encodings by hand is the point of this package.
package dwarf

import "fmt"

// Data is the parsed .debug_info/.debug_abbrev/.debug_str sections of one
// ELF file, indexed into compilation units on construction.
type Data struct {
	debugInfo   []byte
	debugAbbrev []byte
	debugStr    []byte
	units       []*CompilationUnit
}

// New parses the given sections into compilation units. The slices are
// retained, not copied; callers must keep the backing storage (typically
// an mmap'd file) alive for the lifetime of the returned Data.
func New(debugInfo, debugAbbrev, debugStr []byte) (*Data, error) {
	d := &Data{debugInfo: debugInfo, debugAbbrev: debugAbbrev, debugStr: debugStr}
	units, err := parseCompilationUnits(d)
	if err != nil {
		return nil, err
	}
	d.units = units
	return d, nil
}

// NumUnits returns the number of compilation units found.
func (d *Data) NumUnits() int {
	return len(d.units)
}

// Unit returns the i'th compilation unit.
func (d *Data) Unit(i int) *CompilationUnit {
	return d.units[i]
}

// Root returns a cursor on the i'th compilation unit's root DIE.
func (d *Data) Root(i int) (*Entry, error) {
	cu := d.units[i]
	return d.loadDIE(cu, cu.offset+cu.rootOffset)
}

// EntryAt returns a cursor on the DIE at the given absolute .debug_info
// offset, which must belong to cu (callers get this offset from a
// reference-form attribute read earlier within the same unit).
func (d *Data) EntryAt(cu *CompilationUnit, offset int) (*Entry, error) {
	if offset < cu.offset || offset >= cu.End() {
		return nil, fmt.Errorf("%w: offset %d outside its unit [%d, %d)", ErrMalformed, offset, cu.offset, cu.End())
	}
	return d.loadDIE(cu, offset)
}

// FindVariable does a linear, depth-tracked walk of every compilation unit
// looking for a Variable DIE whose DW_AT_name matches exactly. It is the
// direct analogue of looking up a function by name in a symbol table, used
// here to locate the sentinel global that exposes this module's load bias.
func (d *Data) FindVariable(name string) (*Entry, bool, error) {
	for i := 0; i < d.NumUnits(); i++ {
		e, err := d.Root(i)
		if err != nil {
			return nil, false, err
		}
		if !e.HasChildren() {
			continue
		}
		depth := 0
		for {
			if e.Tag() == TagVariable {
				if n, ok := e.GetCString(AttrName); ok && n == name {
					return e, true, nil
				}
			}
			if e.HasChildren() {
				depth++
			}
			next, err := e.Next()
			if err != nil {
				return nil, false, err
			}
			if next.IsEnd() {
				depth--
				if depth == 0 {
					break
				}
			}
			e = next
		}
	}
	return nil, false, nil
}

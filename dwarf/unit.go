package dwarf

import "fmt"

// CompilationUnit is one parsed .debug_info unit header: its byte extent,
// the CU-relative offset of its root DIE, and the abbreviation table its
// DIEs reference by code.
type CompilationUnit struct {
	offset     int // absolute offset of the unit-length field
	length     int // total unit length including the length field itself
	version    uint16
	rootOffset int // offset of the root DIE relative to offset
	abbrev     *abbrevTable
}

// End returns the absolute offset one past the end of this unit.
func (cu *CompilationUnit) End() int {
	return cu.offset + cu.length
}

// parseCompilationUnits walks .debug_info from the start, parsing each
// unit's header (DWARF version 4 or 5, 32-bit format only) and loading its
// abbreviation table out of .debug_abbrev.
func parseCompilationUnits(d *Data) ([]*CompilationUnit, error) {
	var units []*CompilationUnit
	info := d.debugInfo
	pos := 0
	for pos < len(info) {
		start := pos
		r := newByteReader(info[pos:])

		unitLength, err := r.u32()
		if err != nil {
			return nil, err
		}
		if unitLength == 0xffffffff {
			return nil, Err64BitDWARF
		}

		version, err := r.u16()
		if err != nil {
			return nil, err
		}

		var abbrevOffset uint32
		var rootOffset int
		switch version {
		case 4:
			abbrevOffset, err = r.u32()
			if err != nil {
				return nil, err
			}
			addrSize, err := r.u8()
			if err != nil {
				return nil, err
			}
			if addrSize != 8 {
				return nil, fmt.Errorf("%w: address size %d (want 8)", ErrUnsupportedVersion, addrSize)
			}
			rootOffset = 11
		case 5:
			unitType, err := r.u8()
			if err != nil {
				return nil, err
			}
			if unitType != 0x01 {
				return nil, fmt.Errorf("%w: unit type 0x%x (want DW_UT_compile)", ErrUnsupportedVersion, unitType)
			}
			addrSize, err := r.u8()
			if err != nil {
				return nil, err
			}
			if addrSize != 8 {
				return nil, fmt.Errorf("%w: address size %d (want 8)", ErrUnsupportedVersion, addrSize)
			}
			abbrevOffset, err = r.u32()
			if err != nil {
				return nil, err
			}
			rootOffset = 12
		default:
			return nil, fmt.Errorf("%w: DWARF version %d", ErrUnsupportedVersion, version)
		}

		if int(abbrevOffset) > len(d.debugAbbrev) {
			return nil, fmt.Errorf("%w: abbrev offset %d exceeds .debug_abbrev size %d", ErrMalformed, abbrevOffset, len(d.debugAbbrev))
		}
		tbl, err := parseAbbrevTable(d.debugAbbrev[abbrevOffset:])
		if err != nil {
			return nil, fmt.Errorf("parsing abbrev table at offset %d: %w", abbrevOffset, err)
		}

		total := 4 + int(unitLength)
		if start+total > len(info) {
			return nil, fmt.Errorf("%w: unit at offset %d overruns .debug_info", ErrMalformed, start)
		}

		units = append(units, &CompilationUnit{
			offset:     start,
			length:     total,
			version:    version,
			rootOffset: rootOffset,
			abbrev:     tbl,
		})
		pos = start + total
	}
	return units, nil
}

package dwarf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned while walking .debug_info/.debug_abbrev. Callers
// match these with errors.Is; every wrapped error still carries byte-offset
// context via fmt.Errorf's %w.
var (
	// Err64BitDWARF is returned when a compilation unit's initial length
	// field is the 64-bit-DWARF escape value (0xffffffff). Only the
	// 32-bit DWARF format is supported.
	Err64BitDWARF = errors.New("dwarf: 64-bit DWARF initial-length format not supported")

	// ErrUnsupportedVersion is returned for a CU header whose version or
	// address size this module does not implement.
	ErrUnsupportedVersion = errors.New("dwarf: unsupported compilation unit header")

	// ErrMalformed covers any structural inconsistency in the abbrev or
	// info streams: truncated reads, out-of-sequence abbrev codes,
	// out-of-range references, too many attributes on one DIE.
	ErrMalformed = errors.New("dwarf: malformed debug information")
)

// UnknownFormError is returned when an abbrev declares an attribute form
// this module has no width rule for, so the entry cursor cannot safely
// skip past it.
type UnknownFormError struct {
	Form Form
}

func (e *UnknownFormError) Error() string {
	return fmt.Sprintf("dwarf: unknown attribute form 0x%x", uint16(e.Form))
}

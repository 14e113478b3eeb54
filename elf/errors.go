package elf

import "errors"

var (
	// ErrIO covers failures opening, stat'ing, or mapping the target file.
	ErrIO = errors.New("elf: i/o error")

	// ErrNotELF is returned when the file does not begin with the ELF
	// magic number.
	ErrNotELF = errors.New("elf: not an ELF file")

	// ErrUnsupportedELF is returned for any ELF file that is not a
	// little-endian, 64-bit, x86-64 executable or shared object — the
	// only shape a running Go binary's own /proc/self/exe can take on
	// the one platform this module supports.
	ErrUnsupportedELF = errors.New("elf: unsupported ELF file")

	// ErrNoDebugInfo is returned when neither the file itself nor a
	// .gnu_debuglink companion carries .debug_info.
	ErrNoDebugInfo = errors.New("elf: no DWARF debug information found")
)

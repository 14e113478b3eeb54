// Package elf memory-maps an ELF64 executable and hands its DWARF sections
// to package dwarf. It understands just enough of the ELF64 format —
// header validation, the section header table, and a single
// .gnu_debuglink hop — to locate .debug_info/.debug_abbrev/.debug_str in a
// running process's own /proc/self/exe.
package elf

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/golang-repr/gorepr/arch"
	"github.com/golang-repr/gorepr/dwarf"
)

const shdrSize = 64

// File is a memory-mapped ELF64 executable with its DWARF sections parsed.
type File struct {
	mapped     []byte // backs DWARF's section slices; Close unmaps it
	DWARF      *dwarf.Data
	EntryPoint uint64
}

// Close unmaps the underlying file. DWARF and anything derived from it
// must not be used afterward.
func (f *File) Close() error {
	if f.mapped == nil {
		return nil
	}
	err := unix.Munmap(f.mapped)
	f.mapped = nil
	return err
}

// Open mmaps path, validates its ELF64 little-endian x86-64 header, and
// parses its DWARF sections. If the file itself carries no .debug_info but
// declares a .gnu_debuglink, Open follows that link once to a sibling file
// in the same directory as path's resolved target — path is read as a
// symlink first (as /proc/self/exe always is) so the debug-link basename
// joins against the real executable's directory, not procfs's.
func Open(path string) (*File, error) {
	return openFollow(path, true)
}

func openFollow(path string, allowDebuglink bool) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer fh.Close()

	fi, err := fh.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	size := fi.Size()
	if size < 64 {
		return nil, ErrNotELF
	}

	data, err := unix.Mmap(int(fh.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %v", ErrIO, err)
	}

	hdr, err := parseHeader(data)
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}

	sections, shstr, err := readSectionTable(data, hdr)
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}

	debugInfo := findSection(data, sections, shstr, ".debug_info")
	debugAbbrev := findSection(data, sections, shstr, ".debug_abbrev")
	debugStr := findSection(data, sections, shstr, ".debug_str")

	if debugInfo == nil {
		if allowDebuglink {
			if link := findSection(data, sections, shstr, ".gnu_debuglink"); link != nil {
				if name, ok := cstring(link); ok {
					candidate := filepath.Join(filepath.Dir(resolvedPath(path)), name)
					unix.Munmap(data)
					return openFollow(candidate, false)
				}
			}
		}
		unix.Munmap(data)
		return nil, ErrNoDebugInfo
	}

	dw, err := dwarf.New(debugInfo, debugAbbrev, debugStr)
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}

	return &File{mapped: data, DWARF: dw, EntryPoint: hdr.entry}, nil
}

// resolvedPath returns the target of path if it is a symlink (notably
// /proc/self/exe, whose own directory is the unrelated procfs mount point,
// not the real executable's directory), or path unchanged if it is not a
// symlink or cannot be read.
func resolvedPath(path string) string {
	target, err := os.Readlink(path)
	if err != nil {
		return path
	}
	return target
}

type elfHeader struct {
	entry     uint64
	shoff     uint64
	shentsize uint16
	shnum     uint16
	shstrndx  uint16
}

func parseHeader(data []byte) (elfHeader, error) {
	var h elfHeader
	if data[0] != 0x7f || data[1] != 'E' || data[2] != 'L' || data[3] != 'F' {
		return h, ErrNotELF
	}
	if data[4] != 2 { // ELFCLASS64
		return h, fmt.Errorf("%w: not a 64-bit ELF file", ErrUnsupportedELF)
	}
	if data[5] != 1 { // ELFDATA2LSB
		return h, fmt.Errorf("%w: not little-endian", ErrUnsupportedELF)
	}

	etype := binary.LittleEndian.Uint16(data[16:18])
	if etype != 2 && etype != 3 { // ET_EXEC, ET_DYN
		return h, fmt.Errorf("%w: e_type %d is neither ET_EXEC nor ET_DYN", ErrUnsupportedELF, etype)
	}
	machine := binary.LittleEndian.Uint16(data[18:20])
	if machine != arch.ELFMachine {
		return h, fmt.Errorf("%w: e_machine 0x%x, want 0x%x", ErrUnsupportedELF, machine, arch.ELFMachine)
	}

	h.entry = binary.LittleEndian.Uint64(data[24:32])
	h.shoff = binary.LittleEndian.Uint64(data[40:48])
	h.shentsize = binary.LittleEndian.Uint16(data[58:60])
	h.shnum = binary.LittleEndian.Uint16(data[60:62])
	h.shstrndx = binary.LittleEndian.Uint16(data[62:64])
	return h, nil
}

type sectionHeader struct {
	name   uint32
	offset uint64
	size   uint64
}

func readSectionTable(data []byte, hdr elfHeader) ([]sectionHeader, []byte, error) {
	if hdr.shentsize != shdrSize {
		return nil, nil, fmt.Errorf("%w: unexpected section header entry size %d", ErrUnsupportedELF, hdr.shentsize)
	}
	tableEnd := hdr.shoff + uint64(hdr.shentsize)*uint64(hdr.shnum)
	if tableEnd > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: section header table overruns file", ErrUnsupportedELF)
	}

	sections := make([]sectionHeader, hdr.shnum)
	for i := range sections {
		base := hdr.shoff + uint64(i)*uint64(hdr.shentsize)
		sh := data[base : base+shdrSize]
		sections[i] = sectionHeader{
			name:   binary.LittleEndian.Uint32(sh[0:4]),
			offset: binary.LittleEndian.Uint64(sh[24:32]),
			size:   binary.LittleEndian.Uint64(sh[32:40]),
		}
	}

	if int(hdr.shstrndx) >= len(sections) {
		return nil, nil, fmt.Errorf("%w: shstrndx %d out of range", ErrUnsupportedELF, hdr.shstrndx)
	}
	strSec := sections[hdr.shstrndx]
	if strSec.offset+strSec.size > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: section header string table overruns file", ErrUnsupportedELF)
	}
	return sections, data[strSec.offset : strSec.offset+strSec.size], nil
}

func findSection(data []byte, sections []sectionHeader, shstr []byte, name string) []byte {
	for _, s := range sections {
		if int(s.name) >= len(shstr) || sectionName(shstr, s.name) != name {
			continue
		}
		if s.offset+s.size > uint64(len(data)) {
			return nil
		}
		return data[s.offset : s.offset+s.size]
	}
	return nil
}

func sectionName(shstr []byte, off uint32) string {
	i := off
	for int(i) < len(shstr) && shstr[i] != 0 {
		i++
	}
	return string(shstr[off:i])
}

func cstring(b []byte) (string, bool) {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	if i == 0 || i == len(b) {
		return "", false
	}
	return string(b[:i]), true
}

package dwarf

import (
	"bytes"
	"encoding/binary"
)

// strTab is a minimal .debug_str builder: each string is appended
// NUL-terminated and its starting offset recorded, mirroring what a real
// compiler's string table looks like.
type strTab struct {
	buf     bytes.Buffer
	offsets map[string]uint32
}

func newStrTab() *strTab {
	return &strTab{offsets: make(map[string]uint32)}
}

func (s *strTab) add(str string) uint32 {
	if off, ok := s.offsets[str]; ok {
		return off
	}
	off := uint32(s.buf.Len())
	s.buf.WriteString(str)
	s.buf.WriteByte(0)
	s.offsets[str] = off
	return off
}

// dieBuilder assembles one CU's .debug_info body (everything after the
// unit header) and its accompanying .debug_abbrev table by hand, the way
// this package's tests ground every parser against a known byte layout
// instead of compiled output.
type dieBuilder struct {
	info   bytes.Buffer
	abbrev bytes.Buffer
	str    *strTab
	code   uint64
}

func newDieBuilder(str *strTab) *dieBuilder {
	return &dieBuilder{str: str}
}

// declare registers an abbreviation and returns its code. attrs alternate
// (name, form) pairs; pass forms needing no operand (FormFlagPresent) with
// no following value.
func (b *dieBuilder) declare(tag Tag, hasChildren bool, attrs ...[2]uint64) uint64 {
	b.code++
	code := b.code
	b.abbrev.WriteByte(byte(code))
	b.abbrev.WriteByte(byte(tag))
	if hasChildren {
		b.abbrev.WriteByte(1)
	} else {
		b.abbrev.WriteByte(0)
	}
	for _, a := range attrs {
		b.abbrev.WriteByte(byte(a[0]))
		b.abbrev.WriteByte(byte(a[1]))
	}
	b.abbrev.WriteByte(0)
	b.abbrev.WriteByte(0)
	return code
}

func (b *dieBuilder) finishAbbrev() []byte {
	b.abbrev.WriteByte(0)
	return b.abbrev.Bytes()
}

// die writes one DIE's abbreviation code. offset() before calling this
// gives the DIE's offset within the body; adding the unit header length
// (dwarfv4HeaderLen) gives its CU-relative offset, which is also absolute
// since this package's fixtures always use a CU starting at absolute 0.
func (b *dieBuilder) die(code uint64) {
	b.info.WriteByte(byte(code))
}

func (b *dieBuilder) offset() int {
	return b.info.Len()
}

func (b *dieBuilder) strp(s string) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], b.str.add(s))
	b.info.Write(tmp[:])
}

func (b *dieBuilder) data1(v uint8) {
	b.info.WriteByte(v)
}

func (b *dieBuilder) ref4(off uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], off)
	b.info.Write(tmp[:])
}

func (b *dieBuilder) sdata(v int64) {
	// All fixture constants fit in one LEB128 byte.
	b.info.WriteByte(byte(v) & 0x7f)
}

func (b *dieBuilder) end() {
	b.info.WriteByte(0)
}

// unit wraps body in a DWARF version-4, 32-bit-format compilation unit
// header: unit_length, version, abbrev_offset (always 0 — one table per
// fixture), address_size.
func unit(body []byte) []byte {
	var buf bytes.Buffer
	var hdr bytes.Buffer
	binary.Write(&hdr, binary.LittleEndian, uint16(4)) // version
	binary.Write(&hdr, binary.LittleEndian, uint32(0)) // abbrev_offset
	hdr.WriteByte(8)                                   // address_size
	hdr.Write(body)

	binary.Write(&buf, binary.LittleEndian, uint32(hdr.Len()))
	buf.Write(hdr.Bytes())
	return buf.Bytes()
}

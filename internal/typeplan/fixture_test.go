package typeplan

import (
	"bytes"
	"encoding/binary"

	"github.com/golang-repr/gorepr/dwarf"
)

// This file hand-builds a minimal DWARF compilation unit so Build can be
// exercised end-to-end without a compiled binary to read debug information
// from. It duplicates the shape of the dwarf package's own fixture helpers
// (test-only code cannot cross a package boundary) kept small: just enough
// to declare the base, enumeration, structure, typedef, pointer and
// inheritance DIEs buildFixture lays out.

type fxStrTab struct {
	buf     bytes.Buffer
	offsets map[string]uint32
}

func newFxStrTab() *fxStrTab {
	return &fxStrTab{offsets: make(map[string]uint32)}
}

func (s *fxStrTab) add(str string) uint32 {
	if off, ok := s.offsets[str]; ok {
		return off
	}
	off := uint32(s.buf.Len())
	s.buf.WriteString(str)
	s.buf.WriteByte(0)
	s.offsets[str] = off
	return off
}

type fxBuilder struct {
	info   bytes.Buffer
	abbrev bytes.Buffer
	str    *fxStrTab
	code   uint64
}

func newFxBuilder(str *fxStrTab) *fxBuilder {
	return &fxBuilder{str: str}
}

func (b *fxBuilder) declare(tag dwarf.Tag, hasChildren bool, attrs ...[2]uint64) uint64 {
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

func (b *fxBuilder) finishAbbrev() []byte {
	b.abbrev.WriteByte(0)
	return b.abbrev.Bytes()
}

func (b *fxBuilder) die(code uint64)  { b.info.WriteByte(byte(code)) }
func (b *fxBuilder) offset() int      { return b.info.Len() }
func (b *fxBuilder) end()             { b.info.WriteByte(0) }
func (b *fxBuilder) data1(v uint8)    { b.info.WriteByte(v) }
func (b *fxBuilder) sdata(v int64)    { b.info.WriteByte(byte(v) & 0x7f) }

func (b *fxBuilder) strp(s string) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], b.str.add(s))
	b.info.Write(tmp[:])
}

func (b *fxBuilder) ref4(off uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], off)
	b.info.Write(tmp[:])
}

// fxUnit wraps body in a DWARF version-4, 32-bit-format unit header.
func fxUnit(body []byte) []byte {
	var hdr bytes.Buffer
	binary.Write(&hdr, binary.LittleEndian, uint16(4))
	binary.Write(&hdr, binary.LittleEndian, uint32(0))
	hdr.WriteByte(8)
	hdr.Write(body)

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(hdr.Len()))
	buf.Write(hdr.Bytes())
	return buf.Bytes()
}

const fxHeaderLen = 11

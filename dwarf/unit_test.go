package dwarf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestParseCompilationUnitsV4(t *testing.T) {
	info, abbrev, str, offsets := buildSampleUnit(t)
	d, err := New(info, abbrev, str)
	if err != nil {
		t.Fatal(err)
	}
	if d.NumUnits() != 1 {
		t.Fatalf("NumUnits() = %d, want 1", d.NumUnits())
	}
	cu := d.units[0]
	if cu.version != 4 {
		t.Fatalf("version = %d, want 4", cu.version)
	}
	if cu.offset != 0 {
		t.Fatalf("offset = %d, want 0", cu.offset)
	}
	if cu.rootOffset != dwarfv4HeaderLen {
		t.Fatalf("rootOffset = %d, want %d", cu.rootOffset, dwarfv4HeaderLen)
	}
	if cu.offset+cu.rootOffset != offsets["cu"] {
		t.Fatalf("root absolute offset = %d, want %d", cu.offset+cu.rootOffset, offsets["cu"])
	}
}

func TestParseCompilationUnitsV5(t *testing.T) {
	st := newStrTab()
	b := newDieBuilder(st)
	code := b.declare(TagCompileUnit, false, [2]uint64{uint64(AttrName), uint64(FormStrp)})
	b.die(code)
	b.strp("cu5")

	var hdr bytes.Buffer
	binary.Write(&hdr, binary.LittleEndian, uint16(5)) // version
	hdr.WriteByte(0x01)                                // DW_UT_compile
	hdr.WriteByte(8)                                    // address_size
	binary.Write(&hdr, binary.LittleEndian, uint32(0))  // abbrev_offset
	hdr.Write(b.info.Bytes())

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(hdr.Len()))
	buf.Write(hdr.Bytes())

	d, err := New(buf.Bytes(), b.finishAbbrev(), st.buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if d.NumUnits() != 1 {
		t.Fatalf("NumUnits() = %d, want 1", d.NumUnits())
	}
	if d.units[0].version != 5 {
		t.Fatalf("version = %d, want 5", d.units[0].version)
	}
	if d.units[0].rootOffset != 12 {
		t.Fatalf("rootOffset = %d, want 12", d.units[0].rootOffset)
	}

	root, err := d.Root(0)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := root.GetCString(AttrName); n != "cu5" {
		t.Fatalf("root name = %q, want cu5", n)
	}
}

func TestParseCompilationUnitsRejects64Bit(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0xffffffff))
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // 64-bit length field
	_, err := parseCompilationUnits(&Data{debugInfo: buf.Bytes()})
	if !errors.Is(err, Err64BitDWARF) {
		t.Fatalf("got %v, want Err64BitDWARF", err)
	}
}

func TestParseCompilationUnitsRejectsUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	var hdr bytes.Buffer
	binary.Write(&hdr, binary.LittleEndian, uint16(2)) // unsupported
	binary.Write(&hdr, binary.LittleEndian, uint32(0))
	hdr.WriteByte(8)
	binary.Write(&buf, binary.LittleEndian, uint32(hdr.Len()))
	buf.Write(hdr.Bytes())

	_, err := parseCompilationUnits(&Data{debugInfo: buf.Bytes()})
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}

func TestParseCompilationUnitsRejectsBadAddressSize(t *testing.T) {
	var buf bytes.Buffer
	var hdr bytes.Buffer
	binary.Write(&hdr, binary.LittleEndian, uint16(4))
	binary.Write(&hdr, binary.LittleEndian, uint32(0))
	hdr.WriteByte(4) // 32-bit target, unsupported
	binary.Write(&buf, binary.LittleEndian, uint32(hdr.Len()))
	buf.Write(hdr.Bytes())

	_, err := parseCompilationUnits(&Data{debugInfo: buf.Bytes()})
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}

package dwarf

import "testing"

func TestByteReaderFixedWidth(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	r := newByteReader(data)

	b, err := r.u8()
	if err != nil || b != 0x01 {
		t.Fatalf("u8: got (%v, %v), want (0x01, nil)", b, err)
	}
	u16, err := r.u16()
	if err != nil || u16 != 0x0302 {
		t.Fatalf("u16: got (0x%x, %v), want (0x0302, nil)", u16, err)
	}
	u32, err := r.u32()
	if err != nil || u32 != 0x07060504 {
		t.Fatalf("u32: got (0x%x, %v), want (0x07060504, nil)", u32, err)
	}
	if _, err := r.u8(); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}

func TestByteReaderU64(t *testing.T) {
	data := []byte{0xef, 0xbe, 0xad, 0xde, 0, 0, 0, 0}
	r := newByteReader(data)
	v, err := r.u64()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xdeadbeef {
		t.Fatalf("got 0x%x, want 0xdeadbeef", v)
	}
}

func TestByteReaderCString(t *testing.T) {
	data := append([]byte("hello"), 0, 'X')
	r := newByteReader(data)
	s, err := r.cstr()
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello" {
		t.Fatalf("got %q, want %q", s, "hello")
	}
	if r.pos() != 6 {
		t.Fatalf("pos = %d, want 6", r.pos())
	}
}

func TestByteReaderCStringUnterminated(t *testing.T) {
	r := newByteReader([]byte("no nul"))
	if _, err := r.cstr(); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestByteReaderSub(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	r := newByteReader(data)
	if err := r.skip(1); err != nil {
		t.Fatal(err)
	}
	s, err := r.sub(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 3 || s[0] != 2 || s[2] != 4 {
		t.Fatalf("got %v, want [2 3 4]", s)
	}
}

func TestLEB128Unsigned(t *testing.T) {
	cases := []struct {
		data []byte
		want uint64
		n    int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x02}, 2, 1},
		{[]byte{0x7f}, 127, 1},
		{[]byte{0x80, 0x01}, 128, 2},
		{[]byte{0xe5, 0x8e, 0x26}, 624485, 3},
	}
	for _, c := range cases {
		r := newByteReader(c.data)
		v, err := r.leb128()
		if err != nil {
			t.Fatalf("leb128(%v): %v", c.data, err)
		}
		if v != c.want || r.pos() != c.n {
			t.Errorf("leb128(%v) = (%d, consumed %d), want (%d, %d)", c.data, v, r.pos(), c.want, c.n)
		}
	}
}

func TestLEB128Signed(t *testing.T) {
	cases := []struct {
		data []byte
		want int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x02}, 2},
		{[]byte{0x7e}, -2},
		{[]byte{0x7f}, -1},
		{[]byte{0xff, 0x00}, 127},
		{[]byte{0x80, 0x7f}, -128},
	}
	for _, c := range cases {
		r := newByteReader(c.data)
		v, err := r.leb128s()
		if err != nil {
			t.Fatalf("leb128s(%v): %v", c.data, err)
		}
		if v != c.want {
			t.Errorf("leb128s(%v) = %d, want %d", c.data, v, c.want)
		}
	}
}

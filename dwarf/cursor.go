package dwarf

import (
	"encoding/binary"
	"fmt"
)

// byteReader is a positioned cursor over a byte buffer: fixed-width
// little-endian integers, unsigned/signed LEB128, NUL-terminated strings,
// and length-prefixed sub-buffers, all bounds-checked against ErrMalformed.
type byteReader struct {
	data []byte
	off  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

// pos returns the number of bytes consumed so far.
func (r *byteReader) pos() int {
	return r.off
}

func (r *byteReader) need(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformed, n, r.off, len(r.data)-r.off)
	}
	return nil
}

func (r *byteReader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *byteReader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *byteReader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *byteReader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *byteReader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

func (r *byteReader) sub(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	s := r.data[r.off : r.off+n]
	r.off += n
	return s, nil
}

// cstr reads a NUL-terminated string starting at the cursor.
func (r *byteReader) cstr() (string, error) {
	i := r.off
	for i < len(r.data) && r.data[i] != 0 {
		i++
	}
	if i >= len(r.data) {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrMalformed, r.off)
	}
	s := string(r.data[r.off:i])
	r.off = i + 1
	return s, nil
}

// leb128 decodes an unsigned LEB128 value. It scans forward to find the
// terminating byte (continuation bit clear), then accumulates back from
// that byte down to the first, shifting in 7 bits at a time — the same
// two-pass shape as the hand-rolled decoder this module's algorithm is
// grounded on, rather than a single forward accumulation.
func (r *byteReader) leb128() (uint64, error) {
	end := r.off
	for {
		if end >= len(r.data) {
			return 0, fmt.Errorf("%w: unterminated leb128 at offset %d", ErrMalformed, r.off)
		}
		if r.data[end]&0x80 == 0 {
			break
		}
		end++
	}
	var result uint64
	for i := end; ; i-- {
		result <<= 7
		result |= uint64(r.data[i] & 0x7f)
		if i == r.off {
			break
		}
	}
	r.off = end + 1
	return result, nil
}

// leb128s decodes a signed LEB128 value, sign-extending if the final
// byte's 0x40 bit is set.
func (r *byteReader) leb128s() (int64, error) {
	start := r.off
	end := r.off
	for {
		if end >= len(r.data) {
			return 0, fmt.Errorf("%w: unterminated leb128 at offset %d", ErrMalformed, r.off)
		}
		if r.data[end]&0x80 == 0 {
			break
		}
		end++
	}
	var result uint64
	if r.data[end]&0x40 != 0 {
		result = ^uint64(0)
	}
	for i := end; ; i-- {
		result <<= 7
		result |= uint64(r.data[i] & 0x7f)
		if i == start {
			break
		}
	}
	r.off = end + 1
	return int64(result), nil
}

package dwarf

import (
	"encoding/binary"
	"fmt"

	"github.com/golang-repr/gorepr/addr"
)

// maxDIEAttrs bounds the number of attributes this module will track for a
// single DIE. DWARF itself has no such limit; this is a defensive bound on
// an adversarial or corrupt abbreviation declaration, returned as
// ErrMalformed rather than grown without bound.
const maxDIEAttrs = 32

// Entry is a cursor positioned on one DIE. Calling Next repeatedly from a
// compilation unit's root visits that DIE, then its first child (if
// hasChildren), then onward in file order; callers track nesting depth
// themselves using HasChildren and IsEnd, the same way the abbreviation
// declarations encode the tree with no explicit parent/child links.
type Entry struct {
	data   *Data
	cu     *CompilationUnit
	abbrev *abbrevEntry // nil means this is an end-of-children terminator
	offset int
	next   int

	attrOff [maxDIEAttrs]int // absolute offset of each attribute's value, parallel to abbrev.attrs
}

// IsEnd reports whether this cursor is a null DIE terminating a sibling
// chain (DWARF's abbrev code 0).
func (e *Entry) IsEnd() bool {
	return e.abbrev == nil
}

// Tag returns the DIE's tag, or TagNone for an end cursor.
func (e *Entry) Tag() Tag {
	if e.abbrev == nil {
		return TagNone
	}
	return e.abbrev.tag
}

// HasChildren reports whether DIEs immediately following this one (until a
// matching end cursor) are this DIE's children.
func (e *Entry) HasChildren() bool {
	return e.abbrev != nil && e.abbrev.hasChildren
}

// Offset returns this DIE's absolute .debug_info offset, usable as a
// reference target and as a memoization key component.
func (e *Entry) Offset() int {
	return e.offset
}

// CU returns the compilation unit this DIE belongs to.
func (e *Entry) CU() *CompilationUnit {
	return e.cu
}

// Next returns the cursor immediately following this DIE in file order.
func (e *Entry) Next() (*Entry, error) {
	if e.next >= e.cu.End() {
		return nil, fmt.Errorf("%w: DIE at offset %d has no successor within its unit", ErrMalformed, e.offset)
	}
	return e.data.loadDIE(e.cu, e.next)
}

// SkipChildren returns the cursor for this DIE's next sibling, walking past
// and discarding any subtree rooted at this DIE's children.
func (e *Entry) SkipChildren() (*Entry, error) {
	if !e.HasChildren() {
		return e.Next()
	}
	cur := e
	depth := 1
	for depth > 0 {
		n, err := cur.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case n.IsEnd():
			depth--
		case n.HasChildren():
			depth++
		}
		cur = n
	}
	// cur is the terminator closing this DIE's children; the sibling is the
	// DIE right after it.
	return cur.Next()
}

// loadDIE parses the DIE starting at the given absolute .debug_info offset.
func (d *Data) loadDIE(cu *CompilationUnit, offset int) (*Entry, error) {
	r := newByteReader(d.debugInfo[offset:])
	code, err := r.leb128()
	if err != nil {
		return nil, err
	}
	if code == 0 {
		return &Entry{data: d, cu: cu, abbrev: nil, offset: offset, next: offset + r.pos()}, nil
	}

	ab, err := cu.abbrev.get(code)
	if err != nil {
		return nil, err
	}
	if len(ab.attrs) > maxDIEAttrs {
		return nil, fmt.Errorf("%w: DIE at offset %d declares %d attributes, exceeds limit of %d", ErrMalformed, offset, len(ab.attrs), maxDIEAttrs)
	}

	e := &Entry{data: d, cu: cu, abbrev: ab, offset: offset}
	for i, a := range ab.attrs {
		e.attrOff[i] = offset + r.pos()
		if err := advanceForm(r, a.form); err != nil {
			return nil, fmt.Errorf("DIE at offset %d, attribute %d: %w", offset, i, err)
		}
	}
	e.next = offset + r.pos()
	return e, nil
}

// advanceForm skips past one attribute value of the given form without
// interpreting it, per the form-width rules needed by this module.
func advanceForm(r *byteReader, form Form) error {
	switch form {
	case FormFlagPresent, FormImplicitConst:
		return nil
	case FormData1, FormFlag, FormStrx1, FormAddrx1, FormRef1:
		return r.skip(1)
	case FormData2, FormStrx2, FormAddrx2, FormRef2:
		return r.skip(2)
	case FormStrx3, FormAddrx3:
		return r.skip(3)
	case FormData4, FormRef4, FormStrp, FormLineStrp, FormSecOffset, FormStrx4, FormAddrx4, FormRefSup4:
		return r.skip(4)
	case FormData8, FormRef8, FormAddr, FormRefSig8, FormRefSup8:
		return r.skip(8)
	case FormData16:
		return r.skip(16)
	case FormSdata:
		_, err := r.leb128s()
		return err
	case FormUdata, FormRefUdata, FormAddrx, FormStrx, FormRnglistx, FormLoclistx:
		_, err := r.leb128()
		return err
	case FormString:
		_, err := r.cstr()
		return err
	case FormBlock1:
		n, err := r.u8()
		if err != nil {
			return err
		}
		return r.skip(int(n))
	case FormBlock2:
		n, err := r.u16()
		if err != nil {
			return err
		}
		return r.skip(int(n))
	case FormBlock4:
		n, err := r.u32()
		if err != nil {
			return err
		}
		return r.skip(int(n))
	case FormExprloc, FormBlock:
		n, err := r.leb128()
		if err != nil {
			return err
		}
		return r.skip(int(n))
	default:
		return &UnknownFormError{Form: form}
	}
}

func (e *Entry) attrSpec(name Attr) (int, *attrSpec) {
	if e.abbrev == nil {
		return -1, nil
	}
	for i := range e.abbrev.attrs {
		if e.abbrev.attrs[i].name == name {
			return i, &e.abbrev.attrs[i]
		}
	}
	return -1, nil
}

// GetCString returns a DW_FORM_string or DW_FORM_strp attribute's string
// value.
func (e *Entry) GetCString(name Attr) (string, bool) {
	i, spec := e.attrSpec(name)
	if spec == nil {
		return "", false
	}
	info := e.data.debugInfo
	switch spec.form {
	case FormStrp:
		off := binary.LittleEndian.Uint32(info[e.attrOff[i]:])
		s, err := readCStringAt(e.data.debugStr, int(off))
		if err != nil {
			return "", false
		}
		return s, true
	case FormString:
		s, err := readCStringAt(info, e.attrOff[i])
		if err != nil {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}

// GetOffset returns a reference-form or exprloc-form attribute as an
// address: a DW_FORM_ref4's referenced DIE offset, or a single DW_OP_addr
// location expression's operand.
func (e *Entry) GetOffset(name Attr) (addr.Address, bool) {
	i, spec := e.attrSpec(name)
	if spec == nil {
		return 0, false
	}
	info := e.data.debugInfo
	switch spec.form {
	case FormRef4:
		// CU-relative: the stored value is an offset from the start of
		// this DIE's own compilation unit, not an absolute .debug_info
		// offset.
		return addr.Address(e.cu.offset) + addr.Address(binary.LittleEndian.Uint32(info[e.attrOff[i]:])), true
	case FormRef8:
		return addr.Address(e.cu.offset) + addr.Address(binary.LittleEndian.Uint64(info[e.attrOff[i]:])), true
	case FormAddr:
		return addr.Address(binary.LittleEndian.Uint64(info[e.attrOff[i]:])), true
	case FormExprloc:
		r := newByteReader(info[e.attrOff[i]:])
		n, err := r.leb128()
		if err != nil || n != 9 {
			return 0, false
		}
		op, err := r.u8()
		if err != nil || op != dwOpAddr {
			return 0, false
		}
		v, err := r.u64()
		if err != nil {
			return 0, false
		}
		return addr.Address(v), true
	default:
		return 0, false
	}
}

// GetUnsigned returns a data- or constant-form attribute as an unsigned
// value.
func (e *Entry) GetUnsigned(name Attr) (uint64, bool) {
	i, spec := e.attrSpec(name)
	if spec == nil {
		return 0, false
	}
	info := e.data.debugInfo
	switch spec.form {
	case FormData1:
		return uint64(info[e.attrOff[i]]), true
	case FormData2:
		return uint64(binary.LittleEndian.Uint16(info[e.attrOff[i]:])), true
	case FormData4:
		return uint64(binary.LittleEndian.Uint32(info[e.attrOff[i]:])), true
	case FormData8:
		return binary.LittleEndian.Uint64(info[e.attrOff[i]:]), true
	case FormUdata:
		r := newByteReader(info[e.attrOff[i]:])
		v, err := r.leb128()
		if err != nil {
			return 0, false
		}
		return v, true
	case FormSdata:
		r := newByteReader(info[e.attrOff[i]:])
		v, err := r.leb128s()
		if err != nil {
			return 0, false
		}
		return uint64(v), true
	case FormImplicitConst:
		return uint64(spec.implicitConst), true
	default:
		return 0, false
	}
}

// GetSigned returns a constant-form attribute as a signed value.
func (e *Entry) GetSigned(name Attr) (int64, bool) {
	i, spec := e.attrSpec(name)
	if spec == nil {
		return 0, false
	}
	info := e.data.debugInfo
	switch spec.form {
	case FormSdata:
		r := newByteReader(info[e.attrOff[i]:])
		v, err := r.leb128s()
		if err != nil {
			return 0, false
		}
		return v, true
	case FormImplicitConst:
		return spec.implicitConst, true
	case FormData1:
		return int64(int8(info[e.attrOff[i]])), true
	case FormData2:
		return int64(int16(binary.LittleEndian.Uint16(info[e.attrOff[i]:]))), true
	case FormData4:
		return int64(int32(binary.LittleEndian.Uint32(info[e.attrOff[i]:]))), true
	case FormData8:
		return int64(binary.LittleEndian.Uint64(info[e.attrOff[i]:])), true
	case FormUdata:
		r := newByteReader(info[e.attrOff[i]:])
		v, err := r.leb128()
		if err != nil {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// GetFlag returns a boolean (presence or DW_FORM_flag) attribute.
func (e *Entry) GetFlag(name Attr) (bool, bool) {
	i, spec := e.attrSpec(name)
	if spec == nil {
		return false, false
	}
	switch spec.form {
	case FormFlagPresent:
		return true, true
	case FormFlag:
		return e.data.debugInfo[e.attrOff[i]] != 0, true
	default:
		return false, false
	}
}

// GetBuffer returns a block- or exprloc-form attribute's raw bytes.
func (e *Entry) GetBuffer(name Attr) ([]byte, bool) {
	i, spec := e.attrSpec(name)
	if spec == nil {
		return nil, false
	}
	info := e.data.debugInfo
	switch spec.form {
	case FormBlock1:
		n := int(info[e.attrOff[i]])
		return info[e.attrOff[i]+1 : e.attrOff[i]+1+n], true
	case FormExprloc, FormBlock:
		r := newByteReader(info[e.attrOff[i]:])
		n, err := r.leb128()
		if err != nil {
			return nil, false
		}
		start := e.attrOff[i] + r.pos()
		return info[start : start+int(n)], true
	default:
		return nil, false
	}
}

func readCStringAt(buf []byte, off int) (string, error) {
	if off < 0 || off > len(buf) {
		return "", fmt.Errorf("%w: string offset %d out of range", ErrMalformed, off)
	}
	i := off
	for i < len(buf) && buf[i] != 0 {
		i++
	}
	if i >= len(buf) {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrMalformed, off)
	}
	return string(buf[off:i]), nil
}

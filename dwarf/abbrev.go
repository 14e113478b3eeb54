package dwarf

import "fmt"

// attrSpec is one (attribute, form) pair declared by an abbreviation, plus
// the constant value carried inline when form is FormImplicitConst.
type attrSpec struct {
	name          Attr
	form          Form
	implicitConst int64
}

// abbrevEntry is one decoded .debug_abbrev declaration: a tag, whether DIEs
// using it have children, and its ordered attribute list.
type abbrevEntry struct {
	tag         Tag
	hasChildren bool
	attrs       []attrSpec
}

// abbrevTable is the parsed .debug_abbrev stream for a single compilation
// unit, indexed by abbreviation code. Index 0 is never a real declaration;
// it exists only so codes can index directly into entries without an
// off-by-one.
type abbrevTable struct {
	entries []abbrevEntry
}

// parseAbbrevTable parses one CU's abbreviation declarations starting at
// data[0], stopping at the code-0 terminator. data may contain further
// tables belonging to other CUs after the terminator; those are never
// touched.
func parseAbbrevTable(data []byte) (*abbrevTable, error) {
	t := &abbrevTable{entries: []abbrevEntry{{}}}
	r := newByteReader(data)
	for {
		code, err := r.leb128()
		if err != nil {
			return nil, err
		}
		if code == 0 {
			break
		}
		if int(code) != len(t.entries) {
			return nil, fmt.Errorf("%w: abbrev code %d out of sequence (expected %d)", ErrMalformed, code, len(t.entries))
		}

		tagVal, err := r.leb128()
		if err != nil {
			return nil, err
		}
		hasChildrenByte, err := r.u8()
		if err != nil {
			return nil, err
		}

		var attrs []attrSpec
		for {
			nameVal, err := r.leb128()
			if err != nil {
				return nil, err
			}
			formVal, err := r.leb128()
			if err != nil {
				return nil, err
			}
			if nameVal == 0 && formVal == 0 {
				break
			}
			var implicit int64
			if Form(formVal) == FormImplicitConst {
				implicit, err = r.leb128s()
				if err != nil {
					return nil, err
				}
			}
			attrs = append(attrs, attrSpec{Attr(nameVal), Form(formVal), implicit})
		}

		t.entries = append(t.entries, abbrevEntry{
			tag:         Tag(tagVal),
			hasChildren: hasChildrenByte == 1,
			attrs:       attrs,
		})
	}
	return t, nil
}

func (t *abbrevTable) get(code uint64) (*abbrevEntry, error) {
	if code == 0 || code >= uint64(len(t.entries)) {
		return nil, fmt.Errorf("%w: abbrev code %d not declared", ErrMalformed, code)
	}
	return &t.entries[code], nil
}

package typeplan

import (
	"fmt"
	"log"

	"github.com/golang-repr/gorepr/dwarf"
)

// Key memoizes a printer by compilation-unit index and DIE offset, exactly
// as the type-plan builder's memoization is specified: the same type DIE
// reached through two different paths (a struct member and a typedef
// alias, say) builds its printer only once.
type Key struct {
	CUIndex int
	Offset  int
}

// Builder walks type DIEs out of one Data and caches the printer it builds
// for each. A Builder is not safe for concurrent use; repr serializes
// access with its own mutex.
type Builder struct {
	data    *dwarf.Data
	cuIndex map[*dwarf.CompilationUnit]int
	cache   map[Key]*Printer
	logger  *log.Logger
}

func NewBuilder(d *dwarf.Data, logger *log.Logger) *Builder {
	b := &Builder{
		data:    d,
		cuIndex: make(map[*dwarf.CompilationUnit]int, d.NumUnits()),
		cache:   make(map[Key]*Printer),
		logger:  logger,
	}
	for i := 0; i < d.NumUnits(); i++ {
		b.cuIndex[d.Unit(i)] = i
	}
	return b
}

// Build returns the printer for the type DIE at entry, building and
// caching it on first use.
func (b *Builder) Build(entry *dwarf.Entry) *Printer {
	key := Key{CUIndex: b.cuIndex[entry.CU()], Offset: entry.Offset()}
	if p, ok := b.cache[key]; ok {
		return p
	}
	p := b.build(entry)
	b.cache[key] = p
	return p
}

func (b *Builder) build(entry *dwarf.Entry) *Printer {
	switch entry.Tag() {
	case dwarf.TagEnumerationType:
		return b.buildEnum(entry)
	case dwarf.TagStructureType, dwarf.TagClassType:
		return b.buildStruct(entry)
	case dwarf.TagBaseType:
		return b.buildBase(entry)
	case dwarf.TagTypedef:
		return b.buildTypedef(entry)
	case dwarf.TagPointerType:
		return &Printer{Render: renderPointer}
	default:
		b.logger.Printf("typeplan: no printer for tag %s at offset %d", entry.Tag(), entry.Offset())
		return Unknown
	}
}

func (b *Builder) buildTypedef(entry *dwarf.Entry) *Printer {
	ref, ok := entry.GetOffset(dwarf.AttrType)
	if !ok {
		b.logger.Printf("typeplan: typedef at offset %d has no Type attribute", entry.Offset())
		return Unknown
	}
	target, err := b.data.EntryAt(entry.CU(), int(ref))
	if err != nil {
		b.logger.Printf("typeplan: typedef at offset %d: %v", entry.Offset(), err)
		return Unknown
	}
	return b.Build(target)
}

func (b *Builder) buildBase(entry *dwarf.Entry) *Printer {
	enc, ok := entry.GetUnsigned(dwarf.AttrEncoding)
	if !ok {
		return Unknown
	}
	size, ok := entry.GetUnsigned(dwarf.AttrByteSize)
	if !ok {
		return Unknown
	}
	fn, ok := baseDispatch[baseKey{dwarf.Encoding(enc), int(size)}]
	if !ok {
		b.logger.Printf("typeplan: unhandled base type encoding=%d size=%d at offset %d", enc, size, entry.Offset())
		return Unknown
	}
	return &Printer{Render: fn}
}

// resolveUnderlying walks through Typedef indirections to the concrete
// base type backing an enumeration, per spec: "walk through any Typedef
// indirections."
func (b *Builder) resolveUnderlying(cu *dwarf.CompilationUnit, offset int) (*dwarf.Entry, error) {
	e, err := b.data.EntryAt(cu, offset)
	if err != nil {
		return nil, err
	}
	for e.Tag() == dwarf.TagTypedef {
		next, ok := e.GetOffset(dwarf.AttrType)
		if !ok {
			return e, nil
		}
		e, err = b.data.EntryAt(e.CU(), int(next))
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

func isSignedEncoding(e dwarf.Encoding) bool {
	return e == dwarf.EncodingSigned || e == dwarf.EncodingSignedChar
}

func (b *Builder) buildEnum(entry *dwarf.Entry) *Printer {
	name := typeName(entry)

	ref, ok := entry.GetOffset(dwarf.AttrType)
	if !ok {
		b.logger.Printf("typeplan: enum %q at offset %d has no underlying type", name, entry.Offset())
		return Unknown
	}
	underlying, err := b.resolveUnderlying(entry.CU(), int(ref))
	if err != nil {
		b.logger.Printf("typeplan: enum %q: %v", name, err)
		return Unknown
	}

	enc, _ := underlying.GetUnsigned(dwarf.AttrEncoding)
	size, _ := underlying.GetUnsigned(dwarf.AttrByteSize)
	signed := isSignedEncoding(dwarf.Encoding(enc))

	render, ok := enumDispatch(int(size), signed)
	if !ok {
		b.logger.Printf("typeplan: enum %q has unsupported underlying width %d", name, size)
		return Unknown
	}

	info := &enumInfo{name: name, signed: signed, values: make(map[uint64]string)}
	if err := collectEnumerators(entry, int(size), signed, info); err != nil {
		// A malformed enumeration (a non-Enumerator child) is a DWARF
		// structural invariant violation, not an ordinary build failure:
		// propagate so the caller can abort this printer specifically,
		// per the error-handling policy.
		panic(fmt.Errorf("typeplan: enum %q: %w", name, err))
	}
	return &Printer{Render: render, Info: info}
}

func collectEnumerators(entry *dwarf.Entry, byteSize int, signed bool, info *enumInfo) error {
	if !entry.HasChildren() {
		return nil
	}
	var mask uint64 = ^uint64(0)
	if byteSize > 0 && byteSize < 8 {
		mask = (uint64(1) << uint(byteSize*8)) - 1
	}

	cur, err := entry.Next()
	if err != nil {
		return err
	}
	for !cur.IsEnd() {
		if cur.Tag() != dwarf.TagEnumerator {
			return fmt.Errorf("unexpected child tag %s, want Enumerator", cur.Tag())
		}
		ename, ok := cur.GetCString(dwarf.AttrName)
		if !ok {
			return fmt.Errorf("enumerator at offset %d has no name", cur.Offset())
		}
		var raw uint64
		if signed {
			v, ok := cur.GetSigned(dwarf.AttrConstValue)
			if !ok {
				return fmt.Errorf("enumerator %q has no ConstValue", ename)
			}
			raw = uint64(v) & mask
		} else {
			v, ok := cur.GetUnsigned(dwarf.AttrConstValue)
			if !ok {
				return fmt.Errorf("enumerator %q has no ConstValue", ename)
			}
			raw = v & mask
		}
		info.values[raw] = ename

		var next *dwarf.Entry
		if cur.HasChildren() {
			next, err = cur.SkipChildren()
		} else {
			next, err = cur.Next()
		}
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func (b *Builder) buildStruct(entry *dwarf.Entry) *Printer {
	name := typeName(entry)
	info := &structInfo{name: name}
	if err := b.collectMembers(entry, 0, info); err != nil {
		b.logger.Printf("typeplan: struct %q: %v", name, err)
		return Unknown
	}
	return &Printer{Render: renderStruct, Info: info}
}

// collectMembers walks entry's direct children (Member contributes a
// field; Inheritance recurses into the base class with an added offset),
// skipping nested scopes by tracking depth: has_children increments it, a
// None-tag terminator decrements it, and only depth-1 children are
// inspected.
func (b *Builder) collectMembers(entry *dwarf.Entry, baseOffset uint64, info *structInfo) error {
	if !entry.HasChildren() {
		return nil
	}
	cur, err := entry.Next()
	if err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		if depth == 1 {
			switch cur.Tag() {
			case dwarf.TagMember:
				mname, _ := cur.GetCString(dwarf.AttrName)
				off, _ := cur.GetUnsigned(dwarf.AttrDataMemberLocation)
				if tref, ok := cur.GetOffset(dwarf.AttrType); ok {
					if target, err := b.data.EntryAt(cur.CU(), int(tref)); err == nil {
						info.members = append(info.members, memberInfo{
							name:    mname,
							offset:  baseOffset + off,
							printer: b.Build(target),
						})
					}
				}
			case dwarf.TagInheritance:
				off, _ := cur.GetUnsigned(dwarf.AttrDataMemberLocation)
				if tref, ok := cur.GetOffset(dwarf.AttrType); ok {
					if target, err := b.data.EntryAt(cur.CU(), int(tref)); err == nil {
						if err := b.collectMembers(target, baseOffset+off, info); err != nil {
							return err
						}
					}
				}
			}
		}
		if cur.HasChildren() {
			depth++
		}
		next, err := cur.Next()
		if err != nil {
			return err
		}
		if next.IsEnd() {
			depth--
		}
		cur = next
	}
	return nil
}

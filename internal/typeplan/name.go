package typeplan

import "github.com/golang-repr/gorepr/dwarf"

// typeName returns a type DIE's display name for use in qualified
// enumerator (Name::Enumerator) and struct output. The Go compiler already
// emits a fully-qualified name (e.g. "main.Color") in DW_AT_name, so unlike
// the C++ original there is no namespace-chain reconstruction to do here.
func typeName(entry *dwarf.Entry) string {
	if n, ok := entry.GetCString(dwarf.AttrName); ok {
		return n
	}
	return "<anonymous>"
}

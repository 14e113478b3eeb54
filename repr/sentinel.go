package repr

// librepr_global_offset_marker__ is the load-bias sentinel: a package-level
// global whose compiled address, compared against the address the
// program's own DWARF reports for it, yields the offset between link-time
// and run-time addresses. Its name deliberately is not idiomatic Go — it
// must be a fixed, known source-level identifier so the debug-info search
// in patcher.go can find it by name in any binary built from this package.
var librepr_global_offset_marker__ int32

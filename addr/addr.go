// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package addr provides a typed address for values read out of an ELF
// file's DWARF debug information, so offsets and live pointers are never
// accidentally mixed with plain integers.
package addr

import "fmt"

// Address is a location, either in the live process's address space or as
// reported by DWARF before the load bias has been applied.
type Address uint64

// Add returns a+b.
func (a Address) Add(b int64) Address {
	return Address(int64(a) + b)
}

// Sub returns a-b.
func (a Address) Sub(b Address) int64 {
	return int64(a) - int64(b)
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

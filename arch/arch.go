// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch contains the architecture constraints this module supports.
// Unlike the multi-architecture debugger this package was adapted from,
// gorepr only ever reads its own process's ELF file, so there is exactly
// one supported machine: little-endian x86-64.
package arch

import "encoding/binary"

// PointerSize is the size, in bytes, of a pointer in the inferior.
const PointerSize = 8

// ByteOrder is the byte order of ints and pointers in the inferior.
var ByteOrder binary.ByteOrder = binary.LittleEndian

// ELFMachine is the expected e_machine value (EM_X86_64).
const ELFMachine = 0x3E

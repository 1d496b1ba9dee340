package mmu

/*
 * VirtuV - Memory management unit.
 *
 * Copyright 2025, Stefan Costea
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

import (
	"fmt"

	"github.com/StefanCostea/VirtuV/emu/memory"
)

// Access is the kind of memory access being translated.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessFetch
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessFetch:
		return "fetch"
	}
	return "unknown"
}

// AccessViolationError reports a mapped page that denies the requested
// operation under the current privilege mode.
type AccessViolationError struct {
	Address uint32
	Access  Access
	Mode    PrivilegeMode
}

func (e *AccessViolationError) Error() string {
	return fmt.Sprintf("access violation: %s of %08x denied in %s mode", e.Access, e.Address, e.Mode)
}

// MMU translates virtual to physical addresses through the page table
// and enforces permissions under the current privilege mode. It holds
// non-owning references to the backing store and the table.
type MMU struct {
	physical *memory.Memory
	pages    *PageTable
	mode     PrivilegeMode
}

// New returns an MMU over the given store and table.
func New(physical *memory.Memory, pages *PageTable, mode PrivilegeMode) *MMU {
	return &MMU{physical: physical, pages: pages, mode: mode}
}

// SetPrivilegeMode changes the mode used for permission checks.
func (m *MMU) SetPrivilegeMode(mode PrivilegeMode) {
	m.mode = mode
}

// PrivilegeMode returns the current mode.
func (m *MMU) PrivilegeMode() PrivilegeMode {
	return m.mode
}

// Translate maps a virtual address to a physical one, checking the
// page permissions for the requested access. Fetch requires the
// execute flag in USER mode; in SUPERVISOR and MACHINE mode a readable
// mapping is enough.
func (m *MMU) Translate(va uint32, access Access) (uint32, error) {
	entry, err := m.pages.GetEntry(va)
	if err != nil {
		return 0, err
	}
	if !entry.Valid() {
		return 0, &PageFaultError{Address: va}
	}

	var allowed bool
	switch access {
	case AccessWrite:
		allowed = entry.Writable(m.mode)
	case AccessFetch:
		if m.mode == User {
			allowed = entry.Executable(m.mode)
		} else {
			allowed = entry.Readable(m.mode)
		}
	default:
		allowed = entry.Readable(m.mode)
	}
	if !allowed {
		return 0, &AccessViolationError{Address: va, Access: access, Mode: m.mode}
	}
	return entry.PhysicalAddress(va), nil
}

// ReadByte reads one byte at a virtual address.
func (m *MMU) ReadByte(va uint32) (uint8, error) {
	pa, err := m.Translate(va, AccessRead)
	if err != nil {
		return 0, err
	}
	return m.physical.ReadByte(pa)
}

// WriteByte writes one byte at a virtual address.
func (m *MMU) WriteByte(va uint32, value uint8) error {
	pa, err := m.Translate(va, AccessWrite)
	if err != nil {
		return err
	}
	return m.physical.WriteByte(pa, value)
}

// ReadWord reads a little-endian 32-bit word. Each byte is translated
// on its own, so an unaligned word may straddle a page boundary as
// long as every byte is mapped readable.
func (m *MMU) ReadWord(va uint32) (uint32, error) {
	var word uint32
	for i := uint32(0); i < 4; i++ {
		b, err := m.ReadByte(va + i)
		if err != nil {
			return 0, err
		}
		word |= uint32(b) << (8 * i)
	}
	return word, nil
}

// WriteWord writes a little-endian 32-bit word, one translated byte at
// a time. A fault partway through leaves the earlier bytes written.
func (m *MMU) WriteWord(va uint32, value uint32) error {
	for i := uint32(0); i < 4; i++ {
		if err := m.WriteByte(va+i, uint8(value>>(8*i))); err != nil {
			return err
		}
	}
	return nil
}

// FetchWord reads a little-endian instruction word, translating each
// byte with fetch access.
func (m *MMU) FetchWord(va uint32) (uint32, error) {
	var word uint32
	for i := uint32(0); i < 4; i++ {
		pa, err := m.Translate(va+i, AccessFetch)
		if err != nil {
			return 0, err
		}
		b, err := m.physical.ReadByte(pa)
		if err != nil {
			return 0, err
		}
		word |= uint32(b) << (8 * i)
	}
	return word, nil
}

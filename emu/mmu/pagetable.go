package mmu

/*
 * VirtuV - Page table and page table entries.
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

import "fmt"

// PrivilegeMode gates the USER-accessible check on page permissions.
type PrivilegeMode int

const (
	User PrivilegeMode = iota
	Supervisor
	Machine
)

func (m PrivilegeMode) String() string {
	switch m {
	case User:
		return "USER"
	case Supervisor:
		return "SUPERVISOR"
	case Machine:
		return "MACHINE"
	}
	return "UNKNOWN"
}

// Entry flag bits, at their wire positions.
const (
	FlagValid uint32 = 0x1
	FlagRead  uint32 = 0x2
	FlagWrite uint32 = 0x4
	FlagExec  uint32 = 0x8
	FlagUser  uint32 = 0x10
)

const (
	// PageMask selects the page number of a virtual address.
	PageMask uint32 = 0xFFFFF000
	// OffsetMask selects the in-page offset.
	OffsetMask uint32 = 0x00000FFF
	// PageSize is 4KiB.
	PageSize uint32 = 0x1000
)

// PageTableEntry is a 32-bit record: flag bits in the low bits, the
// physical frame number in bits [31:12].
type PageTableEntry uint32

// NewEntry builds an entry from a frame address and flag bits.
func NewEntry(frame uint32, flags uint32) PageTableEntry {
	return PageTableEntry((frame & PageMask) | flags)
}

// Valid reports whether the entry is present.
func (e PageTableEntry) Valid() bool {
	return uint32(e)&FlagValid != 0
}

// userOK applies the USER-flag gate for the given mode. SUPERVISOR and
// MACHINE bypass it.
func (e PageTableEntry) userOK(mode PrivilegeMode) bool {
	return mode != User || uint32(e)&FlagUser != 0
}

// Readable reports whether a read is permitted under the given mode.
func (e PageTableEntry) Readable(mode PrivilegeMode) bool {
	return e.Valid() && uint32(e)&FlagRead != 0 && e.userOK(mode)
}

// Writable reports whether a write is permitted under the given mode.
func (e PageTableEntry) Writable(mode PrivilegeMode) bool {
	return e.Valid() && uint32(e)&FlagWrite != 0 && e.userOK(mode)
}

// Executable reports whether a fetch is permitted under the given mode.
func (e PageTableEntry) Executable(mode PrivilegeMode) bool {
	return e.Valid() && uint32(e)&FlagExec != 0 && e.userOK(mode)
}

// PhysicalAddress combines the entry's frame with the in-page offset
// of the virtual address.
func (e PageTableEntry) PhysicalAddress(va uint32) uint32 {
	return (uint32(e) & PageMask) | (va & OffsetMask)
}

// PageFaultError reports a translation with no valid mapping.
type PageFaultError struct {
	Address uint32
}

func (e *PageFaultError) Error() string {
	return fmt.Sprintf("page fault at %08x", e.Address)
}

// PageTable maps 4KiB-aligned virtual page numbers to entries. It is a
// direct map table, not an Sv32 walk.
type PageTable struct {
	entries map[uint32]PageTableEntry
}

// NewPageTable returns an empty table.
func NewPageTable() *PageTable {
	return &PageTable{entries: make(map[uint32]PageTableEntry)}
}

// AddEntry stores an entry for the page containing va. The key is
// aligned down so that insert and lookup stay symmetric; a later
// insert for the same page replaces the earlier one.
func (p *PageTable) AddEntry(va uint32, entry PageTableEntry) {
	p.entries[va&PageMask] = entry
}

// GetEntry looks up the entry for the page containing va.
func (p *PageTable) GetEntry(va uint32) (PageTableEntry, error) {
	entry, ok := p.entries[va&PageMask]
	if !ok {
		return 0, &PageFaultError{Address: va}
	}
	return entry, nil
}

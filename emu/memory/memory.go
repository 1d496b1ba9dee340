package memory

/*
 * VirtuV - Physical memory backing store.
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

// OutOfRangeError reports a physical address outside the backing store.
type OutOfRangeError struct {
	Address uint32
	Size    uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("physical address %08x out of range (memory size %08x)", e.Address, e.Size)
}

// Memory is a flat byte-addressable backing store. Every address below
// the configured size is readable and writable; anything above faults.
type Memory struct {
	data []uint8
}

// New returns a zero-initialized memory of the given size in bytes.
func New(size uint32) *Memory {
	return &Memory{data: make([]uint8, size)}
}

// Size of the backing store in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// ReadByte returns the byte at a physical address.
func (m *Memory) ReadByte(addr uint32) (uint8, error) {
	if addr >= uint32(len(m.data)) {
		return 0, &OutOfRangeError{Address: addr, Size: uint32(len(m.data))}
	}
	return m.data[addr], nil
}

// WriteByte stores a byte at a physical address.
func (m *Memory) WriteByte(addr uint32, value uint8) error {
	if addr >= uint32(len(m.data)) {
		return &OutOfRangeError{Address: addr, Size: uint32(len(m.data))}
	}
	m.data[addr] = value
	return nil
}

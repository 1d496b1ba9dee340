package registers

/*
 * VirtuV - General purpose register bank.
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
	"errors"
	"fmt"
)

// NumRegisters is the RV32I register count, x0 through x31.
const NumRegisters = 32

// ErrReadOnlyRegister is returned on any write to x0.
var ErrReadOnlyRegister = errors.New("register x0 is read only")

// IndexError reports a register index outside x0..x31.
type IndexError struct {
	Index uint32
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("register index %d out of range", e.Index)
}

// Bank holds the 32 general purpose registers and the program counter.
// x0 always reads zero and rejects writes.
type Bank struct {
	regs [NumRegisters]uint32
	pc   uint32
}

// New returns a bank with all registers and the PC zeroed.
func New() *Bank {
	return &Bank{}
}

// Read returns the value of a register. x0 reads zero unconditionally.
func (b *Bank) Read(reg uint32) (uint32, error) {
	if reg >= NumRegisters {
		return 0, &IndexError{Index: reg}
	}
	if reg == 0 {
		return 0, nil
	}
	return b.regs[reg], nil
}

// Write stores a value into a register. Writes to x0 are rejected.
func (b *Bank) Write(reg uint32, value uint32) error {
	if reg == 0 {
		return ErrReadOnlyRegister
	}
	if reg >= NumRegisters {
		return &IndexError{Index: reg}
	}
	b.regs[reg] = value
	return nil
}

// Reset zeroes every register and the PC.
func (b *Bank) Reset() {
	*b = Bank{}
}

// PC returns the program counter.
func (b *Bank) PC() uint32 {
	return b.pc
}

// SetPC sets the program counter.
func (b *Bank) SetPC(value uint32) {
	b.pc = value
}

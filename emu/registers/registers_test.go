package registers

/*
 * VirtuV - Register bank test cases.
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
	"testing"
)

// Fresh bank is all zero with PC zero.
func TestInitialState(t *testing.T) {
	bank := New()
	for reg := uint32(0); reg < NumRegisters; reg++ {
		value, err := bank.Read(reg)
		if err != nil {
			t.Fatalf("Read x%d failed: %v", reg, err)
		}
		if value != 0 {
			t.Errorf("x%d not correct got: %d expected: 0", reg, value)
		}
	}
	if bank.PC() != 0 {
		t.Errorf("PC not correct got: %d expected: 0", bank.PC())
	}
}

// x0 reads zero no matter what, and rejects writes.
func TestZeroRegister(t *testing.T) {
	bank := New()
	if err := bank.Write(0, 0xDEADBEEF); !errors.Is(err, ErrReadOnlyRegister) {
		t.Errorf("write to x0 error not correct got: %v", err)
	}
	value, _ := bank.Read(0)
	if value != 0 {
		t.Errorf("x0 not correct got: %d expected: 0", value)
	}

	// The rest of the bank stays untouched after the failed write.
	for reg := uint32(1); reg < NumRegisters; reg++ {
		if value, _ := bank.Read(reg); value != 0 {
			t.Errorf("x%d changed by rejected write got: %d", reg, value)
		}
	}
}

// Every other register stores and returns values.
func TestReadWrite(t *testing.T) {
	bank := New()
	for reg := uint32(1); reg < NumRegisters; reg++ {
		if err := bank.Write(reg, reg*3); err != nil {
			t.Fatalf("Write x%d failed: %v", reg, err)
		}
	}
	for reg := uint32(1); reg < NumRegisters; reg++ {
		value, _ := bank.Read(reg)
		if value != reg*3 {
			t.Errorf("x%d not correct got: %d expected: %d", reg, value, reg*3)
		}
	}
}

// Indexes past x31 are out of range for both operations.
func TestIndexRange(t *testing.T) {
	bank := New()
	var idx *IndexError
	if _, err := bank.Read(32); !errors.As(err, &idx) {
		t.Errorf("Read 32 error not correct got: %v", err)
	}
	if err := bank.Write(100, 1); !errors.As(err, &idx) {
		t.Errorf("Write 100 error not correct got: %v", err)
	}
}

// PC is unrestricted and Reset zeroes everything.
func TestPCAndReset(t *testing.T) {
	bank := New()
	bank.SetPC(0x1000)
	if bank.PC() != 0x1000 {
		t.Errorf("PC not correct got: %08x expected: %08x", bank.PC(), 0x1000)
	}

	_ = bank.Write(5, 99)
	bank.Reset()
	if bank.PC() != 0 {
		t.Error("Reset should zero the PC")
	}
	if value, _ := bank.Read(5); value != 0 {
		t.Error("Reset should zero the registers")
	}
}

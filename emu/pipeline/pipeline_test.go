package pipeline

/*
 * VirtuV - Pipeline driver test cases.
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

	"github.com/StefanCostea/VirtuV/emu/isa"
	"github.com/StefanCostea/VirtuV/emu/memory"
	"github.com/StefanCostea/VirtuV/emu/mmu"
	"github.com/StefanCostea/VirtuV/emu/registers"
)

// Build a pipeline over 64K of identity-mapped RWX memory with the
// given program at address zero.
func testPipeline(t *testing.T, words []uint32) (*Pipeline, *registers.Bank, *mmu.MMU) {
	t.Helper()
	pages := mmu.NewPageTable()
	flags := mmu.FlagValid | mmu.FlagRead | mmu.FlagWrite | mmu.FlagExec
	for page := uint32(0); page < 64*1024; page += mmu.PageSize {
		pages.AddEntry(page, mmu.NewEntry(page, flags))
	}
	m := mmu.New(memory.New(64*1024), pages, mmu.Machine)
	regs := registers.New()
	for i, word := range words {
		if err := m.WriteWord(uint32(i)*4, word); err != nil {
			t.Fatalf("program write failed: %v", err)
		}
	}
	return New(regs, m), regs, m
}

// One arithmetic cycle advances the PC and commits the result.
func TestCycleArithmetic(t *testing.T) {
	pipe, regs, _ := testPipeline(t, []uint32{0x00500093}) // addi x1, x0, 5
	status, err := pipe.Cycle()
	if err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}
	if status != Continue {
		t.Errorf("status not correct got: %v expected: Continue", status)
	}
	if value, _ := regs.Read(1); value != 5 {
		t.Errorf("x1 not correct got: %d expected: 5", value)
	}
	if regs.PC() != 4 {
		t.Errorf("PC not correct got: %d expected: 4", regs.PC())
	}
}

// A taken branch overwrites the post-increment from fetch.
func TestCycleBranchTaken(t *testing.T) {
	pipe, regs, _ := testPipeline(t, []uint32{
		0x00100093, // addi x1, x0, 1
		0x00100113, // addi x2, x0, 1
		0x00208463, // beq x1, x2, +8
	})
	for i := 0; i < 3; i++ {
		if _, err := pipe.Cycle(); err != nil {
			t.Fatalf("Cycle %d failed: %v", i, err)
		}
	}
	if regs.PC() != 0x10 {
		t.Errorf("PC after taken branch not correct got: %08x expected: %08x", regs.PC(), 0x10)
	}
}

// Loads flow through memory access into write-back.
func TestCycleLoadStore(t *testing.T) {
	pipe, regs, m := testPipeline(t, []uint32{
		0x10000113, // addi x2, x0, 0x100
		0x00012183, // lw x3, 0(x2)
		0x00312223, // sw x3, 4(x2)
	})
	if err := m.WriteWord(0x100, 0xDEADBEEF); err != nil {
		t.Fatalf("seed write failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := pipe.Cycle(); err != nil {
			t.Fatalf("Cycle %d failed: %v", i, err)
		}
	}
	if value, _ := regs.Read(3); value != 0xDEADBEEF {
		t.Errorf("x3 not correct got: %08x expected: %08x", value, 0xDEADBEEF)
	}
	word, _ := m.ReadWord(0x104)
	if word != 0xDEADBEEF {
		t.Errorf("stored word not correct got: %08x expected: %08x", word, 0xDEADBEEF)
	}
}

// Sub-word stores are rejected as illegal encodings.
func TestCycleSubWordStore(t *testing.T) {
	pipe, _, _ := testPipeline(t, []uint32{0x00310223}) // sb x3, 4(x2)
	var illegal *isa.IllegalInstructionError
	if _, err := pipe.Cycle(); !errors.As(err, &illegal) {
		t.Errorf("sb error not correct got: %v", err)
	}
}

// A jump to its own address halts after completing the cycle.
func TestCycleHalt(t *testing.T) {
	pipe, regs, _ := testPipeline(t, []uint32{0x0000006F}) // jal x0, 0
	status, err := pipe.Cycle()
	if err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}
	if status != Halted {
		t.Errorf("status not correct got: %v expected: Halted", status)
	}
	if regs.PC() != 0 {
		t.Errorf("PC after halt not correct got: %08x expected: 0", regs.PC())
	}
}

// An instruction with rd = 0 completes without changing the bank.
func TestCycleZeroDestination(t *testing.T) {
	pipe, regs, _ := testPipeline(t, []uint32{0x00500013}) // addi x0, x0, 5
	if _, err := pipe.Cycle(); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}
	for reg := uint32(0); reg < registers.NumRegisters; reg++ {
		if value, _ := regs.Read(reg); value != 0 {
			t.Errorf("x%d not correct got: %d expected: 0", reg, value)
		}
	}
}

// A fetch from an unmapped page faults the cycle.
func TestCycleFetchFault(t *testing.T) {
	pipe, regs, _ := testPipeline(t, nil)
	regs.SetPC(0x40000) // past the mapped range
	var pf *mmu.PageFaultError
	if _, err := pipe.Cycle(); !errors.As(err, &pf) {
		t.Errorf("fetch fault not correct got: %v", err)
	}
}

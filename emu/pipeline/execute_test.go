package pipeline

/*
 * VirtuV - Execute stage test cases.
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
	"github.com/StefanCostea/VirtuV/emu/registers"
)

// Run one instruction through execute with preloaded registers.
func execWord(t *testing.T, raw uint32, pc uint32, setup map[uint32]uint32) (ExecutionResult, error) {
	t.Helper()
	regs := registers.New()
	for reg, value := range setup {
		if err := regs.Write(reg, value); err != nil {
			t.Fatalf("setup write x%d failed: %v", reg, err)
		}
	}
	stage := NewExecuteStage(regs)
	return stage.Process(isa.Decode(raw), pc)
}

// R format ALU operations.
func TestExecuteRType(t *testing.T) {
	cases := []struct {
		name   string
		raw    uint32
		rs1    uint32
		rs2    uint32
		expect uint32
	}{
		{"add", 0x002081B3, 2, 3, 5},
		{"add wraps", 0x002081B3, 0xFFFFFFFF, 1, 0},
		{"sub", 0x402081B3, 2, 3, 0xFFFFFFFF},
		{"sll", 0x002091B3, 1, 5, 32},
		{"slt true", 0x0020A1B3, 0xFFFFFFFF, 0, 1},
		{"slt false", 0x0020A1B3, 0, 0xFFFFFFFF, 0},
		{"sltu true", 0x0020B1B3, 0, 0xFFFFFFFF, 1},
		{"xor", 0x0020C1B3, 0xF0F0, 0x00FF, 0xF00F},
		{"srl", 0x0020D1B3, 0x80000000, 4, 0x08000000},
		{"sra", 0x4020D1B3, 0x80000000, 4, 0xF8000000},
		{"or", 0x0020E1B3, 0xF000, 0x000F, 0xF00F},
		{"and", 0x0020F1B3, 0xFF00, 0x0FF0, 0x0F00},
	}
	for _, test := range cases {
		result, err := execWord(t, test.raw, 0, map[uint32]uint32{1: test.rs1, 2: test.rs2})
		if err != nil {
			t.Fatalf("%s failed: %v", test.name, err)
		}
		if result.ALUResult != test.expect {
			t.Errorf("%s not correct got: %08x expected: %08x", test.name, result.ALUResult, test.expect)
		}
	}

	// funct7 0x01 is not an RV32I encoding.
	var illegal *isa.IllegalInstructionError
	if _, err := execWord(t, 0x022081B3, 0, nil); !errors.As(err, &illegal) {
		t.Errorf("bad funct7 error not correct got: %v", err)
	}
}

// I format ALU operations, including both right shift encodings.
func TestExecuteIType(t *testing.T) {
	cases := []struct {
		name   string
		raw    uint32
		rs1    uint32
		expect uint32
	}{
		{"addi", 0x00500093, 0, 5},
		{"addi neg", 0xFFF08093, 10, 9}, // addi x1, x1, -1
		{"slti true", 0xFFB0A113, 0xFFFFFFF0, 1},  // -16 < -5
		{"slti false", 0xFFB0A113, 0, 0},          // 0 < -5 is false
		{"sltiu true", 0xFFB0B113, 7, 1},          // 7 < 0xFFFFFFFB
		{"sltiu false", 0xFFB0B113, 0xFFFFFFFC, 0},
		{"xori", 0x0FF0C113, 0x0F0F, 0x0FF0},
		{"ori", 0x0FF0E113, 0xF000, 0xF0FF},
		{"andi", 0x0FF0F113, 0x0FF0, 0x00F0},
		{"slli", 0x00409113, 3, 48},
		{"srli", 0x0040D113, 0x80000000, 0x08000000},
		{"srai", 0x4040D113, 0x80000000, 0xF8000000},
	}
	for _, test := range cases {
		result, err := execWord(t, test.raw, 0, map[uint32]uint32{1: test.rs1})
		if err != nil {
			t.Fatalf("%s failed: %v", test.name, err)
		}
		if result.ALUResult != test.expect {
			t.Errorf("%s not correct got: %08x expected: %08x", test.name, result.ALUResult, test.expect)
		}
	}

	// SLLI with the SRAI funct7 bit set is illegal.
	var illegal *isa.IllegalInstructionError
	if _, err := execWord(t, 0x40409113, 0, nil); !errors.As(err, &illegal) {
		t.Errorf("bad shift encoding error not correct got: %v", err)
	}
}

// Loads compute the effective address; sub-word widths are rejected.
func TestExecuteLoad(t *testing.T) {
	result, err := execWord(t, 0x00012183, 0, map[uint32]uint32{2: 0x100}) // lw x3, 0(x2)
	if err != nil {
		t.Fatalf("lw failed: %v", err)
	}
	if result.ALUResult != 0x100 {
		t.Errorf("effective address not correct got: %08x expected: %08x", result.ALUResult, 0x100)
	}

	var illegal *isa.IllegalInstructionError
	if _, err := execWord(t, 0x00010183, 0, nil); !errors.As(err, &illegal) { // lb x3, 0(x2)
		t.Errorf("lb error not correct got: %v", err)
	}
}

// Branch targets are relative to the instruction address.
func TestExecuteBranch(t *testing.T) {
	// beq taken: x1 == x2.
	result, err := execWord(t, 0x00208463, 0x100, map[uint32]uint32{1: 7, 2: 7})
	if err != nil {
		t.Fatalf("beq failed: %v", err)
	}
	if !result.BranchTaken || result.BranchTarget != 0x108 {
		t.Errorf("beq not correct got: taken=%v target=%08x expected: taken=true target=%08x",
			result.BranchTaken, result.BranchTarget, 0x108)
	}

	// beq not taken leaves the result zero.
	result, _ = execWord(t, 0x00208463, 0x100, map[uint32]uint32{1: 7, 2: 8})
	if result.BranchTaken || result.BranchTarget != 0 {
		t.Errorf("untaken beq not correct got: taken=%v target=%08x", result.BranchTaken, result.BranchTarget)
	}

	// bne, blt, bge, bltu, bgeu.
	cases := []struct {
		name  string
		raw   uint32
		rs1   uint32
		rs2   uint32
		taken bool
	}{
		{"bne taken", 0x00209463, 1, 2, true},
		{"bne untaken", 0x00209463, 2, 2, false},
		{"blt taken", 0x0020C463, 0xFFFFFFFF, 0, true}, // -1 < 0
		{"blt untaken", 0x0020C463, 0, 0xFFFFFFFF, false},
		{"bge taken", 0x0020D463, 0, 0xFFFFFFFF, true},
		{"bltu taken", 0x0020E463, 0, 0xFFFFFFFF, true},
		{"bgeu taken", 0x0020F463, 0xFFFFFFFF, 0, true},
	}
	for _, test := range cases {
		result, err := execWord(t, test.raw, 0, map[uint32]uint32{1: test.rs1, 2: test.rs2})
		if err != nil {
			t.Fatalf("%s failed: %v", test.name, err)
		}
		if result.BranchTaken != test.taken {
			t.Errorf("%s not correct got: taken=%v expected: %v", test.name, result.BranchTaken, test.taken)
		}
	}

	// funct3 2 is not a branch encoding.
	var illegal *isa.IllegalInstructionError
	if _, err := execWord(t, 0x0020A463, 0, nil); !errors.As(err, &illegal) {
		t.Errorf("bad branch funct3 error not correct got: %v", err)
	}
}

// Jumps link pc+4 and halt on a jump to self.
func TestExecuteJump(t *testing.T) {
	result, err := execWord(t, 0x008000EF, 0x100, nil) // jal x1, +8
	if err != nil {
		t.Fatalf("jal failed: %v", err)
	}
	if !result.BranchTaken || result.BranchTarget != 0x108 {
		t.Errorf("jal target not correct got: %08x expected: %08x", result.BranchTarget, 0x108)
	}
	if result.ALUResult != 0x104 {
		t.Errorf("link value not correct got: %08x expected: %08x", result.ALUResult, 0x104)
	}
	if result.Halt {
		t.Error("forward jump should not halt")
	}

	result, err = execWord(t, 0x0000006F, 0x200, nil) // jal x0, 0
	if err != nil {
		t.Fatalf("jal self failed: %v", err)
	}
	if !result.Halt || result.BranchTarget != 0x200 {
		t.Errorf("jump to self not correct got: halt=%v target=%08x", result.Halt, result.BranchTarget)
	}
}

// U format passes the shifted immediate through; stores form the
// effective address; invalid words are illegal.
func TestExecuteOther(t *testing.T) {
	result, err := execWord(t, 0xDEADB0B7, 0, nil) // lui x1, 0xDEADB
	if err != nil {
		t.Fatalf("lui failed: %v", err)
	}
	if result.ALUResult != 0xDEADB000 {
		t.Errorf("lui not correct got: %08x expected: %08x", result.ALUResult, 0xDEADB000)
	}

	result, err = execWord(t, 0x00312223, 0, map[uint32]uint32{2: 0x100}) // sw x3, 4(x2)
	if err != nil {
		t.Fatalf("sw failed: %v", err)
	}
	if result.ALUResult != 0x104 {
		t.Errorf("store address not correct got: %08x expected: %08x", result.ALUResult, 0x104)
	}

	var illegal *isa.IllegalInstructionError
	if _, err := execWord(t, 0x00000000, 0, nil); !errors.As(err, &illegal) {
		t.Errorf("invalid word error not correct got: %v", err)
	}
}

package pipeline

/*
 * VirtuV - Execute stage.
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
	"github.com/StefanCostea/VirtuV/emu/isa"
	"github.com/StefanCostea/VirtuV/emu/registers"
)

// ExecutionResult carries the execute stage outputs to the memory and
// write-back stages. Halt is set when a jump targets its own address,
// the end-of-program idiom.
type ExecutionResult struct {
	ALUResult    uint32
	BranchTaken  bool
	BranchTarget uint32
	Halt         bool
}

// ExecuteStage performs ALU operations and branch-target computation.
// It reads operands from the register bank but writes only to the
// result record; register updates belong to write-back.
type ExecuteStage struct {
	regs *registers.Bank
}

// NewExecuteStage returns an execute stage over the shared bank.
func NewExecuteStage(regs *registers.Bank) *ExecuteStage {
	return &ExecuteStage{regs: regs}
}

// Process computes the result of one decoded instruction. pc is the
// address the instruction was fetched from; branch targets are
// relative to it.
func (s *ExecuteStage) Process(inst isa.Instruction, pc uint32) (ExecutionResult, error) {
	var result ExecutionResult

	switch inst := inst.(type) {
	case isa.RType:
		rs1, err := s.regs.Read(inst.Rs1)
		if err != nil {
			return result, err
		}
		rs2, err := s.regs.Read(inst.Rs2)
		if err != nil {
			return result, err
		}
		value, ok := aluRegister(inst, rs1, rs2)
		if !ok {
			return result, &isa.IllegalInstructionError{Raw: inst.Raw(), PC: pc}
		}
		result.ALUResult = value

	case isa.IType:
		rs1, err := s.regs.Read(inst.Rs1)
		if err != nil {
			return result, err
		}
		imm := inst.Immediate()
		if inst.Opcode() == isa.OpLoad {
			// Loads compute the effective address here; only word
			// loads are implemented.
			if inst.Funct3 != 0x2 {
				return result, &isa.IllegalInstructionError{Raw: inst.Raw(), PC: pc}
			}
			result.ALUResult = rs1 + uint32(imm)
			break
		}
		value, ok := aluImmediate(inst, rs1, imm)
		if !ok {
			return result, &isa.IllegalInstructionError{Raw: inst.Raw(), PC: pc}
		}
		result.ALUResult = value

	case isa.BType:
		rs1, err := s.regs.Read(inst.Rs1)
		if err != nil {
			return result, err
		}
		rs2, err := s.regs.Read(inst.Rs2)
		if err != nil {
			return result, err
		}
		taken, ok := branchTaken(inst.Funct3, rs1, rs2)
		if !ok {
			return result, &isa.IllegalInstructionError{Raw: inst.Raw(), PC: pc}
		}
		if taken {
			result.BranchTaken = true
			result.BranchTarget = pc + uint32(inst.Immediate())
		}

	case isa.SType:
		// Only word stores are implemented.
		if inst.Funct3 != 0x2 {
			return result, &isa.IllegalInstructionError{Raw: inst.Raw(), PC: pc}
		}
		rs1, err := s.regs.Read(inst.Rs1)
		if err != nil {
			return result, err
		}
		result.ALUResult = rs1 + uint32(inst.Immediate())

	case isa.UType:
		result.ALUResult = uint32(inst.Immediate())

	case isa.JType:
		result.BranchTaken = true
		result.BranchTarget = pc + uint32(inst.Immediate())
		result.ALUResult = pc + 4 // link value
		if result.BranchTarget == pc {
			result.Halt = true
		}

	default:
		return result, &isa.IllegalInstructionError{Raw: inst.Raw(), PC: pc}
	}

	return result, nil
}

// aluRegister implements the R-format operations, selected by funct3
// and funct7.
func aluRegister(inst isa.RType, rs1, rs2 uint32) (uint32, bool) {
	switch inst.Funct3 {
	case 0x0: // ADD / SUB
		if inst.Funct7 == 0x20 {
			return rs1 - rs2, true
		}
		if inst.Funct7 == 0x00 {
			return rs1 + rs2, true
		}
	case 0x1: // SLL
		if inst.Funct7 == 0x00 {
			return rs1 << (rs2 & 0x1F), true
		}
	case 0x2: // SLT
		if inst.Funct7 == 0x00 {
			if int32(rs1) < int32(rs2) {
				return 1, true
			}
			return 0, true
		}
	case 0x3: // SLTU
		if inst.Funct7 == 0x00 {
			if rs1 < rs2 {
				return 1, true
			}
			return 0, true
		}
	case 0x4: // XOR
		if inst.Funct7 == 0x00 {
			return rs1 ^ rs2, true
		}
	case 0x5: // SRL / SRA
		if inst.Funct7 == 0x20 {
			return uint32(int32(rs1) >> (rs2 & 0x1F)), true
		}
		if inst.Funct7 == 0x00 {
			return rs1 >> (rs2 & 0x1F), true
		}
	case 0x6: // OR
		if inst.Funct7 == 0x00 {
			return rs1 | rs2, true
		}
	case 0x7: // AND
		if inst.Funct7 == 0x00 {
			return rs1 & rs2, true
		}
	}
	return 0, false
}

// aluImmediate implements the I-format ALU operations. The right
// shift encodings split on imm[11:5]: 0x00 is logical, 0x20 is
// arithmetic.
func aluImmediate(inst isa.IType, rs1 uint32, imm int32) (uint32, bool) {
	switch inst.Funct3 {
	case 0x0: // ADDI
		return rs1 + uint32(imm), true
	case 0x2: // SLTI
		if int32(rs1) < imm {
			return 1, true
		}
		return 0, true
	case 0x3: // SLTIU
		if rs1 < uint32(imm) {
			return 1, true
		}
		return 0, true
	case 0x4: // XORI
		return rs1 ^ uint32(imm), true
	case 0x6: // ORI
		return rs1 | uint32(imm), true
	case 0x7: // ANDI
		return rs1 & uint32(imm), true
	case 0x1: // SLLI
		if inst.ShiftFunct() == 0x00 {
			return rs1 << (uint32(imm) & 0x1F), true
		}
	case 0x5: // SRLI / SRAI
		shamt := uint32(imm) & 0x1F
		switch inst.ShiftFunct() {
		case 0x00:
			return rs1 >> shamt, true
		case 0x20:
			return uint32(int32(rs1) >> shamt), true
		}
	}
	return 0, false
}

// branchTaken evaluates a B-format condition.
func branchTaken(funct3, rs1, rs2 uint32) (taken bool, ok bool) {
	switch funct3 {
	case 0x0: // BEQ
		return rs1 == rs2, true
	case 0x1: // BNE
		return rs1 != rs2, true
	case 0x4: // BLT
		return int32(rs1) < int32(rs2), true
	case 0x5: // BGE
		return int32(rs1) >= int32(rs2), true
	case 0x6: // BLTU
		return rs1 < rs2, true
	case 0x7: // BGEU
		return rs1 >= rs2, true
	}
	return false, false
}

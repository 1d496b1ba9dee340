package pipeline

/*
 * VirtuV - Write back stage.
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

// WriteBackStage commits the ALU or load result to the destination
// register. rd = 0 never writes; stores, branches and invalid words
// have no destination.
type WriteBackStage struct {
	regs *registers.Bank
}

// NewWriteBackStage returns a write-back stage over the shared bank.
func NewWriteBackStage(regs *registers.Bank) *WriteBackStage {
	return &WriteBackStage{regs: regs}
}

// Process commits one instruction's result.
func (s *WriteBackStage) Process(inst isa.Instruction, exec ExecutionResult, mem MemoryAccessResult) error {
	switch inst := inst.(type) {
	case isa.RType:
		if inst.Rd != 0 {
			return s.regs.Write(inst.Rd, exec.ALUResult)
		}
	case isa.IType:
		if inst.Opcode() == isa.OpLoad {
			if inst.Rd != 0 && mem.LoadValid {
				return s.regs.Write(inst.Rd, mem.LoadData)
			}
			return nil
		}
		if inst.Rd != 0 {
			return s.regs.Write(inst.Rd, exec.ALUResult)
		}
	case isa.UType:
		if inst.Rd != 0 {
			return s.regs.Write(inst.Rd, exec.ALUResult)
		}
	case isa.JType:
		if inst.Rd != 0 {
			return s.regs.Write(inst.Rd, exec.ALUResult)
		}
	}
	return nil
}

package pipeline

/*
 * VirtuV - Memory access stage.
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
	"github.com/StefanCostea/VirtuV/emu/mmu"
	"github.com/StefanCostea/VirtuV/emu/registers"
)

// MemoryAccessResult carries the memory stage outputs to write-back.
// LoadValid marks LoadData as meaningful.
type MemoryAccessResult struct {
	LoadData  uint32
	LoadValid bool
	StoreOK   bool
}

// MemoryAccessStage issues loads and stores through the MMU. Every
// other format passes through untouched.
type MemoryAccessStage struct {
	mmu  *mmu.MMU
	regs *registers.Bank
}

// NewMemoryAccessStage returns a memory stage over the shared MMU and
// bank.
func NewMemoryAccessStage(m *mmu.MMU, regs *registers.Bank) *MemoryAccessStage {
	return &MemoryAccessStage{mmu: m, regs: regs}
}

// Process performs the load or store dictated by the instruction
// format. The effective address is the execute stage's ALU result.
func (s *MemoryAccessStage) Process(inst isa.Instruction, exec ExecutionResult) (MemoryAccessResult, error) {
	var result MemoryAccessResult

	switch inst := inst.(type) {
	case isa.IType:
		if inst.Opcode() == isa.OpLoad {
			word, err := s.mmu.ReadWord(exec.ALUResult)
			if err != nil {
				return result, err
			}
			result.LoadData = word
			result.LoadValid = true
		}
	case isa.SType:
		value, err := s.regs.Read(inst.Rs2)
		if err != nil {
			return result, err
		}
		if err := s.mmu.WriteWord(exec.ALUResult, value); err != nil {
			return result, err
		}
		result.StoreOK = true
	}

	return result, nil
}

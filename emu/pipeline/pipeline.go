package pipeline

/*
 * VirtuV - Pipeline driver.
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
	"github.com/StefanCostea/VirtuV/emu/mmu"
	"github.com/StefanCostea/VirtuV/emu/registers"
	"github.com/StefanCostea/VirtuV/util/debug"
)

// Status is the outcome of one completed cycle.
type Status int

const (
	// Continue means the next cycle may run.
	Continue Status = iota
	// Halted means the program executed a jump to its own address.
	Halted
)

// Pipeline composes the five stages into one synchronous cycle. The
// stages are functionally sequential: each instruction passes through
// all five before the next is fetched, so no hazard handling exists.
type Pipeline struct {
	regs *registers.Bank

	fetch     *FetchStage
	decode    *DecodeStage
	execute   *ExecuteStage
	memAccess *MemoryAccessStage
	writeBack *WriteBackStage
}

// New builds a pipeline over the shared register bank and MMU.
func New(regs *registers.Bank, m *mmu.MMU) *Pipeline {
	return &Pipeline{
		regs:      regs,
		fetch:     NewFetchStage(m, regs),
		decode:    NewDecodeStage(),
		execute:   NewExecuteStage(regs),
		memAccess: NewMemoryAccessStage(m, regs),
		writeBack: NewWriteBackStage(regs),
	}
}

// Cycle runs one instruction through all five stages. A taken branch
// overwrites the post-increment from fetch after write-back; faults
// propagate out unchanged, leaving the cycle incomplete.
func (p *Pipeline) Cycle() (Status, error) {
	raw, pc, err := p.fetch.Process()
	if err != nil {
		return Continue, err
	}

	inst := p.decode.Process(raw)
	debug.Tracef("PIPE", "pc=%08x raw=%08x format=%s", pc, raw, inst.Format())

	exec, err := p.execute.Process(inst, pc)
	if err != nil {
		return Continue, err
	}

	mem, err := p.memAccess.Process(inst, exec)
	if err != nil {
		return Continue, err
	}

	if err := p.writeBack.Process(inst, exec, mem); err != nil {
		return Continue, err
	}

	if exec.BranchTaken {
		p.regs.SetPC(exec.BranchTarget)
	}
	if exec.Halt {
		return Halted, nil
	}
	return Continue, nil
}

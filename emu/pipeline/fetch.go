package pipeline

/*
 * VirtuV - Fetch stage.
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
)

// FetchStage reads the instruction word at the PC and advances the PC.
type FetchStage struct {
	mmu  *mmu.MMU
	regs *registers.Bank
}

// NewFetchStage returns a fetch stage over the shared MMU and bank.
func NewFetchStage(m *mmu.MMU, regs *registers.Bank) *FetchStage {
	return &FetchStage{mmu: m, regs: regs}
}

// Process fetches the word at the current PC and post-increments the
// PC by four. It returns the raw word and the address it was fetched
// from; later stages use that snapshot for PC-relative arithmetic.
func (s *FetchStage) Process() (raw uint32, pc uint32, err error) {
	pc = s.regs.PC()
	raw, err = s.mmu.FetchWord(pc)
	if err != nil {
		return 0, pc, err
	}
	s.regs.SetPC(pc + 4)
	return raw, pc, nil
}

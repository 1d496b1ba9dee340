/*
 * VirtuV - Top level CPU object.
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

package core

import (
	"log/slog"
	"os"

	"github.com/StefanCostea/VirtuV/emu/memory"
	"github.com/StefanCostea/VirtuV/emu/mmu"
	"github.com/StefanCostea/VirtuV/emu/pipeline"
	"github.com/StefanCostea/VirtuV/emu/registers"
)

// DefaultMemorySize is 1MB, matching the original machine bring-up.
const DefaultMemorySize uint32 = 1024 * 1024

// CPU owns the physical memory, page table, MMU, register bank and
// pipeline for the life of a run. The pipeline stages borrow the bank
// and MMU; nothing is shared across goroutines.
type CPU struct {
	physical *memory.Memory
	pages    *mmu.PageTable
	mmu      *mmu.MMU
	regs     *registers.Bank
	pipe     *pipeline.Pipeline
}

// NewCPU builds a machine with the given memory size, in MACHINE mode
// with an empty page table.
func NewCPU(memSize uint32) *CPU {
	cpu := &CPU{
		physical: memory.New(memSize),
		pages:    mmu.NewPageTable(),
		regs:     registers.New(),
	}
	cpu.mmu = mmu.New(cpu.physical, cpu.pages, mmu.Machine)
	cpu.pipe = pipeline.New(cpu.regs, cpu.mmu)
	return cpu
}

// MapPage installs an identity mapping for the page containing va with
// the given flag bits (VALID is implied).
func (c *CPU) MapPage(va uint32, flags uint32) {
	page := va & mmu.PageMask
	c.pages.AddEntry(page, mmu.NewEntry(page, flags|mmu.FlagValid))
}

// MapFrame installs a mapping from the page containing va to the given
// physical frame.
func (c *CPU) MapFrame(va, pa uint32, flags uint32) {
	c.pages.AddEntry(va, mmu.NewEntry(pa, flags|mmu.FlagValid))
}

// SetPrivilege switches the privilege mode used for permission checks.
func (c *CPU) SetPrivilege(mode mmu.PrivilegeMode) {
	c.mmu.SetPrivilegeMode(mode)
}

// LoadProgram reads a flat binary image and loads it at virtual
// address zero. The pages covering the image are identity mapped
// RWX + USER so the MACHINE-mode loader can write them and the
// program can fetch, load and store afterwards. PC is reset to zero.
func (c *CPU) LoadProgram(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.LoadImage(data)
}

// LoadImage loads raw program bytes at virtual address zero.
func (c *CPU) LoadImage(data []byte) error {
	flags := mmu.FlagRead | mmu.FlagWrite | mmu.FlagExec | mmu.FlagUser
	end := uint32(len(data))
	for page := uint32(0); page < end || page == 0; page += mmu.PageSize {
		c.MapPage(page, flags)
	}

	for i, b := range data {
		if err := c.mmu.WriteByte(uint32(i), b); err != nil {
			return err
		}
	}
	c.regs.SetPC(0)
	slog.Info("program loaded", "bytes", len(data))
	return nil
}

// Step runs one pipeline cycle.
func (c *CPU) Step() (pipeline.Status, error) {
	return c.pipe.Cycle()
}

// Run drives the pipeline until the program halts on a jump to self,
// which is the normal exit, or a fault propagates out of a cycle.
func (c *CPU) Run() error {
	for {
		status, err := c.Step()
		if err != nil {
			slog.Error("run stopped", "pc", c.regs.PC(), "err", err.Error())
			return err
		}
		if status == pipeline.Halted {
			slog.Info("program halted", "pc", c.regs.PC())
			return nil
		}
	}
}

// MemorySize returns the physical memory size in bytes.
func (c *CPU) MemorySize() uint32 {
	return c.physical.Size()
}

// Register returns the value of one general purpose register.
func (c *CPU) Register(reg uint32) (uint32, error) {
	return c.regs.Read(reg)
}

// PC returns the program counter.
func (c *CPU) PC() uint32 {
	return c.regs.PC()
}

// SetPC sets the program counter.
func (c *CPU) SetPC(value uint32) {
	c.regs.SetPC(value)
}

// ReadWord reads a word from virtual memory, for observers.
func (c *CPU) ReadWord(va uint32) (uint32, error) {
	return c.mmu.ReadWord(va)
}

// WriteWord writes a word to virtual memory, for observers.
func (c *CPU) WriteWord(va, value uint32) error {
	return c.mmu.WriteWord(va, value)
}

// Reset zeroes the registers and the PC. Memory and mappings keep
// their contents.
func (c *CPU) Reset() {
	c.regs.Reset()
}

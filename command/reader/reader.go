/*
 * VirtuV - Monitor console reader.
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

package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peterh/liner"

	"github.com/StefanCostea/VirtuV/command/parser"
	"github.com/StefanCostea/VirtuV/emu/core"
	"github.com/StefanCostea/VirtuV/emu/isa"
	"github.com/StefanCostea/VirtuV/emu/memory"
	"github.com/StefanCostea/VirtuV/emu/mmu"
)

// ConsoleReader runs the interactive monitor until quit, Ctrl-C or
// end of input. Machine faults are reported with the current PC, which
// is the faulting address for a fetch fault and the next instruction's
// address for a fault in a later stage, and leave the monitor open for
// inspection; only input errors end it.
func ConsoleReader(cpu *core.CPU) {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(parser.CompleteCmd)

	fmt.Printf("VirtuV monitor: %dK memory, pc=%08x. Type help for commands.\n",
		cpu.MemorySize()/1024, cpu.PC())

	for {
		input, err := term.Prompt("virtuv> ")
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) {
				slog.Error("monitor input: " + err.Error())
			}
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		term.AppendHistory(input)

		quit, err := parser.ProcessCommand(input, cpu)
		if quit {
			return
		}
		switch {
		case err == nil:
		case isMachineFault(err):
			fmt.Printf("fault at pc=%08x: %s\n", cpu.PC(), err.Error())
		default:
			fmt.Println(err.Error())
		}
	}
}

// isMachineFault tells emulated-machine faults apart from monitor
// usage errors, so the former get the PC stamped on them.
func isMachineFault(err error) bool {
	var (
		pageFault *mmu.PageFaultError
		violation *mmu.AccessViolationError
		outOfRng  *memory.OutOfRangeError
		illegal   *isa.IllegalInstructionError
	)
	return errors.As(err, &pageFault) ||
		errors.As(err, &violation) ||
		errors.As(err, &outOfRng) ||
		errors.As(err, &illegal)
}

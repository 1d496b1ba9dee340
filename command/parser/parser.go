/*
 * VirtuV - Monitor command parser.
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

package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/StefanCostea/VirtuV/emu/core"
	"github.com/StefanCostea/VirtuV/emu/mmu"
	"github.com/StefanCostea/VirtuV/emu/pipeline"
)

type command struct {
	help string
	fn   func(cpu *core.CPU, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"step":    {"step [n]          run n cycles (default 1)", cmdStep},
		"run":     {"run               run until halt or fault", cmdRun},
		"regs":    {"regs              dump all registers", cmdRegs},
		"reg":     {"reg <n>           show one register", cmdReg},
		"examine": {"examine <va> [n]  show n words of memory (default 1)", cmdExamine},
		"deposit": {"deposit <va> <w>  write a word to memory", cmdDeposit},
		"pc":      {"pc [value]        show or set the PC", cmdPC},
		"map":     {"map <va> <flags>  identity map a page, flags from rwxu", cmdMap},
		"mode":    {"mode <m>          set privilege mode: user|supervisor|machine", cmdMode},
		"load":    {"load <file>       load a flat binary at address 0", cmdLoad},
		"reset":   {"reset             zero the registers and the PC", cmdReset},
		"help":    {"help              show this list", cmdHelp},
	}
}

// ProcessCommand runs one monitor command line. It returns true when
// the console should exit.
func ProcessCommand(line string, cpu *core.CPU) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name := strings.ToLower(fields[0])
	if name == "quit" || name == "exit" {
		return true, nil
	}

	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command: %s", name)
	}
	return false, cmd.fn(cpu, fields[1:])
}

// CompleteCmd returns the commands with the given prefix, for the
// console line editor.
func CompleteCmd(line string) []string {
	var matches []string
	prefix := strings.ToLower(line)
	for name := range commands {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Parse a numeric argument; 0x and octal prefixes are accepted.
func parseNumber(arg string) (uint32, error) {
	value, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number: %s", arg)
	}
	return uint32(value), nil
}

func cmdStep(cpu *core.CPU, args []string) error {
	count := uint32(1)
	if len(args) > 0 {
		var err error
		if count, err = parseNumber(args[0]); err != nil {
			return err
		}
	}
	for i := uint32(0); i < count; i++ {
		status, err := cpu.Step()
		if err != nil {
			return err
		}
		fmt.Printf("pc=%08x\n", cpu.PC())
		if status == pipeline.Halted {
			fmt.Println("halted")
			break
		}
	}
	return nil
}

func cmdRun(cpu *core.CPU, _ []string) error {
	return cpu.Run()
}

func cmdRegs(cpu *core.CPU, _ []string) error {
	for reg := uint32(0); reg < 32; reg += 4 {
		for i := reg; i < reg+4; i++ {
			value, _ := cpu.Register(i)
			fmt.Printf("x%-2d %08x  ", i, value)
		}
		fmt.Println()
	}
	fmt.Printf("pc  %08x\n", cpu.PC())
	return nil
}

func cmdReg(cpu *core.CPU, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: reg <n>")
	}
	reg, err := parseNumber(strings.TrimPrefix(args[0], "x"))
	if err != nil {
		return err
	}
	value, err := cpu.Register(reg)
	if err != nil {
		return err
	}
	fmt.Printf("x%d %08x\n", reg, value)
	return nil
}

func cmdExamine(cpu *core.CPU, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: examine <va> [n]")
	}
	va, err := parseNumber(args[0])
	if err != nil {
		return err
	}
	count := uint32(1)
	if len(args) > 1 {
		if count, err = parseNumber(args[1]); err != nil {
			return err
		}
	}
	for i := uint32(0); i < count; i++ {
		word, err := cpu.ReadWord(va + 4*i)
		if err != nil {
			return err
		}
		fmt.Printf("%08x: %08x\n", va+4*i, word)
	}
	return nil
}

func cmdDeposit(cpu *core.CPU, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: deposit <va> <word>")
	}
	va, err := parseNumber(args[0])
	if err != nil {
		return err
	}
	word, err := parseNumber(args[1])
	if err != nil {
		return err
	}
	return cpu.WriteWord(va, word)
}

func cmdPC(cpu *core.CPU, args []string) error {
	if len(args) == 0 {
		fmt.Printf("pc %08x\n", cpu.PC())
		return nil
	}
	value, err := parseNumber(args[0])
	if err != nil {
		return err
	}
	cpu.SetPC(value)
	return nil
}

// ParseFlags turns an rwxu string into page table entry flag bits.
func ParseFlags(arg string) (uint32, error) {
	var flags uint32
	for _, c := range strings.ToLower(arg) {
		switch c {
		case 'r':
			flags |= mmu.FlagRead
		case 'w':
			flags |= mmu.FlagWrite
		case 'x':
			flags |= mmu.FlagExec
		case 'u':
			flags |= mmu.FlagUser
		default:
			return 0, fmt.Errorf("bad flag %q: want letters from rwxu", c)
		}
	}
	return flags, nil
}

func cmdMap(cpu *core.CPU, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: map <va> <flags>")
	}
	va, err := parseNumber(args[0])
	if err != nil {
		return err
	}
	flags, err := ParseFlags(args[1])
	if err != nil {
		return err
	}
	cpu.MapPage(va, flags)
	return nil
}

func cmdMode(cpu *core.CPU, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mode <user|supervisor|machine>")
	}
	mode, err := ParseMode(args[0])
	if err != nil {
		return err
	}
	cpu.SetPrivilege(mode)
	return nil
}

// ParseMode maps a mode name to a privilege mode.
func ParseMode(arg string) (mmu.PrivilegeMode, error) {
	switch strings.ToLower(arg) {
	case "user", "u":
		return mmu.User, nil
	case "supervisor", "s":
		return mmu.Supervisor, nil
	case "machine", "m":
		return mmu.Machine, nil
	}
	return 0, fmt.Errorf("unknown mode: %s", arg)
}

func cmdLoad(cpu *core.CPU, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: load <file>")
	}
	return cpu.LoadProgram(args[0])
}

func cmdReset(cpu *core.CPU, _ []string) error {
	cpu.Reset()
	return nil
}

func cmdHelp(_ *core.CPU, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println("  " + commands[name].help)
	}
	fmt.Println("  quit              leave the monitor")
	return nil
}

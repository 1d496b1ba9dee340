/*
 * VirtuV - Main process.
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/StefanCostea/VirtuV/command/parser"
	"github.com/StefanCostea/VirtuV/command/reader"
	config "github.com/StefanCostea/VirtuV/config/configparser"
	"github.com/StefanCostea/VirtuV/emu/core"
	"github.com/StefanCostea/VirtuV/emu/mmu"
	"github.com/StefanCostea/VirtuV/util/debug"
	"github.com/StefanCostea/VirtuV/util/logger"
)

var Logger *slog.Logger

// Settings collected from flags and the configuration file before the
// machine is built.
type machineConfig struct {
	memSize  uint32
	mode     mmu.PrivilegeMode
	haveMode bool
	pages    []pageSpec
}

type pageSpec struct {
	va    uint32
	flags uint32
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optMemory := getopt.StringLong("memory", 'm', "", "Memory size, e.g. 1M or 64K")
	optConsole := getopt.BoolLong("console", 'x', "Start the interactive monitor")
	optTrace := getopt.BoolLong("trace", 't', "Trace each cycle to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var sink io.Writer
	if *optLogFile != "" {
		if file, err := os.Create(*optLogFile); err == nil {
			sink = file
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(sink, programLevel, false))
	slog.SetDefault(Logger)

	if *optTrace {
		debug.SetOutput(os.Stderr)
	}

	settings := &machineConfig{memSize: core.DefaultMemorySize}
	registerConfig(settings)

	config.RegisterFile("LOGFILE", func(fileName string, _ []config.Option) error {
		logFile, err := os.Create(fileName)
		if err != nil {
			return fmt.Errorf("unable to create log file: %s", fileName)
		}
		Logger = slog.New(logger.NewHandler(logFile, programLevel, false))
		slog.SetDefault(Logger)
		return nil
	})

	if *optConfig != "" {
		if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
			Logger.Error("Configuration file " + *optConfig + " can't be found")
			os.Exit(1)
		}
		if err := config.LoadConfigFile(*optConfig); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	if *optMemory != "" {
		size, err := parseSize(*optMemory)
		if err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
		settings.memSize = size
	}

	cpu := core.NewCPU(settings.memSize)
	for _, page := range settings.pages {
		cpu.MapPage(page.va, page.flags)
	}

	program := getopt.Args()
	if len(program) == 0 && !*optConsole {
		fmt.Fprintln(os.Stderr, "Usage: virtuv [options] <program.bin>")
		os.Exit(1)
	}

	if len(program) > 0 {
		if err := cpu.LoadProgram(program[0]); err != nil {
			Logger.Error("Failed to load program: " + err.Error())
			os.Exit(1)
		}
	}

	// Privilege drops only after the MACHINE-mode loader is done.
	if settings.haveMode {
		cpu.SetPrivilege(settings.mode)
	}

	if *optConsole {
		reader.ConsoleReader(cpu)
		return
	}

	if err := cpu.Run(); err != nil {
		os.Exit(2)
	}
}

// registerConfig installs the machine keywords into the configuration
// parser. TRACEFILE registers itself from the debug package.
func registerConfig(settings *machineConfig) {
	config.RegisterOption("MEMORY", func(arg string, _ []config.Option) error {
		size, err := parseSize(arg)
		if err != nil {
			return err
		}
		settings.memSize = size
		return nil
	})

	config.RegisterOption("PAGE", func(arg string, options []config.Option) error {
		va, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			return fmt.Errorf("bad page address: %s", arg)
		}
		flags := mmu.FlagRead | mmu.FlagWrite | mmu.FlagExec | mmu.FlagUser
		for _, opt := range options {
			if strings.EqualFold(opt.Name, "flags") {
				if flags, err = parser.ParseFlags(opt.EqualOpt); err != nil {
					return err
				}
			}
		}
		settings.pages = append(settings.pages, pageSpec{va: uint32(va), flags: flags})
		return nil
	})

	config.RegisterOption("MODE", func(arg string, _ []config.Option) error {
		mode, err := parser.ParseMode(arg)
		if err != nil {
			return err
		}
		settings.mode = mode
		settings.haveMode = true
		return nil
	})
}

// parseSize reads a memory size with an optional K or M suffix.
func parseSize(arg string) (uint32, error) {
	scale := uint64(1)
	s := strings.ToUpper(strings.TrimSpace(arg))
	switch {
	case strings.HasSuffix(s, "M"):
		scale = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		scale = 1024
		s = strings.TrimSuffix(s, "K")
	}
	value, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad memory size: %s", arg)
	}
	return uint32(value * scale), nil
}

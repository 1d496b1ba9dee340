/*
 * VirtuV - Instruction trace log.
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

package debug

import (
	"fmt"
	"io"
	"os"

	config "github.com/StefanCostea/VirtuV/config/configparser"
)

var traceOut io.Writer

// Tracef writes a per-cycle trace message. It is a no-op until a
// trace sink is configured.
func Tracef(module string, format string, a ...interface{}) {
	if traceOut != nil {
		fmt.Fprintf(traceOut, module+": "+format+"\n", a...)
	}
}

// SetOutput directs trace output to an arbitrary writer. Passing nil
// disables tracing.
func SetOutput(w io.Writer) {
	traceOut = w
}

// register the trace file option on initialize.
func init() {
	config.RegisterFile("TRACEFILE", create)
}

// Create the trace file named in the configuration.
func create(fileName string, _ []config.Option) error {
	if traceOut != nil {
		return fmt.Errorf("trace output already configured")
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create trace file: %s", fileName)
	}

	traceOut = file
	return nil
}

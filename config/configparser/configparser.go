/*
 * VirtuV - Machine configuration file parser.
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

package configparser

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> ::= <keyword> [<argument>] *(<option>)
 * <keyword> ::= <string>
 * <argument> ::= <string>
 * <option> ::= <string> | <string> '=' <value>
 * <value> ::= <string> | '"' *(<letter> | <whitespace>) '"'
 *
 * Keywords are case insensitive. Handlers are registered from init
 * functions (or by the host before loading) and receive the argument
 * plus the parsed option list.
 */

// Option holds one name or name=value item following the argument.
type Option struct {
	Name     string // Name of option.
	EqualOpt string // Value of string after =.
}

// Handler types.
const (
	TypeOption = 1 + iota // Keyword takes an argument plus options.
	TypeSwitch            // Keyword only sets a flag.
	TypeFile              // Keyword names a file to create or open.
)

type keywordDef struct {
	create func(string, []Option) error
	ty     int
}

var keywords = map[string]keywordDef{}

var lineNumber int

// RegisterOption registers a keyword taking an argument. Should be
// called from init functions or before LoadConfigFile.
func RegisterOption(name string, fn func(string, []Option) error) {
	keywords[strings.ToUpper(name)] = keywordDef{create: fn, ty: TypeOption}
}

// RegisterSwitch registers a keyword with no argument.
func RegisterSwitch(name string, fn func(string, []Option) error) {
	keywords[strings.ToUpper(name)] = keywordDef{create: fn, ty: TypeSwitch}
}

// RegisterFile registers a keyword naming a file.
func RegisterFile(name string, fn func(string, []Option) error) {
	keywords[strings.ToUpper(name)] = keywordDef{create: fn, ty: TypeFile}
}

// Current option line being parsed.
type optionLine struct {
	line string // Current option line.
	pos  int    // Current position in line.
}

// Skip forward to none whitespace character.
func (l *optionLine) skipSpace() {
	for l.pos < len(l.line) && (l.line[l.pos] == ' ' || l.line[l.pos] == '\t') {
		l.pos++
	}
}

// Get next word in line. Words end at whitespace or '='.
func (l *optionLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) {
		c := l.line[l.pos]
		if c == ' ' || c == '\t' || c == '=' {
			break
		}
		l.pos++
	}
	return l.line[start:l.pos]
}

// Get a possibly quoted value after '='.
func (l *optionLine) getValue() string {
	if l.pos >= len(l.line) || l.line[l.pos] != '=' {
		return ""
	}
	l.pos++
	if l.pos < len(l.line) && l.line[l.pos] == '"' {
		l.pos++
		start := l.pos
		for l.pos < len(l.line) && l.line[l.pos] != '"' {
			l.pos++
		}
		value := l.line[start:l.pos]
		if l.pos < len(l.line) {
			l.pos++
		}
		return value
	}
	return l.getWord()
}

// Collect the remaining options on the line.
func (l *optionLine) getOptions() []Option {
	var options []Option
	for {
		name := l.getWord()
		if name == "" {
			return options
		}
		options = append(options, Option{Name: name, EqualOpt: l.getValue()})
	}
}

// LoadConfigFile reads and applies a configuration file. Each
// non-comment line is dispatched to its registered handler; the first
// error stops the load and is reported with its line number.
func LoadConfigFile(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNumber = 0
	for scanner.Scan() {
		lineNumber++
		if err := parseLine(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	return scanner.Err()
}

// Parse and dispatch one configuration line.
func parseLine(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	line := &optionLine{line: text}

	keyword := line.getWord()
	if keyword == "" {
		return nil
	}

	def, ok := keywords[strings.ToUpper(keyword)]
	if !ok {
		return fmt.Errorf("unknown keyword: %s", keyword)
	}

	var arg string
	switch def.ty {
	case TypeOption, TypeFile:
		arg = line.getWord()
		if arg == "" {
			return fmt.Errorf("%s requires an argument", strings.ToUpper(keyword))
		}
	}
	return def.create(arg, line.getOptions())
}

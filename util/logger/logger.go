/*
 * VirtuV - Wrapper for slog.
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

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const timeLayout = "2006/01/02 15:04:05"

// Level tags on the terminal: debug cyan, info green, warnings
// yellow, errors red.
var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgCyan, color.Bold),
	slog.LevelInfo:  color.New(color.FgGreen, color.Bold),
	slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
	slog.LevelError: color.New(color.FgRed, color.Bold),
}

// Handler writes each record as one line: timestamp, level tag,
// message, then attribute values. The line goes uncolored to the log
// sink and with a colorized tag to the terminal. Debug records reach
// the terminal only when echoDebug is set.
type Handler struct {
	mu        *sync.Mutex
	sink      io.Writer
	level     slog.Leveler
	attrs     []slog.Attr
	echoDebug bool
}

// NewHandler returns a handler logging to sink, which may be nil for
// terminal-only logging.
func NewHandler(sink io.Writer, level slog.Leveler, echoDebug bool) *Handler {
	return &Handler{
		mu:        &sync.Mutex{},
		sink:      sink,
		level:     level,
		echoDebug: echoDebug,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &clone
}

// Groups are not used by the emulator; group names are dropped.
func (h *Handler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	parts := make([]string, 0, 4+len(h.attrs)+r.NumAttrs())
	parts = append(parts, r.Time.Format(timeLayout), r.Level.String()+":", r.Message)
	for _, a := range h.attrs {
		parts = append(parts, a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Value.String())
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.sink != nil {
		_, err = io.WriteString(h.sink, strings.Join(parts, " ")+"\n")
	}

	if h.echoDebug || r.Level > slog.LevelDebug {
		if c, ok := levelColors[r.Level]; ok {
			parts[1] = c.Sprint(parts[1])
		}
		_, err = io.WriteString(os.Stderr, strings.Join(parts, " ")+"\n")
	}
	return err
}

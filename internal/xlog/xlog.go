// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package xlog is a small leveled logger for the pvmrun command-line
// tool: colorized when attached to a terminal, plain
// otherwise, with an optional call-site frame for error-level records.
package xlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level selects a record's severity.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var levelColor = map[Level]*color.Color{
	LevelTrace: color.New(color.FgHiBlack),
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// Logger writes leveled, optionally colorized records to an output
// stream, gated by a minimum level.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
	colorize bool
	ctx      []any
}

// New creates a Logger writing to out. If out is *os.File and attached
// to a terminal, records are colorized via go-colorable/go-isatty,
// matching the teacher ecosystem's terminal-detection convention.
func New(out *os.File, minLevel Level) *Logger {
	colorize := false
	var writer io.Writer = out
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		writer = colorable.NewColorable(out)
		colorize = true
	}
	return &Logger{out: writer, minLevel: minLevel, colorize: colorize}
}

// With returns a child Logger that prepends the given key/value pairs
// to every record it writes.
func (l *Logger) With(ctx ...any) *Logger {
	return &Logger{out: l.out, minLevel: l.minLevel, colorize: l.colorize, ctx: append(append([]any{}, l.ctx...), ctx...)}
}

func (l *Logger) log(level Level, msg string, ctx []any) {
	if level < l.minLevel {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s ", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))

	levelText := fmt.Sprintf("[%-5s]", level)
	if l.colorize {
		levelText = levelColor[level].Sprint(levelText)
	}
	fmt.Fprintf(&b, "%s %s", levelText, msg)

	all := append(append([]any{}, l.ctx...), ctx...)
	for i := 0; i+1 < len(all); i += 2 {
		fmt.Fprintf(&b, " %v=%v", all[i], all[i+1])
	}
	if level == LevelError {
		if frame := callerFrame(); frame != "" {
			fmt.Fprintf(&b, " caller=%s", frame)
		}
	}
	fmt.Fprintln(l.out, b.String())
}

// callerFrame returns the first stack frame outside this package, used
// to annotate error-level records the way a debugging session wants to
// jump straight to the failing call site.
func callerFrame() string {
	trace := stack.Trace().TrimRuntime()
	for _, c := range trace {
		s := fmt.Sprintf("%+v", c)
		if !strings.Contains(s, "internal/xlog") {
			return s
		}
	}
	return ""
}

func (l *Logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx) }

// ParseLevel maps a command-line flag value to a Level, defaulting to
// LevelInfo on an unrecognized name.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

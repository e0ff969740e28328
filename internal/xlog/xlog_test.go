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

package xlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevelRecognizesNamesCaseInsensitively(t *testing.T) {
	cases := map[string]Level{
		"trace": LevelTrace,
		"DEBUG": LevelDebug,
		"Warn":  LevelWarn,
		"error": LevelError,
		"info":  LevelInfo,
		"":      LevelInfo,
		"bogus": LevelInfo,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{out: &buf, minLevel: LevelWarn}

	l.Debug("ignored")
	l.Info("also ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below the minimum level, got %q", buf.String())
	}

	l.Warn("heads up")
	if !strings.Contains(buf.String(), "heads up") {
		t.Fatalf("expected the warn record to be written, got %q", buf.String())
	}
}

func TestLoggerIncludesContextPairs(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{out: &buf, minLevel: LevelTrace}

	l.Info("starting run", "fixture", "counter", "gas", 10000)
	out := buf.String()
	if !strings.Contains(out, "fixture=counter") || !strings.Contains(out, "gas=10000") {
		t.Fatalf("expected context pairs in output, got %q", out)
	}
}

func TestWithPrependsPersistentContext(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{out: &buf, minLevel: LevelTrace}
	child := base.With("run", "abc123")

	child.Info("starting", "fixture", "counter")
	out := buf.String()
	if !strings.Contains(out, "run=abc123") || !strings.Contains(out, "fixture=counter") {
		t.Fatalf("expected both persistent and call-site context, got %q", out)
	}

	buf.Reset()
	base.Info("unaffected")
	if strings.Contains(buf.String(), "run=abc123") {
		t.Fatalf("With must not mutate the parent logger's context, got %q", buf.String())
	}
}

func TestLoggerAnnotatesErrorRecordsWithCallerFrame(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{out: &buf, minLevel: LevelTrace}

	l.Error("run ended with an error", "err", "out of gas")
	if !strings.Contains(buf.String(), "caller=") {
		t.Fatalf("expected an error record to carry a caller frame, got %q", buf.String())
	}

	buf.Reset()
	l.Info("run completed")
	if strings.Contains(buf.String(), "caller=") {
		t.Fatalf("non-error records must not carry a caller frame, got %q", buf.String())
	}
}

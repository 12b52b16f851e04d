// log/log_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Debug("dropped")
	l.Infof("dropped %d", 1)
	if l.DebugEnabled() {
		t.Errorf("nil logger claims debug is enabled")
	}
	if l.With("k", "v") != nil {
		t.Errorf("With on nil logger should stay nil")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelWarn)

	l.Info("should not appear")
	l.Warn("visible", slog.Int("tick", 3))

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("info record written at warn level: %s", out)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &rec); err != nil {
		t.Fatalf("unable to parse record %q: %v", out, err)
	}
	if rec["msg"] != "visible" {
		t.Errorf("got msg %v, expected \"visible\"", rec["msg"])
	}
	if rec["tick"] != float64(3) {
		t.Errorf("got tick %v, expected 3", rec["tick"])
	}
	if _, ok := rec["callstack"]; !ok {
		t.Errorf("record is missing callstack")
	}
}

func TestParseLevel(t *testing.T) {
	for s, lvl := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	} {
		if got := ParseLevel(s); got != lvl {
			t.Errorf("ParseLevel(%q) = %v, expected %v", s, got, lvl)
		}
	}
}

func TestCallstack(t *testing.T) {
	fr := callstackHelper()
	if len(fr) == 0 {
		t.Fatal("empty callstack")
	}
	if fr[0].Function != "log.TestCallstack" || fr[0].File != "log_test.go" {
		t.Errorf("expected the first frame to be the caller of the helper, got %s", fr[0])
	}
	for _, f := range fr {
		if strings.HasPrefix(f.Function, "runtime.") {
			t.Errorf("runtime frame %s included", f)
		}
	}
}

func callstackHelper() []StackFrame {
	return Callstack(nil)
}

// util/prof_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfiler(t *testing.T) {
	dir := t.TempDir()
	cpu, mem := filepath.Join(dir, "cpu.prof"), filepath.Join(dir, "mem.prof")

	p, err := CreateProfiler(cpu, mem)
	if err != nil {
		t.Fatalf("CreateProfiler: %v", err)
	}
	if err := p.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if err := p.Cleanup(); err != nil {
		t.Errorf("second Cleanup: %v", err)
	}

	for _, fn := range []string{cpu, mem} {
		if fi, err := os.Stat(fn); err != nil {
			t.Errorf("%s: %v", fn, err)
		} else if fi.Size() == 0 {
			t.Errorf("%s: empty profile", fn)
		}
	}
}

func TestProfilerDisabled(t *testing.T) {
	p, err := CreateProfiler("", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Cleanup(); err != nil {
		t.Error(err)
	}

	var nilp *Profiler
	if err := nilp.Cleanup(); err != nil {
		t.Error(err)
	}
}

func TestProfilerBadPath(t *testing.T) {
	if _, err := CreateProfiler(filepath.Join(t.TempDir(), "missing", "cpu.prof"), ""); err == nil {
		t.Error("expected error for unwritable CPU profile path")
	}
}

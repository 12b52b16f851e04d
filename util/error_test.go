// util/error_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"testing"
)

func TestErrorLogger(t *testing.T) {
	errBad := errors.New("bad value")

	var e ErrorLogger
	if e.HaveErrors() || e.Err() != nil {
		t.Fatal("new ErrorLogger should have no errors")
	}

	e.Error(errBad)
	e.Push("sector EX1")
	e.Push("ring 0")
	if e.CurrentDepth() != 2 {
		t.Errorf("expected depth 2, got %d", e.CurrentDepth())
	}
	e.ErrorString("position %d: %w", 3, errBad)
	e.Pop()
	e.ErrorString("floor above ceiling")
	e.Pop()

	if !e.HaveErrors() {
		t.Fatal("expected errors")
	}
	if !errors.Is(e.Err(), errBad) {
		t.Errorf("expected Err to wrap errBad: %v", e.Err())
	}

	want := "bad value\n" +
		"sector EX1 / ring 0: position 3: bad value\n" +
		"sector EX1: floor above ceiling"
	if got := e.String(); got != want {
		t.Errorf("got %q, expected %q", got, want)
	}
	if e.CurrentDepth() != 0 {
		t.Errorf("expected depth 0, got %d", e.CurrentDepth())
	}

	var nilLogger *ErrorLogger
	if nilLogger.CurrentDepth() != 0 {
		t.Error("nil ErrorLogger should have depth 0")
	}
}

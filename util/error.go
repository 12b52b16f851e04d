// util/error.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mmp/sectorsim/log"
)

// ErrorLogger accumulates errors found while validating scenario and
// sector definitions, so that all of them can be reported at once. It
// tracks what is currently being validated via Push and Pop and prefixes
// each error with that context. Errors are wrapped, so errors.Is works
// on the result of Err.
type ErrorLogger struct {
	hierarchy []string
	errors    []error
}

func (e *ErrorLogger) Push(s string) {
	e.hierarchy = append(e.hierarchy, s)
}

func (e *ErrorLogger) Pop() {
	e.hierarchy = e.hierarchy[:len(e.hierarchy)-1]
}

func (e *ErrorLogger) wrap(err error) error {
	if len(e.hierarchy) == 0 {
		return err
	}
	return fmt.Errorf("%s: %w", strings.Join(e.hierarchy, " / "), err)
}

// ErrorString records an error formatted with fmt.Errorf, so %w may be
// used to wrap a sentinel error.
func (e *ErrorLogger) ErrorString(s string, args ...any) {
	e.errors = append(e.errors, e.wrap(fmt.Errorf(s, args...)))
}

func (e *ErrorLogger) Error(err error) {
	e.errors = append(e.errors, e.wrap(err))
}

func (e *ErrorLogger) HaveErrors() bool {
	return len(e.errors) > 0
}

// Err returns all of the recorded errors joined together, or nil if there
// were none.
func (e *ErrorLogger) Err() error {
	return errors.Join(e.errors...)
}

func (e *ErrorLogger) PrintErrors(lg *log.Logger) {
	// Two loops so they aren't interleaved with logging to stdout
	if lg != nil {
		for _, err := range e.errors {
			lg.Errorf("%v", err)
		}
	}
	for _, err := range e.errors {
		fmt.Fprintln(os.Stderr, err)
	}
}

func (e *ErrorLogger) String() string {
	s := make([]string, len(e.errors))
	for i, err := range e.errors {
		s[i] = err.Error()
	}
	return strings.Join(s, "\n")
}

func (e *ErrorLogger) CurrentDepth() int {
	if e == nil {
		return 0
	}
	return len(e.hierarchy)
}

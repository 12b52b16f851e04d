// util/json.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrDuplicateJSONKey = errors.New("Duplicate JSON key")

// DuplicateJSONKey represents a duplicate key found in JSON.
type DuplicateJSONKey struct {
	Path string // dotted path to the enclosing object, e.g. "sectors.sets"
	Key  string
}

func (d DuplicateJSONKey) String() string {
	if d.Path == "" {
		return d.Key
	}
	return d.Path + "." + d.Key
}

// FindDuplicateJSONKeys walks the token stream of the given JSON and
// returns all keys that appear more than once in the same object.
// encoding/json silently keeps the last one, which hides typos in
// hand-written scenario files.
func FindDuplicateJSONKeys(data []byte) []DuplicateJSONKey {
	dec := json.NewDecoder(bytes.NewReader(data))

	type level struct {
		isObject  bool
		seen      map[string]bool
		expectKey bool
		popPath   bool
	}
	var stack []level
	var path []string
	var dupes []DuplicateJSONKey

	// valueDone is called after a complete value inside an object; the
	// object then expects its next key and the value's key leaves the path.
	valueDone := func() {
		if len(stack) > 0 && stack[len(stack)-1].isObject {
			stack[len(stack)-1].expectKey = true
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				popPath := len(stack) > 0 && stack[len(stack)-1].isObject && !stack[len(stack)-1].expectKey
				stack = append(stack, level{
					isObject:  v == '{',
					seen:      make(map[string]bool),
					expectKey: v == '{',
					popPath:   popPath,
				})
			case '}', ']':
				if len(stack) > 0 {
					popPath := stack[len(stack)-1].popPath
					stack = stack[:len(stack)-1]
					if popPath {
						valueDone()
					}
				}
			}

		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.isObject && top.expectKey {
					if top.seen[v] {
						dupes = append(dupes, DuplicateJSONKey{Path: strings.Join(path, "."), Key: v})
					}
					top.seen[v] = true
					top.expectKey = false
					path = append(path, v)
				} else {
					valueDone()
				}
			}

		default:
			valueDone()
		}
	}

	return dupes
}

func UnmarshalJSON[T any](r io.Reader, out *T) error {
	// The full contents are needed to turn offsets into line numbers.
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return UnmarshalJSONBytes(b, out)
}

// UnmarshalJSONBytes unmarshals into out, reporting syntax and type errors
// with line and character positions and rejecting duplicate keys.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	if dupes := FindDuplicateJSONKeys(b); len(dupes) > 0 {
		var keys []string
		for _, d := range dupes {
			keys = append(keys, d.String())
		}
		return fmt.Errorf("%s: %w", strings.Join(keys, ", "), ErrDuplicateJSONKey)
	}

	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		line, char := decodeOffset(serr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %w", line, char, err)
	case errors.As(err, &terr):
		line, char := decodeOffset(terr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s: %w",
			line, char, terr.Value, terr.Struct, terr.Field, terr.Type.String(), err)
	default:
		return err
	}
}

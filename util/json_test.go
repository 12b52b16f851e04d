// util/json_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"strings"
	"testing"
)

func TestFindDuplicateJSONKeys(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected []DuplicateJSONKey
	}{
		{name: "no duplicates", json: `{"a": 1, "b": 2}`},
		{
			name:     "root",
			json:     `{"a": 1, "b": 2, "a": 3}`,
			expected: []DuplicateJSONKey{{Path: "", Key: "a"}},
		},
		{
			name:     "nested",
			json:     `{"origin": {"lat": 1, "lat": 2}}`,
			expected: []DuplicateJSONKey{{Path: "origin", Key: "lat"}},
		},
		{
			name:     "sibling objects in array",
			json:     `{"sectors": [{"id": "A"}, {"id": "B"}]}`,
			expected: nil,
		},
		{
			name:     "inside array element",
			json:     `{"sectors": [{"id": "A", "id": "B"}], "owned": ["A"]}`,
			expected: []DuplicateJSONKey{{Path: "sectors", Key: "id"}},
		},
		{
			name:     "after nested containers",
			json:     `{"a": {"b": [1, 2]}, "c": 1, "a": {}}`,
			expected: []DuplicateJSONKey{{Path: "", Key: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindDuplicateJSONKeys([]byte(tt.json))
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d duplicates, got %d: %v", len(tt.expected), len(result), result)
			}
			for i, exp := range tt.expected {
				if result[i] != exp {
					t.Errorf("duplicate %d: expected %+v, got %+v", i, exp, result[i])
				}
			}
		})
	}
}

func TestUnmarshalJSON(t *testing.T) {
	type pt struct {
		Lat float64 `json:"lat"`
	}

	var p pt
	if err := UnmarshalJSON(strings.NewReader(`{"lat": 50.5}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != 50.5 {
		t.Errorf("expected lat 50.5, got %f", p.Lat)
	}

	err := UnmarshalJSONBytes([]byte("{\n\"lat\": \"north\"}"), &p)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected type error on line 2, got %v", err)
	}

	err = UnmarshalJSONBytes([]byte(`{"lat": 1, "lat": 2}`), &p)
	if !errors.Is(err, ErrDuplicateJSONKey) {
		t.Errorf("expected ErrDuplicateJSONKey, got %v", err)
	}
}

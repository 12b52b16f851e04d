// rand/rand_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"testing"
)

func TestSeededStreamsMatch(t *testing.T) {
	a, b := MakeSeeded(99), MakeSeeded(99)
	for i := range 1000 {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("sample %d differs: %f vs %f", i, x, y)
		}
	}

	c := MakeSeeded(100)
	same := 0
	a = MakeSeeded(99)
	for range 100 {
		if a.Uint32() == c.Uint32() {
			same++
		}
	}
	if same > 5 {
		t.Errorf("differently seeded streams agree %d/100 times", same)
	}
}

func TestRanges(t *testing.T) {
	r := MakeSeeded(7)
	sum := 0.
	n := 100000
	for range n {
		f := r.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %f", f)
		}
		sum += f
		if i := r.Intn(7); i < 0 || i >= 7 {
			t.Fatalf("Intn out of range: %d", i)
		}
	}
	if mean := sum / float64(n); mean < 0.49 || mean > 0.51 {
		t.Errorf("Float64 mean %f is far from 0.5", mean)
	}
}

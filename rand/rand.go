// rand/rand.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

// Rand is a small, seedable PCG32 generator. It is not safe for
// concurrent use and is not suitable for anything security related; its
// purpose is reproducible simulation runs.
type Rand struct {
	r *pcg.PCG32
}

const pcgSequence = 0xda3e39cb94b95bdb

func Make() *Rand {
	return &Rand{r: pcg.NewPCG32()}
}

// MakeSeeded returns a generator seeded with s, so that two generators
// made with the same seed produce identical streams.
func MakeSeeded(s int64) *Rand {
	r := Make()
	r.Seed(s)
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), pcgSequence)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Uint32() uint32 {
	return r.r.Random()
}

// Float64 returns a value in [0, 1) with 53 bits of randomness; its
// signature matches the simulation's random source.
func (r *Rand) Float64() float64 {
	hi, lo := uint64(r.r.Random()), uint64(r.r.Random())
	return float64((hi<<32|lo)>>11) / (1 << 53)
}

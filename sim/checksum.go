// sim/checksum.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/cespare/xxhash/v2"
	"github.com/goforj/godump"
	"github.com/vmihailenco/msgpack/v5"
)

// Checksum returns a hash of the world's msgpack encoding. Two runs with
// the same initial world, step function and random source produce the
// same sequence of checksums, which makes it useful for checking replays.
func (w *World) Checksum() (uint64, error) {
	b, err := msgpack.Marshal(w)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}

func (r *Runner) Checksum() (uint64, error) {
	w := r.World()
	return w.Checksum()
}

// Dump returns a human-readable rendering of the world for debugging.
func (r *Runner) Dump() string {
	return godump.DumpStr(r.World())
}

// util/generic.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"iter"
	"slices"

	"golang.org/x/exp/constraints"
)

///////////////////////////////////////////////////////////////////////////
// RingBuffer

// RingBuffer holds the most recent values added to it, up to a fixed
// capacity; adding to a full buffer overwrites the oldest value.
type RingBuffer[V any] struct {
	entries []V
	// next is the index in entries that the next value is written to
	// once the buffer is full; it is also the oldest value.
	next int
}

func NewRingBuffer[V any](capacity int) *RingBuffer[V] {
	return &RingBuffer[V]{entries: make([]V, 0, max(capacity, 1))}
}

func (r *RingBuffer[V]) Add(values ...V) {
	for _, v := range values {
		if len(r.entries) < cap(r.entries) {
			r.entries = append(r.entries, v)
		} else {
			r.entries[r.next] = v
			r.next = (r.next + 1) % len(r.entries)
		}
	}
}

func (r *RingBuffer[V]) Size() int {
	return len(r.entries)
}

// Get returns the i'th value, where 0 is the oldest and Size()-1 the
// newest.
func (r *RingBuffer[V]) Get(i int) V {
	return r.entries[(r.next+i)%len(r.entries)]
}

// All iterates over the values from oldest to newest.
func (r *RingBuffer[V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for i := range r.Size() {
			if !yield(i, r.Get(i)) {
				return
			}
		}
	}
}

///////////////////////////////////////////////////////////////////////////

func Select[T any](sel bool, a, b T) T {
	if sel {
		return a
	}
	return b
}

// SortedMapKeys returns the keys of the given map, sorted from low to high.
func SortedMapKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MapSlice returns the slice that is the result of applying the provided
// xform function to all of the elements of the given slice.
func MapSlice[F, T any](from []F, xform func(F) T) []T {
	var to []T
	for _, item := range from {
		to = append(to, xform(item))
	}
	return to
}

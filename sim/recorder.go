// sim/recorder.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mmp/sectorsim/log"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Recorder is a SnapshotListener that writes each snapshot it receives to
// a stream of msgpack-encoded snapshots compressed with zstd. Recordings
// are read back with ReadRecording.
type Recorder struct {
	mu  sync.Mutex
	zw  *zstd.Encoder
	enc *msgpack.Encoder
	n   int
	err error
	lg  *log.Logger
}

func NewRecorder(w io.Writer, lg *log.Logger) (*Recorder, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	return &Recorder{zw: zw, enc: msgpack.NewEncoder(zw), lg: lg}, nil
}

// OnSnapshot records s. After the first error, further snapshots are
// discarded; the error is returned by Close.
func (r *Recorder) OnSnapshot(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil || r.zw == nil {
		return
	}
	if err := r.enc.Encode(&s); err != nil {
		r.err = fmt.Errorf("tick %d: %w", s.Tick, err)
		r.lg.Errorf("recorder: %v", r.err)
		return
	}
	r.n++
}

// Count returns the number of snapshots recorded so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Close flushes the compressed stream. It does not close the underlying
// writer.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.zw == nil {
		return r.err
	}
	if err := r.zw.Close(); err != nil && r.err == nil {
		r.err = fmt.Errorf("failed to close zstd writer: %w", err)
	}
	r.zw = nil
	return r.err
}

// ReadRecording returns the snapshots in a stream written by a Recorder.
func ReadRecording(rd io.Reader) ([]Snapshot, error) {
	zr, err := zstd.NewReader(rd, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	dec := msgpack.NewDecoder(zr)
	var snaps []Snapshot
	for {
		var s Snapshot
		if err := dec.Decode(&s); errors.Is(err, io.EOF) {
			return snaps, nil
		} else if err != nil {
			return snaps, fmt.Errorf("snapshot %d: %w", len(snaps), err)
		}
		snaps = append(snaps, s)
	}
}

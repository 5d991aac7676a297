/*
 * miniker - Swap store
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package swap implements the fixed-size binary swap file: F frames of P
// fixed-width instruction records each. It is random-access, single-handle
// state for the simulator's lifetime.
package swap

import (
	"os"
)

const (
	// RecordSize is the width, in bytes, of one instruction record (I).
	RecordSize = 32
	// SlotsPerFrame is the number of instruction records per frame (P).
	SlotsPerFrame = 16
	// FrameCount is the number of frames in the store (F).
	FrameCount = 4096
)

// Store is a fixed-size file of Frames() * SlotsPerFrame() fixed-width
// instruction records, opened for the simulator's whole lifetime.
type Store struct {
	file       *os.File
	frames     int
	slots      int
	recordSize int
}

// Create truncates (or creates) path to hold frames*slots*recordSize bytes
// and fills it with '0' bytes, per the swap-file scratch-state contract.
func Create(path string, frames, slots, recordSize int) (*Store, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	s := &Store{file: file, frames: frames, slots: slots, recordSize: recordSize}

	fill := make([]byte, slots*recordSize)
	for i := range fill {
		fill[i] = '0'
	}
	for f := 0; f < frames; f++ {
		if _, err := file.WriteAt(fill, int64(f)*int64(slots)*int64(recordSize)); err != nil {
			file.Close()
			return nil, err
		}
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// Frames returns the number of frames in the store.
func (s *Store) Frames() int { return s.frames }

// SlotsPerFrame returns the number of instruction records per frame.
func (s *Store) SlotsPerFrame() int { return s.slots }

// RecordSize returns the width in bytes of one instruction record.
func (s *Store) RecordSize() int { return s.recordSize }

func (s *Store) offset(frame, slot int) int64 {
	if frame < 0 || frame >= s.frames || slot < 0 || slot >= s.slots {
		panic("swap: frame/slot out of range")
	}
	return (int64(frame)*int64(s.slots) + int64(slot)) * int64(s.recordSize)
}

// WriteInstruction writes exactly RecordSize bytes at (frame, slot),
// padding data with spaces if it is shorter and truncating if longer. The
// write is flushed to disk before this call returns.
func (s *Store) WriteInstruction(frame, slot int, data []byte) error {
	off := s.offset(frame, slot)

	rec := make([]byte, s.recordSize)
	for i := range rec {
		rec[i] = ' '
	}
	n := len(data)
	if n > s.recordSize {
		n = s.recordSize
	}
	copy(rec, data[:n])

	if _, err := s.file.WriteAt(rec, off); err != nil {
		return err
	}
	return s.file.Sync()
}

// ReadInstruction reads the RecordSize bytes at (frame, slot).
func (s *Store) ReadInstruction(frame, slot int) ([]byte, error) {
	off := s.offset(frame, slot)
	rec := make([]byte, s.recordSize)
	if _, err := s.file.ReadAt(rec, off); err != nil {
		return nil, err
	}
	return rec, nil
}

// Close closes the underlying file handle.
func (s *Store) Close() error {
	return s.file.Close()
}

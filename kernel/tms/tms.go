/*
 * miniker - Frame table (TMS)
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

// Package tms implements the frame table: the single source of truth for
// which swap frames are free and which process owns each allocated one.
package tms

// Free is the sentinel owner value for an unallocated frame. PIDs are
// assigned starting at 1, so 0 never collides with a real owner.
const Free = 0

// Table is an array of F frame-ownership entries.
type Table struct {
	owner []int
	free  int
}

// New builds a Table of the given size with every frame free.
func New(frames int) *Table {
	return &Table{owner: make([]int, frames), free: frames}
}

// CountFree returns the number of frames not currently owned.
func (t *Table) CountFree() int {
	return t.free
}

// Len returns the total number of frames in the table.
func (t *Table) Len() int {
	return len(t.owner)
}

// Allocate finds the lowest-indexed free frame and assigns it to pid.
// It returns (frame, true) on success or (0, false) if none is free.
func (t *Table) Allocate(pid int) (int, bool) {
	for i, o := range t.owner {
		if o == Free {
			t.owner[i] = pid
			t.free--
			return i, true
		}
	}
	return 0, false
}

// Free releases frame back to the pool. Freeing an already-free frame is a
// no-op: callers (the sharing-aware termination path) never do this on
// purpose, but it is not treated as fatal.
func (t *Table) Free(frame int) {
	if t.owner[frame] == Free {
		return
	}
	t.owner[frame] = Free
	t.free++
}

// Owner reports the PID that owns frame, or Free.
func (t *Table) Owner(frame int) int {
	return t.owner[frame]
}

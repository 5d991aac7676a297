/*
 * miniker - Process control block
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

// Package pcb holds the per-process control block and the reference-counted
// page map that PCBs of sibling processes (same program path, same UID)
// share.
package pcb

import "fmt"

// Register names the four integer registers of the interpreted machine.
type Register int

const (
	AX Register = iota
	BX
	CX
	DX
)

func (r Register) String() string {
	switch r {
	case AX:
		return "AX"
	case BX:
		return "BX"
	case CX:
		return "CX"
	case DX:
		return "DX"
	default:
		return "?"
	}
}

// State is the list a PCB currently belongs to.
type State int

const (
	NewState State = iota
	Ready
	Running
	Terminated
)

// PageMap is the ordered sequence of frame indices a process (or a group of
// sibling processes) was allocated. It is immutable after creation and
// freed exactly once, when the last sharer releases it.
type PageMap struct {
	Frames []int
	Owner  int // PID of the first allocator; aliasing sharers never change it.
	refs   int
}

// NewPageMap wraps frames in a PageMap owned by owner with one referent.
func NewPageMap(owner int, frames []int) *PageMap {
	return &PageMap{Frames: frames, Owner: owner, refs: 1}
}

// Retain records one more sharer of the map.
func (m *PageMap) Retain() {
	m.refs++
}

// Release records that one sharer is gone. It reports true when that was
// the last sharer, meaning the caller must free the underlying frames.
func (m *PageMap) Release() bool {
	m.refs--
	return m.refs <= 0
}

// Size is the number of pages (frames) in the map.
func (m *PageMap) Size() int {
	return len(m.Frames)
}

// PCB is the per-process state the scheduler and interpreter operate on.
type PCB struct {
	PID  int
	UID  int
	Path string

	regs [4]int32
	PC   int
	IR   string

	P      int // scheduling priority, lower dispatches first
	KCPU   int // per-process CPU use
	KCPUxU int // per-user CPU use aggregated into this PCB

	Map *PageMap

	LastTranslation string // display string for the last translation
	State           State
}

// New creates a fresh PCB in state NewState, priority pbase, zeroed registers.
func New(pid, uid int, path string, pbase int) *PCB {
	return &PCB{PID: pid, UID: uid, Path: path, P: pbase, State: NewState}
}

// Reg reads register r.
func (p *PCB) Reg(r Register) int32 {
	return p.regs[r]
}

// SetReg writes register r.
func (p *PCB) SetReg(r Register, v int32) {
	p.regs[r] = v
}

// TmpSize returns the number of pages mapped, or 0 if the process has no
// page map (while it sits on New, or once termination has released it).
func (p *PCB) TmpSize() int {
	if p.Map == nil {
		return 0
	}
	return p.Map.Size()
}

// Translate computes the swap frame and in-frame slot for the current PC,
// recording the result as the PCB's display string. It does not itself
// range-check PC against TmpSize; callers do that (segmentation fault is a
// scheduling-level event, not a pure-function error).
func (p *PCB) Translate(slotsPerFrame int) (frame, slot int) {
	page := p.PC / slotsPerFrame
	slot = p.PC % slotsPerFrame
	frame = -1
	if p.Map != nil && page < p.Map.Size() {
		frame = p.Map.Frames[page]
	}
	p.LastTranslation = fmt.Sprintf("PID %d: PC=%d -> page %d slot %d -> frame %d", p.PID, p.PC, page, slot, frame)
	return frame, slot
}

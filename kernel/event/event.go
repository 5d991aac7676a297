/*
 * miniker - Kernel event stream
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

// Package event carries kernel lifecycle notifications out to whatever is
// watching (the out-of-scope terminal UI, or a test). The kernel is the only
// producer; nothing in this package ever reads back from the kernel.
package event

// Kind identifies what happened to a process or command.
type Kind int

const (
	// Admitted means a process was loaded into swap and placed on Ready.
	Admitted Kind = iota
	// Queued means a process could not get enough frames and was placed on New.
	Queued
	// Dispatched means the scheduler selected a process to run.
	Dispatched
	// Preempted means a running process's quantum expired and it returned to Ready.
	Preempted
	// Terminated means a process left Ready/Running/New for Terminated.
	Terminated
	// Killed means a process was removed by an explicit kill command.
	Killed
	// CommandError means a command was rejected without changing any state.
	CommandError
	// ShuttingDown means the kernel is releasing all processes and closing swap.
	ShuttingDown
)

// Event describes one completed state change. Fields not relevant to Kind
// are left zero.
type Event struct {
	Kind   Kind
	PID    int
	UID    int
	Path   string
	Reason string // human-readable detail: fault name, command error text, ...
}

// Stream is a non-blocking fan-out of kernel events. A slow or absent
// consumer never stalls the producer: Publish drops the event rather than
// block once the channel is full.
type Stream struct {
	ch chan Event
}

// NewStream creates a Stream with the given buffer depth.
func NewStream(depth int) *Stream {
	if depth <= 0 {
		depth = 1
	}
	return &Stream{ch: make(chan Event, depth)}
}

// Publish enqueues ev, dropping it silently if the buffer is full.
func (s *Stream) Publish(ev Event) {
	select {
	case s.ch <- ev:
	default:
	}
}

// C returns the receive-only channel consumers should range over.
func (s *Stream) C() <-chan Event {
	return s.ch
}

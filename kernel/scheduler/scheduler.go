/*
 * miniker - Priority-aging scheduler
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

// Package scheduler multiplexes processes across per-user fair-share
// weights: minimum-priority dispatch from Ready, per-tick CPU accounting,
// and quantum-expiry aging.
package scheduler

import (
	"math"

	"github.com/rcornwell/miniker/kernel/pcb"
)

const epsilon = 1e-9

// Scheduler owns the Ready and Running lists and the fair-share bookkeeping
// derived from them. New and Terminated belong to the kernel, not here,
// since they never participate in dispatch or aging.
type Scheduler struct {
	Quantum int // ticks a process may run before preemption
	PBase   int // base priority
	IncCPU  int // floor(PBase / Quantum), added to KCPU/KCPUxU each tick

	Ready   []*pcb.PCB
	Running *pcb.PCB

	quantumCounter int
	NumUs          int
	W              float64
}

// New builds a Scheduler with the given quantum length and base priority.
func New(quantum, pbase int) *Scheduler {
	return &Scheduler{
		Quantum: quantum,
		PBase:   pbase,
		IncCPU:  pbase / quantum,
	}
}

// Enqueue appends p to the tail of Ready and recomputes fair-share weights.
func (s *Scheduler) Enqueue(p *pcb.PCB) {
	p.State = pcb.Ready
	s.Ready = append(s.Ready, p)
	s.RecomputeWeights()
}

// Dispatch selects the minimum-priority PCB from Ready (ties broken by
// earliest insertion) and makes it Running, provided Running is empty and
// Ready is non-empty. It reports the PCB dispatched, or nil if nothing
// changed.
func (s *Scheduler) Dispatch() *pcb.PCB {
	if s.Running != nil || len(s.Ready) == 0 {
		return nil
	}

	best := 0
	for i := 1; i < len(s.Ready); i++ {
		if s.Ready[i].P < s.Ready[best].P {
			best = i
		}
	}

	chosen := s.Ready[best]
	s.Ready = append(s.Ready[:best], s.Ready[best+1:]...)
	chosen.State = pcb.Running
	s.Running = chosen
	s.RecomputeWeights()
	return chosen
}

// Accounting applies the per-tick bookkeeping after a successful,
// non-terminating instruction execution: Running's own
// counters advance, every same-user PCB waiting in Ready gets its
// cross-user counter bumped too, PC advances, and the quantum counter
// ticks forward. It reports whether the quantum has now expired.
func (s *Scheduler) Accounting() bool {
	running := s.Running
	running.KCPU += s.IncCPU
	running.KCPUxU += s.IncCPU
	for _, p := range s.Ready {
		if p.UID == running.UID {
			p.KCPUxU += s.IncCPU
		}
	}
	running.PC++
	s.quantumCounter++
	return s.quantumCounter >= s.Quantum
}

// ApplyAging halves every scheduling-relevant PCB's CPU counters,
// recomputes its priority biased by the user fair-share weight, then
// returns Running to the tail of Ready and clears Running. Call this only
// when Accounting reported the quantum expired.
func (s *Scheduler) ApplyAging() {
	age := func(p *pcb.PCB) {
		p.KCPU /= 2
		p.KCPUxU /= 2
		p.P = s.PBase + p.KCPU/2
		if math.Abs(s.W) > epsilon {
			p.P += int(float64(p.KCPUxU) / (4 * s.W))
		}
	}

	if s.Running != nil {
		age(s.Running)
	}
	for _, p := range s.Ready {
		age(p)
	}

	if s.Running != nil {
		s.Running.State = pcb.Ready
		s.Ready = append(s.Ready, s.Running)
		s.Running = nil
	}
	s.quantumCounter = 0
	s.RecomputeWeights()
}

// RemovePID removes pid from Ready or Running (wherever it lives) and
// recomputes fair-share weights. It reports the removed PCB and whether one
// was found.
func (s *Scheduler) RemovePID(pid int) (*pcb.PCB, bool) {
	if s.Running != nil && s.Running.PID == pid {
		p := s.Running
		s.Running = nil
		s.RecomputeWeights()
		return p, true
	}
	for i, p := range s.Ready {
		if p.PID == pid {
			s.Ready = append(s.Ready[:i], s.Ready[i+1:]...)
			s.RecomputeWeights()
			return p, true
		}
	}
	return nil, false
}

// RecomputeWeights recounts the distinct UIDs present across Ready and
// Running and updates NumUs and W = 1/NumUs (0 if no processes are
// schedulable).
func (s *Scheduler) RecomputeWeights() {
	seen := map[int]bool{}
	if s.Running != nil {
		seen[s.Running.UID] = true
	}
	for _, p := range s.Ready {
		seen[p.UID] = true
	}
	s.NumUs = len(seen)
	if s.NumUs > 0 {
		s.W = 1.0 / float64(s.NumUs)
	} else {
		s.W = 0
	}
}

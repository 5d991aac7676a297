/*
 * miniker - Kernel: the explicit context threading every operation together
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

// Package kernel wires the swap store, frame table, scheduler, and
// interpreter together into the single context ("the World") that every
// simulator operation runs against, replacing the module-scope globals of
// the source this was modeled on.
package kernel

import (
	"errors"
	"fmt"

	"github.com/rcornwell/miniker/kernel/cpu"
	"github.com/rcornwell/miniker/kernel/event"
	"github.com/rcornwell/miniker/kernel/loader"
	"github.com/rcornwell/miniker/kernel/pcb"
	"github.com/rcornwell/miniker/kernel/scheduler"
	"github.com/rcornwell/miniker/kernel/swap"
	"github.com/rcornwell/miniker/kernel/tms"
)

// Config holds the parameters needed to bring up a Kernel.
type Config struct {
	Quantum       int
	PBase         int
	Frames        int
	SlotsPerFrame int
	RecordSize    int
	SwapPath      string
	EventBuffer   int
}

// DefaultConfig returns the parameters the original simulator shipped
// with: quantum 5, base priority 60 (so IncCPU = 60/5 = 12), the full
// F=4096/P=16/I=32 swap geometry.
func DefaultConfig() Config {
	return Config{
		Quantum:       5,
		PBase:         60,
		Frames:        swap.FrameCount,
		SlotsPerFrame: swap.SlotsPerFrame,
		RecordSize:    swap.RecordSize,
		SwapPath:      "SWAP.bin",
		EventBuffer:   64,
	}
}

// Kernel is the World: swap store, frame table, process lists, scheduler,
// and interpreter, plus the event stream the UI observes.
type Kernel struct {
	Swap   *swap.Store
	TMS    *tms.Table
	Loader *loader.Loader
	Sched  *scheduler.Scheduler
	Events *event.Stream

	New        []*pcb.PCB
	Terminated []*pcb.PCB

	nextPID int
}

// New brings up a Kernel: creates (truncating) the swap file and the frame
// table, and wires the loader and scheduler over them.
func New(cfg Config) (*Kernel, error) {
	store, err := swap.Create(cfg.SwapPath, cfg.Frames, cfg.SlotsPerFrame, cfg.RecordSize)
	if err != nil {
		return nil, fmt.Errorf("create swap file: %w", err)
	}
	table := tms.New(cfg.Frames)

	return &Kernel{
		Swap:    store,
		TMS:     table,
		Loader:  loader.New(store, table),
		Sched:   scheduler.New(cfg.Quantum, cfg.PBase),
		Events:  event.NewStream(cfg.EventBuffer),
		nextPID: 1,
	}, nil
}

// Load admits a new process. Sibling detection runs first: if a live PCB
// with the same (path, uid) is already in Ready or Running, the new PCB
// inherits its page map directly and no frames are allocated. Otherwise the
// loader is invoked; NotEnoughFrames queues the PCB to New, and a terminal
// loader error sends it straight to Terminated.
func (k *Kernel) Load(path string, uid int) {
	pid := k.nextPID
	k.nextPID++
	p := pcb.New(pid, uid, path, k.Sched.PBase)

	if sibling := k.findSibling(path, uid); sibling != nil {
		sibling.Map.Retain()
		p.Map = sibling.Map
		k.Sched.Enqueue(p)
		k.Events.Publish(event.Event{Kind: event.Admitted, PID: p.PID, UID: p.UID, Path: p.Path, Reason: "shares page map with sibling process"})
		return
	}

	pm, err := k.Loader.Load(path, pid)
	switch {
	case err == nil:
		p.Map = pm
		k.Sched.Enqueue(p)
		k.Events.Publish(event.Event{Kind: event.Admitted, PID: p.PID, UID: p.UID, Path: p.Path})

	case errors.Is(err, loader.ErrNotEnoughFrames):
		p.State = pcb.NewState
		k.New = append(k.New, p)
		k.Events.Publish(event.Event{Kind: event.Queued, PID: p.PID, UID: p.UID, Path: p.Path})

	default:
		p.State = pcb.Terminated
		k.Terminated = append(k.Terminated, p)
		k.Events.Publish(event.Event{Kind: event.Terminated, PID: p.PID, UID: p.UID, Path: p.Path, Reason: err.Error()})
	}
}

// findSibling returns a live (Ready or Running) PCB sharing path and uid,
// or nil.
func (k *Kernel) findSibling(path string, uid int) *pcb.PCB {
	if r := k.Sched.Running; r != nil && r.Path == path && r.UID == uid && r.Map != nil {
		return r
	}
	for _, p := range k.Sched.Ready {
		if p.Path == path && p.UID == uid && p.Map != nil {
			return p
		}
	}
	return nil
}

// Kill terminates the PCB with the given PID, wherever it lives. Killing an
// already-terminated PID is a no-op reported as a normal event, not an
// error. An unknown PID is reported as an error with no state change.
func (k *Kernel) Kill(pid int) error {
	if p, ok := k.Sched.RemovePID(pid); ok {
		k.finishTermination(p, event.Killed, "killed")
		return nil
	}

	for i, p := range k.New {
		if p.PID == pid {
			k.New = append(k.New[:i], k.New[i+1:]...)
			k.finishTermination(p, event.Killed, "killed")
			return nil
		}
	}

	for _, p := range k.Terminated {
		if p.PID == pid {
			k.Events.Publish(event.Event{Kind: event.Killed, PID: p.PID, UID: p.UID, Path: p.Path, Reason: "already terminated"})
			return nil
		}
	}

	return fmt.Errorf("kill: no such process %d", pid)
}

// Tick drives one iteration of the instruction cycle: dispatch if Running
// is empty, then translate -> fetch -> decode -> execute -> accounting ->
// PC advance -> aging, exactly in that order.
func (k *Kernel) Tick() {
	if k.Sched.Running == nil {
		if dispatched := k.Sched.Dispatch(); dispatched != nil {
			k.Events.Publish(event.Event{Kind: event.Dispatched, PID: dispatched.PID, UID: dispatched.UID, Path: dispatched.Path})
		}
	}

	running := k.Sched.Running
	if running == nil {
		return
	}

	slots := k.Swap.SlotsPerFrame()
	page := running.PC / slots

	// Without branch instructions, PC only ever advances one slot at a
	// time: the first page past the map is the normal way a process
	// without a trailing END runs off its own program (end of program),
	// never a true out-of-range jump. Only further than that is a fault.
	if page > running.TmpSize() {
		k.terminateRunning(running, "segmentation fault: PC past end of page map")
		return
	}
	if page == running.TmpSize() {
		k.terminateRunning(running, "end of program")
		return
	}

	frame, slot := running.Translate(slots)
	raw, err := k.Swap.ReadInstruction(frame, slot)
	if err != nil {
		k.terminateRunning(running, "swap read error: "+err.Error())
		return
	}

	if cpu.IsEndSentinel(raw) {
		k.terminateRunning(running, "end of program")
		return
	}

	instr, err := cpu.Decode(raw)
	if err != nil {
		k.terminateRunning(running, err.Error())
		return
	}

	outcome, err := cpu.Execute(running, instr)
	switch outcome {
	case cpu.Ended:
		k.terminateRunning(running, "END instruction")
		return
	case cpu.Faulted:
		k.terminateRunning(running, err.Error())
		return
	}

	if k.Sched.Accounting() {
		k.Sched.ApplyAging()
		k.Events.Publish(event.Event{Kind: event.Preempted, PID: running.PID, UID: running.UID, Path: running.Path})
	}
}

// terminateRunning clears Running and terminates it via the normal path.
func (k *Kernel) terminateRunning(p *pcb.PCB, reason string) {
	k.Sched.Running = nil
	k.Sched.RecomputeWeights()
	k.finishTermination(p, event.Terminated, reason)
}

// finishTermination releases p's page map (freeing frames only if p was
// the last sharer), moves p to Terminated, publishes an event, and runs
// the admission coordinator since frames may now be free.
func (k *Kernel) finishTermination(p *pcb.PCB, kind event.Kind, reason string) {
	k.release(p)
	k.Events.Publish(event.Event{Kind: kind, PID: p.PID, UID: p.UID, Path: p.Path, Reason: reason})
	k.runCoordinator()
}

// release drops p's reference to its page map, freeing the underlying
// frames when p was the last sharer, and moves p to Terminated.
func (k *Kernel) release(p *pcb.PCB) {
	if p.Map != nil {
		if p.Map.Release() {
			for _, f := range p.Map.Frames {
				k.TMS.Free(f)
			}
		}
		p.Map = nil
	}
	p.State = pcb.Terminated
	k.Terminated = append(k.Terminated, p)
}

// runCoordinator scans New head-to-tail exactly once. A process that now
// fits is admitted to Ready; one that still doesn't fit stays in New
// (scanning continues, since a later, smaller process may still fit); an
// unrecoverable loader error sends it to Terminated.
func (k *Kernel) runCoordinator() {
	pending := k.New
	k.New = nil

	for _, p := range pending {
		pm, err := k.Loader.Load(p.Path, p.PID)
		switch {
		case err == nil:
			p.Map = pm
			k.Sched.Enqueue(p)
			k.Events.Publish(event.Event{Kind: event.Admitted, PID: p.PID, UID: p.UID, Path: p.Path})

		case errors.Is(err, loader.ErrNotEnoughFrames):
			k.New = append(k.New, p)

		default:
			p.State = pcb.Terminated
			k.Terminated = append(k.Terminated, p)
			k.Events.Publish(event.Event{Kind: event.Terminated, PID: p.PID, UID: p.UID, Path: p.Path, Reason: err.Error()})
		}
	}
}

// Shutdown releases every PCB (Running, Ready, New) via the termination
// path without re-running admission (there is nothing left to admit to),
// then closes the swap file.
func (k *Kernel) Shutdown() error {
	k.Events.Publish(event.Event{Kind: event.ShuttingDown})

	if r := k.Sched.Running; r != nil {
		k.Sched.Running = nil
		k.release(r)
	}
	for _, p := range k.Sched.Ready {
		k.release(p)
	}
	k.Sched.Ready = nil
	for _, p := range k.New {
		p.State = pcb.Terminated
		k.Terminated = append(k.Terminated, p)
	}
	k.New = nil
	k.Sched.RecomputeWeights()

	return k.Swap.Close()
}

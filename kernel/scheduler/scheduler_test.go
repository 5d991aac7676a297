package scheduler

import (
	"testing"

	"github.com/rcornwell/miniker/kernel/pcb"
)

func TestIncCPUFloorDivision(t *testing.T) {
	s := New(7, 60)
	if s.IncCPU != 8 {
		t.Fatalf("IncCPU = %d, want floor(60/7) = 8", s.IncCPU)
	}
}

func TestDispatchPicksMinimumPriorityFirstInsertion(t *testing.T) {
	s := New(5, 60)
	a := pcb.New(1, 0, "a", 60)
	b := pcb.New(2, 0, "b", 60)
	a.P = 60
	b.P = 60
	s.Enqueue(a)
	s.Enqueue(b)

	got := s.Dispatch()
	if got != a {
		t.Fatalf("Dispatch() with tied priority = PID %d, want earliest-inserted PID %d", got.PID, a.PID)
	}
	if s.Running != a {
		t.Fatal("Dispatch should set Running")
	}
	if len(s.Ready) != 1 || s.Ready[0] != b {
		t.Fatal("Dispatch should remove the chosen PCB from Ready")
	}
}

func TestDispatchNoopWhenRunningOrEmpty(t *testing.T) {
	s := New(5, 60)
	if got := s.Dispatch(); got != nil {
		t.Fatal("Dispatch on empty Ready should return nil")
	}

	a := pcb.New(1, 0, "a", 60)
	s.Enqueue(a)
	s.Dispatch()
	if got := s.Dispatch(); got != nil {
		t.Fatal("Dispatch while Running is occupied should return nil")
	}
}

func TestAccountingAdvancesPCAndReportsQuantumExpiry(t *testing.T) {
	s := New(2, 60)
	a := pcb.New(1, 0, "a", 60)
	s.Enqueue(a)
	s.Dispatch()

	if expired := s.Accounting(); expired {
		t.Fatal("quantum should not expire after first tick of a 2-tick quantum")
	}
	if a.PC != 1 {
		t.Fatalf("PC after one Accounting call = %d, want 1", a.PC)
	}
	if a.KCPU != s.IncCPU {
		t.Fatalf("KCPU = %d, want %d", a.KCPU, s.IncCPU)
	}

	if expired := s.Accounting(); !expired {
		t.Fatal("quantum should expire on the second tick of a 2-tick quantum")
	}
}

func TestAccountingBumpsSameUserReadyPCBs(t *testing.T) {
	s := New(5, 60)
	a := pcb.New(1, 1, "a", 60)
	b := pcb.New(2, 1, "b", 60) // same UID as a
	c := pcb.New(3, 2, "c", 60) // different UID
	s.Enqueue(a)
	s.Enqueue(b)
	s.Enqueue(c)
	s.Dispatch() // dispatches a (earliest, tied priority)

	s.Accounting()

	if b.KCPUxU != s.IncCPU {
		t.Fatalf("same-UID Ready PCB KCPUxU = %d, want %d", b.KCPUxU, s.IncCPU)
	}
	if c.KCPUxU != 0 {
		t.Fatalf("different-UID Ready PCB KCPUxU = %d, want 0", c.KCPUxU)
	}
}

func TestApplyAgingHalvesCountersAndRequeues(t *testing.T) {
	s := New(1, 60)
	a := pcb.New(1, 0, "a", 60)
	s.Enqueue(a)
	s.Dispatch()
	a.KCPU = 10
	a.KCPUxU = 20

	s.ApplyAging()

	if a.KCPU != 5 {
		t.Fatalf("KCPU after aging = %d, want 5", a.KCPU)
	}
	if a.KCPUxU != 10 {
		t.Fatalf("KCPUxU after aging = %d, want 10", a.KCPUxU)
	}
	if s.Running != nil {
		t.Fatal("ApplyAging should clear Running")
	}
	if len(s.Ready) != 1 || s.Ready[0] != a {
		t.Fatal("ApplyAging should return the aged PCB to Ready")
	}
	if a.State != pcb.Ready {
		t.Fatalf("State after aging = %v, want Ready", a.State)
	}
}

func TestRecomputeWeightsCountsDistinctUsers(t *testing.T) {
	s := New(5, 60)
	a := pcb.New(1, 1, "a", 60)
	b := pcb.New(2, 2, "b", 60)
	s.Enqueue(a)
	s.Enqueue(b)

	if s.NumUs != 2 {
		t.Fatalf("NumUs = %d, want 2", s.NumUs)
	}
	if s.W != 0.5 {
		t.Fatalf("W = %v, want 0.5", s.W)
	}
}

func TestRemovePID(t *testing.T) {
	s := New(5, 60)
	a := pcb.New(1, 0, "a", 60)
	b := pcb.New(2, 0, "b", 60)
	s.Enqueue(a)
	s.Enqueue(b)
	s.Dispatch() // a running

	got, ok := s.RemovePID(1)
	if !ok || got != a {
		t.Fatalf("RemovePID(running) = (%v, %v), want (a, true)", got, ok)
	}
	if s.Running != nil {
		t.Fatal("RemovePID should clear Running")
	}

	got, ok = s.RemovePID(2)
	if !ok || got != b {
		t.Fatalf("RemovePID(ready) = (%v, %v), want (b, true)", got, ok)
	}

	if _, ok := s.RemovePID(99); ok {
		t.Fatal("RemovePID of unknown PID should report false")
	}
}

package tms

import "testing"

func TestAllocateFirstFit(t *testing.T) {
	tab := New(4)
	if got := tab.CountFree(); got != 4 {
		t.Fatalf("CountFree() = %d, want 4", got)
	}

	f0, ok := tab.Allocate(1)
	if !ok || f0 != 0 {
		t.Fatalf("Allocate(1) = (%d, %v), want (0, true)", f0, ok)
	}
	f1, ok := tab.Allocate(1)
	if !ok || f1 != 1 {
		t.Fatalf("Allocate(1) = (%d, %v), want (1, true)", f1, ok)
	}
	if got := tab.CountFree(); got != 2 {
		t.Fatalf("CountFree() = %d, want 2", got)
	}

	tab.Free(f0)
	if got := tab.CountFree(); got != 3 {
		t.Fatalf("CountFree() after Free = %d, want 3", got)
	}

	f2, ok := tab.Allocate(2)
	if !ok || f2 != 0 {
		t.Fatalf("Allocate after free reused frame = %d, want 0", f2)
	}
}

func TestAllocateExhausted(t *testing.T) {
	tab := New(1)
	if _, ok := tab.Allocate(1); !ok {
		t.Fatal("first Allocate should succeed")
	}
	if _, ok := tab.Allocate(2); ok {
		t.Fatal("Allocate on exhausted table should fail")
	}
}

func TestFreeIdempotent(t *testing.T) {
	tab := New(2)
	tab.Free(0)
	tab.Free(0)
	if got := tab.CountFree(); got != 2 {
		t.Fatalf("CountFree() = %d, want 2 (double free must not double count)", got)
	}
}

func TestOwner(t *testing.T) {
	tab := New(2)
	frame, _ := tab.Allocate(7)
	if got := tab.Owner(frame); got != 7 {
		t.Fatalf("Owner(%d) = %d, want 7", frame, got)
	}
	tab.Free(frame)
	if got := tab.Owner(frame); got != Free {
		t.Fatalf("Owner(%d) after free = %d, want Free", frame, got)
	}
}

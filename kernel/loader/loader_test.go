package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/miniker/kernel/swap"
	"github.com/rcornwell/miniker/kernel/tms"
)

func newLoader(t *testing.T, frames, slots, recordSize int) *Loader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swap.bin")
	store, err := swap.Create(path, frames, slots, recordSize)
	if err != nil {
		t.Fatalf("swap.Create: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store, tms.New(frames))
}

func writeProgram(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("os.Create: %v", err)
	}
	defer f.Close()
	for _, l := range lines {
		f.WriteString(l + "\n")
	}
	return path
}

func TestLoadAllocatesOnePagePerSlotsLines(t *testing.T) {
	l := newLoader(t, 4, 2, 8)
	path := writeProgram(t, "MOV AX 1", "ADD AX 2", "END")

	pm, err := l.Load(path, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := pm.Size(); got != 2 {
		t.Fatalf("PageMap.Size() = %d, want 2 (3 lines over 2 slots/frame)", got)
	}
	if got := l.TMS.CountFree(); got != 2 {
		t.Fatalf("CountFree() after load = %d, want 2", got)
	}
}

func TestLoadEmptyProgram(t *testing.T) {
	l := newLoader(t, 4, 2, 8)
	path := writeProgram(t)

	_, err := l.Load(path, 1)
	if !errors.Is(err, ErrEmptyProgram) {
		t.Fatalf("Load of empty file: err = %v, want ErrEmptyProgram", err)
	}
}

func TestLoadMissingProgramIsEmpty(t *testing.T) {
	l := newLoader(t, 4, 2, 8)

	_, err := l.Load(filepath.Join(t.TempDir(), "missing.txt"), 1)
	if !errors.Is(err, ErrEmptyProgram) {
		t.Fatalf("Load of missing file: err = %v, want ErrEmptyProgram", err)
	}
}

func TestLoadProgramTooLarge(t *testing.T) {
	l := newLoader(t, 1, 1, 8)
	path := writeProgram(t, "MOV AX 1", "MOV AX 2")

	_, err := l.Load(path, 1)
	if !errors.Is(err, ErrProgramTooLarge) {
		t.Fatalf("Load of oversized program: err = %v, want ErrProgramTooLarge", err)
	}
}

func TestLoadNotEnoughFramesRollsBack(t *testing.T) {
	l := newLoader(t, 2, 1, 8)
	l.TMS.Allocate(99) // occupy one of the two frames
	path := writeProgram(t, "MOV AX 1", "MOV AX 2")

	_, err := l.Load(path, 1)
	if !errors.Is(err, ErrNotEnoughFrames) {
		t.Fatalf("Load with insufficient frames: err = %v, want ErrNotEnoughFrames", err)
	}
	if got := l.TMS.CountFree(); got != 1 {
		t.Fatalf("CountFree() after failed load = %d, want 1 (rollback)", got)
	}
}

func TestLoadUppercasesAndPadsSentinel(t *testing.T) {
	l := newLoader(t, 4, 2, 8)
	path := writeProgram(t, "mov ax 1")

	pm, err := l.Load(path, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec, err := l.Swap.ReadInstruction(pm.Frames[0], 0)
	if err != nil {
		t.Fatalf("ReadInstruction: %v", err)
	}
	if got := string(rec[:8]); got != "MOV AX 1" {
		t.Fatalf("stored instruction = %q, want uppercased %q", got, "MOV AX 1")
	}

	endRec, err := l.Swap.ReadInstruction(pm.Frames[0], 1)
	if err != nil {
		t.Fatalf("ReadInstruction: %v", err)
	}
	for _, b := range endRec {
		if b != 0 {
			t.Fatalf("trailing slot with no source line = %q, want all-zero sentinel", endRec)
		}
	}
}

package parser

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rcornwell/miniker/kernel"
)

func newTestKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	cfg := kernel.Config{
		Quantum:       5,
		PBase:         60,
		Frames:        4,
		SlotsPerFrame: 16,
		RecordSize:    16,
		SwapPath:      filepath.Join(t.TempDir(), "swap.bin"),
		EventBuffer:   16,
	}
	k, err := kernel.New(cfg)
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}
	t.Cleanup(func() { k.Swap.Close() })
	return k
}

func TestProcessCommandLoad(t *testing.T) {
	k := newTestKernel(t)
	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, []byte("INC AX\n"), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	quit, err := ProcessCommand("LOAD "+path+" 1", k)
	if err != nil {
		t.Fatalf("ProcessCommand(LOAD): %v", err)
	}
	if quit {
		t.Fatal("LOAD should not request exit")
	}
	if len(k.Sched.Ready) != 1 {
		t.Fatalf("Ready has %d PCBs, want 1", len(k.Sched.Ready))
	}
}

func TestProcessCommandCargarAlias(t *testing.T) {
	k := newTestKernel(t)
	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, []byte("INC AX\n"), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	if _, err := ProcessCommand("cargar "+path+" 2", k); err != nil {
		t.Fatalf("ProcessCommand(CARGAR): %v", err)
	}
	if len(k.Sched.Ready) != 1 {
		t.Fatal("CARGAR should admit a process exactly like LOAD")
	}
}

func TestProcessCommandLoadMissingArgs(t *testing.T) {
	k := newTestKernel(t)
	if _, err := ProcessCommand("LOAD onlyonearg", k); err == nil {
		t.Fatal("LOAD with a missing uid should error")
	}
	if _, err := ProcessCommand("LOAD", k); err == nil {
		t.Fatal("LOAD with no arguments should error")
	}
}

func TestProcessCommandKillAndMatar(t *testing.T) {
	k := newTestKernel(t)
	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, []byte("INC AX\n"), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	if _, err := ProcessCommand("LOAD "+path+" 1", k); err != nil {
		t.Fatalf("ProcessCommand(LOAD): %v", err)
	}
	pid := k.Sched.Ready[0].PID

	if _, err := ProcessCommand("KILL badpid", k); err == nil {
		t.Fatal("KILL with a non-integer pid should error")
	}

	quit, err := ProcessCommand("MATAR "+strconv.Itoa(pid), k)
	if err != nil {
		t.Fatalf("ProcessCommand(MATAR): %v", err)
	}
	if quit {
		t.Fatal("KILL/MATAR should not request exit")
	}
	if len(k.Terminated) != 1 {
		t.Fatal("MATAR should terminate the PCB")
	}
}

func TestProcessCommandExitAndSalir(t *testing.T) {
	k := newTestKernel(t)

	quit, err := ProcessCommand("EXIT", k)
	if err != nil || !quit {
		t.Fatalf("ProcessCommand(EXIT) = (%v, %v), want (true, nil)", quit, err)
	}

	quit, err = ProcessCommand("salir", k)
	if err != nil || !quit {
		t.Fatalf("ProcessCommand(salir) = (%v, %v), want (true, nil)", quit, err)
	}

	if _, err := ProcessCommand("EXIT extra", k); err == nil {
		t.Fatal("EXIT with arguments should error")
	}
}

func TestProcessCommandUnknownVerb(t *testing.T) {
	k := newTestKernel(t)
	if _, err := ProcessCommand("FROBNICATE", k); err == nil {
		t.Fatal("unknown verb should error")
	}
}

func TestProcessCommandBlankLine(t *testing.T) {
	k := newTestKernel(t)
	quit, err := ProcessCommand("   ", k)
	if err != nil || quit {
		t.Fatalf("blank command line = (%v, %v), want (false, nil)", quit, err)
	}
}

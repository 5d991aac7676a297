package pcb

import "testing"

func TestRegisters(t *testing.T) {
	p := New(1, 0, "prog.txt", 60)
	p.SetReg(AX, 42)
	if got := p.Reg(AX); got != 42 {
		t.Fatalf("Reg(AX) = %d, want 42", got)
	}
	if got := p.Reg(BX); got != 0 {
		t.Fatalf("Reg(BX) = %d, want 0", got)
	}
}

func TestPageMapRefCounting(t *testing.T) {
	m := NewPageMap(1, []int{3, 4})
	m.Retain()
	if last := m.Release(); last {
		t.Fatal("Release with a sharer remaining reported last sharer")
	}
	if last := m.Release(); !last {
		t.Fatal("Release of the only remaining sharer should report last sharer")
	}
}

func TestTmpSizeWithoutMap(t *testing.T) {
	p := New(1, 0, "prog.txt", 60)
	if got := p.TmpSize(); got != 0 {
		t.Fatalf("TmpSize() with nil Map = %d, want 0", got)
	}
}

func TestTranslate(t *testing.T) {
	p := New(1, 0, "prog.txt", 60)
	p.Map = NewPageMap(1, []int{7, 9})
	p.PC = 18 // slots=16: page 1, slot 2

	frame, slot := p.Translate(16)
	if frame != 9 || slot != 2 {
		t.Fatalf("Translate(16) = (%d, %d), want (9, 2)", frame, slot)
	}
	if p.LastTranslation == "" {
		t.Fatal("Translate should record a display string")
	}
}

func TestTranslateBeyondMap(t *testing.T) {
	p := New(1, 0, "prog.txt", 60)
	p.Map = NewPageMap(1, []int{7})
	p.PC = 16 // page 1, but map has only one page

	frame, _ := p.Translate(16)
	if frame != -1 {
		t.Fatalf("Translate() past end of map = %d, want -1", frame)
	}
}

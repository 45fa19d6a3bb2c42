package parser

import (
	"testing"

	"github.com/oisee/gblr35902/pkg/cmdqueue"
	"github.com/oisee/gblr35902/pkg/mem"
	"github.com/oisee/gblr35902/pkg/reg"
	"github.com/oisee/gblr35902/pkg/tokenizer"
)

// terminatorCount drains q and returns how many cycle-terminator commands
// it contained, consuming it in the process.
func terminatorCount(q *cmdqueue.Queue) int {
	n := 0
	for {
		cmd, ok := q.Dequeue()
		if !ok {
			return n
		}
		if cmd.Kind == cmdqueue.KindHalt && cmd.IsCycleTerminator {
			n++
		}
	}
}

func newSnapshot() (Snapshot, *mem.Memory) {
	m := mem.New()
	var f reg.File
	return Snapshot{Reg: f, Mem: m}, m
}

// assertCycles tokenizes window, parses it against snap, and checks the
// queue's terminator count equals the tokenizer's declared duration — the
// load-bearing cross-component invariant spec.md §8 tests end to end.
func assertCycles(t *testing.T, snap Snapshot, window tokenizer.Window) {
	t.Helper()
	ins, err := tokenizer.Tokenize(window)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	q, err := Parse(snap, ins)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := terminatorCount(q); got != ins.DurationInClockCycles {
		t.Errorf("window %#06x: terminators = %d, want %d", window, got, ins.DurationInClockCycles)
	}
}

func TestCycleCountsMatchTokenizer(t *testing.T) {
	snap, _ := newSnapshot()
	windows := []tokenizer.Window{
		tokenizer.PackWindow(0x00, 0, 0),       // NOP
		tokenizer.PackWindow(0x80, 0, 0),       // ADD A,B
		tokenizer.PackWindow(0x86, 0, 0),       // ADD A,(HL)
		tokenizer.PackWindow(0xC6, 0x01, 0),    // ADD A,n
		tokenizer.PackWindow(0x09, 0, 0),       // ADD HL,BC
		tokenizer.PackWindow(0xE8, 0x01, 0),    // ADD SP,s8
		tokenizer.PackWindow(0x04, 0, 0),       // INC B
		tokenizer.PackWindow(0x34, 0, 0),       // INC (HL)
		tokenizer.PackWindow(0x03, 0, 0),       // INC BC
		tokenizer.PackWindow(0x40, 0, 0),       // LD B,B
		tokenizer.PackWindow(0x46, 0, 0),       // LD B,(HL)
		tokenizer.PackWindow(0x70, 0, 0),       // LD (HL),B
		tokenizer.PackWindow(0x06, 0x42, 0),    // LD B,n
		tokenizer.PackWindow(0x36, 0x42, 0),    // LD (HL),n
		tokenizer.PackWindow(0x01, 0x34, 0x12), // LD BC,nn
		tokenizer.PackWindow(0x08, 0x00, 0x10), // LD (a16),SP
		tokenizer.PackWindow(0x02, 0, 0),       // LD (BC),A
		tokenizer.PackWindow(0x22, 0, 0),       // LD (HL+),A
		tokenizer.PackWindow(0x2A, 0, 0),       // LD A,(HL+)
		tokenizer.PackWindow(0x32, 0, 0),       // LD (HL-),A
		tokenizer.PackWindow(0xE0, 0x80, 0),    // LDH (n),A
		tokenizer.PackWindow(0xF0, 0x80, 0),    // LDH A,(n)
		tokenizer.PackWindow(0xE2, 0, 0),       // LD (C),A
		tokenizer.PackWindow(0xF2, 0, 0),       // LD A,(C)
		tokenizer.PackWindow(0xEA, 0x00, 0x10), // LD (a16),A
		tokenizer.PackWindow(0xFA, 0x00, 0x10), // LD A,(a16)
		tokenizer.PackWindow(0xF9, 0, 0),       // LD SP,HL
		tokenizer.PackWindow(0xF8, 0x05, 0),    // LD HL,SP+d
		tokenizer.PackWindow(0xC1, 0, 0),       // POP BC
		tokenizer.PackWindow(0xC5, 0, 0),       // PUSH BC
		tokenizer.PackWindow(0xF5, 0, 0),       // PUSH AF
		tokenizer.PackWindow(0x20, 0x05, 0),    // JR NZ,d
		tokenizer.PackWindow(0x18, 0x05, 0),    // JR d
		tokenizer.PackWindow(0xC3, 0x00, 0x01), // JP nn
		tokenizer.PackWindow(0xC2, 0x00, 0x01), // JP NZ,nn
		tokenizer.PackWindow(0xE9, 0, 0),       // JP HL
		tokenizer.PackWindow(0xCD, 0x00, 0x01), // CALL nn
		tokenizer.PackWindow(0xC4, 0x00, 0x01), // CALL NZ,nn
		tokenizer.PackWindow(0xC9, 0, 0),       // RET
		tokenizer.PackWindow(0xC0, 0, 0),       // RET NZ
		tokenizer.PackWindow(0xD9, 0, 0),       // RETI
		tokenizer.PackWindow(0xFF, 0, 0),       // RST 38h
		tokenizer.PackWindow(0xF3, 0, 0),       // DI
		tokenizer.PackWindow(0xFB, 0, 0),       // EI
		tokenizer.PackWindow(0xCB, 0x37, 0),    // SWAP A
		tokenizer.PackWindow(0xCB, 0x36, 0),    // SWAP (HL)
		tokenizer.PackWindow(0xCB, 0x7C, 0),    // BIT 7,H
		tokenizer.PackWindow(0xCB, 0x46, 0),    // BIT 0,(HL)
		tokenizer.PackWindow(0xCB, 0xC6, 0),    // SET 0,(HL)
	}
	for _, w := range windows {
		assertCycles(t, snap, w)
	}
}

func TestConditionalBranchNotTakenIsShorter(t *testing.T) {
	snap, _ := newSnapshot()
	snap.Reg.FlagSet(reg.FlagZ, true) // NZ not met

	ins, _ := tokenizer.Tokenize(tokenizer.PackWindow(0x20, 0x05, 0)) // JR NZ,d
	q, err := Parse(snap, ins)
	if err != nil {
		t.Fatal(err)
	}
	if got := terminatorCount(q); got != 2 {
		t.Errorf("JR NZ not taken: %d terminators, want 2", got)
	}
}

// TestAddABWithCarry checks ADD A,B's flag output for a carry out of both
// the low nibble and the byte: A=0xFF, B=0x01 should yield A=0x00, Z=1,
// H=1, C=1, N=0.
func TestAddABWithCarry(t *testing.T) {
	snap, _ := newSnapshot()
	snap.Reg.Write8(reg.A, 0xFF)
	snap.Reg.Write8(reg.B, 0x01)

	ins, _ := tokenizer.Tokenize(tokenizer.PackWindow(0x80, 0, 0))
	q, err := Parse(snap, ins)
	if err != nil {
		t.Fatal(err)
	}

	var a uint8
	var z, h, c, n bool
	for {
		cmd, ok := q.Dequeue()
		if !ok {
			break
		}
		if cmd.Kind != cmdqueue.KindWrite {
			continue
		}
		switch cmd.Target.Kind {
		case cmdqueue.TargetRegister8:
			if cmd.Target.Reg8 == reg.A {
				a = uint8(cmd.Value)
			}
		case cmdqueue.TargetFlag:
			set := cmd.Value == 1
			switch cmd.Target.Flag {
			case reg.FlagZ:
				z = set
			case reg.FlagH:
				h = set
			case reg.FlagC:
				c = set
			case reg.FlagN:
				n = set
			}
		}
	}
	if a != 0x00 || !z || !h || !c || n {
		t.Errorf("ADD A,B: A=%#02x Z=%v H=%v C=%v N=%v", a, z, h, c, n)
	}
}

func TestLoadHLDecPostLoad(t *testing.T) {
	snap, m := newSnapshot()
	snap.Reg.Write8(reg.A, 0x42)
	snap.Reg.Write16(reg.HL, 0xC000)

	ins, _ := tokenizer.Tokenize(tokenizer.PackWindow(0x32, 0, 0)) // LD (HL-),A
	q, err := Parse(snap, ins)
	if err != nil {
		t.Fatal(err)
	}

	var hl uint16
	var wroteMem bool
	for {
		cmd, ok := q.Dequeue()
		if !ok {
			break
		}
		if cmd.Kind != cmdqueue.KindWrite {
			continue
		}
		switch cmd.Target.Kind {
		case cmdqueue.TargetMemoryAddress:
			if cmd.Target.Addr == 0xC000 && cmd.Value == 0x42 {
				wroteMem = true
			}
		case cmdqueue.TargetRegister16:
			if cmd.Target.Reg16 == reg.HL {
				hl = cmd.Value
			}
		}
	}
	if !wroteMem {
		t.Error("expected a write of 0x42 to 0xC000")
	}
	if hl != 0xBFFF {
		t.Errorf("HL after LD (HL-),A = %#04x, want 0xBFFF", hl)
	}
	_ = m
}

package tokenizer

import (
	"errors"
	"testing"

	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

func pad3(opcode uint8) Window { return PackWindow(opcode, 0, 0) }

func TestByteLengthInRange(t *testing.T) {
	for op := 0; op < 256; op++ {
		i, err := Tokenize(pad3(uint8(op)))
		if err != nil {
			var inv ErrInvalidOpcode
			if errors.As(err, &inv) {
				continue
			}
			t.Fatalf("opcode %#02x: unexpected error %v", op, err)
		}
		if i.ByteLength < 1 || i.ByteLength > 3 {
			t.Errorf("opcode %#02x: byte length %d out of range", op, i.ByteLength)
		}
		if i.DurationInClockCycles < 1 {
			t.Errorf("opcode %#02x: non-positive cycle count", op)
		}
	}
}

func TestIllegalOpcodes(t *testing.T) {
	for _, op := range []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		_, err := Tokenize(pad3(op))
		var inv ErrInvalidOpcode
		if !errors.As(err, &inv) {
			t.Errorf("opcode %#02x: expected ErrInvalidOpcode, got %v", op, err)
		}
	}
}

func TestCBForcesLengthTwo(t *testing.T) {
	i, err := Tokenize(PackWindow(0xCB, 0x37, 0x00))
	if err != nil {
		t.Fatal(err)
	}
	if i.ByteLength != 2 {
		t.Errorf("ByteLength = %d, want 2", i.ByteLength)
	}
}

func TestNOP(t *testing.T) {
	i, err := Tokenize(pad3(0x00))
	if err != nil {
		t.Fatal(err)
	}
	if i.Type != inst.CpuControl || i.ByteLength != 1 || i.DurationInClockCycles != 1 {
		t.Fatalf("NOP decode wrong: %+v", i)
	}
}

func TestADD_A_B(t *testing.T) {
	i, err := Tokenize(pad3(0x80))
	if err != nil {
		t.Fatal(err)
	}
	if i.Type != inst.Arithmetic {
		t.Fatalf("type = %v, want Arithmetic", i.Type)
	}
	p := i.Params.(inst.ArithmeticParams)
	if p.Op != inst.Add || p.SecondOrSrc.Reg8() != reg.B {
		t.Fatalf("params wrong: %+v", p)
	}
	if i.ByteLength != 1 || i.DurationInClockCycles != 1 {
		t.Fatalf("shape wrong: %+v", i)
	}
}

func TestLD_HLminus_A(t *testing.T) {
	i, err := Tokenize(pad3(0x32))
	if err != nil {
		t.Fatal(err)
	}
	p := i.Params.(inst.LoadParams)
	if p.PostLoad != inst.DecIndirectDst {
		t.Fatalf("postload = %v, want DecIndirectDst", p.PostLoad)
	}
	if i.ByteLength != 1 || i.DurationInClockCycles != 2 {
		t.Fatalf("shape wrong: %+v", i)
	}
}

func TestJRNZ(t *testing.T) {
	i, err := Tokenize(PackWindow(0x20, 0x05, 0x00))
	if err != nil {
		t.Fatal(err)
	}
	p := i.Params.(inst.JumpParams)
	if !p.IsConditional || p.Condition != inst.CondNZ || !p.IsRelative {
		t.Fatalf("params wrong: %+v", p)
	}
	if p.Param.I8() != 5 {
		t.Fatalf("offset = %d, want 5", p.Param.I8())
	}
	if i.ByteLength != 2 || i.DurationInClockCycles != 3 {
		t.Fatalf("shape wrong: %+v", i)
	}

	i2, _ := Tokenize(PackWindow(0x20, 0xFD, 0x00))
	p2 := i2.Params.(inst.JumpParams)
	if p2.Param.I8() != -3 {
		t.Fatalf("offset = %d, want -3", p2.Param.I8())
	}
}

func TestCALLandRET(t *testing.T) {
	i, err := Tokenize(PackWindow(0xCD, 0x34, 0x12))
	if err != nil {
		t.Fatal(err)
	}
	p := i.Params.(inst.JumpParams)
	if p.Type != inst.Call || p.Param.U16() != 0x1234 {
		t.Fatalf("params wrong: %+v", p)
	}
	if i.ByteLength != 3 || i.DurationInClockCycles != 6 {
		t.Fatalf("shape wrong: %+v", i)
	}

	ret, err := Tokenize(pad3(0xC9))
	if err != nil {
		t.Fatal(err)
	}
	rp := ret.Params.(inst.JumpParams)
	if rp.Type != inst.Ret || rp.IsConditional {
		t.Fatalf("RET params wrong: %+v", rp)
	}
	if ret.DurationInClockCycles != 4 {
		t.Fatalf("RET cycles = %d, want 4", ret.DurationInClockCycles)
	}
}

func TestSWAP_A(t *testing.T) {
	i, err := Tokenize(PackWindow(0xCB, 0x37, 0x00))
	if err != nil {
		t.Fatal(err)
	}
	p := i.Params.(inst.RotShiftParams)
	if p.Op != inst.Swap || p.Target.Reg8() != reg.A {
		t.Fatalf("params wrong: %+v", p)
	}
	if i.DurationInClockCycles != 2 {
		t.Fatalf("cycles = %d, want 2", i.DurationInClockCycles)
	}
}

func TestBIT7H(t *testing.T) {
	i, err := Tokenize(PackWindow(0xCB, 0x7C, 0x00))
	if err != nil {
		t.Fatal(err)
	}
	p := i.Params.(inst.BitwiseParams)
	if p.Op != inst.Bit || p.BitIndex != 7 || p.Target.Reg8() != reg.H {
		t.Fatalf("params wrong: %+v", p)
	}
	if i.DurationInClockCycles != 2 {
		t.Fatalf("cycles = %d, want 2", i.DurationInClockCycles)
	}
}

func TestIdempotent(t *testing.T) {
	w := PackWindow(0x3E, 0x42, 0x00)
	a, _ := Tokenize(w)
	b, _ := Tokenize(w)
	if a != b {
		t.Fatalf("tokenize not idempotent: %+v vs %+v", a, b)
	}
}

func TestIndirectHLCyclesForLoad(t *testing.T) {
	// LD A,(HL) = 0x7E
	i, err := Tokenize(pad3(0x7E))
	if err != nil {
		t.Fatal(err)
	}
	if i.DurationInClockCycles != 2 {
		t.Fatalf("cycles = %d, want 2", i.DurationInClockCycles)
	}
}

func TestIncDecHLIndirectThreeCycles(t *testing.T) {
	i, err := Tokenize(pad3(0x34)) // INC (HL)
	if err != nil {
		t.Fatal(err)
	}
	if i.DurationInClockCycles != 3 {
		t.Fatalf("cycles = %d, want 3", i.DurationInClockCycles)
	}
}

// Package tokenizer implements component E: it decodes a 1-3 byte
// instruction window into a structured inst.Instruction.
//
// Grounded on original_source/src/libbeemu/device/processor/tokenizer/*
// (family split by mask/expected opcode tests, byte-length lookup,
// CB-prefix routing) and spec.md §4.1. Rather than the original's nested
// per-family C files, this tokenizer uses the standard Z80/LR35902
// opcode decomposition opcode = xxyyyzzz (x = bits 7-6, y = bits 5-3,
// z = bits 2-0, p = y>>1, q = y&1) that the whole ISA is built from —
// data-driven dispatch over bitfields rather than 256 hand-written
// cases, per spec.md §9's "prefer tables to nested conditionals" note.
package tokenizer

import (
	"fmt"

	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

// ErrInvalidOpcode is returned when the opcode byte matches no known
// LR35902 family (the illegal/undefined opcodes: D3,DB,DD,E3,E4,EB,EC,
// ED,F4,FC,FD).
type ErrInvalidOpcode struct{ Opcode uint8 }

func (e ErrInvalidOpcode) Error() string {
	return fmt.Sprintf("tokenizer: invalid opcode %#02x", e.Opcode)
}

// Window packs the 1-3 raw bytes at PC..PC+2 the way the tokenizer
// expects: opcode at bits 23..16, the first operand byte at bits 15..8,
// the second operand byte at bits 7..0.
type Window = uint32

// PackWindow assembles a Window from up to three raw bytes. Missing
// trailing bytes should be passed as 0; the tokenizer never reads past
// the byte count it determines from the opcode.
func PackWindow(opcode, operandLo, operandHi uint8) Window {
	return uint32(opcode)<<16 | uint32(operandLo)<<8 | uint32(operandHi)
}

func windowBytes(w Window) (opcode, lo, hi uint8) {
	return uint8(w >> 16), uint8(w >> 8), uint8(w)
}

// Tokenize decodes window into an Instruction. It fails with
// ErrInvalidOpcode only if the opcode byte matches no recognised family.
func Tokenize(window Window) (inst.Instruction, error) {
	opcode, lo, hi := windowBytes(window)

	if opcode == 0xCB {
		return tokenizeCB(lo)
	}
	return tokenizeBase(opcode, lo, hi)
}

func illegal(opcode uint8) bool {
	switch opcode {
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return true
	}
	return false
}

func tokenizeBase(opcode, lo, hi uint8) (inst.Instruction, error) {
	if illegal(opcode) {
		return inst.Instruction{}, ErrInvalidOpcode{opcode}
	}

	x := opcode >> 6 & 0x3
	y := opcode >> 3 & 0x7
	z := opcode & 0x7
	p := y >> 1
	q := y & 1

	switch {
	case x == 1 && z == 6 && y == 6:
		return build(opcode, 1, 1, inst.CpuControl, inst.CpuControlParams{Op: inst.Halt}), nil
	case x == 1:
		return decodeLDr8r8(opcode, y, z), nil
	case x == 2:
		return decodeALUr8(opcode, aluOp(y), z), nil
	case x == 0:
		return decodeX0(opcode, lo, hi, y, z, p, q)
	case x == 3:
		return decodeX3(opcode, lo, hi, y, z, p, q)
	}
	return inst.Instruction{}, ErrInvalidOpcode{opcode}
}

func build(opcode uint8, byteLength, cycles int, typ inst.Type, params inst.Params) inst.Instruction {
	return inst.Instruction{
		OriginalMachineCode:   uint32(opcode),
		ByteLength:            byteLength,
		DurationInClockCycles: cycles,
		Type:                  typ,
		Params:                params,
	}
}

func build2(opcode, b1 uint8, cycles int, typ inst.Type, params inst.Params) inst.Instruction {
	return inst.Instruction{
		OriginalMachineCode:   uint32(opcode)<<8 | uint32(b1),
		ByteLength:            2,
		DurationInClockCycles: cycles,
		Type:                  typ,
		Params:                params,
	}
}

func build3(opcode, b1, b2 uint8, cycles int, typ inst.Type, params inst.Params) inst.Instruction {
	return inst.Instruction{
		OriginalMachineCode:   uint32(opcode)<<16 | uint32(b1)<<8 | uint32(b2),
		ByteLength:            3,
		DurationInClockCycles: cycles,
		Type:                  typ,
		Params:                params,
	}
}

func reg8Param(idx uint8) inst.Param {
	if isIndirectHL(idx) {
		return inst.Reg16P(reg.HL, true)
	}
	return inst.Reg8P(r8[idx], false)
}

// decodeLDr8r8 handles the x==1 block: LD r[y],r[z] (HALT already peeled
// off by the caller).
func decodeLDr8r8(opcode, y, z uint8) inst.Instruction {
	src := reg8Param(z)
	dst := reg8Param(y)
	cycles := 1
	if isIndirectHL(y) || isIndirectHL(z) {
		cycles = 2
	}
	return build(opcode, 1, cycles, inst.Load, inst.LoadParams{Src: src, Dst: dst})
}

var aluOps = [8]inst.ArithOp{inst.Add, inst.Adc, inst.Sub, inst.Sbc, inst.And, inst.Xor, inst.Or, inst.Cp}

// decodeALUr8 handles the x==2 block: ALU[y] A,r[z].
func decodeALUr8(opcode uint8, y aluOp, z uint8) inst.Instruction {
	src := reg8Param(z)
	cycles := 1
	if isIndirectHL(z) {
		cycles = 2
	}
	return build(opcode, 1, cycles, inst.Arithmetic, inst.ArithmeticParams{
		Op:           aluOps[y],
		FirstOrDst:   inst.Reg8P(reg.A, false),
		SecondOrSrc:  src,
	})
}

// condParam maps the 2-bit condition field (y&3): 0=NZ,1=Z,2=NC,3=C.
func condParam(y uint8) inst.Condition {
	switch y & 3 {
	case 0:
		return inst.CondNZ
	case 1:
		return inst.CondZ
	case 2:
		return inst.CondNC
	default:
		return inst.CondC
	}
}

func decodeX0(opcode, lo, hi, y, z, p, q uint8) (inst.Instruction, error) {
	switch z {
	case 0:
		switch {
		case y == 0:
			return build(opcode, 1, 1, inst.CpuControl, inst.CpuControlParams{Op: inst.CtrlNop}), nil
		case y == 1:
			// LD (a16),SP
			return build3(opcode, lo, hi, 5, inst.Load, inst.LoadParams{
				Src: inst.Reg16P(reg.SP, false),
				Dst: inst.U16P(join16(lo, hi), true),
			}), nil
		case y == 2:
			return build2(opcode, lo, 2, inst.CpuControl, inst.CpuControlParams{Op: inst.Stop}), nil
		case y == 3:
			return build2(opcode, lo, 3, inst.Jump, inst.JumpParams{
				Type: inst.JumpAbs, IsRelative: true, Param: inst.I8P(int8(lo)),
			}), nil
		default: // y = 4..7: JR cc,d — taken duration (3); parser gates not-taken (2).
			return build2(opcode, lo, 3, inst.Jump, inst.JumpParams{
				Type: inst.JumpAbs, Condition: condParam(y), IsConditional: true,
				IsRelative: true, Param: inst.I8P(int8(lo)),
			}), nil
		}
	case 1:
		if q == 0 {
			return build3(opcode, lo, hi, 3, inst.Load, inst.LoadParams{
				Src: inst.U16P(join16(lo, hi), false), Dst: inst.Reg16P(rp[p], false),
			}), nil
		}
		return build(opcode, 1, 2, inst.Arithmetic, inst.ArithmeticParams{
			Op: inst.Add, FirstOrDst: inst.Reg16P(reg.HL, false), SecondOrSrc: inst.Reg16P(rp[p], false),
		}), nil
	case 2:
		return decodeIndirectAccum(opcode, p, q), nil
	case 3:
		op := inst.Inc
		if q == 1 {
			op = inst.Dec
		}
		return build(opcode, 1, 2, inst.Arithmetic, inst.ArithmeticParams{
			Op: op, FirstOrDst: inst.Reg16P(rp[p], false),
		}), nil
	case 4:
		return decodeIncDecR8(opcode, y, inst.Inc), nil
	case 5:
		return decodeIncDecR8(opcode, y, inst.Dec), nil
	case 6:
		dst := reg8Param(y)
		cycles := 2
		if isIndirectHL(y) {
			cycles = 3
		}
		return build2(opcode, lo, cycles, inst.Load, inst.LoadParams{
			Src: inst.U8P(lo, false), Dst: dst,
		}), nil
	case 7:
		return decodeAccumOp(opcode, y), nil
	}
	return inst.Instruction{}, ErrInvalidOpcode{opcode}
}

func decodeIndirectAccum(opcode, p, q uint8) inst.Instruction {
	// p selects (BC)/(DE)/(HL+)/(HL-); q=0 is store (A -> mem), q=1 is load.
	var mem inst.Param
	post := inst.Nop
	switch p {
	case 0:
		mem = inst.Reg16P(reg.BC, true)
	case 1:
		mem = inst.Reg16P(reg.DE, true)
	case 2:
		mem = inst.Reg16P(reg.HL, true)
		if q == 0 {
			post = inst.IncIndirectDst
		} else {
			post = inst.IncIndirectSrc
		}
	case 3:
		mem = inst.Reg16P(reg.HL, true)
		if q == 0 {
			post = inst.DecIndirectDst
		} else {
			post = inst.DecIndirectSrc
		}
	}
	a := inst.Reg8P(reg.A, false)
	if q == 0 {
		return build(opcode, 1, 2, inst.Load, inst.LoadParams{Src: a, Dst: mem, PostLoad: post})
	}
	return build(opcode, 1, 2, inst.Load, inst.LoadParams{Src: mem, Dst: a, PostLoad: post})
}

func decodeIncDecR8(opcode, y uint8, op inst.ArithOp) inst.Instruction {
	target := reg8Param(y)
	cycles := 1
	if isIndirectHL(y) {
		cycles = 3
	}
	return build(opcode, 1, cycles, inst.Arithmetic, inst.ArithmeticParams{Op: op, FirstOrDst: target})
}

func decodeAccumOp(opcode, y uint8) inst.Instruction {
	switch y {
	case 0:
		return build(opcode, 1, 1, inst.RotShift, inst.RotShiftParams{
			Op: inst.Rotate, Direction: inst.Left, SetFlagsToZero: true, Target: inst.Reg8P(reg.A, false),
		})
	case 1:
		return build(opcode, 1, 1, inst.RotShift, inst.RotShiftParams{
			Op: inst.Rotate, Direction: inst.Right, SetFlagsToZero: true, Target: inst.Reg8P(reg.A, false),
		})
	case 2:
		return build(opcode, 1, 1, inst.RotShift, inst.RotShiftParams{
			Op: inst.Rotate, Direction: inst.Left, ThroughCarry: true, SetFlagsToZero: true, Target: inst.Reg8P(reg.A, false),
		})
	case 3:
		return build(opcode, 1, 1, inst.RotShift, inst.RotShiftParams{
			Op: inst.Rotate, Direction: inst.Right, ThroughCarry: true, SetFlagsToZero: true, Target: inst.Reg8P(reg.A, false),
		})
	case 4:
		return build(opcode, 1, 1, inst.Arithmetic, inst.ArithmeticParams{Op: inst.Daa, FirstOrDst: inst.Reg8P(reg.A, false)})
	case 5:
		return build(opcode, 1, 1, inst.Arithmetic, inst.ArithmeticParams{Op: inst.Cpl, FirstOrDst: inst.Reg8P(reg.A, false)})
	case 6:
		return build(opcode, 1, 1, inst.Arithmetic, inst.ArithmeticParams{Op: inst.Scf})
	default:
		return build(opcode, 1, 1, inst.Arithmetic, inst.ArithmeticParams{Op: inst.Ccf})
	}
}

func decodeX3(opcode, lo, hi, y, z, p, q uint8) (inst.Instruction, error) {
	switch z {
	case 0:
		switch {
		case y <= 3:
			// RET cc: tokenizer reports the taken duration (5); the
			// parser gates the not-taken path down to 2, per spec.md §4.1.
			return build(opcode, 1, 5, inst.Jump, inst.JumpParams{
				Type: inst.Ret, Condition: condParam(y), IsConditional: true,
			}), nil
		case y == 4:
			return build2(opcode, lo, 3, inst.Load, inst.LoadParams{
				Src: inst.Reg8P(reg.A, false), Dst: inst.U8P(lo, true),
			}), nil
		case y == 5:
			return build2(opcode, lo, 4, inst.Arithmetic, inst.ArithmeticParams{
				Op: inst.Add, FirstOrDst: inst.Reg16P(reg.SP, false), SecondOrSrc: inst.I8P(int8(lo)),
			}), nil
		case y == 6:
			return build2(opcode, lo, 3, inst.Load, inst.LoadParams{
				Src: inst.U8P(lo, true), Dst: inst.Reg8P(reg.A, false),
			}), nil
		default: // y == 7: LD HL,SP+d
			return build2(opcode, lo, 3, inst.Load, inst.LoadParams{
				Src: inst.Reg16P(reg.SP, false), Dst: inst.Reg16P(reg.HL, false),
				PostLoad: inst.SignedPayloadSum, Signed8: int8(lo),
			}), nil
		}
	case 1:
		if q == 0 {
			return build(opcode, 1, 3, inst.Load, inst.LoadParams{
				Src: inst.Reg16P(reg.SP, true), Dst: inst.Reg16P(rp2[p], false),
			}), nil
		}
		switch p {
		case 0:
			return build(opcode, 1, 4, inst.Jump, inst.JumpParams{Type: inst.Ret}), nil
		case 1:
			return build(opcode, 1, 4, inst.Jump, inst.JumpParams{Type: inst.Ret, EnableInterrupts: true}), nil
		case 2:
			return build(opcode, 1, 1, inst.Jump, inst.JumpParams{Type: inst.JumpAbs, Param: inst.Reg16P(reg.HL, false)}), nil
		default:
			return build(opcode, 1, 2, inst.Load, inst.LoadParams{
				Src: inst.Reg16P(reg.HL, false), Dst: inst.Reg16P(reg.SP, false),
			}), nil
		}
	case 2:
		switch {
		case y <= 3:
			// JP cc,nn — taken duration (4); parser gates not-taken (3).
			return build3(opcode, lo, hi, 4, inst.Jump, inst.JumpParams{
				Type: inst.JumpAbs, Condition: condParam(y), IsConditional: true, Param: inst.U16P(join16(lo, hi), false),
			}), nil
		case y == 4:
			return build(opcode, 1, 2, inst.Load, inst.LoadParams{
				Src: inst.Reg8P(reg.A, false), Dst: inst.Reg8P(reg.C, true),
			}), nil
		case y == 5:
			return build3(opcode, lo, hi, 4, inst.Load, inst.LoadParams{
				Src: inst.Reg8P(reg.A, false), Dst: inst.U16P(join16(lo, hi), true),
			}), nil
		case y == 6:
			return build(opcode, 1, 2, inst.Load, inst.LoadParams{
				Src: inst.Reg8P(reg.C, true), Dst: inst.Reg8P(reg.A, false),
			}), nil
		default:
			return build3(opcode, lo, hi, 4, inst.Load, inst.LoadParams{
				Src: inst.U16P(join16(lo, hi), true), Dst: inst.Reg8P(reg.A, false),
			}), nil
		}
	case 3:
		switch y {
		case 0:
			return build3(opcode, lo, hi, 4, inst.Jump, inst.JumpParams{Type: inst.JumpAbs, Param: inst.U16P(join16(lo, hi), false)}), nil
		case 6:
			return build(opcode, 1, 1, inst.CpuControl, inst.CpuControlParams{Op: inst.DisableInterrupts}), nil
		case 7:
			return build(opcode, 1, 1, inst.CpuControl, inst.CpuControlParams{Op: inst.EnableInterrupts}), nil
		default:
			return inst.Instruction{}, ErrInvalidOpcode{opcode}
		}
	case 4:
		if y <= 3 {
			return build3(opcode, lo, hi, 6, inst.Jump, inst.JumpParams{
				Type: inst.Call, Condition: condParam(y), IsConditional: true, Param: inst.U16P(join16(lo, hi), false),
			}), nil
		}
		return inst.Instruction{}, ErrInvalidOpcode{opcode}
	case 5:
		if q == 0 {
			return build(opcode, 1, 4, inst.Load, inst.LoadParams{
				Src: inst.Reg16P(rp2[p], false), Dst: inst.Reg16P(reg.SP, true),
			}), nil
		}
		if p == 0 {
			return build3(opcode, lo, hi, 6, inst.Jump, inst.JumpParams{Type: inst.Call, Param: inst.U16P(join16(lo, hi), false)}), nil
		}
		return inst.Instruction{}, ErrInvalidOpcode{opcode}
	case 6:
		return build2(opcode, lo, 2, inst.Arithmetic, inst.ArithmeticParams{
			Op: aluOps[y], FirstOrDst: inst.Reg8P(reg.A, false), SecondOrSrc: inst.U8P(lo, false),
		}), nil
	case 7:
		return build(opcode, 1, 4, inst.Jump, inst.JumpParams{
			Type: inst.Rst, Param: inst.U16P(uint16(y)*8, false),
		}), nil
	}
	return inst.Instruction{}, ErrInvalidOpcode{opcode}
}

func join16(lo, hi uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// Package disasm renders an inst.Instruction as assembly text, for the
// debug CLI's "disasm" and "trace" output. It has no bearing on the
// pipeline's cycle-accurate behaviour; it is purely a convenience the
// original C source never had.
//
// Grounded on the teacher's pkg/inst.Disassemble + pkg/inst/catalog.go
// mnemonic table — adapted from an opcode-keyed flat table (the
// teacher's Z80 catalog has one fixed operand shape per opcode) to a
// set of small per-field name tables, since this instruction model
// carries its operand shapes structurally rather than baking one
// mnemonic string per opcode.
package disasm

import (
	"fmt"
	"strings"

	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

var reg8Names = map[reg.Reg8]string{
	reg.A: "A", reg.B: "B", reg.C: "C", reg.D: "D",
	reg.E: "E", reg.H: "H", reg.L: "L", reg.F: "F",
}

var reg16Names = map[reg.Reg16]string{
	reg.BC: "BC", reg.DE: "DE", reg.HL: "HL", reg.AF: "AF",
	reg.SP: "SP", reg.PC: "PC",
}

var condNames = map[inst.Condition]string{
	inst.CondZ: "Z", inst.CondNZ: "NZ", inst.CondC: "C", inst.CondNC: "NC",
}

// operand renders a single Param as assembly syntax: a bare register or
// literal, or the same wrapped in parens when Pointer marks it indirect.
// (C) and 8-bit-immediate pointers are rendered without the 0xFF00 base,
// e.g. "(C)" or "(0x80)", since those only ever appear as the high-RAM
// forms where that base is implicit in the instruction, not the operand
// text.
func operand(p inst.Param) string {
	var s string
	switch p.Kind {
	case inst.Register8:
		s = reg8Names[p.Reg8()]
	case inst.Register16:
		s = reg16Names[p.Reg16()]
	case inst.U8:
		s = fmt.Sprintf("0x%02X", p.U8())
	case inst.U16:
		s = fmt.Sprintf("0x%04X", p.U16())
	case inst.I8:
		s = fmt.Sprintf("%d", p.I8())
	}
	if p.Pointer {
		return "(" + s + ")"
	}
	return s
}

// Disassemble renders ins as a mnemonic and operand list, e.g.
// "ADD A,B", "LD (HL-),A", "JR NZ,-3", "SWAP A".
func Disassemble(ins inst.Instruction) string {
	switch ins.Type {
	case inst.Load:
		return disasmLoad(ins.Params.(inst.LoadParams))
	case inst.Arithmetic:
		return disasmArithmetic(ins.Params.(inst.ArithmeticParams))
	case inst.RotShift:
		return disasmRotShift(ins.Params.(inst.RotShiftParams))
	case inst.Bitwise:
		return disasmBitwise(ins.Params.(inst.BitwiseParams))
	case inst.Jump:
		return disasmJump(ins.Params.(inst.JumpParams))
	case inst.CpuControl:
		return disasmCpuControl(ins.Params.(inst.CpuControlParams))
	default:
		return fmt.Sprintf("??? (%#02X)", ins.Opcode())
	}
}

func disasmLoad(p inst.LoadParams) string {
	mnemonic := "LD"
	if isHighRAM(p.Dst) || isHighRAM(p.Src) {
		mnemonic = "LDH"
	}
	if isStack(p.Dst) {
		return "PUSH " + stackReg(p.Src)
	}
	if isStack(p.Src) {
		return "POP " + stackReg(p.Dst)
	}
	dst, src := operand(p.Dst), operand(p.Src)
	switch p.PostLoad {
	case inst.IncIndirectDst, inst.IncIndirectSrc:
		dst, src = withHLSuffix(p.Dst, dst, "+"), withHLSuffix(p.Src, src, "+")
	case inst.DecIndirectDst, inst.DecIndirectSrc:
		dst, src = withHLSuffix(p.Dst, dst, "-"), withHLSuffix(p.Src, src, "-")
	case inst.SignedPayloadSum:
		return fmt.Sprintf("LD HL,SP%+d", p.Signed8)
	}
	return fmt.Sprintf("%s %s,%s", mnemonic, dst, src)
}

func isStack(p inst.Param) bool {
	return p.Kind == inst.Register16 && p.Pointer && p.Reg16() == reg.SP
}

func stackReg(p inst.Param) string { return reg16Names[p.Reg16()] }

// isHighRAM reports the LDH (n),A / LDH A,(n) shape: an 8-bit-immediate
// pointer. The (C)-indexed sibling keeps the plain LD mnemonic by
// real-hardware assembler convention even though it addresses the same
// 0xFF00-based high RAM.
func isHighRAM(p inst.Param) bool {
	return p.Pointer && p.Kind == inst.U8
}

func withHLSuffix(p inst.Param, rendered, suffix string) string {
	if p.Kind == inst.Register16 && p.Pointer && p.Reg16() == reg.HL {
		return "(HL" + suffix + ")"
	}
	return rendered
}

var arithMnemonics = map[inst.ArithOp]string{
	inst.Add: "ADD", inst.Adc: "ADC", inst.Sub: "SUB", inst.Sbc: "SBC",
	inst.And: "AND", inst.Or: "OR", inst.Xor: "XOR", inst.Cp: "CP",
	inst.Inc: "INC", inst.Dec: "DEC",
	inst.Daa: "DAA", inst.Cpl: "CPL", inst.Scf: "SCF", inst.Ccf: "CCF",
}

func disasmArithmetic(p inst.ArithmeticParams) string {
	m := arithMnemonics[p.Op]
	switch p.Op {
	case inst.Daa, inst.Cpl, inst.Scf, inst.Ccf:
		return m
	case inst.Inc, inst.Dec:
		return m + " " + operand(p.FirstOrDst)
	case inst.Add, inst.Adc, inst.Sub, inst.Sbc, inst.And, inst.Or, inst.Xor, inst.Cp:
		if p.FirstOrDst.Kind == inst.Register16 { // ADD HL,rr
			return fmt.Sprintf("%s %s,%s", m, operand(p.FirstOrDst), operand(p.SecondOrSrc))
		}
		if p.Op == inst.Add && p.SecondOrSrc.Kind == inst.I8 { // ADD SP,s8
			return fmt.Sprintf("ADD SP,%s", operand(p.SecondOrSrc))
		}
		return fmt.Sprintf("%s A,%s", m, operand(p.SecondOrSrc))
	}
	return m
}

var rotShiftMnemonics = map[inst.RotShiftOp]map[inst.Direction]string{
	inst.Rotate:          {inst.Left: "RLC", inst.Right: "RRC"},
	inst.ShiftArithmetic: {inst.Left: "SLA", inst.Right: "SRA"},
	inst.ShiftLogical:    {inst.Right: "SRL"},
}

func disasmRotShift(p inst.RotShiftParams) string {
	if p.Op == inst.Swap {
		return "SWAP " + operand(p.Target)
	}
	name := rotShiftMnemonics[p.Op][p.Direction]
	if p.Op == inst.Rotate && p.ThroughCarry {
		if p.Direction == inst.Left {
			name = "RL"
		} else {
			name = "RR"
		}
	}
	if p.SetFlagsToZero {
		// the 1-byte accumulator forms have no operand text, e.g. "RLCA"
		return name + "A"
	}
	return name + " " + operand(p.Target)
}

func disasmBitwise(p inst.BitwiseParams) string {
	var m string
	switch p.Op {
	case inst.Bit:
		m = "BIT"
	case inst.Set:
		m = "SET"
	case inst.Res:
		m = "RES"
	}
	return fmt.Sprintf("%s %d,%s", m, p.BitIndex, operand(p.Target))
}

func disasmJump(p inst.JumpParams) string {
	cond := ""
	if p.IsConditional {
		cond = condNames[p.Condition] + ","
	}
	switch p.Type {
	case inst.JumpAbs:
		if p.IsRelative {
			return "JR " + cond + operand(p.Param)
		}
		if p.Param.Kind == inst.Register16 {
			return "JP " + operand(p.Param)
		}
		return "JP " + cond + operand(p.Param)
	case inst.Call:
		return "CALL " + cond + operand(p.Param)
	case inst.Ret:
		if p.EnableInterrupts {
			return "RETI"
		}
		if p.IsConditional {
			return "RET " + strings.TrimSuffix(cond, ",")
		}
		return "RET"
	case inst.Rst:
		return "RST " + operand(p.Param)
	default:
		return "???"
	}
}

func disasmCpuControl(p inst.CpuControlParams) string {
	switch p.Op {
	case inst.CtrlNop:
		return "NOP"
	case inst.Halt:
		return "HALT"
	case inst.Stop:
		return "STOP"
	case inst.DisableInterrupts:
		return "DI"
	case inst.EnableInterrupts:
		return "EI"
	default:
		return "???"
	}
}

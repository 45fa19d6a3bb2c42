package parser

import (
	"github.com/oisee/gblr35902/pkg/cmdqueue"
	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

// readOperand8 resolves an 8-bit arithmetic operand: a plain register, the
// byte at (HL), or an 8-bit immediate baked into the instruction itself.
func readOperand8(snap Snapshot, p inst.Param) uint8 {
	switch p.Kind {
	case inst.Register16:
		if p.Pointer {
			return snap.Mem.Read(snap.Reg.Read16(reg.HL))
		}
		panic("parser: bad 8-bit arithmetic operand shape")
	case inst.Register8:
		return snap.Reg.Read8(p.Reg8())
	case inst.U8:
		return p.U8()
	default:
		panic("parser: bad 8-bit arithmetic operand shape")
	}
}

// writeOperand8 emits the command that stores v back to an 8-bit
// arithmetic destination (register or (HL), arithmetic's only indirect
// target).
func writeOperand8(q *cmdqueue.Queue, snap Snapshot, p inst.Param, v uint8) {
	if p.Kind == inst.Register16 && p.Pointer {
		q.Enqueue(cmdqueue.WriteMemory(snap.Reg.Read16(reg.HL), v))
		return
	}
	q.Enqueue(cmdqueue.WriteReg8(p.Reg8(), v))
}

// parseArithmetic dispatches to the ALU op family. Every path's first
// job is deciding whether it can merge its writes into the still-open
// final preamble cycle (fast, register-only forms) or must first close
// that cycle bare and spend one or more dedicated cycles of its own
// (any form that touches memory, or any 16-bit arithmetic).
func parseArithmetic(q *cmdqueue.Queue, snap Snapshot, p inst.ArithmeticParams) {
	switch p.Op {
	case inst.Add, inst.Adc, inst.Sub, inst.Sbc, inst.And, inst.Or, inst.Xor, inst.Cp:
		if p.Op == inst.Add && p.SecondOrSrc.Kind == inst.I8 { // ADD SP,s8
			parseAddSPs8(q, snap, p)
			return
		}
		if p.FirstOrDst.Kind == inst.Register16 { // ADD HL,rr
			parseAddHL(q, snap, p)
			return
		}
		parseALU8(q, snap, p)
	case inst.Inc, inst.Dec:
		parseIncDec(q, snap, p)
	case inst.Daa:
		parseDAA(q, snap)
	case inst.Cpl:
		parseCPL(q, snap)
	case inst.Scf:
		parseSCF(q)
	case inst.Ccf:
		parseCCF(q, snap)
	}
}

// parseALU8 covers ADD/ADC/SUB/SBC/AND/OR/XOR/CP A,operand. Register and
// immediate operands merge into the open cycle; (HL) needs one of its
// own, closing the open one bare first.
func parseALU8(q *cmdqueue.Queue, snap Snapshot, p inst.ArithmeticParams) {
	operand := p.SecondOrSrc
	usesMemory := operand.Kind == inst.Register16 && operand.Pointer
	if usesMemory {
		q.Enqueue(cmdqueue.CycleTerminator())
	}

	a := snap.Reg.Read8(reg.A)
	b := readOperand8(snap, operand)
	carryIn := uint8(0)

	var result uint8
	var z, n, h, c bool

	switch p.Op {
	case inst.Add, inst.Adc:
		if p.Op == inst.Adc {
			carryIn = snap.Reg.FlagGet(reg.FlagC)
		}
		sum := uint16(a) + uint16(b) + uint16(carryIn)
		result = uint8(sum)
		h = (a&0xF)+(b&0xF)+carryIn > 0xF
		c = sum > 0xFF
	case inst.Sub, inst.Sbc, inst.Cp:
		if p.Op == inst.Sbc {
			carryIn = snap.Reg.FlagGet(reg.FlagC)
		}
		diff := int(a) - int(b) - int(carryIn)
		result = uint8(diff)
		h = int(a&0xF)-int(b&0xF)-int(carryIn) < 0
		c = diff < 0
		n = true
	case inst.And:
		result = a & b
		h = true
	case inst.Or:
		result = a | b
	case inst.Xor:
		result = a ^ b
	}
	z = result == 0

	if p.Op != inst.Cp {
		q.Enqueue(cmdqueue.WriteReg8(reg.A, result))
	}
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagZ, z))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, n))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, h))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagC, c))
	q.Enqueue(cmdqueue.CycleTerminator())
}

// parseAddHL computes ADD HL,rr. Z is left unchanged; H/C come from the
// full 16-bit addition (bit 11 / bit 15 carry), never the low byte's.
// Always a dedicated cycle: 16-bit ALU work never merges into fetch.
func parseAddHL(q *cmdqueue.Queue, snap Snapshot, p inst.ArithmeticParams) {
	q.Enqueue(cmdqueue.CycleTerminator()) // closes the open fetch cycle bare

	hl := snap.Reg.Read16(reg.HL)
	rr := snap.Reg.Read16(p.SecondOrSrc.Reg16())
	sum := uint32(hl) + uint32(rr)

	q.Enqueue(cmdqueue.WriteReg16(reg.HL, uint16(sum)))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, (hl&0xFFF)+(rr&0xFFF) > 0xFFF))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagC, sum > 0xFFFF))
	q.Enqueue(cmdqueue.CycleTerminator())
}

// parseAddSPs8 computes ADD SP,s8. Flags use the 8-bit low-byte addition
// rule (spec.md §9 decision 5's sibling case), Z and N always cleared.
// Two dedicated cycles beyond the immediate-byte fetch, per real timing.
func parseAddSPs8(q *cmdqueue.Queue, snap Snapshot, p inst.ArithmeticParams) {
	q.Enqueue(cmdqueue.CycleTerminator()) // closes the open decode cycle bare

	sp := snap.Reg.Read16(reg.SP)
	offset := p.SecondOrSrc.I8()
	result, h, c := addSignedToSP(sp, offset)

	q.Enqueue(cmdqueue.CycleTerminator()) // internal: low-byte add + flags

	q.Enqueue(cmdqueue.WriteReg16(reg.SP, result))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagZ, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, h))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagC, c))
	q.Enqueue(cmdqueue.CycleTerminator()) // internal: carry propagation to high byte
}

// addSignedToSP adds a signed 8-bit offset to a 16-bit base the way
// SP-relative forms do: H/C come from the unsigned low-byte addition,
// regardless of the offset's sign.
func addSignedToSP(base uint16, offset int8) (result uint16, h, c bool) {
	lo := uint8(base)
	sum := uint16(lo) + uint16(uint8(offset))
	h = (lo&0xF)+(uint8(offset)&0xF) > 0xF
	c = sum > 0xFF
	return uint16(int32(base) + int32(offset)), h, c
}

// parseIncDec handles 8-bit INC/DEC r8 (register form merges, (HL) form
// needs its own read-modify-write cycles) and 16-bit INC/DEC rr (always
// a dedicated IDU cycle, no flags).
func parseIncDec(q *cmdqueue.Queue, snap Snapshot, p inst.ArithmeticParams) {
	target := p.FirstOrDst
	inc := p.Op == inst.Inc

	if target.Kind == inst.Register16 && !target.Pointer {
		q.Enqueue(cmdqueue.CycleTerminator()) // closes open cycle bare
		cur := snap.Reg.Read16(target.Reg16())
		delta := int32(1)
		if !inc {
			delta = -1
		}
		q.Enqueue(cmdqueue.WriteReg16(target.Reg16(), uint16(int32(cur)+delta)))
		q.Enqueue(cmdqueue.CycleTerminator())
		return
	}

	usesMemory := target.Pointer
	if usesMemory {
		q.Enqueue(cmdqueue.CycleTerminator()) // closes open cycle bare
		q.Enqueue(cmdqueue.CycleTerminator()) // read
	}

	v := readOperand8(snap, target)
	var result uint8
	var h bool
	if inc {
		result = v + 1
		h = v&0xF == 0xF
	} else {
		result = v - 1
		h = v&0xF == 0x0
	}
	writeOperand8(q, snap, target, result)
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagZ, result == 0))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, !inc))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, h))
	q.Enqueue(cmdqueue.CycleTerminator())
}

// parseDAA applies the decimal adjust per the flags left by the previous
// arithmetic op, folding in the N flag to pick add vs subtract correction.
// Always merges: DAA is a 1-cycle instruction.
func parseDAA(q *cmdqueue.Queue, snap Snapshot) {
	a := snap.Reg.Read8(reg.A)
	n := snap.Reg.FlagGet(reg.FlagN) == 1
	h := snap.Reg.FlagGet(reg.FlagH) == 1
	c := snap.Reg.FlagGet(reg.FlagC) == 1

	adjust := uint8(0)
	carry := c
	if n {
		if h {
			adjust += 0x06
		}
		if c {
			adjust += 0x60
		}
		a -= adjust
	} else {
		if h || a&0xF > 0x9 {
			adjust += 0x06
		}
		if c || a > 0x99 {
			adjust += 0x60
			carry = true
		}
		a += adjust
	}

	q.Enqueue(cmdqueue.WriteReg8(reg.A, a))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagZ, a == 0))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagC, carry))
	q.Enqueue(cmdqueue.CycleTerminator())
}

func parseCPL(q *cmdqueue.Queue, snap Snapshot) {
	a := snap.Reg.Read8(reg.A)
	q.Enqueue(cmdqueue.WriteReg8(reg.A, ^a))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, true))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, true))
	q.Enqueue(cmdqueue.CycleTerminator())
}

func parseSCF(q *cmdqueue.Queue) {
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagC, true))
	q.Enqueue(cmdqueue.CycleTerminator())
}

func parseCCF(q *cmdqueue.Queue, snap Snapshot) {
	c := snap.Reg.FlagGet(reg.FlagC) == 1
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagC, !c))
	q.Enqueue(cmdqueue.CycleTerminator())
}

package parser

import (
	"github.com/oisee/gblr35902/pkg/bits"
	"github.com/oisee/gblr35902/pkg/cmdqueue"
	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

// targetsMemory reports whether a RotShift/Bitwise Target is the (HL)
// indirection rather than a plain register.
func targetsMemory(p inst.Param) bool {
	return p.Kind == inst.Register16 && p.Pointer
}

func readTarget8(snap Snapshot, p inst.Param) uint8 {
	if targetsMemory(p) {
		return snap.Mem.Read(snap.Reg.Read16(reg.HL))
	}
	return snap.Reg.Read8(p.Reg8())
}

func writeTarget8(q *cmdqueue.Queue, snap Snapshot, p inst.Param, v uint8) {
	if targetsMemory(p) {
		q.Enqueue(cmdqueue.WriteMemory(snap.Reg.Read16(reg.HL), v))
		return
	}
	q.Enqueue(cmdqueue.WriteReg8(p.Reg8(), v))
}

// parseRotShift covers the CB-prefixed rotate/shift/swap family and the
// 1-byte accumulator forms RLCA/RRCA/RLA/RRA (SetFlagsToZero true).
// Register targets merge into the open fetch cycle; (HL) needs a read
// cycle and a write cycle of its own.
func parseRotShift(q *cmdqueue.Queue, snap Snapshot, p inst.RotShiftParams) {
	mem := targetsMemory(p.Target)
	if mem {
		q.Enqueue(cmdqueue.CycleTerminator()) // close fetch bare
		q.Enqueue(cmdqueue.CycleTerminator()) // read
	}

	v := readTarget8(snap, p.Target)
	carryIn := snap.Reg.FlagGet(reg.FlagC) == 1

	var result uint8
	var carryOut bool
	switch p.Op {
	case inst.Rotate:
		if p.Direction == inst.Left {
			if p.ThroughCarry {
				result, carryOut = bits.RotateLeftThroughCarry(v, carryIn)
			} else {
				result, carryOut = bits.RotateLeft8(v)
			}
		} else {
			if p.ThroughCarry {
				result, carryOut = bits.RotateRightThroughCarry(v, carryIn)
			} else {
				result, carryOut = bits.RotateRight8(v)
			}
		}
	case inst.ShiftArithmetic:
		if p.Direction == inst.Left {
			result, carryOut = bits.ShiftLeftArithmetic(v)
		} else {
			result, carryOut = bits.ShiftRightArithmetic(v)
		}
	case inst.ShiftLogical:
		result, carryOut = bits.ShiftRightLogical(v)
	case inst.Swap:
		result = bits.Swap(v)
		carryOut = false
	}

	z := result == 0 && !p.SetFlagsToZero

	writeTarget8(q, snap, p.Target, result)
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagZ, z))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagC, carryOut))
	q.Enqueue(cmdqueue.CycleTerminator())
}

// parseBitwise covers CB-prefixed BIT/SET/RES. BIT never writes its
// target back, only flags, so the (HL) form needs only one extra cycle
// (read-and-test), not the rotate family's read-then-write pair.
func parseBitwise(q *cmdqueue.Queue, snap Snapshot, p inst.BitwiseParams) {
	mem := targetsMemory(p.Target)

	if p.Op == inst.Bit {
		if mem {
			q.Enqueue(cmdqueue.CycleTerminator()) // close fetch bare
		}
		v := readTarget8(snap, p.Target)
		set := v&(1<<p.BitIndex) != 0
		q.Enqueue(cmdqueue.WriteFlag(reg.FlagZ, !set))
		q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, false))
		q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, true))
		q.Enqueue(cmdqueue.CycleTerminator())
		return
	}

	if mem {
		q.Enqueue(cmdqueue.CycleTerminator()) // close fetch bare
		q.Enqueue(cmdqueue.CycleTerminator()) // read
	}
	v := readTarget8(snap, p.Target)
	var result uint8
	if p.Op == inst.Set {
		result = v | 1<<p.BitIndex
	} else {
		result = v &^ (1 << p.BitIndex)
	}
	writeTarget8(q, snap, p.Target, result)
	q.Enqueue(cmdqueue.CycleTerminator())
}

package parser

import (
	"github.com/oisee/gblr35902/pkg/bits"
	"github.com/oisee/gblr35902/pkg/cmdqueue"
	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

func conditionMet(snap Snapshot, cond inst.Condition) bool {
	switch cond {
	case inst.CondZ:
		return snap.Reg.FlagGet(reg.FlagZ) == 1
	case inst.CondNZ:
		return snap.Reg.FlagGet(reg.FlagZ) == 0
	case inst.CondC:
		return snap.Reg.FlagGet(reg.FlagC) == 1
	case inst.CondNC:
		return snap.Reg.FlagGet(reg.FlagC) == 0
	default:
		return true
	}
}

// parseJump covers JP/JR (JumpAbs), CALL, RET/RETI, RST. localPC is the
// program counter's value after every operand byte has been fetched —
// the base a relative jump's offset is added to, and the return address
// CALL/RST push.
//
// Every form but JP HL starts by closing the still-open final preamble
// cycle bare: none of them can fold their work into a fetch cycle, since
// they all either touch the stack, touch program memory at a new
// address, or (for JR) do a 16-bit add. JP HL is the one exception —
// real hardware copies HL into PC combinationally, during the same
// cycle that fetched the opcode.
func parseJump(q *cmdqueue.Queue, snap Snapshot, localPC uint16, p inst.JumpParams) {
	if p.Type == inst.JumpAbs && p.Param.Kind == inst.Register16 {
		q.Enqueue(cmdqueue.WriteInternal(cmdqueue.ProgramCounter, snap.Reg.Read16(reg.HL)))
		q.Enqueue(cmdqueue.CycleTerminator())
		return
	}

	q.Enqueue(cmdqueue.CycleTerminator())

	switch p.Type {
	case inst.JumpAbs:
		parseJumpAbs(q, snap, localPC, p)
	case inst.Call:
		parseCall(q, snap, localPC, p)
	case inst.Ret:
		parseRet(q, snap, p)
	case inst.Rst:
		parseRst(q, snap, localPC, p)
	}
}

func parseJumpAbs(q *cmdqueue.Queue, snap Snapshot, localPC uint16, p inst.JumpParams) {
	if p.IsConditional && !conditionMet(snap, p.Condition) {
		return
	}

	var target uint16
	if p.IsRelative {
		target = bits.AddSignedToU16(localPC, p.Param.I8())
	} else {
		target = p.Param.U16()
	}
	q.Enqueue(cmdqueue.WriteInternal(cmdqueue.ProgramCounter, target))
	q.Enqueue(cmdqueue.CycleTerminator())
}

// pushWord emits the three-cycle, SP-decrementing stack push CALL and RST
// share: one internal delay cycle, then a high-byte write and a
// low-byte write, each its own cycle. The final low-byte cycle also
// carries the jump to target, landing for free alongside the last push.
func pushWord(q *cmdqueue.Queue, origSP uint16, value, target uint16) {
	hi, lo := bits.Split(value)
	q.Enqueue(cmdqueue.CycleTerminator()) // internal: SP about to decrement

	sp1 := origSP - 1
	q.Enqueue(cmdqueue.WriteMemory(sp1, hi))
	q.Enqueue(cmdqueue.WriteReg16(reg.SP, sp1))
	q.Enqueue(cmdqueue.CycleTerminator())

	sp2 := origSP - 2
	q.Enqueue(cmdqueue.WriteMemory(sp2, lo))
	q.Enqueue(cmdqueue.WriteReg16(reg.SP, sp2))
	q.Enqueue(cmdqueue.WriteInternal(cmdqueue.ProgramCounter, target))
	q.Enqueue(cmdqueue.CycleTerminator())
}

func parseCall(q *cmdqueue.Queue, snap Snapshot, localPC uint16, p inst.JumpParams) {
	if p.IsConditional && !conditionMet(snap, p.Condition) {
		return
	}
	origSP := snap.Reg.Read16(reg.SP)
	pushWord(q, origSP, localPC, p.Param.U16())
}

func parseRst(q *cmdqueue.Queue, snap Snapshot, localPC uint16, p inst.JumpParams) {
	origSP := snap.Reg.Read16(reg.SP)
	pushWord(q, origSP, localPC, p.Param.U16())
}

func parseRet(q *cmdqueue.Queue, snap Snapshot, p inst.JumpParams) {
	if p.IsConditional {
		q.Enqueue(cmdqueue.CycleTerminator()) // condition check: RET cc always pays this
		if !conditionMet(snap, p.Condition) {
			return
		}
	}

	origSP := snap.Reg.Read16(reg.SP)
	lo := snap.Mem.Read(origSP)
	hi := snap.Mem.Read(origSP + 1)
	target := bits.Join(hi, lo)

	q.Enqueue(cmdqueue.WriteReg16(reg.SP, origSP+1))
	q.Enqueue(cmdqueue.CycleTerminator())

	if p.EnableInterrupts {
		q.Enqueue(cmdqueue.WriteIME(true))
	}
	q.Enqueue(cmdqueue.WriteReg16(reg.SP, origSP+2))
	q.Enqueue(cmdqueue.CycleTerminator())

	q.Enqueue(cmdqueue.WriteInternal(cmdqueue.ProgramCounter, target))
	q.Enqueue(cmdqueue.CycleTerminator())
}

package parser

import (
	"github.com/oisee/gblr35902/pkg/bits"
	"github.com/oisee/gblr35902/pkg/cmdqueue"
	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

func isStackTarget(p inst.Param) bool {
	return p.Kind == inst.Register16 && p.Pointer && p.Reg16() == reg.SP
}

// resolveAddr computes the memory address a pointer-shaped Param denotes.
// (C) and 8-bit-immediate pointers are the high-RAM forms (LDH): they
// implicitly add the 0xFF00 base.
func resolveAddr(snap Snapshot, p inst.Param) uint16 {
	switch p.Kind {
	case inst.Register16:
		return snap.Reg.Read16(p.Reg16())
	case inst.Register8:
		return 0xFF00 | uint16(snap.Reg.Read8(p.Reg8()))
	case inst.U8:
		return 0xFF00 | uint16(p.U8())
	default: // U16
		return p.U16()
	}
}

func readLoadValue8(snap Snapshot, src inst.Param) uint8 {
	switch src.Kind {
	case inst.Register8:
		return snap.Reg.Read8(src.Reg8())
	default: // U8
		return src.U8()
	}
}

// applyPostLoad emits the HL+1/HL-1 register update for the (HL+)/(HL-)
// accumulator load forms. It is a no-op for every other PostLoad value,
// so callers can invoke it unconditionally.
func applyPostLoad(q *cmdqueue.Queue, snap Snapshot, p inst.LoadParams) {
	switch p.PostLoad {
	case inst.IncIndirectDst, inst.IncIndirectSrc:
		q.Enqueue(cmdqueue.WriteReg16(reg.HL, snap.Reg.Read16(reg.HL)+1))
	case inst.DecIndirectDst, inst.DecIndirectSrc:
		q.Enqueue(cmdqueue.WriteReg16(reg.HL, snap.Reg.Read16(reg.HL)-1))
	}
}

// parseLoad covers every LD/LDH/PUSH/POP shape the tokenizer produces.
// PUSH, POP, LD SP,HL and LD HL,SP+s8 are real-hardware exceptions that
// always spend a dedicated cycle even though none but the first two
// touch memory; everything else merges into the open fetch cycle unless
// a memory access is actually involved.
func parseLoad(q *cmdqueue.Queue, snap Snapshot, p inst.LoadParams) {
	switch {
	case p.PostLoad == inst.SignedPayloadSum:
		parseLoadHLSPOffset(q, snap, p)
	case isStackTarget(p.Dst):
		parsePush(q, snap, p)
	case isStackTarget(p.Src):
		parsePop(q, snap, p)
	case p.Src.Kind == inst.Register16 && !p.Src.Pointer && p.Dst.Kind == inst.Register16 && !p.Dst.Pointer:
		parseLoadSPHL(q, snap, p)
	default:
		parseLoadGeneral(q, snap, p)
	}
}

func parseLoadGeneral(q *cmdqueue.Queue, snap Snapshot, p inst.LoadParams) {
	mem := p.Src.Pointer || p.Dst.Pointer
	if !mem {
		switch p.Dst.Kind {
		case inst.Register8:
			q.Enqueue(cmdqueue.WriteReg8(p.Dst.Reg8(), readLoadValue8(snap, p.Src)))
		case inst.Register16: // LD rr,nn
			q.Enqueue(cmdqueue.WriteReg16(p.Dst.Reg16(), p.Src.U16()))
		}
		q.Enqueue(cmdqueue.CycleTerminator())
		return
	}

	q.Enqueue(cmdqueue.CycleTerminator()) // close the open fetch cycle bare

	if p.Dst.Pointer && p.Src.Kind == inst.Register16 { // LD (a16),SP
		addr := resolveAddr(snap, p.Dst)
		v := snap.Reg.Read16(p.Src.Reg16())
		hi, lo := bits.Split(v)
		q.Enqueue(cmdqueue.WriteMemory(addr, lo))
		q.Enqueue(cmdqueue.CycleTerminator())
		q.Enqueue(cmdqueue.WriteMemory(addr+1, hi))
		q.Enqueue(cmdqueue.CycleTerminator())
		return
	}

	if p.Dst.Pointer {
		addr := resolveAddr(snap, p.Dst)
		v := readLoadValue8(snap, p.Src)
		q.Enqueue(cmdqueue.WriteMemory(addr, v))
		applyPostLoad(q, snap, p)
		q.Enqueue(cmdqueue.CycleTerminator())
		return
	}

	addr := resolveAddr(snap, p.Src)
	v := snap.Mem.Read(addr)
	q.Enqueue(cmdqueue.WriteReg8(p.Dst.Reg8(), v))
	applyPostLoad(q, snap, p)
	q.Enqueue(cmdqueue.CycleTerminator())
}

func parsePush(q *cmdqueue.Queue, snap Snapshot, p inst.LoadParams) {
	origSP := snap.Reg.Read16(reg.SP)
	hi, lo := bits.Split(snap.Reg.Read16(p.Src.Reg16()))

	q.Enqueue(cmdqueue.CycleTerminator()) // close fetch bare
	q.Enqueue(cmdqueue.CycleTerminator()) // internal: SP about to decrement

	sp1 := origSP - 1
	q.Enqueue(cmdqueue.WriteMemory(sp1, hi))
	q.Enqueue(cmdqueue.WriteReg16(reg.SP, sp1))
	q.Enqueue(cmdqueue.CycleTerminator())

	sp2 := origSP - 2
	q.Enqueue(cmdqueue.WriteMemory(sp2, lo))
	q.Enqueue(cmdqueue.WriteReg16(reg.SP, sp2))
	q.Enqueue(cmdqueue.CycleTerminator())
}

func parsePop(q *cmdqueue.Queue, snap Snapshot, p inst.LoadParams) {
	origSP := snap.Reg.Read16(reg.SP)
	lo := snap.Mem.Read(origSP)
	hi := snap.Mem.Read(origSP + 1)

	q.Enqueue(cmdqueue.CycleTerminator()) // close fetch bare
	q.Enqueue(cmdqueue.WriteReg16(reg.SP, origSP+1))
	q.Enqueue(cmdqueue.CycleTerminator())

	q.Enqueue(cmdqueue.WriteReg16(reg.SP, origSP+2))
	q.Enqueue(cmdqueue.WriteReg16(p.Dst.Reg16(), bits.Join(hi, lo)))
	q.Enqueue(cmdqueue.CycleTerminator())
}

func parseLoadSPHL(q *cmdqueue.Queue, snap Snapshot, p inst.LoadParams) {
	q.Enqueue(cmdqueue.CycleTerminator()) // close fetch bare
	q.Enqueue(cmdqueue.WriteReg16(reg.SP, snap.Reg.Read16(reg.HL)))
	q.Enqueue(cmdqueue.CycleTerminator())
}

// parseLoadHLSPOffset computes LD HL,SP+s8. Flags mirror ADD SP,s8: Z
// and N always cleared, H/C from the unsigned low-byte addition.
func parseLoadHLSPOffset(q *cmdqueue.Queue, snap Snapshot, p inst.LoadParams) {
	sp := snap.Reg.Read16(reg.SP)
	result, h, c := addSignedToSP(sp, p.Signed8)

	q.Enqueue(cmdqueue.CycleTerminator()) // close the open decode-byte cycle bare
	q.Enqueue(cmdqueue.WriteReg16(reg.HL, result))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagZ, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagN, false))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagH, h))
	q.Enqueue(cmdqueue.WriteFlag(reg.FlagC, c))
	q.Enqueue(cmdqueue.CycleTerminator())
}

// Package parser implements component G: given a read-only processor
// snapshot and a tokenized instruction, it produces an ordered
// cmdqueue.Queue whose commands, applied in order, reproduce the real
// CPU's per-M-cycle observable effects.
//
// Grounded on
// original_source/src/libbeemu/device/processor/interpreter/parser/*.c
// (one parse function per instruction family) and spec.md §4.2. The
// parser never mutates its snapshot; mutation happens only when the
// invoker later drains the returned queue (spec.md §5).
package parser

import (
	"fmt"

	"github.com/oisee/gblr35902/pkg/cmdqueue"
	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

// ErrParamShape is returned when an instruction's Params value doesn't
// match its declared Type — a tokenizer bug, per spec.md §7.
type ErrParamShape struct{ Type inst.Type }

func (e ErrParamShape) Error() string {
	return fmt.Sprintf("parser: param shape mismatch for type %v", e.Type)
}

// MemReader is the read-only view of memory the parser is allowed: it
// can compute values to embed in Write commands, but the Memory
// interface's Write methods are deliberately absent from this type so a
// parser bug that tries to mutate memory directly fails to compile.
type MemReader interface {
	Read(addr uint16) uint8
	Read16(addr uint16) uint16
}

// Snapshot is the read-only processor state the parser consumes. Reg is
// a value copy of the register file, so reads through Snapshot can never
// observe or cause a mutation visible to the caller.
type Snapshot struct {
	Reg reg.File
	Mem MemReader
}

// Parse expands ins into the command queue that reproduces its effect
// when applied to a processor currently in the state described by snap.
func Parse(snap Snapshot, ins inst.Instruction) (*cmdqueue.Queue, error) {
	q := cmdqueue.New(20)
	pc := snap.Reg.Read16(reg.PC)
	raw := ins.Bytes()

	// Collect one IR byte per preamble fetch step: the opcode itself,
	// plus the CB sub-opcode or each trailing operand byte. Every step
	// but the last is a complete, self-contained M-cycle (PC increment,
	// IR write, terminator). The last step's PC/IR writes are enqueued
	// but left un-terminated: the family parser below decides whether
	// to merge its own work into that cycle or close it bare and spend
	// dedicated cycles of its own, mirroring which GB opcodes are
	// "free" (register-only work) and which need extra bus cycles.
	steps := append([]uint8{ins.Opcode()}, raw[1:]...)

	localPC := pc
	for i, b := range steps {
		localPC++
		q.Enqueue(cmdqueue.WriteInternal(cmdqueue.ProgramCounter, localPC))
		q.Enqueue(cmdqueue.WriteInternal(cmdqueue.InstructionRegister, uint16(b)))
		if i < len(steps)-1 {
			q.Enqueue(cmdqueue.CycleTerminator())
		}
	}

	switch ins.Type {
	case inst.Load:
		p, ok := ins.Params.(inst.LoadParams)
		if !ok {
			return nil, ErrParamShape{ins.Type}
		}
		parseLoad(q, snap, p)
	case inst.Arithmetic:
		p, ok := ins.Params.(inst.ArithmeticParams)
		if !ok {
			return nil, ErrParamShape{ins.Type}
		}
		parseArithmetic(q, snap, p)
	case inst.RotShift:
		p, ok := ins.Params.(inst.RotShiftParams)
		if !ok {
			return nil, ErrParamShape{ins.Type}
		}
		parseRotShift(q, snap, p)
	case inst.Bitwise:
		p, ok := ins.Params.(inst.BitwiseParams)
		if !ok {
			return nil, ErrParamShape{ins.Type}
		}
		parseBitwise(q, snap, p)
	case inst.Jump:
		p, ok := ins.Params.(inst.JumpParams)
		if !ok {
			return nil, ErrParamShape{ins.Type}
		}
		parseJump(q, snap, localPC, p)
	case inst.CpuControl:
		p, ok := ins.Params.(inst.CpuControlParams)
		if !ok {
			return nil, ErrParamShape{ins.Type}
		}
		parseCpuControl(q, p)
	default:
		return nil, ErrParamShape{ins.Type}
	}

	return q, nil
}

// Package cmdqueue implements the machine command model and the FIFO
// queue the parser emits into and the invoker drains (component F).
//
// Grounded on the Beemu original's
// src/beemu/device/processor/interpreter/command.c: enqueue copies its
// value in, dequeue transfers ownership of the popped command to the
// caller. Reimplemented as a Go slice with a read index rather than a
// malloc'd linked list; Go's GC plays the role the original's explicit free() did.
package cmdqueue

import (
	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/reg"
)

// TargetKind identifies what a Write command's target is.
type TargetKind int

const (
	TargetRegister8 TargetKind = iota
	TargetRegister16
	TargetMemoryAddress
	TargetFlag
	TargetIME
	TargetInternal
)

// InternalBus identifies one of the CPU's internal, non-architectural
// buses, written during the M1/M2 preamble and multi-byte fetch.
type InternalBus int

const (
	AddressBus InternalBus = iota
	DataBus
	ProgramCounter
	InstructionRegister
)

// Target describes where a Write command's value goes.
type Target struct {
	Kind     TargetKind
	Reg8     reg.Reg8
	Reg16    reg.Reg16
	Addr     uint16
	Flag     reg.Flag
	Internal InternalBus
}

func Register8Target(r reg.Reg8) Target   { return Target{Kind: TargetRegister8, Reg8: r} }
func Register16Target(r reg.Reg16) Target { return Target{Kind: TargetRegister16, Reg16: r} }
func MemoryTarget(addr uint16) Target     { return Target{Kind: TargetMemoryAddress, Addr: addr} }
func FlagTarget(f reg.Flag) Target        { return Target{Kind: TargetFlag, Flag: f} }
func IMETarget() Target                   { return Target{Kind: TargetIME} }
func InternalTarget(b InternalBus) Target { return Target{Kind: TargetInternal, Internal: b} }

// Kind distinguishes the two Command variants.
type Kind int

const (
	KindWrite Kind = iota
	KindHalt
)

// Command is the tagged union of primitive write/halt operations the
// parser emits and the invoker applies.
type Command struct {
	Kind Kind

	// Write fields.
	Target Target
	Value  uint16 // width implied by Target; truthy bool for IME stored as 0/1

	// Halt fields.
	IsCycleTerminator bool
	HaltOp            inst.CpuControlOp
}

// WriteReg8 builds a Write command targeting an 8-bit register.
func WriteReg8(r reg.Reg8, v uint8) Command {
	return Command{Kind: KindWrite, Target: Register8Target(r), Value: uint16(v)}
}

// WriteReg16 builds a Write command targeting a 16-bit register pair.
func WriteReg16(r reg.Reg16, v uint16) Command {
	return Command{Kind: KindWrite, Target: Register16Target(r), Value: v}
}

// WriteMemory builds a Write command targeting a memory byte.
func WriteMemory(addr uint16, v uint8) Command {
	return Command{Kind: KindWrite, Target: MemoryTarget(addr), Value: uint16(v)}
}

// WriteFlag builds a Write command targeting one flag bit; v is 0 or 1.
func WriteFlag(f reg.Flag, set bool) Command {
	v := uint16(0)
	if set {
		v = 1
	}
	return Command{Kind: KindWrite, Target: FlagTarget(f), Value: v}
}

// WriteIME builds a Write command setting the interrupt master enable.
func WriteIME(enable bool) Command {
	v := uint16(0)
	if enable {
		v = 1
	}
	return Command{Kind: KindWrite, Target: IMETarget(), Value: v}
}

// WriteInternal builds a Write command targeting an internal bus.
func WriteInternal(b InternalBus, v uint16) Command {
	return Command{Kind: KindWrite, Target: InternalTarget(b), Value: v}
}

// CycleTerminator builds a Halt command that marks an M-cycle boundary.
func CycleTerminator() Command {
	return Command{Kind: KindHalt, IsCycleTerminator: true}
}

// ModeHalt builds a non-terminator Halt command driving the processor
// mode, e.g. HALT or STOP.
func ModeHalt(op inst.CpuControlOp) Command {
	return Command{Kind: KindHalt, IsCycleTerminator: false, HaltOp: op}
}

// Queue is a FIFO of Commands. The zero value is ready to use.
type Queue struct {
	items []Command
	head  int
}

// New returns an empty queue with the given initial capacity hint.
func New(capHint int) *Queue {
	return &Queue{items: make([]Command, 0, capHint)}
}

// Enqueue appends a copy of cmd to the back of the queue.
func (q *Queue) Enqueue(cmd Command) {
	q.items = append(q.items, cmd)
}

// Dequeue removes and returns the command at the front of the queue,
// transferring ownership to the caller. ok is false if the queue was
// empty.
func (q *Queue) Dequeue() (cmd Command, ok bool) {
	if q.head >= len(q.items) {
		return Command{}, false
	}
	cmd = q.items[q.head]
	q.items[q.head] = Command{}
	q.head++
	return cmd, true
}

// Peek returns the command at the front of the queue without removing
// it. ok is false if the queue is empty.
func (q *Queue) Peek() (cmd Command, ok bool) {
	if q.head >= len(q.items) {
		return Command{}, false
	}
	return q.items[q.head], true
}

// IsEmpty reports whether the queue has no more commands to dequeue.
func (q *Queue) IsEmpty() bool {
	return q.head >= len(q.items)
}

// Len returns the number of commands remaining in the queue.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// Free discards the queue's remaining contents. Provided for symmetry
// with the original's explicit queue lifecycle; Go's GC does the actual
// reclamation once the Queue value is no longer referenced.
func (q *Queue) Free() {
	q.items = nil
	q.head = 0
}

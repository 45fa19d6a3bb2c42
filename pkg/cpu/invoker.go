package cpu

import (
	"github.com/oisee/gblr35902/pkg/cmdqueue"
	"github.com/oisee/gblr35902/pkg/inst"
	"github.com/oisee/gblr35902/pkg/mem"
	"github.com/oisee/gblr35902/pkg/reg"
)

// Invoker drains a command queue against live processor state. It is the
// mechanical component spec.md §4.3 describes: it makes no decisions,
// just applies writes and stops at cycle boundaries. Grounded on
// original_source/src/libbeemu/device/processor/executor.c's
// command-application loop.
type Invoker struct {
	Reg  *reg.File
	Mem  *mem.Memory
	IME  *bool
	Mode *Mode
}

// Tick dequeues and applies commands until it hits a cycle-terminator
// (returns terminated=true) or the queue runs dry before one is found
// (returns ErrQueueUnderflow). Matches the interface contract in
// spec.md §4.3: "repeatedly dequeue a command ... return control" at
// each M-cycle boundary.
func (inv *Invoker) Tick(q *cmdqueue.Queue) (terminated bool, err error) {
	for {
		cmd, ok := q.Dequeue()
		if !ok {
			return false, ErrQueueUnderflow
		}
		switch cmd.Kind {
		case cmdqueue.KindWrite:
			inv.apply(cmd)
		case cmdqueue.KindHalt:
			if cmd.IsCycleTerminator {
				return true, nil
			}
			*inv.Mode = applyHaltOp(*inv.Mode, cmd.HaltOp)
		}
	}
}

// Run drains q to completion, counting cycle-terminators. This is what
// Processor.Step uses: a single instruction's whole queue, applied in
// one synchronous call (spec.md §5: "one step() runs to completion").
func (inv *Invoker) Run(q *cmdqueue.Queue) (cyclesElapsed int, err error) {
	for !q.IsEmpty() {
		terminated, err := inv.Tick(q)
		if err != nil {
			return cyclesElapsed, err
		}
		if terminated {
			cyclesElapsed++
		}
	}
	return cyclesElapsed, nil
}

func (inv *Invoker) apply(cmd cmdqueue.Command) {
	switch cmd.Target.Kind {
	case cmdqueue.TargetRegister8:
		inv.Reg.Write8(cmd.Target.Reg8, uint8(cmd.Value))
	case cmdqueue.TargetRegister16:
		inv.Reg.Write16(cmd.Target.Reg16, cmd.Value)
	case cmdqueue.TargetMemoryAddress:
		inv.Mem.Write(cmd.Target.Addr, uint8(cmd.Value))
	case cmdqueue.TargetFlag:
		inv.Reg.FlagSet(cmd.Target.Flag, cmd.Value == 1)
	case cmdqueue.TargetIME:
		*inv.IME = cmd.Value == 1
	case cmdqueue.TargetInternal:
		switch cmd.Target.Internal {
		case cmdqueue.ProgramCounter:
			inv.Reg.Write16(reg.PC, cmd.Value)
		case cmdqueue.InstructionRegister:
			// Non-architectural bus: no modeled register observes it.
		}
	}
}

// applyHaltOp maps a CPU-control halt command onto the next mode. DI and
// NOP never reach here: DI writes IME directly (immediate, spec.md §9
// decision 3) and NOP emits only its cycle-terminator halt, which Tick
// handles before this point.
func applyHaltOp(mode Mode, op inst.CpuControlOp) Mode {
	switch op {
	case inst.Halt:
		return Halt
	case inst.Stop:
		return Stop
	case inst.EnableInterrupts:
		return PendingIMEEnable
	default:
		return mode
	}
}

package parser

import (
	"github.com/oisee/gblr35902/pkg/cmdqueue"
	"github.com/oisee/gblr35902/pkg/inst"
)

// parseCpuControl covers NOP, HALT, STOP, DI, EI. All merge into the
// open fetch cycle: none of these touch memory or do register-width
// work beyond a mode or IME flag change.
//
// DI takes effect immediately (spec.md §9 decision 3): it writes IME
// directly. EI's effect is deferred one instruction; rather than
// writing IME here, it emits a ModeHalt(EnableInterrupts) marker that
// the processor shell promotes to IME<-1 only after the *next*
// instruction completes.
func parseCpuControl(q *cmdqueue.Queue, p inst.CpuControlParams) {
	switch p.Op {
	case inst.CtrlNop:
		// nothing to do beyond closing the fetch cycle
	case inst.Halt:
		q.Enqueue(cmdqueue.ModeHalt(inst.Halt))
	case inst.Stop:
		q.Enqueue(cmdqueue.ModeHalt(inst.Stop))
	case inst.DisableInterrupts:
		q.Enqueue(cmdqueue.WriteIME(false))
	case inst.EnableInterrupts:
		q.Enqueue(cmdqueue.ModeHalt(inst.EnableInterrupts))
	}
	q.Enqueue(cmdqueue.CycleTerminator())
}

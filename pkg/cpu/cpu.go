// Package cpu implements the processor shell (component H): it owns the
// register file and memory, tracks CPU mode, and drives the
// tokenizer/parser/invoker pipeline one instruction at a time.
//
// Grounded on the Beemu original's
// src/beemu/device/processor/processor.c (BeemuProcessor: owning struct,
// ROM-location PC init, processor_state enum) and the teacher's
// pkg/cpu/state.go (flat, cheaply-copyable register state).
package cpu

import (
	"fmt"

	"github.com/oisee/gblr35902/pkg/mem"
	"github.com/oisee/gblr35902/pkg/parser"
	"github.com/oisee/gblr35902/pkg/reg"
	"github.com/oisee/gblr35902/pkg/tokenizer"
)

// ErrQueueUnderflow is returned when the invoker is asked to advance a
// queue that has already been fully drained; it indicates a parser bug,
// since a well-formed queue always ends with a cycle-terminator.
var ErrQueueUnderflow = fmt.Errorf("cpu: queue underflow")

// EntryPoint is the PC value a freshly reset processor starts at: the
// first byte of cartridge ROM past the boot handshake, which is out of
// this core's scope (spec §1 Non-goals).
const EntryPoint uint16 = 0x0100

// Mode mirrors the five processor states spec.md §3 lists, in the same
// order as the Beemu original's BeemuProcessorState enum.
type Mode int

const (
	Normal Mode = iota
	Halt
	Stop
	PendingIMEDisable
	PendingIMEEnable
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "Normal"
	case Halt:
		return "Halt"
	case Stop:
		return "Stop"
	case PendingIMEDisable:
		return "PendingIMEDisable"
	case PendingIMEEnable:
		return "PendingIMEEnable"
	default:
		return "Unknown"
	}
}

// Processor owns the register file, memory, interrupt master enable, and
// CPU mode. It exposes a single-step entry point, plus LoadROM and
// SetMode for host-side setup and read accessors for the rest.
type Processor struct {
	Reg  reg.File
	Mem  *mem.Memory
	IME  bool
	mode Mode
}

// New returns a processor in its post-boot-ROM state: PC at EntryPoint,
// IME enabled, mode Normal. Every other register starts zeroed; the
// core has no opinion on pre-game register contents beyond what spec.md
// names (§4.4's lifecycle covers PC/IME/mode only).
func New() *Processor {
	p := &Processor{Mem: mem.New(), IME: true, mode: Normal}
	p.Reg.Write16(reg.PC, EntryPoint)
	return p
}

// LoadROM copies rom into memory starting at address 0.
func (p *Processor) LoadROM(rom []byte) error {
	return p.Mem.WriteBuffer(0, rom)
}

// GetMode returns the processor's current mode.
func (p *Processor) GetMode() Mode { return p.mode }

// SetMode forces the processor's mode, bypassing the normal
// ModeHalt-command path. Exposed for host code that needs to resume from
// Halt/Stop on an external event (e.g. an interrupt line), which this
// core does not itself schedule (spec §1 Non-goals).
func (p *Processor) SetMode(m Mode) { p.mode = m }

// FetchWindow exposes the next instruction's raw bytes without advancing
// the processor, for callers that want to disassemble or trace an
// instruction before Step executes it.
func (p *Processor) FetchWindow() tokenizer.Window {
	return p.fetchWindow()
}

// fetchWindow reads up to three bytes at PC into a tokenizer.Window.
// Bytes past 0xFFFF are not wrapped back to 0x0000; they read as 0, per
// spec.md §4.4's "clamped at memory end".
func (p *Processor) fetchWindow() tokenizer.Window {
	pc := p.Reg.Read16(reg.PC)
	opcode := p.Mem.Read(pc)

	var lo, hi uint8
	if int(pc)+1 <= 0xFFFF {
		lo = p.Mem.Read(pc + 1)
	}
	if int(pc)+2 <= 0xFFFF {
		hi = p.Mem.Read(pc + 2)
	}
	return tokenizer.PackWindow(opcode, lo, hi)
}

// Step runs exactly one instruction: fetch, tokenize, parse, invoke. It
// returns the number of M-cycles elapsed.
//
// Pending IME transitions are resolved here rather than inside the
// invoker: EI's enable must land only after the instruction *following*
// EI has fully run (spec.md §9 decision 3), so the mode this step
// started in — not the mode the instruction about to run produces — is
// what decides whether IME flips at the end of this call.
func (p *Processor) Step() (cyclesElapsed int, err error) {
	resolveEnable := p.mode == PendingIMEEnable
	if resolveEnable {
		p.mode = Normal
	}

	ins, err := tokenizer.Tokenize(p.fetchWindow())
	if err != nil {
		return 0, err
	}

	snap := parser.Snapshot{Reg: p.Reg, Mem: p.Mem}
	q, err := parser.Parse(snap, ins)
	if err != nil {
		return 0, err
	}

	inv := Invoker{Reg: &p.Reg, Mem: p.Mem, IME: &p.IME, Mode: &p.mode}
	cyclesElapsed, err = inv.Run(q)
	if err != nil {
		return cyclesElapsed, err
	}

	if resolveEnable {
		p.IME = true
	}
	return cyclesElapsed, nil
}

// Package conformance runs the pipeline's end-to-end scenario table
// against a live cpu.Processor and reports the first failure. It has no
// bearing on emulation itself; it exists so the debug CLI's "selftest"
// subcommand can answer "does this build still behave" in one shot.
//
// Grounded on the teacher's pkg/search.TestVectors / QuickCheck style
// (a fixed table of cases run through the pipeline and compared against
// expected output), fanned out the way pkg/search/worker.go's
// WorkerPool distributes independent tasks across goroutines — here
// with golang.org/x/sync/errgroup in place of a hand-rolled
// sync.WaitGroup, since each scenario owns an independent *cpu.Processor
// and there is nothing to coordinate beyond "run them all, report the
// first error".
package conformance

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/oisee/gblr35902/pkg/cpu"
	"github.com/oisee/gblr35902/pkg/reg"
)

// Scenario is one end-to-end case: set up a fresh Processor, step it a
// fixed number of times, then check the resulting state. Check receives
// the cumulative cycle count across all steps.
type Scenario struct {
	Name    string
	Setup   func(p *cpu.Processor)
	Steps   int
	Check   func(p *cpu.Processor, totalCycles int) error
}

// Scenarios is the canonical end-to-end table. Each entry mirrors one
// worked example from the instruction pipeline's specification.
var Scenarios = []Scenario{
	{
		Name:  "ADD A,B with carry",
		Steps: 1,
		Setup: func(p *cpu.Processor) {
			p.Reg.Write16(reg.PC, 0x0100)
			p.Reg.Write8(reg.A, 0xFA)
			p.Reg.Write8(reg.B, 0x08)
			p.Mem.Write(0x0100, 0x80) // ADD A,B
		},
		Check: func(p *cpu.Processor, cycles int) error {
			return all(
				expectU8("A", p.Reg.Read8(reg.A), 0x02),
				expectU8("F", p.Reg.Read8(reg.F), 0x30),
				expectU16("PC", p.Reg.Read16(reg.PC), 0x0101),
				expectInt("cycles", cycles, 1),
			)
		},
	},
	{
		Name:  "LD (HL-),A",
		Steps: 1,
		Setup: func(p *cpu.Processor) {
			p.Reg.Write16(reg.PC, 0x0100)
			p.Reg.Write8(reg.A, 0x42)
			p.Reg.Write16(reg.HL, 0xC000)
			p.Mem.Write(0x0100, 0x32) // LD (HL-),A
		},
		Check: func(p *cpu.Processor, cycles int) error {
			return all(
				expectU8("mem[0xC000]", p.Mem.Read(0xC000), 0x42),
				expectU16("HL", p.Reg.Read16(reg.HL), 0xBFFF),
				expectU16("PC", p.Reg.Read16(reg.PC), 0x0101),
				expectInt("cycles", cycles, 2),
			)
		},
	},
	{
		Name:  "JR NZ,+5 not taken",
		Steps: 1,
		Setup: func(p *cpu.Processor) {
			p.Reg.Write16(reg.PC, 0x0100)
			p.Reg.FlagSet(reg.FlagZ, true)
			p.Mem.Write(0x0100, 0x20)
			p.Mem.Write(0x0101, 0x05)
		},
		Check: func(p *cpu.Processor, cycles int) error {
			return all(
				expectU16("PC", p.Reg.Read16(reg.PC), 0x0102),
				expectInt("cycles", cycles, 2),
			)
		},
	},
	{
		Name:  "JR NZ,-3 taken",
		Steps: 1,
		Setup: func(p *cpu.Processor) {
			p.Reg.Write16(reg.PC, 0x0100)
			p.Reg.FlagSet(reg.FlagZ, false)
			p.Mem.Write(0x0100, 0x20)
			p.Mem.Write(0x0101, 0xFD)
		},
		Check: func(p *cpu.Processor, cycles int) error {
			return all(
				expectU16("PC", p.Reg.Read16(reg.PC), 0x00FF),
				expectInt("cycles", cycles, 3),
			)
		},
	},
	{
		Name:  "CALL then RET",
		Steps: 2,
		Setup: func(p *cpu.Processor) {
			p.Reg.Write16(reg.PC, 0x0200)
			p.Reg.Write16(reg.SP, 0xFFFE)
			p.Mem.Write(0x0200, 0xCD)
			p.Mem.Write(0x0201, 0x34)
			p.Mem.Write(0x0202, 0x12)
			p.Mem.Write(0x1234, 0xC9) // RET
		},
		Check: func(p *cpu.Processor, cycles int) error {
			return all(
				expectU16("PC", p.Reg.Read16(reg.PC), 0x0203),
				expectU16("SP", p.Reg.Read16(reg.SP), 0xFFFE),
				expectInt("cycles", cycles, 10),
			)
		},
	},
	{
		Name:  "CB SWAP A",
		Steps: 1,
		Setup: func(p *cpu.Processor) {
			p.Reg.Write16(reg.PC, 0x0100)
			p.Reg.Write8(reg.A, 0xAB)
			p.Mem.Write(0x0100, 0xCB)
			p.Mem.Write(0x0101, 0x37)
		},
		Check: func(p *cpu.Processor, cycles int) error {
			return all(
				expectU8("A", p.Reg.Read8(reg.A), 0xBA),
				expectU8("F", p.Reg.Read8(reg.F), 0x00),
				expectU16("PC", p.Reg.Read16(reg.PC), 0x0102),
				expectInt("cycles", cycles, 2),
			)
		},
	},
	{
		Name:  "BIT 7,H when H=0x80",
		Steps: 1,
		Setup: func(p *cpu.Processor) {
			p.Reg.Write16(reg.PC, 0x0100)
			p.Reg.Write8(reg.H, 0x80)
			p.Mem.Write(0x0100, 0xCB)
			p.Mem.Write(0x0101, 0x7C)
		},
		Check: func(p *cpu.Processor, cycles int) error {
			return all(
				expectU8("H", p.Reg.Read8(reg.H), 0x80),
				expectFlag("Z", p.Reg.FlagGet(reg.FlagZ), 0),
				expectFlag("N", p.Reg.FlagGet(reg.FlagN), 0),
				expectFlag("H", p.Reg.FlagGet(reg.FlagH), 1),
				expectInt("cycles", cycles, 2),
			)
		},
	},
}

// Run executes every scenario concurrently and returns the first
// failure encountered, or nil if all pass. Scenarios are independent
// (each owns a fresh Processor), so errgroup.Group needs no shared
// state beyond its own error collection.
func Run() error {
	var g errgroup.Group
	for _, sc := range Scenarios {
		sc := sc
		g.Go(func() error {
			p := cpu.New()
			sc.Setup(p)
			total := 0
			for i := 0; i < sc.Steps; i++ {
				cycles, err := p.Step()
				if err != nil {
					return fmt.Errorf("%s: step %d: %w", sc.Name, i, err)
				}
				total += cycles
			}
			if err := sc.Check(p, total); err != nil {
				return fmt.Errorf("%s: %w", sc.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func all(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func expectU8(field string, got, want uint8) error {
	if got != want {
		return fmt.Errorf("%s = %#02x, want %#02x", field, got, want)
	}
	return nil
}

func expectU16(field string, got, want uint16) error {
	if got != want {
		return fmt.Errorf("%s = %#04x, want %#04x", field, got, want)
	}
	return nil
}

func expectInt(field string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s = %d, want %d", field, got, want)
	}
	return nil
}

func expectFlag(field string, got, want uint8) error {
	if got != want {
		return fmt.Errorf("flag %s = %d, want %d", field, got, want)
	}
	return nil
}

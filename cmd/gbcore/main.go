// Command gbcore is a debug CLI over the LR35902 instruction pipeline:
// load a ROM image, single-step or free-run it, disassemble a region,
// or drop into a Lua console for interactive register/memory poking.
//
// Grounded on cmd/z80opt/main.go's structure: one cobra root command,
// one subcommand per verb, flags registered with .Flags().XxxVar,
// errors returned from RunE and surfaced via os.Exit(1).
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oisee/gblr35902/internal/script"
	"github.com/oisee/gblr35902/internal/traceio"
	"github.com/oisee/gblr35902/pkg/conformance"
	"github.com/oisee/gblr35902/pkg/cpu"
	"github.com/oisee/gblr35902/pkg/disasm"
	"github.com/oisee/gblr35902/pkg/reg"
	"github.com/oisee/gblr35902/pkg/tokenizer"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gbcore",
		Short: "LR35902 instruction pipeline debug CLI",
	}

	rootCmd.AddCommand(
		newStepCmd(),
		newRunCmd(),
		newDisasmCmd(),
		newReplCmd(),
		newSelftestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadProcessor(romPath string, entry uint16) (*cpu.Processor, error) {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("gbcore: reading rom: %w", err)
	}
	p := cpu.New()
	if err := p.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("gbcore: loading rom: %w", err)
	}
	p.Reg.Write16(reg.PC, entry)
	return p, nil
}

func newStepCmd() *cobra.Command {
	var steps int
	var entry uint16
	var trace bool

	cmd := &cobra.Command{
		Use:   "step <rom>",
		Short: "Execute a fixed number of instructions and print the step and cycle totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProcessor(args[0], entry)
			if err != nil {
				return err
			}
			printer := traceio.NewPrinter(os.Stdout)
			total := 0
			for i := 0; i < steps; i++ {
				pc := p.Reg.Read16(reg.PC)
				window := p.FetchWindow()
				if trace {
					printer.Step(pc, window, p)
				}
				cycles, err := p.Step()
				if err != nil {
					return fmt.Errorf("gbcore: step %d: %w", i, err)
				}
				total += cycles
			}
			fmt.Printf("executed %d step(s), %d cycles\n", steps, total)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of instructions to execute")
	cmd.Flags().Uint16Var(&entry, "entry", cpu.EntryPoint, "initial PC")
	cmd.Flags().BoolVar(&trace, "trace", false, "print a trace line per instruction")
	return cmd
}

func newRunCmd() *cobra.Command {
	var maxSteps int
	var entry uint16
	var trace bool

	cmd := &cobra.Command{
		Use:   "run <rom>",
		Short: "Run until HALT/STOP or max-steps is reached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProcessor(args[0], entry)
			if err != nil {
				return err
			}
			printer := traceio.NewPrinter(os.Stdout)
			total := 0
			i := 0
			for ; i < maxSteps; i++ {
				if p.GetMode() == cpu.Halt || p.GetMode() == cpu.Stop {
					break
				}
				pc := p.Reg.Read16(reg.PC)
				window := p.FetchWindow()
				if trace {
					printer.Step(pc, window, p)
				}
				cycles, err := p.Step()
				if err != nil {
					return fmt.Errorf("gbcore: step %d: %w", i, err)
				}
				total += cycles
			}
			fmt.Printf("ran %d step(s), %d cycles, mode=%v\n", i, total, p.GetMode())
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max-steps", 1_000_000, "upper bound on instructions executed")
	cmd.Flags().Uint16Var(&entry, "entry", cpu.EntryPoint, "initial PC")
	cmd.Flags().BoolVar(&trace, "trace", false, "print a trace line per instruction")
	return cmd
}

func newDisasmCmd() *cobra.Command {
	var at uint16
	var count int

	cmd := &cobra.Command{
		Use:   "disasm <rom>",
		Short: "Disassemble a region of a ROM image without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("gbcore: reading rom: %w", err)
			}
			addr := int(at)
			for i := 0; i < count && addr < len(rom); i++ {
				opcode := rom[addr]
				var lo, hi uint8
				if addr+1 < len(rom) {
					lo = rom[addr+1]
				}
				if addr+2 < len(rom) {
					hi = rom[addr+2]
				}
				ins, err := tokenizer.Tokenize(tokenizer.PackWindow(opcode, lo, hi))
				if err != nil {
					fmt.Printf("%#06x  ??? (%v)\n", addr, err)
					addr++
					continue
				}
				fmt.Printf("%#06x  %s\n", addr, disasm.Disassemble(ins))
				addr += ins.ByteLength
			}
			return nil
		},
	}
	cmd.Flags().Uint16Var(&at, "at", 0x0100, "start address")
	cmd.Flags().IntVar(&count, "count", 16, "number of instructions to disassemble")
	return cmd
}

func newReplCmd() *cobra.Command {
	var entry uint16

	cmd := &cobra.Command{
		Use:   "repl <rom>",
		Short: "Interactive Lua console over a loaded ROM's processor state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProcessor(args[0], entry)
			if err != nil {
				return err
			}
			console := script.NewConsole(p)
			defer console.Close()

			fmt.Println("gbcore repl: reg_get/reg_set/mem_get/mem_set/step() are in scope, Ctrl-D to quit")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := scanner.Text()
				if line == "" {
					continue
				}
				if err := console.Eval(line); err != nil {
					fmt.Fprintln(os.Stderr, script.Errorf(line, err))
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint16Var(&entry, "entry", cpu.EntryPoint, "initial PC")
	return cmd
}

func newSelftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in conformance scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conformance.Run(); err != nil {
				return fmt.Errorf("gbcore: conformance failure: %w", err)
			}
			fmt.Printf("all %d conformance scenarios passed\n", len(conformance.Scenarios))
			return nil
		},
	}
}

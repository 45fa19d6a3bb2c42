// Package traceio prints per-step trace lines for the debug CLI's
// "step" and "run --trace" commands: PC, the disassembled instruction,
// and the register file, one line per executed step.
//
// Grounded on IntuitionAmiga-IntuitionEngine's terminal_host.go, which
// is the only place in the example pack that touches golang.org/x/term;
// that file uses it to put stdin in raw mode for character input, which
// this CLI has no need of. What it does need — and what this package
// borrows — is term.IsTerminal/term.GetSize's pattern of querying the
// fd once up front and falling back to a sane default when stdout is
// redirected to a file or pipe.
package traceio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/oisee/gblr35902/pkg/cpu"
	"github.com/oisee/gblr35902/pkg/disasm"
	"github.com/oisee/gblr35902/pkg/reg"
	"github.com/oisee/gblr35902/pkg/tokenizer"
)

const defaultWidth = 80

// Printer writes one trace line per step to an underlying writer,
// truncating the line at the configured width when it is too long.
type Printer struct {
	w     io.Writer
	width int
}

// NewPrinter builds a Printer for w. When w is os.Stdout and it is a
// terminal, the width comes from the terminal's current column count;
// otherwise it falls back to defaultWidth.
func NewPrinter(w io.Writer) *Printer {
	width := defaultWidth
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	return &Printer{w: w, width: width}
}

// Step formats one trace line for the instruction the processor is
// about to execute, then prints it. pc and window are captured by the
// caller before calling p.Step(), since the fetch window is consumed
// as a side effect of stepping.
func (p *Printer) Step(pc uint16, window tokenizer.Window, proc *cpu.Processor) {
	ins, err := tokenizer.Tokenize(window)
	var text string
	if err != nil {
		text = fmt.Sprintf("??? (%v)", err)
	} else {
		text = disasm.Disassemble(ins)
	}

	line := fmt.Sprintf("%#06x  %-16s %s", pc, text, registerDump(proc))
	if len(line) > p.width && p.width > 0 {
		line = line[:p.width]
	}
	fmt.Fprintln(p.w, line)
}

func registerDump(p *cpu.Processor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A=%02x F=%02x BC=%04x DE=%04x HL=%04x SP=%04x IME=%d",
		p.Reg.Read8(reg.A), p.Reg.Read8(reg.F),
		p.Reg.Read16(reg.BC), p.Reg.Read16(reg.DE),
		p.Reg.Read16(reg.HL), p.Reg.Read16(reg.SP),
		boolToInt(p.IME))
	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

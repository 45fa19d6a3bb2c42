package traceio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oisee/gblr35902/pkg/cpu"
	"github.com/oisee/gblr35902/pkg/reg"
)

func TestStepWritesOneLine(t *testing.T) {
	p := cpu.New()
	p.Reg.Write16(reg.PC, 0x0100)
	p.Reg.Write8(reg.A, 0xFA)
	p.Reg.Write8(reg.B, 0x08)
	p.Mem.Write(0x0100, 0x80) // ADD A,B

	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	pc := p.Reg.Read16(reg.PC)
	window := p.FetchWindow()
	printer.Step(pc, window, p)

	out := buf.String()
	if !strings.Contains(out, "0x0100") {
		t.Errorf("trace line missing PC: %q", out)
	}
	if !strings.Contains(out, "ADD A,B") {
		t.Errorf("trace line missing disassembly: %q", out)
	}
	if !strings.Contains(out, "A=fa") {
		t.Errorf("trace line missing register dump: %q", out)
	}
}

func TestNewPrinterFallsBackToDefaultWidthForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	if p.width != defaultWidth {
		t.Errorf("width = %d, want %d for a non-file writer", p.width, defaultWidth)
	}
}

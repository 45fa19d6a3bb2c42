package disasm

import (
	"testing"

	"github.com/oisee/gblr35902/pkg/tokenizer"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		window tokenizer.Window
		want   string
	}{
		{tokenizer.PackWindow(0x00, 0, 0), "NOP"},
		{tokenizer.PackWindow(0x80, 0, 0), "ADD A,B"},
		{tokenizer.PackWindow(0xC6, 0x05, 0), "ADD A,0x05"},
		{tokenizer.PackWindow(0x09, 0, 0), "ADD HL,BC"},
		{tokenizer.PackWindow(0xE8, 0xFB, 0), "ADD SP,-5"},
		{tokenizer.PackWindow(0x04, 0, 0), "INC B"},
		{tokenizer.PackWindow(0x34, 0, 0), "INC (HL)"},
		{tokenizer.PackWindow(0x27, 0, 0), "DAA"},
		{tokenizer.PackWindow(0x40, 0, 0), "LD B,B"},
		{tokenizer.PackWindow(0x36, 0x42, 0), "LD (HL),0x42"},
		{tokenizer.PackWindow(0x01, 0x34, 0x12), "LD BC,0x1234"},
		{tokenizer.PackWindow(0x32, 0, 0), "LD (HL-),A"},
		{tokenizer.PackWindow(0x22, 0, 0), "LD (HL+),A"},
		{tokenizer.PackWindow(0xC5, 0, 0), "PUSH BC"},
		{tokenizer.PackWindow(0xF1, 0, 0), "POP AF"},
		{tokenizer.PackWindow(0x18, 0xFD, 0), "JR -3"},
		{tokenizer.PackWindow(0x20, 0x05, 0), "JR NZ,5"},
		{tokenizer.PackWindow(0xC3, 0x00, 0x01), "JP 0x0100"},
		{tokenizer.PackWindow(0xE9, 0, 0), "JP HL"},
		{tokenizer.PackWindow(0xCD, 0x34, 0x12), "CALL 0x1234"},
		{tokenizer.PackWindow(0xC9, 0, 0), "RET"},
		{tokenizer.PackWindow(0xC0, 0, 0), "RET NZ"},
		{tokenizer.PackWindow(0xD9, 0, 0), "RETI"},
		{tokenizer.PackWindow(0xFF, 0, 0), "RST 0x0038"},
		{tokenizer.PackWindow(0xF3, 0, 0), "DI"},
		{tokenizer.PackWindow(0xFB, 0, 0), "EI"},
		{tokenizer.PackWindow(0x76, 0, 0), "HALT"},
		{tokenizer.PackWindow(0xCB, 0x37, 0), "SWAP A"},
		{tokenizer.PackWindow(0xCB, 0x7C, 0), "BIT 7,H"},
		{tokenizer.PackWindow(0xCB, 0xC6, 0), "SET 0,(HL)"},
		{tokenizer.PackWindow(0x07, 0, 0), "RLCA"},
	}

	for _, tc := range tests {
		ins, err := tokenizer.Tokenize(tc.window)
		if err != nil {
			t.Fatalf("tokenize %#06x: %v", tc.window, err)
		}
		if got := Disassemble(ins); got != tc.want {
			t.Errorf("Disassemble(%#06x) = %q, want %q", tc.window, got, tc.want)
		}
	}
}

package tokenizer

import "github.com/oisee/gblr35902/pkg/reg"

// r8 maps the canonical 3-bit register field B,C,D,E,H,L,(HL),A to an
// 8-bit register slot. Index 6, (HL), is never itself a Reg8 value;
// callers check for it first with isIndirectHL.
var r8 = [8]reg.Reg8{reg.B, reg.C, reg.D, reg.E, reg.H, reg.L, reg.H /*unused*/, reg.A}

const indirectHLIndex = 6

func isIndirectHL(idx uint8) bool { return idx == indirectHLIndex }

// rp maps the 2-bit register-pair field to the 16-bit pair used by the
// LD rr,nn / ADD HL,rr / INC rr / DEC rr families (fourth entry SP).
var rp = [4]reg.Reg16{reg.BC, reg.DE, reg.HL, reg.SP}

// rp2 maps the 2-bit register-pair field to the pair used by PUSH/POP
// (fourth entry AF).
var rp2 = [4]reg.Reg16{reg.BC, reg.DE, reg.HL, reg.AF}

// aluOp orders the 8 ALU operations as they appear in bits y of the
// 0x80-0xBF and 0xC6/CE/D6/DE/E6/EE/F6/FE opcode ranges.
type aluOp int

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

// rotOp orders the 8 CB-prefixed 0x00-0x3F rotate/shift operations.
type rotOp int

const (
	rotRLC rotOp = iota
	rotRRC
	rotRL
	rotRR
	rotSLA
	rotSRA
	rotSWAP
	rotSRL
)


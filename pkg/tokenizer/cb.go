package tokenizer

import "github.com/oisee/gblr35902/pkg/inst"

// tokenizeCB decodes the second byte of a CB-prefixed instruction. The
// Instruction's OriginalMachineCode/ByteLength reflect both bytes (0xCB
// plus the sub-opcode); the M2 preamble that fetches the second byte is
// the parser's concern, not the tokenizer's.
func tokenizeCB(sub uint8) (inst.Instruction, error) {
	x := sub >> 6 & 0x3
	y := sub >> 3 & 0x7
	z := sub & 0x7

	target := reg8Param(z)
	cycles := 2
	if isIndirectHL(z) {
		cycles = 4
		if x == 1 { // BIT (HL) reads but doesn't write back: 3, not 4
			cycles = 3
		}
	}

	switch x {
	case 0:
		op, dir, through := rotShiftOf(rotOp(y))
		return build2(0xCB, sub, cycles, inst.RotShift, inst.RotShiftParams{
			Op: op, Direction: dir, ThroughCarry: through, Target: target,
		}), nil
	case 1:
		return build2(0xCB, sub, cycles, inst.Bitwise, inst.BitwiseParams{
			Op: inst.Bit, BitIndex: y, Target: target,
		}), nil
	case 2:
		return build2(0xCB, sub, cycles, inst.Bitwise, inst.BitwiseParams{
			Op: inst.Res, BitIndex: y, Target: target,
		}), nil
	default: // x == 3
		return build2(0xCB, sub, cycles, inst.Bitwise, inst.BitwiseParams{
			Op: inst.Set, BitIndex: y, Target: target,
		}), nil
	}
}

func rotShiftOf(op rotOp) (kind inst.RotShiftOp, dir inst.Direction, throughCarry bool) {
	switch op {
	case rotRLC:
		return inst.Rotate, inst.Left, false
	case rotRRC:
		return inst.Rotate, inst.Right, false
	case rotRL:
		return inst.Rotate, inst.Left, true
	case rotRR:
		return inst.Rotate, inst.Right, true
	case rotSLA:
		return inst.ShiftArithmetic, inst.Left, false
	case rotSRA:
		return inst.ShiftArithmetic, inst.Right, false
	case rotSWAP:
		return inst.Swap, inst.Left, false
	default: // rotSRL
		return inst.ShiftLogical, inst.Right, false
	}
}

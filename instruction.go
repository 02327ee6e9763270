// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

// Opcode is a Dalvik bytecode opcode byte, the low byte of the first
// code unit of an instruction. Only the two format-10x opcodes used to
// anchor this seam are named; everything else decodes as OpUnknown.
type Opcode byte

const (
	OpNop        Opcode = 0x00
	OpReturnVoid Opcode = 0x0e
	OpUnknown    Opcode = 0xff
)

// Instruction is a single decoded bytecode instruction. Format is
// currently always Format10x: opcode-only, no operand registers. Wider
// formats (10t, 20t, 22x, 35c, ...) are a future extension of this
// seam, not decoded here.
type Instruction struct {
	Opcode Opcode
	Raw    byte // the raw opcode byte, kept even when Opcode is OpUnknown
}

func opcodeFromByte(b byte) Opcode {
	switch b {
	case 0x00:
		return OpNop
	case 0x0e:
		return OpReturnVoid
	default:
		return OpUnknown
	}
}

// DecodeInstructions walks a code_item's raw 16-bit code units and
// extracts the low byte of each unit as a format-10x instruction. It
// never fails: an unrecognized opcode becomes OpUnknown carrying its
// raw byte rather than aborting decoding, since a full instruction
// table (and its variable-width operand formats) is out of scope here.
func DecodeInstructions(codeUnits []uint16) []Instruction {
	instructions := make([]Instruction, 0, len(codeUnits))
	for _, unit := range codeUnits {
		b := byte(unit & 0xff)
		instructions = append(instructions, Instruction{
			Opcode: opcodeFromByte(b),
			Raw:    b,
		})
	}
	return instructions
}

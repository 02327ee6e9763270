// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "testing"

func TestDecodeInstructionsNamedOpcodes(t *testing.T) {
	units := []uint16{0x0000, 0x000e}
	instrs := DecodeInstructions(units)
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	if instrs[0].Opcode != OpNop {
		t.Fatalf("instrs[0].Opcode = %v, want OpNop", instrs[0].Opcode)
	}
	if instrs[1].Opcode != OpReturnVoid {
		t.Fatalf("instrs[1].Opcode = %v, want OpReturnVoid", instrs[1].Opcode)
	}
}

func TestDecodeInstructionsUnknownOpcodeCarriesRawByte(t *testing.T) {
	units := []uint16{0x1234}
	instrs := DecodeInstructions(units)
	if len(instrs) != 1 {
		t.Fatalf("got %d instructions, want 1", len(instrs))
	}
	if instrs[0].Opcode != OpUnknown {
		t.Fatalf("Opcode = %v, want OpUnknown", instrs[0].Opcode)
	}
	if instrs[0].Raw != 0x34 {
		t.Fatalf("Raw = %#x, want 0x34 (low byte of code unit)", instrs[0].Raw)
	}
}

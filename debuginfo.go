// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "fmt"

// DebugOpcode is a debug_info_item bytecode instruction's opcode byte.
// Values from 0x0a through 0xff are DBG_SPECIAL_OPCODE: a single byte
// that simultaneously advances both the address and line registers by
// table-derived amounts (the same mechanism as DWARF's line program).
type DebugOpcode byte

const (
	DBGEndSequence        DebugOpcode = 0x00
	DBGAdvancePC          DebugOpcode = 0x01
	DBGAdvanceLine        DebugOpcode = 0x02
	DBGStartLocal         DebugOpcode = 0x03
	DBGStartLocalExtended DebugOpcode = 0x04
	DBGEndLocal           DebugOpcode = 0x05
	DBGRestartLocal       DebugOpcode = 0x06
	DBGSetPrologueEnd     DebugOpcode = 0x07
	DBGSetEpilogueBegin   DebugOpcode = 0x08
	DBGSetFile            DebugOpcode = 0x09
)

// DebugInstruction is one decoded instruction of a debug_info_item's
// bytecode state machine. Fields outside the set implied by Opcode are
// zero.
type DebugInstruction struct {
	Opcode DebugOpcode

	AddrDiff     uint32 // DBGAdvancePC
	LineDiff     int32  // DBGAdvanceLine
	RegisterNum  uint32 // DBGStartLocal, DBGStartLocalExtended, DBGEndLocal, DBGRestartLocal
	NameIndex    uint32 // DBGStartLocal, DBGStartLocalExtended, DBGSetFile (noIndex if absent)
	TypeIndex    uint32 // DBGStartLocal, DBGStartLocalExtended (noIndex if absent)
	SigIndex     uint32 // DBGStartLocalExtended (noIndex if absent)
	SpecialValue byte   // special opcodes: the raw opcode byte, 0x0a..0xff
}

// DebugInfo is a debug_info_item: the starting source line, the name
// index of each incoming parameter, and the bytecode program that
// drives the line-number/local-variable state machine.
type DebugInfo struct {
	LineStart      uint32
	ParameterNames []uint32 // noIndex entries mean "no name"
	Bytecode       []DebugInstruction
}

func parseDebugInfo(r *reader) (DebugInfo, error) {
	lineStart, _, err := r.Uleb128()
	if err != nil {
		return DebugInfo{}, fmt.Errorf("could not read line_start: %w", err)
	}
	paramsSize, _, err := r.Uleb128()
	if err != nil {
		return DebugInfo{}, fmt.Errorf("could not read parameters_size: %w", err)
	}
	names := make([]uint32, 0, paramsSize)
	for i := uint32(0); i < paramsSize; i++ {
		nameIdx, _, err := r.Uleb128p1()
		if err != nil {
			return DebugInfo{}, fmt.Errorf("could not read parameter_name %d: %w", i, err)
		}
		names = append(names, nameIdx)
	}

	bytecode, err := parseDebugBytecode(r)
	if err != nil {
		return DebugInfo{}, fmt.Errorf("could not read debug bytecode: %w", err)
	}

	return DebugInfo{LineStart: lineStart, ParameterNames: names, Bytecode: bytecode}, nil
}

// parseDebugBytecode decodes instructions until DBG_END_SEQUENCE,
// matching the state machine's own termination rule: there is no
// length prefix, the stream simply ends when it says so.
func parseDebugBytecode(r *reader) ([]DebugInstruction, error) {
	var instructions []DebugInstruction
	for {
		inst, err := parseDebugInstruction(r)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, inst)
		if inst.Opcode == DBGEndSequence {
			return instructions, nil
		}
	}
}

func parseDebugInstruction(r *reader) (DebugInstruction, error) {
	opcode, err := r.U8()
	if err != nil {
		return DebugInstruction{}, fmt.Errorf("could not read opcode: %w", err)
	}

	switch DebugOpcode(opcode) {
	case DBGEndSequence:
		return DebugInstruction{Opcode: DBGEndSequence}, nil

	case DBGAdvancePC:
		addrDiff, _, err := r.Uleb128()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read addr_diff: %w", err)
		}
		return DebugInstruction{Opcode: DBGAdvancePC, AddrDiff: addrDiff}, nil

	case DBGAdvanceLine:
		lineDiff, _, err := r.Sleb128()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read line_diff: %w", err)
		}
		return DebugInstruction{Opcode: DBGAdvanceLine, LineDiff: lineDiff}, nil

	case DBGStartLocal:
		registerNum, _, err := r.Uleb128()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read register_num: %w", err)
		}
		nameIdx, _, err := r.Uleb128p1()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read name_idx: %w", err)
		}
		typeIdx, _, err := r.Uleb128p1()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read type_idx: %w", err)
		}
		return DebugInstruction{Opcode: DBGStartLocal, RegisterNum: registerNum, NameIndex: nameIdx, TypeIndex: typeIdx}, nil

	case DBGStartLocalExtended:
		registerNum, _, err := r.Uleb128()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read register_num: %w", err)
		}
		nameIdx, _, err := r.Uleb128p1()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read name_idx: %w", err)
		}
		typeIdx, _, err := r.Uleb128p1()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read type_idx: %w", err)
		}
		sigIdx, _, err := r.Uleb128p1()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read sig_idx: %w", err)
		}
		return DebugInstruction{
			Opcode: DBGStartLocalExtended, RegisterNum: registerNum,
			NameIndex: nameIdx, TypeIndex: typeIdx, SigIndex: sigIdx,
		}, nil

	case DBGEndLocal:
		registerNum, _, err := r.Uleb128()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read register_num: %w", err)
		}
		return DebugInstruction{Opcode: DBGEndLocal, RegisterNum: registerNum}, nil

	case DBGRestartLocal:
		registerNum, _, err := r.Uleb128()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read register_num: %w", err)
		}
		return DebugInstruction{Opcode: DBGRestartLocal, RegisterNum: registerNum}, nil

	case DBGSetPrologueEnd:
		return DebugInstruction{Opcode: DBGSetPrologueEnd}, nil

	case DBGSetEpilogueBegin:
		return DebugInstruction{Opcode: DBGSetEpilogueBegin}, nil

	case DBGSetFile:
		nameIdx, _, err := r.Uleb128p1()
		if err != nil {
			return DebugInstruction{}, fmt.Errorf("could not read name_idx: %w", err)
		}
		return DebugInstruction{Opcode: DBGSetFile, NameIndex: nameIdx}, nil

	default:
		// 0x0a..0xff: DBG_SPECIAL_OPCODE, a single byte with no operands.
		return DebugInstruction{Opcode: DebugOpcode(opcode), SpecialValue: opcode}, nil
	}
}

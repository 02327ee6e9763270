// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "fmt"

// TryItem describes one exception-handling try block: an instruction
// range (by code-unit address, not byte offset) and the offset, within
// the owning code_item's handler list, of its catch handlers.
type TryItem struct {
	StartAddr     uint32
	InsnCount     uint16
	HandlerOffset uint16
}

// HandlerInfo is one typed exception handler: the type_ids index of
// the exception type it catches and the code-unit address to jump to.
type HandlerInfo struct {
	TypeIndex uint32
	Addr      uint32
}

// CatchHandler is one encoded_catch_handler: a list of typed handlers
// plus an optional catch-all address (present when the encoded size
// was zero or negative).
type CatchHandler struct {
	Handlers     []HandlerInfo
	CatchAllAddr uint32 // only meaningful when HasCatchAll is true
	HasCatchAll  bool
}

// CodeItem is a code_item: register counts, the instruction stream as
// 16-bit code units, and the try/catch tables that cover it.
type CodeItem struct {
	RegistersSize   uint16
	InsSize         uint16
	OutsSize        uint16
	DebugInfoOffset uint32 // 0 if the method has no debug info
	Instructions    []uint16
	Tries           []TryItem
	Handlers        []CatchHandler
}

func parseCodeItem(r *reader) (CodeItem, error) {
	registersSize, err := r.U16()
	if err != nil {
		return CodeItem{}, fmt.Errorf("could not read registers_size: %w", err)
	}
	insSize, err := r.U16()
	if err != nil {
		return CodeItem{}, fmt.Errorf("could not read ins_size: %w", err)
	}
	outsSize, err := r.U16()
	if err != nil {
		return CodeItem{}, fmt.Errorf("could not read outs_size: %w", err)
	}
	triesSize, err := r.U16()
	if err != nil {
		return CodeItem{}, fmt.Errorf("could not read tries_size: %w", err)
	}
	debugInfoOff, err := r.U32()
	if err != nil {
		return CodeItem{}, fmt.Errorf("could not read debug_info_off: %w", err)
	}
	insnsSize, err := r.U32()
	if err != nil {
		return CodeItem{}, fmt.Errorf("could not read insns_size: %w", err)
	}

	insns := make([]uint16, 0, insnsSize)
	for i := uint32(0); i < insnsSize; i++ {
		word, err := r.U16()
		if err != nil {
			return CodeItem{}, fmt.Errorf("could not read instruction word %d: %w", i, err)
		}
		insns = append(insns, word)
	}

	if triesSize != 0 && insnsSize&1 != 0 {
		if err := r.SkipPad2(); err != nil {
			return CodeItem{}, fmt.Errorf("could not skip padding before tries: %w", err)
		}
	}

	tries := make([]TryItem, 0, triesSize)
	for i := uint16(0); i < triesSize; i++ {
		startAddr, err := r.U32()
		if err != nil {
			return CodeItem{}, fmt.Errorf("could not read try_item %d start_addr: %w", i, err)
		}
		insnCount, err := r.U16()
		if err != nil {
			return CodeItem{}, fmt.Errorf("could not read try_item %d insn_count: %w", i, err)
		}
		handlerOff, err := r.U16()
		if err != nil {
			return CodeItem{}, fmt.Errorf("could not read try_item %d handler_off: %w", i, err)
		}
		tries = append(tries, TryItem{StartAddr: startAddr, InsnCount: insnCount, HandlerOffset: handlerOff})
	}

	var handlers []CatchHandler
	if triesSize > 0 {
		handlersSize, _, err := r.Uleb128()
		if err != nil {
			return CodeItem{}, fmt.Errorf("could not read handlers_size: %w", err)
		}
		handlers = make([]CatchHandler, 0, handlersSize)
		for i := uint32(0); i < handlersSize; i++ {
			h, err := parseCatchHandler(r)
			if err != nil {
				return CodeItem{}, fmt.Errorf("could not read catch handler %d: %w", i, err)
			}
			handlers = append(handlers, h)
		}
	}

	return CodeItem{
		RegistersSize:   registersSize,
		InsSize:         insSize,
		OutsSize:        outsSize,
		DebugInfoOffset: debugInfoOff,
		Instructions:    insns,
		Tries:           tries,
		Handlers:        handlers,
	}, nil
}

// parseCatchHandler reads an encoded_catch_handler: a signed size
// whose absolute value is the number of typed handlers, negative
// (or zero) meaning a catch-all address trails the typed handlers.
func parseCatchHandler(r *reader) (CatchHandler, error) {
	size, _, err := r.Sleb128()
	if err != nil {
		return CatchHandler{}, fmt.Errorf("could not read size: %w", err)
	}
	abs := size
	if abs < 0 {
		abs = -abs
	}
	handlers := make([]HandlerInfo, 0, abs)
	for i := int32(0); i < abs; i++ {
		typeIdx, _, err := r.Uleb128()
		if err != nil {
			return CatchHandler{}, fmt.Errorf("could not read handler %d type_idx: %w", i, err)
		}
		addr, _, err := r.Uleb128()
		if err != nil {
			return CatchHandler{}, fmt.Errorf("could not read handler %d addr: %w", i, err)
		}
		handlers = append(handlers, HandlerInfo{TypeIndex: typeIdx, Addr: addr})
	}
	if size <= 0 {
		addr, _, err := r.Uleb128()
		if err != nil {
			return CatchHandler{}, fmt.Errorf("could not read catch_all_addr: %w", err)
		}
		return CatchHandler{Handlers: handlers, CatchAllAddr: addr, HasCatchAll: true}, nil
	}
	return CatchHandler{Handlers: handlers}, nil
}

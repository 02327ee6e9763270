// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "testing"

func TestOffsetMapInsertAndLookup(t *testing.T) {
	m := newOffsetMap(4)
	m.insert(0x70, OffsetStringIDList)
	m.insert(0x20, OffsetMap)
	m.insert(0x100, OffsetClassDefList)

	typ, ok := m.lookup(0x20)
	if !ok || typ != OffsetMap {
		t.Fatalf("lookup(0x20) = %v, %v, want OffsetMap, true", typ, ok)
	}
	if _, ok := m.lookup(0x99); ok {
		t.Fatalf("lookup(0x99) unexpectedly found a match")
	}
}

func TestOffsetMapInsertDuplicateReportsExisting(t *testing.T) {
	m := newOffsetMap(2)
	if dup := m.insert(0x70, OffsetStringIDList); dup {
		t.Fatalf("first insert reported as duplicate")
	}
	if dup := m.insert(0x70, OffsetTypeIDList); !dup {
		t.Fatalf("second insert at same offset should report duplicate")
	}
}

func TestOffsetMapNextBoundsSectionLength(t *testing.T) {
	m := newOffsetMap(4)
	m.insert(0x70, OffsetStringIDList)
	m.insert(0x200, OffsetMap)

	next, ok := m.next(0x71)
	if !ok || next.offset != 0x200 || next.typ != OffsetMap {
		t.Fatalf("next(0x71) = %+v, %v, want offset 0x200", next, ok)
	}
	if _, ok := m.next(0x201); ok {
		t.Fatalf("next(0x201) unexpectedly found a match past the end")
	}
}

func TestOffsetMapOrderIndependentInsertion(t *testing.T) {
	m := newOffsetMap(3)
	offsets := []uint32{0x300, 0x10, 0x150}
	for _, o := range offsets {
		m.insert(o, OffsetCode)
	}
	want := []uint32{0x10, 0x150, 0x300}
	for i, w := range want {
		if m.entries[i].offset != w {
			t.Fatalf("entries[%d].offset = %#x, want %#x", i, m.entries[i].offset, w)
		}
	}
}

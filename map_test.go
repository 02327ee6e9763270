// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"encoding/binary"
	"testing"
)

func encodeMapItem(buf []byte, typ ItemType, size, offset uint32) []byte {
	entry := make([]byte, 12)
	binary.LittleEndian.PutUint16(entry[0:], uint16(typ))
	binary.LittleEndian.PutUint32(entry[4:], size)
	binary.LittleEndian.PutUint32(entry[8:], offset)
	return append(buf, entry...)
}

func TestParseMapListSeedsOffsets(t *testing.T) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, 2)
	data = encodeMapItem(data, ItemTypeList, 3, 0x100)
	data = encodeMapItem(data, ItemCodeItem, 1, 0x200)

	r := newReader(data, binary.LittleEndian, 0)
	m := newOffsetMap(4)
	var anomalies []string
	ml, err := parseMapList(r, m, func(a string) { anomalies = append(anomalies, a) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ml.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(ml.Items))
	}
	if count, ok := ml.ItemCount(ItemTypeList); !ok || count != 3 {
		t.Fatalf("ItemCount(ItemTypeList) = %d, %v, want 3, true", count, ok)
	}
	if typ, ok := m.lookup(0x100); !ok || typ != OffsetTypeList {
		t.Fatalf("lookup(0x100) = %v, %v, want OffsetTypeList, true", typ, ok)
	}
	if typ, ok := m.lookup(0x200); !ok || typ != OffsetCode {
		t.Fatalf("lookup(0x200) = %v, %v, want OffsetCode, true", typ, ok)
	}
	if len(anomalies) != 0 {
		t.Fatalf("anomalies = %v, want none", anomalies)
	}
}

func TestParseMapListUnknownTypeSkippedAsAnomaly(t *testing.T) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, 1)
	data = encodeMapItem(data, ItemType(0xbeef), 1, 0x300)

	r := newReader(data, binary.LittleEndian, 0)
	m := newOffsetMap(1)
	var anomalies []string
	ml, err := parseMapList(r, m, func(a string) { anomalies = append(anomalies, a) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ml.Items) != 0 {
		t.Fatalf("got %d items, want 0 (unknown type skipped)", len(ml.Items))
	}
	if len(anomalies) != 1 || anomalies[0] != AnoUnknownMapItemType {
		t.Fatalf("anomalies = %v, want [%s]", anomalies, AnoUnknownMapItemType)
	}
}

func TestItemTypeKnown(t *testing.T) {
	if !ItemCodeItem.known() {
		t.Fatalf("ItemCodeItem.known() = false, want true")
	}
	if ItemType(0xdead).known() {
		t.Fatalf("unknown ItemType.known() = true, want false")
	}
}

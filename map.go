// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "fmt"

// ItemType is the type tag of a map_item entry in map_list.
type ItemType uint16

const (
	ItemHeader               ItemType = 0x0000
	ItemStringID             ItemType = 0x0001
	ItemTypeID               ItemType = 0x0002
	ItemProtoID              ItemType = 0x0003
	ItemFieldID              ItemType = 0x0004
	ItemMethodID             ItemType = 0x0005
	ItemClassDef             ItemType = 0x0006
	ItemMapList              ItemType = 0x1000
	ItemTypeList             ItemType = 0x1001
	ItemAnnotationSetRefList ItemType = 0x1002
	ItemAnnotationSetItem    ItemType = 0x1003
	ItemClassDataItem        ItemType = 0x2000
	ItemCodeItem             ItemType = 0x2001
	ItemStringDataItem       ItemType = 0x2002
	ItemDebugInfoItem        ItemType = 0x2003
	ItemAnnotationItem       ItemType = 0x2004
	ItemEncodedArrayItem     ItemType = 0x2005
	ItemAnnotationsDirItem   ItemType = 0x2006
)

func (t ItemType) known() bool {
	switch t {
	case ItemHeader, ItemStringID, ItemTypeID, ItemProtoID, ItemFieldID, ItemMethodID,
		ItemClassDef, ItemMapList, ItemTypeList, ItemAnnotationSetRefList, ItemAnnotationSetItem,
		ItemClassDataItem, ItemCodeItem, ItemStringDataItem, ItemDebugInfoItem, ItemAnnotationItem,
		ItemEncodedArrayItem, ItemAnnotationsDirItem:
		return true
	default:
		return false
	}
}

// MapItem is one 12-byte entry of map_list: the type, count, and start
// offset of one section of the file.
type MapItem struct {
	Type   ItemType
	Size   uint32
	Offset uint32
}

// MapList is the parsed map_list section: a self-describing table of
// contents for every other section in the file, used to seed the
// offset map with the sections a header-driven walk cannot reach
// directly (type lists,
// annotations, class data, code, debug info, string data).
type MapList struct {
	Items []MapItem
}

// ItemCount returns the declared item count for typ, and whether
// map_list names that type at all.
func (m MapList) ItemCount(typ ItemType) (uint32, bool) {
	for _, it := range m.Items {
		if it.Type == typ {
			return it.Size, true
		}
	}
	return 0, false
}

// parseMapList reads map_list at the reader's current position and
// seeds m with every item it names (except the fixed, header-driven
// id tables, which the header's own offset map entries already cover).
// Items of an unrecognized type are skipped and reported as an anomaly
// rather than treated as corruption.
func parseMapList(r *reader, m *offsetMap, addAnomaly func(string)) (MapList, error) {
	size, err := r.U32()
	if err != nil {
		return MapList{}, fmt.Errorf("could not read map_list size: %w", err)
	}
	items := make([]MapItem, 0, size)
	for i := uint32(0); i < size; i++ {
		rawType, err := r.U16()
		if err != nil {
			return MapList{}, fmt.Errorf("could not read map item %d type: %w", i, err)
		}
		if _, err := r.U16(); err != nil { // unused padding
			return MapList{}, fmt.Errorf("could not read map item %d padding: %w", i, err)
		}
		itemSize, err := r.U32()
		if err != nil {
			return MapList{}, fmt.Errorf("could not read map item %d size: %w", i, err)
		}
		offset, err := r.U32()
		if err != nil {
			return MapList{}, fmt.Errorf("could not read map item %d offset: %w", i, err)
		}
		typ := ItemType(rawType)
		if !typ.known() {
			addAnomaly(AnoUnknownMapItemType)
			continue
		}
		items = append(items, MapItem{Type: typ, Size: itemSize, Offset: offset})

		switch typ {
		case ItemTypeList:
			m.insert(offset, OffsetTypeList)
		case ItemAnnotationSetRefList:
			m.insert(offset, OffsetAnnotationSetList)
		case ItemAnnotationSetItem:
			m.insert(offset, OffsetAnnotationSet)
		case ItemClassDataItem:
			m.insert(offset, OffsetClassData)
		case ItemCodeItem:
			m.insert(offset, OffsetCode)
		case ItemStringDataItem:
			m.insert(offset, OffsetStringData)
		case ItemDebugInfoItem:
			m.insert(offset, OffsetDebugInfo)
		case ItemAnnotationItem:
			m.insert(offset, OffsetAnnotation)
		case ItemEncodedArrayItem:
			m.insert(offset, OffsetEncodedArray)
		case ItemAnnotationsDirItem:
			m.insert(offset, OffsetAnnotationsDirectory)
		}
	}
	return MapList{Items: items}, nil
}

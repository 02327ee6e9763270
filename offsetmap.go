// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "sort"

// OffsetType classifies what kind of section begins at a given file
// offset, recorded as each section's offset becomes known during Parse
// so that every section of a given kind can then be decoded. Recorded
// sections are not checked for overlap.
type OffsetType int

const (
	OffsetStringIDList OffsetType = iota
	OffsetTypeIDList
	OffsetPrototypeIDList
	OffsetFieldIDList
	OffsetMethodIDList
	OffsetClassDefList
	OffsetMap
	OffsetTypeList
	OffsetAnnotationSetList
	OffsetAnnotationSet
	OffsetAnnotation
	OffsetAnnotationsDirectory
	OffsetClassData
	OffsetCode
	OffsetStringData
	OffsetDebugInfo
	OffsetEncodedArray
	OffsetLink
)

func (t OffsetType) String() string {
	switch t {
	case OffsetStringIDList:
		return "string_id_list"
	case OffsetTypeIDList:
		return "type_id_list"
	case OffsetPrototypeIDList:
		return "proto_id_list"
	case OffsetFieldIDList:
		return "field_id_list"
	case OffsetMethodIDList:
		return "method_id_list"
	case OffsetClassDefList:
		return "class_def_list"
	case OffsetMap:
		return "map"
	case OffsetTypeList:
		return "type_list"
	case OffsetAnnotationSetList:
		return "annotation_set_ref_list"
	case OffsetAnnotationSet:
		return "annotation_set_item"
	case OffsetAnnotation:
		return "annotation_item"
	case OffsetAnnotationsDirectory:
		return "annotations_directory_item"
	case OffsetClassData:
		return "class_data_item"
	case OffsetCode:
		return "code_item"
	case OffsetStringData:
		return "string_data_item"
	case OffsetDebugInfo:
		return "debug_info_item"
	case OffsetEncodedArray:
		return "encoded_array_item"
	case OffsetLink:
		return "link_data"
	default:
		return "unknown"
	}
}

type offsetEntry struct {
	offset uint32
	typ    OffsetType
}

// offsetMap is a sorted association from file offset to the kind of
// section recorded there. The assembler reads it back to collect the
// offsets of each kind of section (see uniqueNonZeroOffsets); an offset
// that points into the middle of, or past the end of, another section
// is not flagged.
type offsetMap struct {
	entries []offsetEntry
}

func newOffsetMap(capacity int) *offsetMap {
	return &offsetMap{entries: make([]offsetEntry, 0, capacity)}
}

// insert records offset as belonging to typ. It reports whether the
// offset had already been recorded (in which case the insert is a
// no-op): two sections legitimately sharing a start offset is not
// itself an error here, but the caller may choose to treat repeats as
// anomalies.
func (m *offsetMap) insert(offset uint32, typ OffsetType) bool {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].offset >= offset })
	if i < len(m.entries) && m.entries[i].offset == offset {
		return true
	}
	m.entries = append(m.entries, offsetEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = offsetEntry{offset: offset, typ: typ}
	return false
}

// lookup returns the offset type recorded exactly at offset, and
// whether an exact match was found. When no exact match exists it
// returns 0 and false; next finds the entry that follows an offset.
func (m *offsetMap) lookup(offset uint32) (OffsetType, bool) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].offset >= offset })
	if i < len(m.entries) && m.entries[i].offset == offset {
		return m.entries[i].typ, true
	}
	return 0, false
}

// next returns the first recorded entry at or after offset, used to
// bound a section's length by the start of whatever comes after it.
func (m *offsetMap) next(offset uint32) (offsetEntry, bool) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].offset >= offset })
	if i == len(m.entries) {
		return offsetEntry{}, false
	}
	return m.entries[i], true
}

func (m *offsetMap) len() int { return len(m.entries) }

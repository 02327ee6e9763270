// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"encoding/binary"
	"fmt"
)

// Header is the fixed 0x70-byte header_item that opens every DEX
// image: magic/version, checksum, SHA-1 signature, overall sizing,
// and the offset/size pair for every id table that follows it.
type Header struct {
	Magic      [8]byte
	Checksum   uint32
	Signature  [20]byte
	FileSize   uint32
	HeaderSize uint32
	EndianTag  uint32

	LinkSize   uint32
	LinkOffset uint32

	MapOffset uint32

	StringIDsSize   uint32
	StringIDsOffset uint32
	TypeIDsSize     uint32
	TypeIDsOffset   uint32
	ProtoIDsSize    uint32
	ProtoIDsOffset  uint32
	FieldIDsSize    uint32
	FieldIDsOffset  uint32
	MethodIDsSize   uint32
	MethodIDsOffset uint32
	ClassDefsSize   uint32
	ClassDefsOffset uint32

	DataSize   uint32
	DataOffset uint32
}

// Version returns the 3-digit decimal version embedded in the magic,
// e.g. 35, 37, 38, 39.
func (h Header) Version() int {
	return int(h.Magic[4]-'0')*100 + int(h.Magic[5]-'0')*10 + int(h.Magic[6]-'0')
}

// LittleEndian reports whether the image's multi-byte fields are
// stored little-endian (the overwhelmingly common case on Android).
func (h Header) LittleEndian() bool { return h.EndianTag == endianConstant }

func isMagicValid(magic [8]byte) bool {
	if magic[0] != 'd' || magic[1] != 'e' || magic[2] != 'x' || magic[3] != 0x0a || magic[7] != 0x00 {
		return false
	}
	for _, b := range magic[4:7] {
		if b < '0' || b > '9' {
			return false
		}
	}
	return true
}

// parseHeader reads and validates header_item starting at offset 0,
// following the field-by-field checks of the reference decoder: magic
// and per-digit version, endianness (byte-swapping checksum/file_size
// /header_size when the reverse tag is seen), then every id table's
// size/offset pair against the packed layout implied by the tables
// that precede it.
func parseHeader(data []byte, anomalies *[]string) (Header, error) {
	// The header's own fixed-width fields are read with a
	// little-endian reader regardless of endian_tag: checksum,
	// file_size and header_size are swapped by hand below once the
	// tag is known, matching the reference decoder's behavior of
	// reading those three fields before it can tell which order the
	// rest of the file uses.
	r := newReader(data, binary.LittleEndian, 0)

	var h Header
	magic, err := r.Bytes(8)
	if err != nil {
		return Header{}, fmt.Errorf("could not read magic: %w", err)
	}
	copy(h.Magic[:], magic)
	if !isMagicValid(h.Magic) {
		return Header{}, fmt.Errorf("%w: %x", ErrIncorrectMagic, h.Magic)
	}

	checksum, err := r.U32()
	if err != nil {
		return Header{}, fmt.Errorf("could not read checksum: %w", err)
	}
	signature, err := r.Bytes(20)
	if err != nil {
		return Header{}, fmt.Errorf("could not read signature: %w", err)
	}
	copy(h.Signature[:], signature)
	fileSize, err := r.U32()
	if err != nil {
		return Header{}, fmt.Errorf("could not read file_size: %w", err)
	}
	headerSz, err := r.U32()
	if err != nil {
		return Header{}, fmt.Errorf("could not read header_size: %w", err)
	}
	endianTag, err := r.U32()
	if err != nil {
		return Header{}, fmt.Errorf("could not read endian_tag: %w", err)
	}

	switch endianTag {
	case endianConstant:
	case reverseEndianConst:
		checksum = swap32(checksum)
		fileSize = swap32(fileSize)
		headerSz = swap32(headerSz)
	default:
		return Header{}, fmt.Errorf("%w: %#x", ErrInvalidEndianTag, endianTag)
	}
	h.Checksum = checksum
	h.FileSize = fileSize
	h.HeaderSize = headerSz
	h.EndianTag = endianTag

	if headerSz != headerSize {
		return Header{}, fmt.Errorf("%w: %#x", ErrIncorrectHeaderSize, headerSz)
	}
	if fileSize < headerSize {
		return Header{}, fmt.Errorf("%w: file_size %#x is smaller than the header", ErrInvalidFileSize, fileSize)
	}

	// Every remaining field is stored in the file's declared byte
	// order, which may now differ from the little-endian reader used
	// for the fixed prefix above.
	order := binary.ByteOrder(binary.LittleEndian)
	if endianTag == reverseEndianConst {
		order = binary.BigEndian
	}
	r2 := newReader(data, order, r.Offset())

	readPair := func() (uint32, uint32, error) {
		size, err := r2.U32()
		if err != nil {
			return 0, 0, err
		}
		offset, err := r2.U32()
		if err != nil {
			return 0, 0, err
		}
		return size, offset, nil
	}

	linkSize, linkOffset, err := readPair()
	if err != nil {
		return Header{}, fmt.Errorf("could not read link section: %w", err)
	}
	if linkSize == 0 && linkOffset != 0 {
		return Header{}, &OffsetError{Field: "link_offset", Expected: 0, Actual: linkOffset}
	}
	h.LinkSize, h.LinkOffset = linkSize, linkOffset

	mapOffset, err := r2.U32()
	if err != nil {
		return Header{}, fmt.Errorf("could not read map_offset: %w", err)
	}
	if mapOffset == 0 {
		return Header{}, &HeaderError{Msg: "map_offset was 0x00, and it can never be zero"}
	}
	h.MapOffset = mapOffset

	current := uint32(headerSize)

	checkSection := func(field string, size, offset, itemSize uint32) error {
		if size > 0 && offset != current {
			return &OffsetError{Field: field, Expected: current, Actual: offset}
		}
		if size == 0 && offset != 0 {
			return &OffsetError{Field: field, Expected: 0, Actual: offset}
		}
		// size*itemSize and current+that span are computed in uint64 so
		// a crafted size can't wrap the running uint32 offset back into
		// a value that looks consistent with the rest of the packed
		// layout while actually describing a multi-gigabyte table.
		next := uint64(current) + uint64(size)*uint64(itemSize)
		if next > uint64(fileSize) {
			return &HeaderError{Msg: fmt.Sprintf(
				"%s: section of %d items would extend past file_size (ends at %#x, file_size is %#x)", field, size, next, fileSize)}
		}
		current = uint32(next)
		return nil
	}

	stringIDsSize, stringIDsOffset, err := readPair()
	if err != nil {
		return Header{}, fmt.Errorf("could not read string_ids section: %w", err)
	}
	if err := checkSection("string_ids_offset", stringIDsSize, stringIDsOffset, stringIDItemSize); err != nil {
		return Header{}, err
	}
	h.StringIDsSize, h.StringIDsOffset = stringIDsSize, stringIDsOffset

	typeIDsSize, typeIDsOffset, err := readPair()
	if err != nil {
		return Header{}, fmt.Errorf("could not read type_ids section: %w", err)
	}
	if err := checkSection("type_ids_offset", typeIDsSize, typeIDsOffset, typeIDItemSize); err != nil {
		return Header{}, err
	}
	h.TypeIDsSize, h.TypeIDsOffset = typeIDsSize, typeIDsOffset

	protoIDsSize, protoIDsOffset, err := readPair()
	if err != nil {
		return Header{}, fmt.Errorf("could not read proto_ids section: %w", err)
	}
	if err := checkSection("proto_ids_offset", protoIDsSize, protoIDsOffset, protoIDItemSize); err != nil {
		return Header{}, err
	}
	h.ProtoIDsSize, h.ProtoIDsOffset = protoIDsSize, protoIDsOffset

	fieldIDsSize, fieldIDsOffset, err := readPair()
	if err != nil {
		return Header{}, fmt.Errorf("could not read field_ids section: %w", err)
	}
	if err := checkSection("field_ids_offset", fieldIDsSize, fieldIDsOffset, fieldIDItemSize); err != nil {
		return Header{}, err
	}
	h.FieldIDsSize, h.FieldIDsOffset = fieldIDsSize, fieldIDsOffset

	methodIDsSize, methodIDsOffset, err := readPair()
	if err != nil {
		return Header{}, fmt.Errorf("could not read method_ids section: %w", err)
	}
	if err := checkSection("method_ids_offset", methodIDsSize, methodIDsOffset, methodIDItemSize); err != nil {
		return Header{}, err
	}
	h.MethodIDsSize, h.MethodIDsOffset = methodIDsSize, methodIDsOffset

	classDefsSize, classDefsOffset, err := readPair()
	if err != nil {
		return Header{}, fmt.Errorf("could not read class_defs section: %w", err)
	}
	if err := checkSection("class_defs_offset", classDefsSize, classDefsOffset, classDefItemSize); err != nil {
		return Header{}, err
	}
	h.ClassDefsSize, h.ClassDefsOffset = classDefsSize, classDefsOffset

	dataSize, err := r2.U32()
	if err != nil {
		return Header{}, fmt.Errorf("could not read data_size: %w", err)
	}
	if dataSize&0b11 != 0 {
		return Header{}, &HeaderError{Msg: fmt.Sprintf("data_size must be a 4-byte multiple, got %#x", dataSize)}
	}
	h.DataSize = dataSize

	dataOffset, err := r2.U32()
	if err != nil {
		return Header{}, fmt.Errorf("could not read data_offset: %w", err)
	}
	h.DataOffset = dataOffset
	if dataOffset != current {
		// Some producers leave padding between the class defs table
		// and the data section; tolerate a gap rather than reject it.
		if anomalies != nil {
			*anomalies = append(*anomalies, AnoDataSectionGap)
		}
		current = dataOffset
	}
	current += dataSize

	if mapOffset < dataOffset || mapOffset > dataOffset+dataSize {
		return Header{}, &HeaderError{Msg: fmt.Sprintf(
			"map_offset %#x must fall inside the data section [%#x, %#x]", mapOffset, dataOffset, dataOffset+dataSize)}
	}
	if linkSize == 0 && current != fileSize {
		return Header{}, &HeaderError{Msg: fmt.Sprintf(
			"data section must end at EOF when there is no link section: data ends at %#x, file_size is %#x", current, fileSize)}
	}
	if linkSize != 0 {
		if linkOffset == 0 {
			return Header{}, &OffsetError{Field: "link_offset", Expected: current, Actual: 0}
		}
		if linkOffset != current {
			return Header{}, &OffsetError{Field: "link_offset", Expected: current, Actual: linkOffset}
		}
		if linkOffset+linkSize != fileSize {
			return Header{}, &HeaderError{Msg: "link_data section must end at the end of file"}
		}
	}

	return h, nil
}

func swap32(v uint32) uint32 {
	return v<<24 | (v<<8)&0x00ff0000 | (v>>8)&0x0000ff00 | v>>24
}

// generateOffsetMap seeds an offsetMap with every id table's start
// offset, ahead of the assembler visiting annotations, class data,
// code items, and the other variable-length sections whose offsets
// are only known once their owning class def or field/method id has
// been read.
func (h Header) generateOffsetMap() *offsetMap {
	m := newOffsetMap(7 + int(h.StringIDsSize))
	if h.StringIDsSize > 0 {
		m.insert(h.StringIDsOffset, OffsetStringIDList)
	}
	if h.TypeIDsSize > 0 {
		m.insert(h.TypeIDsOffset, OffsetTypeIDList)
	}
	if h.ProtoIDsSize > 0 {
		m.insert(h.ProtoIDsOffset, OffsetPrototypeIDList)
	}
	if h.FieldIDsSize > 0 {
		m.insert(h.FieldIDsOffset, OffsetFieldIDList)
	}
	if h.MethodIDsSize > 0 {
		m.insert(h.MethodIDsOffset, OffsetMethodIDList)
	}
	if h.ClassDefsSize > 0 {
		m.insert(h.ClassDefsOffset, OffsetClassDefList)
	}
	m.insert(h.MapOffset, OffsetMap)
	return m
}

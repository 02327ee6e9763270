// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dex decodes the structural layout of a Dalvik Executable
// (.dex) image: the fixed header, every id table, and every
// variable-length section the header or map_list points at, producing
// an immutable in-memory object graph a caller can walk by index or
// offset without touching the underlying bytes again.
package dex

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/dalvikdex/dex/log"
)

// Options configures how Parse walks an opened image.
type Options struct {
	// Fast stops after the header and id tables are parsed, skipping
	// class data, code items, debug info and annotations.
	Fast bool

	// MaxStringTableSize caps string_ids pre-reservation, by default the
	// number of items that could fit in the bytes remaining after
	// string_ids_off.
	MaxStringTableSize uint32

	// MaxTypeIDsSize caps type_ids pre-reservation the same way.
	MaxTypeIDsSize uint32

	// MaxClassDefsSize caps class_defs pre-reservation the same way.
	MaxClassDefsSize uint32

	// A custom logger.
	Logger log.Logger
}

// File represents an open DEX image and the object graph decoded
// from it.
type File struct {
	Header      Header
	Strings     *StringPool
	Types       []Type
	Prototypes  []PrototypeID
	Fields      []FieldID
	Methods     []MethodID
	ClassDefs   []ClassDefData
	Map         MapList
	TypeLists   map[uint32]TypeList
	ClassData   map[uint32]ClassData
	CodeItems   map[uint32]CodeItem
	DebugInfos  map[uint32]DebugInfo
	Annotations map[uint32]Annotation
	AnnotationSets    map[uint32]AnnotationSet
	AnnotationSetRefs map[uint32]AnnotationSetRefList
	AnnotationsDirs   map[uint32]AnnotationsDirectory
	EncodedArrays     map[uint32]Array

	Anomalies []string

	data   []byte
	mapped mmap.MMap
	f      *os.File
	opts   *Options
	logger *log.Helper

	stringDataOffsets     []uint32
	typeDescriptorIndices []uint32
}

// New opens name and memory-maps it for parsing.
func New(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := newFile(opts)
	file.data = data
	file.mapped = data
	file.f = f
	return file, nil
}

// NewBytes wraps an in-memory buffer for parsing, e.g. a DEX image
// already extracted from an APK's zip central directory.
func NewBytes(data []byte, opts *Options) (*File, error) {
	file := newFile(opts)
	file.data = data
	return file, nil
}

func newFile(opts *Options) *File {
	file := &File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}
	if file.opts.Logger == nil {
		file.logger = log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stdout), log.LevelError))
	} else {
		file.logger = log.NewHelper(file.opts.Logger)
	}
	return file
}

// Close unmaps and closes the underlying file, if New opened one.
func (f *File) Close() error {
	if f.mapped != nil {
		_ = f.mapped.Unmap()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Parse validates the header and decodes every id table and, unless
// Options.Fast is set, every variable-length section reachable from
// them or from map_list.
func (f *File) Parse() error {
	if len(f.data) < headerSize {
		return fmt.Errorf("%w: file is smaller than the header", ErrInvalidFileSize)
	}

	header, err := parseHeader(f.data, &f.Anomalies)
	if err != nil {
		return err
	}
	if int(header.FileSize) != len(f.data) {
		return fmt.Errorf("%w: header says %d, file is %d bytes", ErrHeaderFileSizeMismatch, header.FileSize, len(f.data))
	}
	f.Header = header

	order := binary.ByteOrder(binary.LittleEndian)
	if !header.LittleEndian() {
		order = binary.BigEndian
	}

	offsets := header.generateOffsetMap()

	if err := f.parseIDTables(order); err != nil {
		return err
	}

	mapReader := newReader(f.data, order, header.MapOffset)
	mapList, err := parseMapList(mapReader, offsets, f.addAnomaly)
	if err != nil {
		return fmt.Errorf("could not read map_list: %w", err)
	}
	f.Map = mapList

	if err := f.resolveStrings(order); err != nil {
		return err
	}
	if err := f.resolveTypes(); err != nil {
		return err
	}

	if f.opts.Fast {
		return nil
	}

	return f.parseSections(order, offsets)
}

// remainingItems returns how many itemSize-byte records could possibly
// fit between offset and the end of the buffer, the default cap used
// whenever the corresponding Options max field is left at zero.
func (f *File) remainingItems(offset, itemSize uint32) uint32 {
	if int(offset) > len(f.data) {
		return 0
	}
	return uint32(len(f.data)-int(offset)) / itemSize
}

// boundedCount validates declared against max (or, when max is zero,
// against the number of itemSize-byte records that could fit in the
// buffer from offset onward), rejecting a count that could never be
// satisfied by the file's actual size before a slice is pre-reserved
// for it.
func (f *File) boundedCount(field string, declared, max, offset, itemSize uint32) (uint32, error) {
	limit := max
	if limit == 0 {
		limit = f.remainingItems(offset, itemSize)
	}
	if declared > limit {
		return 0, fmt.Errorf("%w: %s declares %d items, limit is %d", ErrSectionTooLarge, field, declared, limit)
	}
	return declared, nil
}

// parseIDTables decodes string_ids through class_defs in the fixed
// order the header lays them out in. string_ids and type_ids are kept
// as raw offsets/indices; resolveStrings and resolveTypes turn them
// into the StringPool and Types this File exposes.
func (f *File) parseIDTables(order binary.ByteOrder) error {
	h := f.Header

	stringCount, err := f.boundedCount("string_ids", h.StringIDsSize, f.opts.MaxStringTableSize, h.StringIDsOffset, stringIDItemSize)
	if err != nil {
		return err
	}
	stringOffsets := make([]uint32, stringCount)
	r := newReader(f.data, order, h.StringIDsOffset)
	for i := range stringOffsets {
		off, err := r.U32()
		if err != nil {
			return fmt.Errorf("could not read string_ids[%d]: %w", i, err)
		}
		stringOffsets[i] = off
	}
	f.stringDataOffsets = stringOffsets

	typeCount, err := f.boundedCount("type_ids", h.TypeIDsSize, f.opts.MaxTypeIDsSize, h.TypeIDsOffset, typeIDItemSize)
	if err != nil {
		return err
	}
	typeIndices := make([]uint32, typeCount)
	r = newReader(f.data, order, h.TypeIDsOffset)
	for i := range typeIndices {
		idx, err := r.U32()
		if err != nil {
			return fmt.Errorf("could not read type_ids[%d]: %w", i, err)
		}
		typeIndices[i] = idx
	}
	f.typeDescriptorIndices = typeIndices

	protoCount, err := f.boundedCount("proto_ids", h.ProtoIDsSize, 0, h.ProtoIDsOffset, protoIDItemSize)
	if err != nil {
		return err
	}
	r = newReader(f.data, order, h.ProtoIDsOffset)
	protos := make([]PrototypeID, 0, protoCount)
	for i := uint32(0); i < h.ProtoIDsSize; i++ {
		p, err := parsePrototypeID(r)
		if err != nil {
			return fmt.Errorf("could not read proto_ids[%d]: %w", i, err)
		}
		protos = append(protos, p)
	}
	f.Prototypes = protos

	fieldCount, err := f.boundedCount("field_ids", h.FieldIDsSize, 0, h.FieldIDsOffset, fieldIDItemSize)
	if err != nil {
		return err
	}
	r = newReader(f.data, order, h.FieldIDsOffset)
	fields := make([]FieldID, 0, fieldCount)
	for i := uint32(0); i < h.FieldIDsSize; i++ {
		fd, err := parseFieldID(r)
		if err != nil {
			return fmt.Errorf("could not read field_ids[%d]: %w", i, err)
		}
		fields = append(fields, fd)
	}
	f.Fields = fields

	methodCount, err := f.boundedCount("method_ids", h.MethodIDsSize, 0, h.MethodIDsOffset, methodIDItemSize)
	if err != nil {
		return err
	}
	r = newReader(f.data, order, h.MethodIDsOffset)
	methods := make([]MethodID, 0, methodCount)
	for i := uint32(0); i < h.MethodIDsSize; i++ {
		md, err := parseMethodID(r)
		if err != nil {
			return fmt.Errorf("could not read method_ids[%d]: %w", i, err)
		}
		methods = append(methods, md)
	}
	f.Methods = methods

	classDefCount, err := f.boundedCount("class_defs", h.ClassDefsSize, f.opts.MaxClassDefsSize, h.ClassDefsOffset, classDefItemSize)
	if err != nil {
		return err
	}
	r = newReader(f.data, order, h.ClassDefsOffset)
	classDefs := make([]ClassDefData, 0, classDefCount)
	for i := uint32(0); i < h.ClassDefsSize; i++ {
		cd, err := parseClassDefData(r)
		if err != nil {
			return fmt.Errorf("could not read class_defs[%d]: %w", i, err)
		}
		classDefs = append(classDefs, cd)
	}
	f.ClassDefs = classDefs

	return nil
}

// resolveStrings decodes every string_data_item pointed at by
// string_ids, in index order, into f.Strings.
func (f *File) resolveStrings(order binary.ByteOrder) error {
	pool := newStringPool(len(f.stringDataOffsets))
	for i, off := range f.stringDataOffsets {
		r := newReader(f.data, order, off)
		s, err := r.mutf8String()
		if err != nil {
			return fmt.Errorf("could not read string_data_item for string_ids[%d]: %w", i, err)
		}
		pool.add(s)
	}
	f.Strings = pool
	return nil
}

// resolveTypes looks up each type_id's descriptor string and parses
// it into a Type.
func (f *File) resolveTypes() error {
	types := make([]Type, 0, len(f.typeDescriptorIndices))
	for i, nameIdx := range f.typeDescriptorIndices {
		name, err := f.Strings.Get(nameIdx)
		if err != nil {
			return fmt.Errorf("could not resolve type_ids[%d] descriptor: %w", i, err)
		}
		t, err := parseTypeDescriptor(name)
		if err != nil {
			return fmt.Errorf("could not parse type_ids[%d] descriptor %q: %w", i, name, err)
		}
		types = append(types, t)
	}
	f.Types = types
	return nil
}

// parseSections walks every variable-length section this decoder
// knows about: class data (and, transitively, the code items and type
// lists it points at), annotations directories, and the prototype
// parameter type lists gathered while parsing proto_ids. Sections are
// addressed by offset rather than by a sequential scan, since nothing
// about their placement is guaranteed relative to one another.
func (f *File) parseSections(order binary.ByteOrder, offsets *offsetMap) error {
	f.TypeLists = make(map[uint32]TypeList)
	f.ClassData = make(map[uint32]ClassData)
	f.CodeItems = make(map[uint32]CodeItem)
	f.DebugInfos = make(map[uint32]DebugInfo)
	f.Annotations = make(map[uint32]Annotation)
	f.AnnotationSets = make(map[uint32]AnnotationSet)
	f.AnnotationSetRefs = make(map[uint32]AnnotationSetRefList)
	f.AnnotationsDirs = make(map[uint32]AnnotationsDirectory)
	f.EncodedArrays = make(map[uint32]Array)

	for _, p := range f.Prototypes {
		if p.ParametersOffset != 0 {
			offsets.insert(p.ParametersOffset, OffsetTypeList)
		}
	}
	for _, cd := range f.ClassDefs {
		if cd.InterfacesOffset != 0 {
			offsets.insert(cd.InterfacesOffset, OffsetTypeList)
		}
		if cd.AnnotationsOffset != 0 {
			offsets.insert(cd.AnnotationsOffset, OffsetAnnotationsDirectory)
		}
		if cd.ClassDataOffset != 0 {
			offsets.insert(cd.ClassDataOffset, OffsetClassData)
		}
		if cd.StaticValuesOffset != 0 {
			offsets.insert(cd.StaticValuesOffset, OffsetEncodedArray)
		}
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetTypeList) {
		r := newReader(f.data, order, off)
		tl, err := parseTypeList(r)
		if err != nil {
			return fmt.Errorf("could not read type_list at %#x: %w", off, err)
		}
		f.TypeLists[off] = tl
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetAnnotationsDirectory) {
		r := newReader(f.data, order, off)
		dir, err := parseAnnotationsDirectory(r, offsets)
		if err != nil {
			return fmt.Errorf("could not read annotations_directory_item at %#x: %w", off, err)
		}
		f.AnnotationsDirs[off] = dir
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetAnnotationSetList) {
		r := newReader(f.data, order, off)
		refs, err := parseAnnotationSetRefList(r, offsets)
		if err != nil {
			return fmt.Errorf("could not read annotation_set_ref_list at %#x: %w", off, err)
		}
		f.AnnotationSetRefs[off] = refs
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetAnnotationSet) {
		r := newReader(f.data, order, off)
		set, err := parseAnnotationSet(r, offsets)
		if err != nil {
			return fmt.Errorf("could not read annotation_set_item at %#x: %w", off, err)
		}
		f.AnnotationSets[off] = set
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetAnnotation) {
		r := newReader(f.data, order, off)
		ann, err := parseAnnotation(r)
		if err != nil {
			return fmt.Errorf("could not read annotation_item at %#x: %w", off, err)
		}
		f.Annotations[off] = ann
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetEncodedArray) {
		r := newReader(f.data, order, off)
		arr, err := parseArray(r)
		if err != nil {
			return fmt.Errorf("could not read encoded_array_item at %#x: %w", off, err)
		}
		f.EncodedArrays[off] = arr
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetClassData) {
		r := newReader(f.data, order, off)
		cd, err := parseClassData(r)
		if err != nil {
			return fmt.Errorf("could not read class_data_item at %#x: %w", off, err)
		}
		if cd.IsEmpty() {
			f.addAnomaly(AnoEmptyClassData)
		}
		f.ClassData[off] = cd

		for _, m := range cd.DirectMethods {
			if m.CodeOffset != 0 {
				offsets.insert(m.CodeOffset, OffsetCode)
			}
		}
		for _, m := range cd.VirtualMethods {
			if m.CodeOffset != 0 {
				offsets.insert(m.CodeOffset, OffsetCode)
			}
		}
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetCode) {
		r := newReader(f.data, order, off)
		ci, err := parseCodeItem(r)
		if err != nil {
			return fmt.Errorf("could not read code_item at %#x: %w", off, err)
		}
		f.CodeItems[off] = ci
		if ci.DebugInfoOffset != 0 {
			offsets.insert(ci.DebugInfoOffset, OffsetDebugInfo)
		}
	}

	for _, off := range uniqueNonZeroOffsets(offsets, OffsetDebugInfo) {
		r := newReader(f.data, order, off)
		di, err := parseDebugInfo(r)
		if err != nil {
			return fmt.Errorf("could not read debug_info_item at %#x: %w", off, err)
		}
		f.DebugInfos[off] = di
	}

	return nil
}

// uniqueNonZeroOffsets returns every offset recorded in m under typ,
// in ascending order. The class_data and code_item loops above insert
// new entries into m as they discover code and debug offsets, so this
// is called once per phase rather than iterated live against m.
func uniqueNonZeroOffsets(m *offsetMap, typ OffsetType) []uint32 {
	var out []uint32
	for i := 0; i < m.len(); i++ {
		e := m.entries[i]
		if e.typ == typ && e.offset != 0 {
			out = append(out, e.offset)
		}
	}
	return out
}

// VerifyChecksum recomputes the adler32 checksum over everything past
// the checksum field and compares it against header.checksum, adding
// AnoChecksumMismatch on mismatch instead of failing outright: a
// mismatched checksum means the file was altered after being signed,
// not that this decoder misread it.
func (f *File) VerifyChecksum() bool {
	sum := adler32.Checksum(f.data[12:])
	ok := sum == f.Header.Checksum
	if !ok {
		f.addAnomaly(AnoChecksumMismatch)
	}
	return ok
}

// VerifySHA1 recomputes the SHA-1 digest over everything past the
// signature field and compares it against header.signature.
func (f *File) VerifySHA1() bool {
	sum := sha1.Sum(f.data[32:])
	ok := sum == f.Header.Signature
	if !ok {
		f.addAnomaly(AnoSignatureMismatch)
	}
	return ok
}

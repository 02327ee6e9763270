// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "fmt"

// FieldAnnotationsOffset pairs a field_ids index with the offset of
// its annotation_set_item.
type FieldAnnotationsOffset struct {
	FieldIndex uint32
	Offset     uint32
}

// MethodAnnotationsOffset pairs a method_ids index with the offset of
// its annotation_set_item.
type MethodAnnotationsOffset struct {
	MethodIndex uint32
	Offset      uint32
}

// ParameterAnnotationsOffset pairs a method_ids index with the offset
// of its annotation_set_ref_list (one annotation set per parameter).
type ParameterAnnotationsOffset struct {
	MethodIndex uint32
	Offset      uint32
}

// AnnotationsDirectory is an annotations_directory_item: the class's
// own annotations plus the per-field, per-method, and per-parameter
// annotation offset lists.
type AnnotationsDirectory struct {
	ClassAnnotationsOffset uint32 // 0 if absent
	FieldAnnotations       []FieldAnnotationsOffset
	MethodAnnotations      []MethodAnnotationsOffset
	ParameterAnnotations   []ParameterAnnotationsOffset
}

func parseAnnotationsDirectory(r *reader, m *offsetMap) (AnnotationsDirectory, error) {
	classAnnotationsOff, err := r.U32()
	if err != nil {
		return AnnotationsDirectory{}, fmt.Errorf("could not read class_annotations_off: %w", err)
	}
	if classAnnotationsOff != 0 {
		m.insert(classAnnotationsOff, OffsetAnnotationSet)
	}

	fieldsSize, err := r.U32()
	if err != nil {
		return AnnotationsDirectory{}, fmt.Errorf("could not read fields_size: %w", err)
	}
	methodsSize, err := r.U32()
	if err != nil {
		return AnnotationsDirectory{}, fmt.Errorf("could not read annotated_methods_size: %w", err)
	}
	paramsSize, err := r.U32()
	if err != nil {
		return AnnotationsDirectory{}, fmt.Errorf("could not read annotated_parameters_size: %w", err)
	}

	fields := make([]FieldAnnotationsOffset, 0, fieldsSize)
	for i := uint32(0); i < fieldsSize; i++ {
		fieldIdx, err := r.U32()
		if err != nil {
			return AnnotationsDirectory{}, fmt.Errorf("could not read field_annotation %d field_idx: %w", i, err)
		}
		offset, err := r.U32()
		if err != nil {
			return AnnotationsDirectory{}, fmt.Errorf("could not read field_annotation %d offset: %w", i, err)
		}
		m.insert(offset, OffsetAnnotationSet)
		fields = append(fields, FieldAnnotationsOffset{FieldIndex: fieldIdx, Offset: offset})
	}

	methods := make([]MethodAnnotationsOffset, 0, methodsSize)
	for i := uint32(0); i < methodsSize; i++ {
		methodIdx, err := r.U32()
		if err != nil {
			return AnnotationsDirectory{}, fmt.Errorf("could not read method_annotation %d method_idx: %w", i, err)
		}
		offset, err := r.U32()
		if err != nil {
			return AnnotationsDirectory{}, fmt.Errorf("could not read method_annotation %d offset: %w", i, err)
		}
		m.insert(offset, OffsetAnnotationSet)
		methods = append(methods, MethodAnnotationsOffset{MethodIndex: methodIdx, Offset: offset})
	}

	params := make([]ParameterAnnotationsOffset, 0, paramsSize)
	for i := uint32(0); i < paramsSize; i++ {
		methodIdx, err := r.U32()
		if err != nil {
			return AnnotationsDirectory{}, fmt.Errorf("could not read parameter_annotation %d method_idx: %w", i, err)
		}
		offset, err := r.U32()
		if err != nil {
			return AnnotationsDirectory{}, fmt.Errorf("could not read parameter_annotation %d offset: %w", i, err)
		}
		m.insert(offset, OffsetAnnotationSetList)
		params = append(params, ParameterAnnotationsOffset{MethodIndex: methodIdx, Offset: offset})
	}

	return AnnotationsDirectory{
		ClassAnnotationsOffset: classAnnotationsOff,
		FieldAnnotations:       fields,
		MethodAnnotations:      methods,
		ParameterAnnotations:   params,
	}, nil
}

// TypeList is a type_list: an array of type_ids indices, used for a
// method's parameter list and a class's interfaces list.
type TypeList struct {
	TypeIndices []uint16
}

// parseTypeList reads a size-prefixed type_list and consumes the
// 2-byte pad that follows an odd-length list to keep the next section
// 4-byte aligned.
func parseTypeList(r *reader) (TypeList, error) {
	size, err := r.U32()
	if err != nil {
		return TypeList{}, fmt.Errorf("could not read type_list size: %w", err)
	}
	indices := make([]uint16, 0, size)
	for i := uint32(0); i < size; i++ {
		idx, err := r.U16()
		if err != nil {
			return TypeList{}, fmt.Errorf("could not read type_list entry %d: %w", i, err)
		}
		indices = append(indices, idx)
	}
	if size&1 != 0 {
		if err := r.SkipPad2(); err != nil {
			return TypeList{}, fmt.Errorf("could not skip type_list padding: %w", err)
		}
	}
	return TypeList{TypeIndices: indices}, nil
}

// AnnotationSetRefList is a list of annotation_set_item offsets, one
// per formal parameter (used for parameter annotations). A 0 offset
// means that parameter has no annotations.
type AnnotationSetRefList struct {
	Offsets []uint32
}

func parseAnnotationSetRefList(r *reader, m *offsetMap) (AnnotationSetRefList, error) {
	size, err := r.U32()
	if err != nil {
		return AnnotationSetRefList{}, fmt.Errorf("could not read size: %w", err)
	}
	offsets := make([]uint32, 0, size)
	for i := uint32(0); i < size; i++ {
		offset, err := r.U32()
		if err != nil {
			return AnnotationSetRefList{}, fmt.Errorf("could not read annotated_ref %d: %w", i, err)
		}
		if offset != 0 {
			m.insert(offset, OffsetAnnotationSet)
		}
		offsets = append(offsets, offset)
	}
	return AnnotationSetRefList{Offsets: offsets}, nil
}

// AnnotationSet is an annotation_set_item: a sorted list of offsets to
// annotation_item entries.
type AnnotationSet struct {
	Offsets []uint32
}

func parseAnnotationSet(r *reader, m *offsetMap) (AnnotationSet, error) {
	size, err := r.U32()
	if err != nil {
		return AnnotationSet{}, fmt.Errorf("could not read size: %w", err)
	}
	offsets := make([]uint32, 0, size)
	for i := uint32(0); i < size; i++ {
		offset, err := r.U32()
		if err != nil {
			return AnnotationSet{}, fmt.Errorf("could not read entry %d: %w", i, err)
		}
		m.insert(offset, OffsetAnnotation)
		offsets = append(offsets, offset)
	}
	return AnnotationSet{Offsets: offsets}, nil
}

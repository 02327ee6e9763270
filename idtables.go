// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "fmt"

// PrototypeID is one entry of the proto_ids table: a method shorty plus
// the indices needed to resolve its full return type and parameter
// list.
type PrototypeID struct {
	ShortyIndex     uint32
	ReturnTypeIndex uint32
	ParametersOffset uint32 // 0 when the prototype has no parameters
}

func parsePrototypeID(r *reader) (PrototypeID, error) {
	shortyIdx, err := r.U32()
	if err != nil {
		return PrototypeID{}, fmt.Errorf("could not read shorty_idx: %w", err)
	}
	returnTypeIdx, err := r.U32()
	if err != nil {
		return PrototypeID{}, fmt.Errorf("could not read return_type_idx: %w", err)
	}
	parametersOff, err := r.U32()
	if err != nil {
		return PrototypeID{}, fmt.Errorf("could not read parameters_off: %w", err)
	}
	return PrototypeID{
		ShortyIndex:      shortyIdx,
		ReturnTypeIndex:  returnTypeIdx,
		ParametersOffset: parametersOff,
	}, nil
}

// FieldID is one entry of the field_ids table.
type FieldID struct {
	ClassIndex uint16
	TypeIndex  uint16
	NameIndex  uint32
}

func parseFieldID(r *reader) (FieldID, error) {
	classIdx, err := r.U16()
	if err != nil {
		return FieldID{}, fmt.Errorf("could not read class_idx: %w", err)
	}
	typeIdx, err := r.U16()
	if err != nil {
		return FieldID{}, fmt.Errorf("could not read type_idx: %w", err)
	}
	nameIdx, err := r.U32()
	if err != nil {
		return FieldID{}, fmt.Errorf("could not read name_idx: %w", err)
	}
	return FieldID{ClassIndex: classIdx, TypeIndex: typeIdx, NameIndex: nameIdx}, nil
}

// MethodID is one entry of the method_ids table.
type MethodID struct {
	ClassIndex uint16
	ProtoIndex uint16
	NameIndex  uint32
}

func parseMethodID(r *reader) (MethodID, error) {
	classIdx, err := r.U16()
	if err != nil {
		return MethodID{}, fmt.Errorf("could not read class_idx: %w", err)
	}
	protoIdx, err := r.U16()
	if err != nil {
		return MethodID{}, fmt.Errorf("could not read proto_idx: %w", err)
	}
	nameIdx, err := r.U32()
	if err != nil {
		return MethodID{}, fmt.Errorf("could not read name_idx: %w", err)
	}
	return MethodID{ClassIndex: classIdx, ProtoIndex: protoIdx, NameIndex: nameIdx}, nil
}

// ClassDefData is one entry of the class_defs table. Sentinel values
// (noIndex for indices, 0 for offsets) are reported back as their raw
// form; callers that want "has a superclass" style checks compare
// against those sentinels directly, matching the fields they read.
type ClassDefData struct {
	ClassIndex         uint32
	AccessFlags        AccessFlags
	SuperclassIndex    uint32 // noIndex if absent
	InterfacesOffset   uint32 // 0 if absent
	SourceFileIndex    uint32 // noIndex if absent
	AnnotationsOffset  uint32 // 0 if absent
	ClassDataOffset    uint32 // 0 if absent
	StaticValuesOffset uint32 // 0 if absent
}

func parseClassDefData(r *reader) (ClassDefData, error) {
	classIdx, err := r.U32()
	if err != nil {
		return ClassDefData{}, fmt.Errorf("could not read class_idx: %w", err)
	}
	accessFlags, err := r.U32()
	if err != nil {
		return ClassDefData{}, fmt.Errorf("could not read access_flags: %w", err)
	}
	if err := validateAccessFlags(AccessFlags(accessFlags)); err != nil {
		return ClassDefData{}, err
	}
	superclassIdx, err := r.U32()
	if err != nil {
		return ClassDefData{}, fmt.Errorf("could not read superclass_idx: %w", err)
	}
	interfacesOff, err := r.U32()
	if err != nil {
		return ClassDefData{}, fmt.Errorf("could not read interfaces_off: %w", err)
	}
	sourceFileIdx, err := r.U32()
	if err != nil {
		return ClassDefData{}, fmt.Errorf("could not read source_file_idx: %w", err)
	}
	annotationsOff, err := r.U32()
	if err != nil {
		return ClassDefData{}, fmt.Errorf("could not read annotations_off: %w", err)
	}
	classDataOff, err := r.U32()
	if err != nil {
		return ClassDefData{}, fmt.Errorf("could not read class_data_off: %w", err)
	}
	staticValuesOff, err := r.U32()
	if err != nil {
		return ClassDefData{}, fmt.Errorf("could not read static_values_off: %w", err)
	}
	return ClassDefData{
		ClassIndex:         classIdx,
		AccessFlags:        AccessFlags(accessFlags),
		SuperclassIndex:    superclassIdx,
		InterfacesOffset:   interfacesOff,
		SourceFileIndex:    sourceFileIdx,
		AnnotationsOffset:  annotationsOff,
		ClassDataOffset:    classDataOff,
		StaticValuesOffset: staticValuesOff,
	}, nil
}

// HasSuperclass reports whether the class def names a superclass
// (false only for java.lang.Object).
func (c ClassDefData) HasSuperclass() bool { return c.SuperclassIndex != noIndex }

// HasSourceFile reports whether the class def names a source file.
func (c ClassDefData) HasSourceFile() bool { return c.SourceFileIndex != noIndex }

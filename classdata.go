// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "fmt"

// EncodedField is one field declared inside a class_data_item: a
// field_ids index (already resolved from the delta encoding) plus its
// access flags.
type EncodedField struct {
	FieldIndex  uint32
	AccessFlags AccessFlags
}

// EncodedMethod is one method declared inside a class_data_item: a
// method_ids index, its access flags, and the offset of its code_item
// (0 if the method is abstract or native).
type EncodedMethod struct {
	MethodIndex uint32
	AccessFlags AccessFlags
	CodeOffset  uint32
}

// ClassData is a class_data_item: the class's static fields, instance
// fields, direct methods, and virtual methods, each stored with a
// delta-encoded id that this parser has already resolved to absolute
// field_ids/method_ids indices.
type ClassData struct {
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []EncodedMethod
	VirtualMethods []EncodedMethod
}

// IsEmpty reports whether every category is empty, the condition that
// makes a non-zero class_data_off anomalous.
func (c ClassData) IsEmpty() bool {
	return len(c.StaticFields) == 0 && len(c.InstanceFields) == 0 &&
		len(c.DirectMethods) == 0 && len(c.VirtualMethods) == 0
}

func parseClassData(r *reader) (ClassData, error) {
	staticFieldsSize, _, err := r.Uleb128()
	if err != nil {
		return ClassData{}, fmt.Errorf("could not read static_fields_size: %w", err)
	}
	instanceFieldsSize, _, err := r.Uleb128()
	if err != nil {
		return ClassData{}, fmt.Errorf("could not read instance_fields_size: %w", err)
	}
	directMethodsSize, _, err := r.Uleb128()
	if err != nil {
		return ClassData{}, fmt.Errorf("could not read direct_methods_size: %w", err)
	}
	virtualMethodsSize, _, err := r.Uleb128()
	if err != nil {
		return ClassData{}, fmt.Errorf("could not read virtual_methods_size: %w", err)
	}

	staticFields, err := readEncodedFields(r, staticFieldsSize)
	if err != nil {
		return ClassData{}, fmt.Errorf("could not read static fields: %w", err)
	}
	instanceFields, err := readEncodedFields(r, instanceFieldsSize)
	if err != nil {
		return ClassData{}, fmt.Errorf("could not read instance fields: %w", err)
	}
	directMethods, err := readEncodedMethods(r, directMethodsSize)
	if err != nil {
		return ClassData{}, fmt.Errorf("could not read direct methods: %w", err)
	}
	virtualMethods, err := readEncodedMethods(r, virtualMethodsSize)
	if err != nil {
		return ClassData{}, fmt.Errorf("could not read virtual methods: %w", err)
	}

	return ClassData{
		StaticFields:   staticFields,
		InstanceFields: instanceFields,
		DirectMethods:  directMethods,
		VirtualMethods: virtualMethods,
	}, nil
}

// readEncodedFields reads count encoded_field entries: the first
// field_idx is absolute, every following one is a strictly positive
// delta from the previous, which this function folds into an absolute
// index and rejects if non-positive (ErrNonMonotonicID).
func readEncodedFields(r *reader, count uint32) ([]EncodedField, error) {
	if count == 0 {
		return nil, nil
	}
	fields := make([]EncodedField, 0, count)

	fieldIdx, _, err := r.Uleb128()
	if err != nil {
		return nil, fmt.Errorf("could not read field_idx_diff: %w", err)
	}
	accessFlags, _, err := r.Uleb128()
	if err != nil {
		return nil, fmt.Errorf("could not read access_flags: %w", err)
	}
	if err := validateAccessFlags(AccessFlags(accessFlags)); err != nil {
		return nil, err
	}
	fields = append(fields, EncodedField{FieldIndex: fieldIdx, AccessFlags: AccessFlags(accessFlags)})

	last := fieldIdx
	for i := uint32(1); i < count; i++ {
		diff, _, err := r.Uleb128()
		if err != nil {
			return nil, fmt.Errorf("could not read field_idx_diff %d: %w", i, err)
		}
		if diff == 0 {
			return nil, fmt.Errorf("%w: field_idx_diff %d is zero", ErrNonMonotonicID, i)
		}
		last += diff
		accessFlags, _, err := r.Uleb128()
		if err != nil {
			return nil, fmt.Errorf("could not read access_flags %d: %w", i, err)
		}
		if err := validateAccessFlags(AccessFlags(accessFlags)); err != nil {
			return nil, err
		}
		fields = append(fields, EncodedField{FieldIndex: last, AccessFlags: AccessFlags(accessFlags)})
	}
	return fields, nil
}

// readEncodedMethods mirrors readEncodedFields for encoded_method
// entries, which additionally carry a uleb128 code_off (0 meaning the
// method has no code, as for abstract and native methods).
func readEncodedMethods(r *reader, count uint32) ([]EncodedMethod, error) {
	if count == 0 {
		return nil, nil
	}
	methods := make([]EncodedMethod, 0, count)

	methodIdx, _, err := r.Uleb128()
	if err != nil {
		return nil, fmt.Errorf("could not read method_idx_diff: %w", err)
	}
	accessFlags, _, err := r.Uleb128()
	if err != nil {
		return nil, fmt.Errorf("could not read access_flags: %w", err)
	}
	if err := validateAccessFlags(AccessFlags(accessFlags)); err != nil {
		return nil, err
	}
	codeOff, _, err := r.Uleb128()
	if err != nil {
		return nil, fmt.Errorf("could not read code_off: %w", err)
	}
	methods = append(methods, EncodedMethod{MethodIndex: methodIdx, AccessFlags: AccessFlags(accessFlags), CodeOffset: codeOff})

	last := methodIdx
	for i := uint32(1); i < count; i++ {
		diff, _, err := r.Uleb128()
		if err != nil {
			return nil, fmt.Errorf("could not read method_idx_diff %d: %w", i, err)
		}
		if diff == 0 {
			return nil, fmt.Errorf("%w: method_idx_diff %d is zero", ErrNonMonotonicID, i)
		}
		last += diff
		accessFlags, _, err := r.Uleb128()
		if err != nil {
			return nil, fmt.Errorf("could not read access_flags %d: %w", i, err)
		}
		if err := validateAccessFlags(AccessFlags(accessFlags)); err != nil {
			return nil, err
		}
		codeOff, _, err := r.Uleb128()
		if err != nil {
			return nil, fmt.Errorf("could not read code_off %d: %w", i, err)
		}
		methods = append(methods, EncodedMethod{MethodIndex: last, AccessFlags: AccessFlags(accessFlags), CodeOffset: codeOff})
	}
	return methods, nil
}

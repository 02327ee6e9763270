// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestParsePrototypeID(t *testing.T) {
	data := []byte{
		0x01, 0x00, 0x00, 0x00, // shorty_idx
		0x02, 0x00, 0x00, 0x00, // return_type_idx
		0x00, 0x00, 0x00, 0x00, // parameters_off
	}
	r := newReader(data, binary.LittleEndian, 0)
	p, err := parsePrototypeID(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ShortyIndex != 1 || p.ReturnTypeIndex != 2 || p.ParametersOffset != 0 {
		t.Fatalf("got %+v", p)
	}
}

func TestParseFieldID(t *testing.T) {
	data := []byte{
		0x0a, 0x00, // class_idx
		0x0b, 0x00, // type_idx
		0x0c, 0x00, 0x00, 0x00, // name_idx
	}
	r := newReader(data, binary.LittleEndian, 0)
	f, err := parseFieldID(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ClassIndex != 0x0a || f.TypeIndex != 0x0b || f.NameIndex != 0x0c {
		t.Fatalf("got %+v", f)
	}
}

func TestParseMethodID(t *testing.T) {
	data := []byte{
		0x01, 0x00,
		0x02, 0x00,
		0x03, 0x00, 0x00, 0x00,
	}
	r := newReader(data, binary.LittleEndian, 0)
	m, err := parseMethodID(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ClassIndex != 1 || m.ProtoIndex != 2 || m.NameIndex != 3 {
		t.Fatalf("got %+v", m)
	}
}

func TestParseClassDefDataSentinels(t *testing.T) {
	data := make([]byte, classDefItemSize)
	binary.LittleEndian.PutUint32(data[0:], 0)               // class_idx
	binary.LittleEndian.PutUint32(data[4:], uint32(AccPublic)) // access_flags
	binary.LittleEndian.PutUint32(data[8:], noIndex)          // superclass_idx
	binary.LittleEndian.PutUint32(data[12:], 0)               // interfaces_off
	binary.LittleEndian.PutUint32(data[16:], noIndex)         // source_file_idx
	binary.LittleEndian.PutUint32(data[20:], 0)               // annotations_off
	binary.LittleEndian.PutUint32(data[24:], 0)               // class_data_off
	binary.LittleEndian.PutUint32(data[28:], 0)               // static_values_off

	r := newReader(data, binary.LittleEndian, 0)
	c, err := parseClassDefData(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.HasSuperclass() {
		t.Fatalf("HasSuperclass() = true, want false for NO_INDEX")
	}
	if c.HasSourceFile() {
		t.Fatalf("HasSourceFile() = true, want false for NO_INDEX")
	}
	if !c.AccessFlags.Has(AccPublic) {
		t.Fatalf("AccessFlags = %v, want AccPublic set", c.AccessFlags)
	}
}

func TestParseClassDefDataInvalidAccessFlags(t *testing.T) {
	data := make([]byte, classDefItemSize)
	binary.LittleEndian.PutUint32(data[4:], 0x80000000) // outside known mask
	r := newReader(data, binary.LittleEndian, 0)
	if _, err := parseClassDefData(r); !errors.Is(err, ErrInvalidAccessFlags) {
		t.Fatalf("error = %v, want ErrInvalidAccessFlags", err)
	}
}

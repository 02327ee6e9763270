// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestParseMinimalImage(t *testing.T) {
	buf := minimalHeaderFixture("035")
	f, err := NewBytes(buf, nil)
	if err != nil {
		t.Fatalf("NewBytes() error = %v", err)
	}
	if err := f.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Header.Version() != 35 {
		t.Fatalf("Version() = %d, want 35", f.Header.Version())
	}
	if f.Strings == nil || f.Strings.Len() != 0 {
		t.Fatalf("Strings = %+v, want empty pool", f.Strings)
	}
	if len(f.Map.Items) != 0 {
		t.Fatalf("Map.Items = %+v, want empty", f.Map.Items)
	}
	if len(f.ClassData) != 0 || len(f.CodeItems) != 0 {
		t.Fatalf("expected no class data or code items decoded")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestParseFastSkipsSections(t *testing.T) {
	buf := minimalHeaderFixture("035")
	f, err := NewBytes(buf, &Options{Fast: true})
	if err != nil {
		t.Fatalf("NewBytes() error = %v", err)
	}
	if err := f.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.ClassData != nil {
		t.Fatalf("ClassData = %+v, want nil (Fast mode should skip parseSections)", f.ClassData)
	}
	if f.Map.Items == nil {
		t.Fatalf("Map should still be populated in Fast mode")
	}
}

func TestParseRejectsFileSizeMismatch(t *testing.T) {
	buf := minimalHeaderFixture("035")
	buf = append(buf, 0x00) // one extra byte the header doesn't know about
	f, err := NewBytes(buf, nil)
	if err != nil {
		t.Fatalf("NewBytes() error = %v", err)
	}
	if err := f.Parse(); err == nil {
		t.Fatalf("Parse() error = nil, want ErrHeaderFileSizeMismatch")
	}
}

func TestBoundedCountDefaultsToRemainingBuffer(t *testing.T) {
	f := &File{data: make([]byte, 100)}
	// 6 u32 entries (24 bytes) fit in the 40 bytes remaining after offset 60.
	if _, err := f.boundedCount("string_ids", 6, 0, 60, stringIDItemSize); err != nil {
		t.Fatalf("boundedCount() error = %v, want nil", err)
	}
	// 11 u32 entries (44 bytes) do not fit in the 40 bytes remaining.
	if _, err := f.boundedCount("string_ids", 11, 0, 60, stringIDItemSize); !errors.Is(err, ErrSectionTooLarge) {
		t.Fatalf("boundedCount() error = %v, want ErrSectionTooLarge", err)
	}
}

func TestBoundedCountHonorsExplicitMax(t *testing.T) {
	f := &File{data: make([]byte, 1 << 20)}
	if _, err := f.boundedCount("class_defs", 5, 4, 0, classDefItemSize); !errors.Is(err, ErrSectionTooLarge) {
		t.Fatalf("boundedCount() error = %v, want ErrSectionTooLarge", err)
	}
	if _, err := f.boundedCount("class_defs", 4, 4, 0, classDefItemSize); err != nil {
		t.Fatalf("boundedCount() error = %v, want nil", err)
	}
}

func TestParseRejectsOversizedStringIDsOption(t *testing.T) {
	// A two-entry string_ids table immediately after the header,
	// followed by a 4-byte data section map_offset points into.
	const stringIDsOffset = headerSize
	const dataOffset = headerSize + 8
	buf := make([]byte, dataOffset+4)
	copy(buf[0:4], []byte{'d', 'e', 'x', 0x0a})
	copy(buf[4:7], "035")
	buf[7] = 0x00
	binary.LittleEndian.PutUint32(buf[0x20:0x24], uint32(len(buf))) // file_size
	binary.LittleEndian.PutUint32(buf[0x24:0x28], headerSize)       // header_size
	binary.LittleEndian.PutUint32(buf[0x28:0x2c], endianConstant)
	binary.LittleEndian.PutUint32(buf[0x34:0x38], dataOffset) // map_offset
	binary.LittleEndian.PutUint32(buf[0x38:0x3c], 2)          // string_ids_size
	binary.LittleEndian.PutUint32(buf[0x3c:0x40], stringIDsOffset)
	binary.LittleEndian.PutUint32(buf[0x68:0x6c], 4)         // data_size
	binary.LittleEndian.PutUint32(buf[0x6c:0x70], dataOffset) // data_offset

	f, err := NewBytes(buf, &Options{MaxStringTableSize: 1})
	if err != nil {
		t.Fatalf("NewBytes() error = %v", err)
	}
	if err := f.Parse(); !errors.Is(err, ErrSectionTooLarge) {
		t.Fatalf("Parse() error = %v, want ErrSectionTooLarge", err)
	}
}

func TestVerifyChecksumMismatchIsAnomalyNotError(t *testing.T) {
	buf := minimalHeaderFixture("035")
	f, err := NewBytes(buf, nil)
	if err != nil {
		t.Fatalf("NewBytes() error = %v", err)
	}
	if err := f.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.VerifyChecksum() {
		t.Fatalf("VerifyChecksum() = true, want false (checksum field is zero in the fixture)")
	}
	found := false
	for _, a := range f.Anomalies {
		if a == AnoChecksumMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("Anomalies = %v, want AnoChecksumMismatch recorded", f.Anomalies)
	}
}

// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"encoding/binary"
	"errors"
	"testing"
)

func mutf8Fixture(size uint32, body []byte) []byte {
	buf := append([]byte{}, encodeUleb128(size)...)
	buf = append(buf, body...)
	buf = append(buf, 0x00)
	return buf
}

func TestMUTF8ASCII(t *testing.T) {
	data := mutf8Fixture(5, []byte("hello"))
	r := newReader(data, binary.LittleEndian, 0)
	got, err := r.mutf8String()
	if err != nil || got != "hello" {
		t.Fatalf("mutf8String() = %q, %v, want \"hello\", nil", got, err)
	}
}

func TestMUTF8EmbeddedNUL(t *testing.T) {
	// 0xC0 0x80 is the overlong two-byte encoding Android uses for NUL,
	// distinguishing an embedded NUL from the terminator.
	data := mutf8Fixture(3, []byte{'a', 0xc0, 0x80, 'b'})
	r := newReader(data, binary.LittleEndian, 0)
	got, err := r.mutf8String()
	if err != nil {
		t.Fatalf("mutf8String() error = %v", err)
	}
	want := "a\x00b"
	if got != want {
		t.Fatalf("mutf8String() = %q, want %q", got, want)
	}
}

func TestMUTF8ThreeByteSequence(t *testing.T) {
	// U+20AC (EURO SIGN) encodes as the three-byte sequence E2 82 AC in
	// both standard UTF-8 and modified UTF-8.
	data := mutf8Fixture(1, []byte{0xe2, 0x82, 0xac})
	r := newReader(data, binary.LittleEndian, 0)
	got, err := r.mutf8String()
	if err != nil || got != "€" {
		t.Fatalf("mutf8String() = %q, %v, want euro sign, nil", got, err)
	}
}

func TestMUTF8SizeMismatch(t *testing.T) {
	data := mutf8Fixture(4, []byte("abc"))
	r := newReader(data, binary.LittleEndian, 0)
	if _, err := r.mutf8String(); !errors.Is(err, ErrStringSizeMismatch) {
		t.Fatalf("mutf8String() error = %v, want ErrStringSizeMismatch", err)
	}
}

func TestMUTF8SurrogatePair(t *testing.T) {
	// U+10000 (first supplementary-plane code point) encoded as a high
	// surrogate (D800) followed by a low surrogate (DC00), each as its
	// own three-byte mutf8 sequence, but counted as a single code point.
	data := mutf8Fixture(1, []byte{0xed, 0xa0, 0x80, 0xed, 0xb0, 0x80})
	r := newReader(data, binary.LittleEndian, 0)
	got, err := r.mutf8String()
	if err != nil || got != "\U00010000" {
		t.Fatalf("mutf8String() = %q, %v, want U+10000, nil", got, err)
	}
}

// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestReaderFixedWidth(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := newReader(data, binary.LittleEndian, 0)

	b, err := r.U8()
	if err != nil || b != 0x01 {
		t.Fatalf("U8() = %v, %v, want 0x01, nil", b, err)
	}
	u16, err := r.U16()
	if err != nil || u16 != 0x0302 {
		t.Fatalf("U16() = %#x, %v, want 0x0302, nil", u16, err)
	}
	u32, err := r.U32()
	if err != nil || u32 != 0x07060504 {
		t.Fatalf("U32() = %#x, %v, want 0x07060504, nil", u32, err)
	}
}

func TestReaderOutsideBoundary(t *testing.T) {
	r := newReader([]byte{0x01, 0x02}, binary.LittleEndian, 0)
	if _, err := r.U32(); !errors.Is(err, ErrOutsideBoundary) {
		t.Fatalf("U32() error = %v, want ErrOutsideBoundary", err)
	}
}

func TestUleb128SingleByte(t *testing.T) {
	r := newReader([]byte{0x01}, binary.LittleEndian, 0)
	v, n, err := r.Uleb128()
	if err != nil || v != 1 || n != 1 {
		t.Fatalf("Uleb128() = %d, %d, %v, want 1, 1, nil", v, n, err)
	}
}

func TestUleb128MultiByte(t *testing.T) {
	// 0x80 0x01 -> continuation then terminal byte: payload (0,1) -> 1<<7 = 128.
	r := newReader([]byte{0x80, 0x01}, binary.LittleEndian, 0)
	v, n, err := r.Uleb128()
	if err != nil || v != 128 || n != 2 {
		t.Fatalf("Uleb128() = %d, %d, %v, want 128, 2, nil", v, n, err)
	}
}

func TestUleb128FiveBytesOK(t *testing.T) {
	r := newReader([]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, binary.LittleEndian, 0)
	v, n, err := r.Uleb128()
	if err != nil || n != 5 || v != 0xffffffff {
		t.Fatalf("Uleb128() = %#x, %d, %v, want 0xffffffff, 5, nil", v, n, err)
	}
}

func TestUleb128SixBytesFails(t *testing.T) {
	r := newReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x0f}, binary.LittleEndian, 0)
	if _, _, err := r.Uleb128(); !errors.Is(err, ErrInvalidLeb128) {
		t.Fatalf("Uleb128() error = %v, want ErrInvalidLeb128", err)
	}
}

func TestUleb128p1EncodesAbsentAsZero(t *testing.T) {
	// NO_INDEX (0xFFFFFFFF) encodes as a uleb128 of 0.
	r := newReader([]byte{0x00}, binary.LittleEndian, 0)
	v, _, err := r.Uleb128p1()
	if err != nil || v != noIndex {
		t.Fatalf("Uleb128p1() = %#x, %v, want NO_INDEX", v, err)
	}
}

func TestSleb128PositiveTwoBytes(t *testing.T) {
	// c0 00: payload (0x40, 0) -> 64, sign bit (bit 6 of last byte) unset -> +64.
	r := newReader([]byte{0xc0, 0x00}, binary.LittleEndian, 0)
	v, n, err := r.Sleb128()
	if err != nil || v != 64 || n != 2 {
		t.Fatalf("Sleb128() = %d, %d, %v, want 64, 2, nil", v, n, err)
	}
}

func TestSleb128Negative(t *testing.T) {
	// c0 bb 78: verified by hand against the canonical LEB128 algorithm.
	r := newReader([]byte{0xc0, 0xbb, 0x78}, binary.LittleEndian, 0)
	v, n, err := r.Sleb128()
	if err != nil || v != -123456 || n != 3 {
		t.Fatalf("Sleb128() = %d, %d, %v, want -123456, 3, nil", v, n, err)
	}
}

func TestSleb128SingleByteNegativeOne(t *testing.T) {
	// 0x7f: payload 0x7f, sign bit (bit6) set, no continuation -> -1.
	r := newReader([]byte{0x7f}, binary.LittleEndian, 0)
	v, n, err := r.Sleb128()
	if err != nil || v != -1 || n != 1 {
		t.Fatalf("Sleb128() = %d, %d, %v, want -1, 1, nil", v, n, err)
	}
}

func TestLeb128RoundTrip(t *testing.T) {
	for _, want := range []uint32{0, 1, 127, 128, 16383, 16384, 0xffffffff} {
		buf := encodeUleb128(want)
		r := newReader(buf, binary.LittleEndian, 0)
		got, n, err := r.Uleb128()
		if err != nil {
			t.Fatalf("Uleb128() error for %d: %v", want, err)
		}
		if got != want || int(n) != len(buf) {
			t.Fatalf("round trip for %d: got %d (consumed %d), want %d (len %d)", want, got, n, want, len(buf))
		}
	}
}

// encodeUleb128 is a small test-only encoder used to build round-trip
// fixtures; the decoder is the production code under test.
func encodeUleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"encoding/binary"
	"fmt"
)

// reader is a bounds-checked cursor over a single immutable byte buffer.
// It is the only thing in the assembler that is allowed to know about
// raw offsets; every sub-decoder receives a *reader and never retains
// it past the call that handed it out.
type reader struct {
	data   []byte
	order  binary.ByteOrder
	offset uint32
}

func newReader(data []byte, order binary.ByteOrder, offset uint32) *reader {
	return &reader{data: data, order: order, offset: offset}
}

// Offset returns the cursor's current position.
func (r *reader) Offset() uint32 { return r.offset }

// Seek repositions the cursor to an absolute offset.
func (r *reader) Seek(offset uint32) { r.offset = offset }

// Len returns the length of the whole buffer, independent of the
// cursor position.
func (r *reader) Len() uint32 { return uint32(len(r.data)) }

func (r *reader) need(n uint32) error {
	if n > uint32(len(r.data)) || r.offset > uint32(len(r.data))-n {
		return fmt.Errorf("%w: at offset %#x, need %d bytes, have %d", ErrOutsideBoundary, r.offset, n, uint32(len(r.data))-minu32(r.offset, uint32(len(r.data))))
	}
	return nil
}

func minu32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// U8 reads one byte.
func (r *reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.offset]
	r.offset++
	return v, nil
}

// U16 reads a 2-byte unsigned integer in the reader's byte order.
func (r *reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := r.order.Uint16(r.data[r.offset:])
	r.offset += 2
	return v, nil
}

// U32 reads a 4-byte unsigned integer in the reader's byte order.
func (r *reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := r.order.Uint32(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

// U64 reads an 8-byte unsigned integer in the reader's byte order.
func (r *reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := r.order.Uint64(r.data[r.offset:])
	r.offset += 8
	return v, nil
}

// I8 reads a signed byte.
func (r *reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// Bytes returns a copy of n bytes at the cursor and advances it. A copy
// is returned (never a buffer slice-through) so decoded entities never
// borrow back into the underlying image, per the assembler's immutable
// arena discipline.
func (r *reader) Bytes(n uint32) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.offset:r.offset+n])
	r.offset += n
	return out, nil
}

// PeekByte returns the byte at the cursor without advancing it.
func (r *reader) PeekByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	return r.data[r.offset], nil
}

// SkipPad2 skips 2 bytes of padding unconditionally; the caller decides
// whether the pad is present. DEX only ever needs 2-byte pad-to-4 (type
// lists, code items), never arbitrary alignment.
func (r *reader) SkipPad2() error {
	if _, err := r.U16(); err != nil {
		return fmt.Errorf("could not skip 2-byte padding: %w", err)
	}
	return nil
}

// Uleb128 decodes an unsigned LEB128 varint: up to 5 bytes, 7 payload
// bits per byte, LSB first, continuation bit in the MSB. Returns the
// decoded value and the number of bytes consumed.
func (r *reader) Uleb128() (uint32, uint32, error) {
	var result uint32
	var i uint32
	for {
		b, err := r.U8()
		if err != nil {
			return 0, 0, fmt.Errorf("could not read uleb128 byte %d: %w", i, err)
		}
		if i == 4 {
			// The 5th byte (index 4) may only contribute its low bits;
			// a set continuation bit here means a 6th byte would be
			// required, which is invalid.
			if b&0x80 != 0 {
				return 0, 0, ErrInvalidLeb128
			}
			result |= uint32(b) << (i * 7)
			i++
			break
		}
		result |= uint32(b&0x7f) << (i * 7)
		i++
		if b&0x80 == 0 {
			break
		}
	}
	return result, i, nil
}

// Uleb128p1 decodes a uleb128 then subtracts 1 with wrapping, modeling
// an optional index where NoIndex (0xFFFFFFFF) is encoded as 0.
func (r *reader) Uleb128p1() (uint32, uint32, error) {
	v, n, err := r.Uleb128()
	if err != nil {
		return 0, 0, err
	}
	return v - 1, n, nil // wrapping subtraction: 0 - 1 == 0xFFFFFFFF
}

// Sleb128 decodes a signed LEB128 varint: decode as uleb128, then sign
// extend by copying the sign bit (bit 7*bytesConsumed-1, the top payload
// bit of the last byte) to all higher bits.
func (r *reader) Sleb128() (int32, uint32, error) {
	u, n, err := r.Uleb128()
	if err != nil {
		return 0, 0, err
	}
	signed := int32(u)
	shift := n * 7
	if shift < 32 {
		signBit := uint32(1) << (shift - 1)
		if u&signBit != 0 {
			signed |= int32(^uint32(0) << shift)
		}
	}
	return signed, n, nil
}

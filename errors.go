// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy described in the design's error
// handling section. Structural violations return one of these, wrapped
// with offset/field context via fmt.Errorf's %w verb.
var (
	// ErrOutsideBoundary is returned when a read would run past the end
	// of the loaded image.
	ErrOutsideBoundary = errors.New("dex: read outside file boundary")

	// ErrIncorrectMagic is returned when the 8-byte magic does not match
	// "dex\n" followed by three ASCII digits and a NUL.
	ErrIncorrectMagic = errors.New("dex: incorrect magic number")

	// ErrInvalidFileSize is returned when the file, or its declared
	// file_size, is smaller than the header size.
	ErrInvalidFileSize = errors.New("dex: invalid file size")

	// ErrHeaderFileSizeMismatch is returned when header.file_size
	// disagrees with the physical size of the opened image.
	ErrHeaderFileSizeMismatch = errors.New("dex: header file_size mismatch")

	// ErrInvalidEndianTag is returned when endian_tag is neither
	// endianConstant (0x12345678) nor reverseEndianConst (0x78563412).
	ErrInvalidEndianTag = errors.New("dex: invalid endian tag")

	// ErrIncorrectHeaderSize is returned when header_size != 0x70.
	ErrIncorrectHeaderSize = errors.New("dex: incorrect header size")

	// ErrMismatchedOffsets is returned when an id-table's offset does
	// not match the packed layout computed from the preceding tables.
	ErrMismatchedOffsets = errors.New("dex: mismatched offsets")

	// ErrInvalidLeb128 is returned when a leb128 sequence would require
	// a sixth continuation byte.
	ErrInvalidLeb128 = errors.New("dex: invalid leb128 encoding")

	// ErrFromUTF8 is returned when a modified-UTF-8 byte sequence is
	// malformed.
	ErrFromUTF8 = errors.New("dex: invalid modified utf-8 sequence")

	// ErrStringSizeMismatch is returned when the decoded character count
	// of a string does not equal its declared uleb128 length.
	ErrStringSizeMismatch = errors.New("dex: string character count mismatch")

	// ErrInvalidAccessFlags is returned when an access_flags value sets
	// bits outside the 17 named flag bits.
	ErrInvalidAccessFlags = errors.New("dex: invalid access flags")

	// ErrInvalidItemType names a map_item whose type field is not one of
	// the known item type constants. parseMapList does not return it: it
	// skips such items and records AnoUnknownMapItemType instead.
	ErrInvalidItemType = errors.New("dex: invalid map item type")

	// ErrInvalidVisibility is returned when an annotation's visibility
	// byte is not 0, 1, or 2.
	ErrInvalidVisibility = errors.New("dex: invalid annotation visibility")

	// ErrInvalidValue is returned when an encoded_value's tag/arg
	// combination is not one of the 18 defined variants, or its arg is
	// out of range for its tag.
	ErrInvalidValue = errors.New("dex: invalid encoded value")

	// ErrUnknownStringIndex is returned when a string index is out of
	// range of the decoded string_ids table.
	ErrUnknownStringIndex = errors.New("dex: unknown string index")

	// ErrUnknownTypeIndex is returned when a type index is out of range
	// of the decoded type_ids table.
	ErrUnknownTypeIndex = errors.New("dex: unknown type index")

	// ErrInvalidTypeDescriptor is returned when a type descriptor string
	// does not conform to the descriptor grammar.
	ErrInvalidTypeDescriptor = errors.New("dex: invalid type descriptor")

	// ErrInvalidShortyType is returned when a shorty descriptor contains
	// a character outside {V,Z,B,S,C,I,J,F,D,L}.
	ErrInvalidShortyType = errors.New("dex: invalid shorty type character")

	// ErrInvalidShortyDescriptor is returned when a shorty descriptor's
	// cardinality or element kinds disagree with its prototype.
	ErrInvalidShortyDescriptor = errors.New("dex: invalid shorty descriptor")

	// ErrMap is returned for map-section consistency violations.
	ErrMap = errors.New("dex: invalid map section")

	// ErrNonMonotonicID is returned when class data's delta-encoded
	// field or method ids do not strictly increase.
	ErrNonMonotonicID = errors.New("dex: non-monotonic field or method id")

	// ErrSectionTooLarge is returned when an id table's declared size
	// exceeds its configured maximum (or, by default, the number of
	// items that could actually fit in the remaining buffer), guarding
	// slice pre-reservation against a crafted count.
	ErrSectionTooLarge = errors.New("dex: declared section size exceeds maximum")
)

// OffsetError reports a structural violation tied to a specific file
// offset and field name, mirroring spec's MismatchedOffsets(field,
// expected, actual) error kind.
type OffsetError struct {
	Field    string
	Expected uint32
	Actual   uint32
	Err      error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("dex: mismatched %s offset: expected %#x, got %#x", e.Field, e.Expected, e.Actual)
}

// Unwrap allows errors.Is(err, ErrMismatchedOffsets) to succeed.
func (e *OffsetError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMismatchedOffsets
}

// HeaderError reports a generic header-section violation with a
// human-readable description, mirroring spec's Header(msg) error kind.
type HeaderError struct {
	Msg string
}

func (e *HeaderError) Error() string { return "dex: invalid header: " + e.Msg }

// ValueError reports an encoded-value decoding violation with context,
// mirroring spec's InvalidValue(msg) error kind.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string { return "dex: invalid value: " + e.Msg }

func (e *ValueError) Unwrap() error { return ErrInvalidValue }

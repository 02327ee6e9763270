// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// No example or ecosystem library implements Android's modified UTF-8
// (NUL encoded as the two-byte overlong sequence 0xC0 0x80, and
// characters above the BMP spread across a pair of three-byte
// surrogate sequences rather than a single four-byte one); both
// golang.org/x/text/encoding and the standard library's unicode/utf8
// assume strict UTF-8 and would reject both cases, so this decoder is
// hand-rolled directly against the wire description.

// mutf8String reads one NUL-terminated modified-UTF-8 string whose
// declared code point count precedes it as a uleb128, mirroring
// string_data_item. Supplementary characters are encoded as a pair of
// three-byte surrogate sequences but counted once, as a single code
// point, not as two UTF-16 code units. The terminating NUL is consumed
// but not included in the result.
func (r *reader) mutf8String() (string, error) {
	declared, _, err := r.Uleb128()
	if err != nil {
		return "", fmt.Errorf("could not read string size: %w", err)
	}

	var b strings.Builder
	var units uint32
	var pendingHigh rune

	for {
		lead, err := r.U8()
		if err != nil {
			return "", fmt.Errorf("could not read string data: %w", err)
		}
		if lead == 0x00 {
			break
		}

		var r1 rune
		switch {
		case lead&0x80 == 0x00:
			r1 = rune(lead)
		case lead&0xe0 == 0xc0:
			c1, err := r.U8()
			if err != nil {
				return "", fmt.Errorf("could not read string data: %w", err)
			}
			if c1&0xc0 != 0x80 {
				return "", fmt.Errorf("%w: malformed 2-byte sequence", ErrFromUTF8)
			}
			r1 = rune(lead&0x1f)<<6 | rune(c1&0x3f)
		case lead&0xf0 == 0xe0:
			c1, err := r.U8()
			if err != nil {
				return "", fmt.Errorf("could not read string data: %w", err)
			}
			c2, err := r.U8()
			if err != nil {
				return "", fmt.Errorf("could not read string data: %w", err)
			}
			if c1&0xc0 != 0x80 || c2&0xc0 != 0x80 {
				return "", fmt.Errorf("%w: malformed 3-byte sequence", ErrFromUTF8)
			}
			r1 = rune(lead&0x0f)<<12 | rune(c1&0x3f)<<6 | rune(c2&0x3f)
		default:
			return "", fmt.Errorf("%w: unsupported lead byte %#x", ErrFromUTF8, lead)
		}

		switch {
		case pendingHigh != 0:
			if !utf16.IsSurrogate(r1) {
				return "", fmt.Errorf("%w: unpaired high surrogate", ErrFromUTF8)
			}
			combined := utf16.DecodeRune(pendingHigh, r1)
			if combined == utf8.RuneError {
				return "", fmt.Errorf("%w: invalid surrogate pair", ErrFromUTF8)
			}
			b.WriteRune(combined)
			pendingHigh = 0
			units++
		case utf16.IsSurrogate(r1) && r1 < 0xdc00:
			pendingHigh = r1
		case utf16.IsSurrogate(r1):
			return "", fmt.Errorf("%w: unpaired low surrogate", ErrFromUTF8)
		default:
			b.WriteRune(r1)
			units++
		}
	}
	if pendingHigh != 0 {
		return "", fmt.Errorf("%w: unterminated surrogate pair", ErrFromUTF8)
	}
	if units != declared {
		return "", fmt.Errorf("%w: declared %d, decoded %d", ErrStringSizeMismatch, declared, units)
	}
	return b.String(), nil
}

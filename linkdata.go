// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "errors"

// ErrNoLinkData is returned when a file declares no link_data section
// (link_size is 0, the overwhelmingly common case: link_data is a
// statically-linked-runtime leftover that almost no producer emits).
var ErrNoLinkData = errors.New("dex: file has no link_data section")

// HasLinkData reports whether the header declares a non-empty
// link_data section trailing the rest of the image.
func (f *File) HasLinkData() bool { return f.Header.LinkSize > 0 }

// LinkData returns the raw bytes of the link_data section, the
// optional region following data_off+data_size that the format
// reserves for statically linked runtime use and otherwise leaves
// opaque to this decoder.
func (f *File) LinkData() ([]byte, error) {
	if !f.HasLinkData() {
		return nil, ErrNoLinkData
	}
	start := f.Header.LinkOffset
	end := start + f.Header.LinkSize
	if end > uint32(len(f.data)) {
		return nil, ErrOutsideBoundary
	}
	out := make([]byte, f.Header.LinkSize)
	copy(out, f.data[start:end])
	return out, nil
}

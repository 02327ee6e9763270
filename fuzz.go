// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

// Fuzz is a go-fuzz/libFuzzer-style entry point: it feeds data through
// the full non-Fast parse and reports whether it was accepted.
func Fuzz(data []byte) int {
	f, err := NewBytes(data, &Options{Fast: false})
	if err != nil {
		return 0
	}
	if err := f.Parse(); err != nil {
		return 0
	}
	return 1
}

// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

// noIndex is the sentinel value marking an absent index (e.g. a class
// with no superclass, or a debug-info local with no name).
const noIndex uint32 = 0xffffffff

const (
	headerSize         = 0x70
	endianConstant     = 0x12345678
	reverseEndianConst = 0x78563412
)

// Fixed record sizes for the file's id tables, in bytes.
const (
	stringIDItemSize = 4      // u32 string_data_off
	typeIDItemSize   = 4      // u32 descriptor_idx
	protoIDItemSize  = 3 * 4  // u32 shorty_idx, return_type_idx, parameters_off
	fieldIDItemSize  = 2*2 + 4 // u16 class_idx, u16 type_idx, u32 name_idx
	methodIDItemSize = 2*2 + 4 // u16 class_idx, u16 proto_idx, u32 name_idx
	classDefItemSize = 8 * 4  // 8 u32 fields
)

// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

// Anomalies are tolerated irregularities: conditions that would be
// reasonable to reject outright, but that enough real producers
// (older compilers, repacked/hand-built test fixtures, obfuscators)
// violate that treating them as fatal would make this decoder less
// useful than the runtime it models. A File's Anomalies slice records
// one entry per kind encountered instead of aborting Parse.
var (
	// AnoDataSectionGap is reported when data_offset does not
	// immediately follow the last id table: the producer left
	// unaccounted bytes between the class defs table and the data
	// section.
	AnoDataSectionGap = "data_offset does not immediately follow the last id table"

	// AnoEmptyClassData is reported when a class_def's class_data_off
	// is non-zero but the class_data_item it points to declares zero
	// fields and methods in every category.
	AnoEmptyClassData = "class_data_item declares no fields or methods"

	// AnoDuplicateOffset names two different sections recorded at the
	// same file offset in the offset map. Parse does not record it:
	// offsetMap.insert keeps the first entry at an offset, and Parse
	// ignores insert's duplicate report.
	AnoDuplicateOffset = "section offset collides with a previously recorded section"

	// AnoUnknownMapItemType is reported when map_list contains a
	// type_id this decoder does not recognize; the entry is skipped
	// rather than treated as corruption.
	AnoUnknownMapItemType = "map_list entry has an unrecognized item type"

	// AnoChecksumMismatch is reported by VerifyChecksum when the
	// recomputed adler32 checksum does not match header.checksum.
	AnoChecksumMismatch = "recomputed checksum does not match header checksum"

	// AnoSignatureMismatch is reported by VerifySHA1 when the
	// recomputed SHA-1 digest does not match header.signature.
	AnoSignatureMismatch = "recomputed SHA-1 digest does not match header signature"
)

// addAnomaly appends anomaly to f.Anomalies unless it is already
// present, keeping repeated occurrences of the same kind from
// flooding the list.
func (f *File) addAnomaly(anomaly string) {
	for _, a := range f.Anomalies {
		if a == anomaly {
			return
		}
	}
	f.Anomalies = append(f.Anomalies, anomaly)
}

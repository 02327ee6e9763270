// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import "testing"

func TestAddAnomalyDedup(t *testing.T) {
	f := &File{}
	f.addAnomaly(AnoDataSectionGap)
	f.addAnomaly(AnoDataSectionGap)
	f.addAnomaly(AnoEmptyClassData)

	if len(f.Anomalies) != 2 {
		t.Fatalf("Anomalies = %v, want 2 distinct entries", f.Anomalies)
	}
	if f.Anomalies[0] != AnoDataSectionGap || f.Anomalies[1] != AnoEmptyClassData {
		t.Fatalf("Anomalies = %v, want [%s %s]", f.Anomalies, AnoDataSectionGap, AnoEmptyClassData)
	}
}

func TestAddAnomalyPreservesOrder(t *testing.T) {
	f := &File{}
	f.addAnomaly(AnoUnknownMapItemType)
	f.addAnomaly(AnoDuplicateOffset)
	f.addAnomaly(AnoChecksumMismatch)

	want := []string{AnoUnknownMapItemType, AnoDuplicateOffset, AnoChecksumMismatch}
	if len(f.Anomalies) != len(want) {
		t.Fatalf("Anomalies = %v, want %v", f.Anomalies, want)
	}
	for i, a := range want {
		if f.Anomalies[i] != a {
			t.Fatalf("Anomalies[%d] = %s, want %s", i, f.Anomalies[i], a)
		}
	}
}

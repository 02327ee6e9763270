// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestStdLoggerWritesLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(&buf)
	if err := l.Log(LevelWarn, "hello", " ", "world"); err != nil {
		t.Fatalf("Log() failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "hello world") {
		t.Fatalf("unexpected log line: %q", out)
	}
}

func TestFilterDropsBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewFilter(NewStdLogger(&buf), LevelError)
	_ = l.Log(LevelWarn, "should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected filter to drop warn-level record, got: %q", buf.String())
	}
	_ = l.Log(LevelError, "should pass")
	if !strings.Contains(buf.String(), "should pass") {
		t.Fatalf("expected error-level record to pass through, got: %q", buf.String())
	}
}

func TestHelperFormats(t *testing.T) {
	var buf bytes.Buffer
	h := NewHelper(NewStdLogger(&buf))
	h.Errorf("failed at offset %#x", 0x70)
	if !strings.Contains(buf.String(), "failed at offset 0x70") {
		t.Fatalf("unexpected helper output: %q", buf.String())
	}
}

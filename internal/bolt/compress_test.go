// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package bolt

import (
	"bytes"
	"io"
	"testing"
)

func TestWrapWriter_NoneIsPassthrough(t *testing.T) {
	var buf bytes.Buffer
	w, err := WrapWriter(&buf, CompressionNone)
	if err != nil {
		t.Fatalf("WrapWriter: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buf.String() != "hello" {
		t.Fatalf("buf = %q, want %q (no compression framing)", buf.String(), "hello")
	}
}

func TestWrapReaderWrapWriter_ZstdRoundTrip(t *testing.T) {
	var wire bytes.Buffer

	w, err := WrapWriter(&wire, CompressionZstd)
	if err != nil {
		t.Fatalf("WrapWriter: %v", err)
	}
	frames := [][]byte{
		[]byte("first frame body"),
		[]byte("second frame body, a bit longer than the first"),
	}
	for _, f := range frames {
		if _, err := w.Write(f); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := WrapReader(&wire, CompressionZstd)
	if err != nil {
		t.Fatalf("WrapReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	var want bytes.Buffer
	for _, f := range frames {
		want.Write(f)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, want.Bytes())
	}
}

func TestWrapWriter_UnknownModeFails(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WrapWriter(&buf, CompressionMode(99)); err == nil {
		t.Fatalf("expected error for unknown compression mode")
	}
}

func TestWrapReader_UnknownModeFails(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WrapReader(&buf, CompressionMode(99)); err == nil {
		t.Fatalf("expected error for unknown compression mode")
	}
}

// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package arena

import (
	"testing"

	"github.com/voltgraph/voltgraph-go/graphvalue"
)

func TestHandle_FieldAccess(t *testing.T) {
	h := New([]graphvalue.Value{graphvalue.Int64(42), graphvalue.String("hi")})

	if got, ok := h.Field(0).AsInt64(); !ok || got != 42 {
		t.Fatalf("Field(0) = %v, %v; want 42, true", got, ok)
	}
	if got, ok := h.Field(1).AsString(); !ok || got != "hi" {
		t.Fatalf("Field(1) = %v, %v; want hi, true", got, ok)
	}
	if !h.Field(5).IsNull() {
		t.Fatalf("Field(5) out of range should be Null")
	}
}

func TestHandle_AdvancePastWithoutRetainReleases(t *testing.T) {
	h := New([]graphvalue.Value{graphvalue.Int64(1)})
	h.AdvancePast()

	if !h.Released() {
		t.Fatalf("expected handle to release once advanced past with no retains")
	}
	if !h.Field(0).IsNull() {
		t.Fatalf("field access after release must return Null, not stale data")
	}
}

func TestHandle_RetainSurvivesAdvance(t *testing.T) {
	h := New([]graphvalue.Value{graphvalue.Int64(7)})
	h.Retain()
	h.AdvancePast()

	if h.Released() {
		t.Fatalf("retained handle must not release on advance")
	}
	if got, ok := h.Field(0).AsInt64(); !ok || got != 7 {
		t.Fatalf("retained field should still read back: got %v, %v", got, ok)
	}

	h.Release()
	if !h.Released() {
		t.Fatalf("expected release once retains drop to zero after advance")
	}
}

func TestHandle_ForceReleaseIgnoresRetains(t *testing.T) {
	h := New([]graphvalue.Value{graphvalue.Int64(9)})
	h.Retain()
	h.Retain()

	h.ForceRelease()

	if !h.Released() {
		t.Fatalf("ForceRelease must release regardless of outstanding retains")
	}
	if !h.Field(0).IsNull() {
		t.Fatalf("field access after ForceRelease must return Null")
	}
}

func TestHandle_NFieldsSurvivesRelease(t *testing.T) {
	h := New([]graphvalue.Value{graphvalue.Int64(1), graphvalue.Int64(2), graphvalue.Int64(3)})
	h.ForceRelease()

	if n := h.NFields(); n != 3 {
		t.Fatalf("NFields() after release = %d, want 3", n)
	}
}

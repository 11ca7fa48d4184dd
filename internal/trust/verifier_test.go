// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package trust

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "known_certs"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestVerifier_FirstUseTrustAlwaysRecordsFingerprint(t *testing.T) {
	store := newTestStore(t)
	var askedHost string
	v := NewVerifier(store, func(host, fp, known string, hadKnown bool) Action {
		askedHost = host
		if hadKnown {
			t.Fatalf("first use should report hadKnown=false")
		}
		return ActionTrustAlways
	})

	der := []byte("fake-certificate-bytes")
	if err := v.Verify("db.example.com:7687", der); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if askedHost != "db.example.com:7687" {
		t.Fatalf("callback host = %q", askedHost)
	}

	fp, ok, err := store.Lookup("db.example.com:7687")
	if err != nil || !ok || fp != Fingerprint(der) {
		t.Fatalf("expected fingerprint recorded, got %q, %v, %v", fp, ok, err)
	}
}

func TestVerifier_KnownMatchingFingerprintSkipsCallback(t *testing.T) {
	store := newTestStore(t)
	der := []byte("cert-bytes")
	if err := store.Replace("h1", Fingerprint(der)); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	called := false
	v := NewVerifier(store, func(host, fp, known string, hadKnown bool) Action {
		called = true
		return ActionReject
	})

	if err := v.Verify("h1", der); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if called {
		t.Fatalf("callback must not be invoked when the fingerprint matches")
	}
}

func TestVerifier_ChangedFingerprintAsksCallback(t *testing.T) {
	store := newTestStore(t)
	oldDER := []byte("old-cert")
	newDER := []byte("new-cert")
	if err := store.Replace("h1", Fingerprint(oldDER)); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	var gotKnown string
	var gotHadKnown bool
	v := NewVerifier(store, func(host, fp, known string, hadKnown bool) Action {
		gotKnown = known
		gotHadKnown = hadKnown
		return ActionReject
	})

	err := v.Verify("h1", newDER)
	if err == nil {
		t.Fatalf("expected rejection error")
	}
	if !gotHadKnown || gotKnown != Fingerprint(oldDER) {
		t.Fatalf("callback got known=%q hadKnown=%v, want old fingerprint, true", gotKnown, gotHadKnown)
	}

	var untrusted *UntrustedHostError
	if _, ok := err.(*UntrustedHostError); !ok {
		_ = untrusted
		t.Fatalf("expected *UntrustedHostError, got %T", err)
	}
}

func TestVerifier_NilCallbackRejectsUnknownHost(t *testing.T) {
	store := newTestStore(t)
	v := NewVerifier(store, nil)

	err := v.Verify("h1", []byte("cert-bytes"))
	if err == nil {
		t.Fatalf("expected rejection error for unknown host with nil callback")
	}
	if _, ok := err.(*UntrustedHostError); !ok {
		t.Fatalf("expected *UntrustedHostError, got %T", err)
	}
}

func TestVerifier_NilCallbackRejectsChangedFingerprint(t *testing.T) {
	store := newTestStore(t)
	oldDER := []byte("old-cert")
	if err := store.Replace("h1", Fingerprint(oldDER)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	v := NewVerifier(store, nil)

	err := v.Verify("h1", []byte("new-cert"))
	if err == nil {
		t.Fatalf("expected rejection error for changed fingerprint with nil callback")
	}
}

func TestVerifier_TrustOnceDoesNotPersist(t *testing.T) {
	store := newTestStore(t)
	der := []byte("cert-bytes")
	v := NewVerifier(store, func(host, fp, known string, hadKnown bool) Action {
		return ActionTrustOnce
	})

	if err := v.Verify("h1", der); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	_, ok, err := store.Lookup("h1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatalf("ActionTrustOnce must not persist the fingerprint")
	}
}

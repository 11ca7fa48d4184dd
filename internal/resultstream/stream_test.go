// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resultstream

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/voltgraph/voltgraph-go/graphvalue"
)

// fakeDecoder é um Decoder em memória para exercitar a máquina de
// estados do Stream sem um socket real.
type fakeDecoder struct {
	mu        sync.Mutex
	keys      []string
	keysErr   error
	records   [][]graphvalue.Value
	finalErr  error
	discarded bool
}

func (f *fakeDecoder) ReadHeader() ([]string, error) {
	return f.keys, f.keysErr
}

func (f *fakeDecoder) ReadRecord() ([]graphvalue.Value, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		if f.finalErr != nil {
			return nil, false, f.finalErr
		}
		return nil, false, nil
	}
	next := f.records[0]
	f.records = f.records[1:]
	return next, true, nil
}

func (f *fakeDecoder) Discard() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded = true
	return nil
}

func TestStream_HappyPath(t *testing.T) {
	dec := &fakeDecoder{
		keys: []string{"n"},
		records: [][]graphvalue.Value{
			{graphvalue.Int64(1)},
			{graphvalue.Int64(2)},
		},
	}
	s := New(dec, 4)
	ctx := context.Background()

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "n" {
		t.Fatalf("Keys = %v", keys)
	}

	var got []int64
	for {
		rec, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if rec == nil {
			break
		}
		v, _ := rec.Field(0).AsInt64()
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}

	// Calling Next again after end-of-stream must keep returning the
	// same clean result without touching the buffer again.
	rec, err := s.Next(ctx)
	if rec != nil || err != nil {
		t.Fatalf("Next after EOS = %v, %v; want nil, nil", rec, err)
	}
}

func TestStream_PriorRecordInvalidatedOnAdvance(t *testing.T) {
	dec := &fakeDecoder{
		keys: []string{"n"},
		records: [][]graphvalue.Value{
			{graphvalue.Int64(1)},
			{graphvalue.Int64(2)},
		},
	}
	s := New(dec, 4)
	ctx := context.Background()

	first, err := s.Next(ctx)
	if err != nil || first == nil {
		t.Fatalf("first Next: %v, %v", first, err)
	}
	if _, err := s.Next(ctx); err != nil {
		t.Fatalf("second Next: %v", err)
	}

	if !first.Field(0).IsNull() {
		t.Fatalf("previous record must be invalidated once stream advances past it")
	}
}

func TestStream_RetainSurvivesAdvanceAndClose(t *testing.T) {
	dec := &fakeDecoder{
		keys:    []string{"n"},
		records: [][]graphvalue.Value{{graphvalue.Int64(1)}, {graphvalue.Int64(2)}},
	}
	s := New(dec, 4)
	ctx := context.Background()

	first, _ := s.Next(ctx)
	first.Retain()
	if _, err := s.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}

	if got, ok := first.Field(0).AsInt64(); !ok || got != 1 {
		t.Fatalf("retained record should survive advance: %v, %v", got, ok)
	}

	// Close invalidates even retained records.
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !first.Field(0).IsNull() {
		t.Fatalf("Close must invalidate retained records too")
	}
}

func TestStream_FailureIsSticky(t *testing.T) {
	wantErr := &ServerFailure{Code: "Query.Syntax", Message: "bad statement"}
	dec := &fakeDecoder{
		keys:     []string{"n"},
		finalErr: wantErr,
	}
	s := New(dec, 4)
	ctx := context.Background()

	_, err := s.Next(ctx)
	if err == nil {
		t.Fatalf("expected failure")
	}
	var se *Error
	if !errors.As(err, &se) || se.Kind != KindStatementEvaluationFailed {
		t.Fatalf("expected StatementEvaluationFailed, got %v", err)
	}

	// Sticky: repeated calls return the same classification.
	_, err2 := s.Next(ctx)
	if err2 == nil || err2.Error() != err.Error() {
		t.Fatalf("expected sticky failure, got %v then %v", err, err2)
	}

	if s.Err() == nil {
		t.Fatalf("Err() should report the terminal failure without blocking")
	}
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	dec := &fakeDecoder{keys: []string{"n"}}
	s := New(dec, 2)
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("Next after Close = %v, want ErrStreamClosed", err)
	}
}

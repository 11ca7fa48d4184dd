// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package bolt

import (
	"bytes"
	"testing"

	"github.com/voltgraph/voltgraph-go/graphvalue"
)

func roundTripValue(t *testing.T, v graphvalue.Value) graphvalue.Value {
	t.Helper()
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		t.Fatalf("encodeValue: %v", err)
	}
	got, err := decodeValue(&buf)
	if err != nil {
		t.Fatalf("decodeValue: %v", err)
	}
	return got
}

func TestValueCodec_Scalars(t *testing.T) {
	cases := []graphvalue.Value{
		graphvalue.Null(),
		graphvalue.Bool(true),
		graphvalue.Bool(false),
		graphvalue.Int64(-42),
		graphvalue.Float64(3.14),
		graphvalue.String("hello, graph"),
		graphvalue.Bytes([]byte{1, 2, 3}),
	}
	for _, c := range cases {
		got := roundTripValue(t, c)
		if got.Kind != c.Kind {
			t.Fatalf("kind mismatch: got %v, want %v", got.Kind, c.Kind)
		}
		if got.String() != c.String() {
			t.Fatalf("round trip mismatch: got %q, want %q", got.String(), c.String())
		}
	}
}

func TestValueCodec_Node(t *testing.T) {
	n := graphvalue.Node{
		ElementID: "4:abc:1",
		Labels:    []string{"Person", "Admin"},
		Props: map[string]graphvalue.Value{
			"name": graphvalue.String("Ada"),
			"age":  graphvalue.Int64(30),
		},
	}
	got := roundTripValue(t, graphvalue.NodeValue(n))
	gotNode, ok := got.AsNode()
	if !ok {
		t.Fatalf("expected node kind, got %v", got.Kind)
	}
	if gotNode.ElementID != n.ElementID || len(gotNode.Labels) != 2 {
		t.Fatalf("node round trip mismatch: %+v", gotNode)
	}
	name, _ := gotNode.Props["name"].AsString()
	if name != "Ada" {
		t.Fatalf("node prop mismatch: %q", name)
	}
}

func TestValueCodec_Path(t *testing.T) {
	p := graphvalue.Path{
		Nodes: []graphvalue.Node{
			{ElementID: "n1", Labels: []string{"A"}},
			{ElementID: "n2", Labels: []string{"B"}},
		},
		Rels: []graphvalue.Relationship{
			{ElementID: "r1", StartElementID: "n1", EndElementID: "n2", Type: "KNOWS"},
		},
	}
	got := roundTripValue(t, graphvalue.PathValue(p))
	gotPath, ok := got.AsPath()
	if !ok {
		t.Fatalf("expected path kind, got %v", got.Kind)
	}
	if len(gotPath.Nodes) != 2 || len(gotPath.Rels) != 1 {
		t.Fatalf("path shape mismatch: %+v", gotPath)
	}
	if len(gotPath.Nodes) != len(gotPath.Rels)+1 {
		t.Fatalf("path invariant violated: nodes=%d rels=%d", len(gotPath.Nodes), len(gotPath.Rels))
	}
}

func TestValueCodec_NestedListAndMap(t *testing.T) {
	v := graphvalue.List([]graphvalue.Value{
		graphvalue.Map(map[string]graphvalue.Value{
			"items": graphvalue.List([]graphvalue.Value{graphvalue.Int64(1), graphvalue.Int64(2)}),
		}),
	})
	got := roundTripValue(t, v)
	items, ok := got.AsList()
	if !ok || len(items) != 1 {
		t.Fatalf("expected single-item list, got %v", got)
	}
	m, ok := items[0].AsMap()
	if !ok {
		t.Fatalf("expected map in list, got %v", items[0].Kind)
	}
	inner, ok := m["items"].AsList()
	if !ok || len(inner) != 2 {
		t.Fatalf("nested list mismatch: %v", m["items"])
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRun(&buf, "MATCH (n) RETURN n", nil); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	frame, err := ReadFrame(&buf, DefaultMaxFrameLength)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Tag != TagRun {
		t.Fatalf("frame tag = %v, want TagRun", frame.Tag)
	}
}

func TestStreamDecoder_HeaderThenRecordsThenEnd(t *testing.T) {
	var wire bytes.Buffer

	header := map[string]graphvalue.Value{
		"fields": graphvalue.List([]graphvalue.Value{graphvalue.String("n")}),
	}
	var headerBody bytes.Buffer
	if err := encodeMapBody(&headerBody, header); err != nil {
		t.Fatalf("encode header: %v", err)
	}
	if err := WriteFrame(&wire, TagSuccess, headerBody.Bytes()); err != nil {
		t.Fatalf("WriteFrame header: %v", err)
	}

	for _, n := range []int64{1, 2} {
		var recBody bytes.Buffer
		if err := encodeValue(&recBody, graphvalue.List([]graphvalue.Value{graphvalue.Int64(n)})); err != nil {
			t.Fatalf("encode record: %v", err)
		}
		if err := WriteFrame(&wire, TagRecord, recBody.Bytes()); err != nil {
			t.Fatalf("WriteFrame record: %v", err)
		}
	}
	if err := WriteFrame(&wire, TagSuccess, nil); err != nil {
		t.Fatalf("WriteFrame end: %v", err)
	}

	dec := NewStreamDecoder(&wire, &bytes.Buffer{}, DefaultMaxFrameLength)
	keys, err := dec.ReadHeader()
	if err != nil || len(keys) != 1 || keys[0] != "n" {
		t.Fatalf("ReadHeader = %v, %v", keys, err)
	}

	fields, ok, err := dec.ReadRecord()
	if err != nil || !ok || len(fields) != 1 {
		t.Fatalf("ReadRecord[0] = %v, %v, %v", fields, ok, err)
	}
	fields, ok, err = dec.ReadRecord()
	if err != nil || !ok {
		t.Fatalf("ReadRecord[1] = %v, %v, %v", fields, ok, err)
	}
	_, ok, err = dec.ReadRecord()
	if err != nil || ok {
		t.Fatalf("ReadRecord[end] = ok=%v, err=%v; want ok=false, err=nil", ok, err)
	}
}

func TestStreamDecoder_Failure(t *testing.T) {
	var wire bytes.Buffer
	failure := map[string]graphvalue.Value{
		"code":    graphvalue.String("Query.SyntaxError"),
		"message": graphvalue.String("unexpected token"),
	}
	var body bytes.Buffer
	if err := encodeMapBody(&body, failure); err != nil {
		t.Fatalf("encode failure: %v", err)
	}
	if err := WriteFrame(&wire, TagFailure, body.Bytes()); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	dec := NewStreamDecoder(&wire, &bytes.Buffer{}, DefaultMaxFrameLength)
	_, err := dec.ReadHeader()
	if err == nil {
		t.Fatalf("expected failure from ReadHeader")
	}
}

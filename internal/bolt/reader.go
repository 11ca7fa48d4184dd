// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package bolt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/voltgraph/voltgraph-go/graphvalue"
	"github.com/voltgraph/voltgraph-go/internal/resultstream"
)

// Frame é uma mensagem decodificada do fio: a tag e o corpo cru, ainda
// não interpretado como valores.
type Frame struct {
	Tag  Tag
	Body []byte
}

// ReadFrame lê o próximo frame completo do leitor, rejeitando
// comprimentos acima de maxFrameLength como violação de protocolo.
// maxFrameLength igual a zero aplica DefaultMaxFrameLength.
func ReadFrame(r io.Reader, maxFrameLength uint32) (Frame, error) {
	if maxFrameLength == 0 {
		maxFrameLength = DefaultMaxFrameLength
	}
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return Frame{}, fmt.Errorf("reading frame length: %w", err)
	}
	if length == 0 || length > maxFrameLength {
		return Frame{}, resultstream.WrapProtocolError(fmt.Errorf("frame length %d out of bounds", length))
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, fmt.Errorf("reading frame payload: %w", err)
	}
	return Frame{Tag: Tag(payload[0]), Body: payload[1:]}, nil
}

func decodeString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", fmt.Errorf("reading string length: %w", err)
	}
	if length > maxCollectionLength {
		return "", fmt.Errorf("string length %d out of bounds", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("reading string bytes: %w", err)
	}
	return string(buf), nil
}

// decodeValue decodifica um graphvalue.Value, incluindo a tag de tipo
// que o precede.
func decodeValue(r io.Reader) (graphvalue.Value, error) {
	var tagByte [1]byte
	if _, err := io.ReadFull(r, tagByte[:]); err != nil {
		return graphvalue.Value{}, fmt.Errorf("reading value tag: %w", err)
	}

	switch valueTag(tagByte[0]) {
	case valueNull:
		return graphvalue.Null(), nil
	case valueBoolFalse:
		return graphvalue.Bool(false), nil
	case valueBoolTrue:
		return graphvalue.Bool(true), nil
	case valueInt64:
		var i int64
		if err := binary.Read(r, binary.BigEndian, &i); err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading int64 value: %w", err)
		}
		return graphvalue.Int64(i), nil
	case valueFloat64:
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading float64 value: %w", err)
		}
		return graphvalue.Float64(math.Float64frombits(bits)), nil
	case valueString:
		s, err := decodeString(r)
		if err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading string value: %w", err)
		}
		return graphvalue.String(s), nil
	case valueBytes:
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading bytes length: %w", err)
		}
		if length > maxCollectionLength {
			return graphvalue.Value{}, fmt.Errorf("bytes length %d out of bounds", length)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading bytes value: %w", err)
		}
		return graphvalue.Bytes(buf), nil
	case valueList:
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading list length: %w", err)
		}
		if count > maxCollectionLength {
			return graphvalue.Value{}, fmt.Errorf("list length %d out of bounds", count)
		}
		items := make([]graphvalue.Value, count)
		for i := range items {
			v, err := decodeValue(r)
			if err != nil {
				return graphvalue.Value{}, fmt.Errorf("reading list item %d: %w", i, err)
			}
			items[i] = v
		}
		return graphvalue.List(items), nil
	case valueMap:
		m, err := decodeMapBody(r)
		if err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading map value: %w", err)
		}
		return graphvalue.Map(m), nil
	case valueNode:
		n, err := decodeNodeBody(r)
		if err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading node value: %w", err)
		}
		return graphvalue.NodeValue(n), nil
	case valueRelationship:
		rel, err := decodeRelationshipBody(r)
		if err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading relationship value: %w", err)
		}
		return graphvalue.RelationshipValue(rel), nil
	case valuePath:
		p, err := decodePathBody(r)
		if err != nil {
			return graphvalue.Value{}, fmt.Errorf("reading path value: %w", err)
		}
		return graphvalue.PathValue(p), nil
	default:
		return graphvalue.Value{}, fmt.Errorf("unknown value tag 0x%02x", tagByte[0])
	}
}

func decodeMapBody(r io.Reader) (map[string]graphvalue.Value, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("reading map length: %w", err)
	}
	if count > maxCollectionLength {
		return nil, fmt.Errorf("map length %d out of bounds", count)
	}
	m := make(map[string]graphvalue.Value, count)
	for i := uint32(0); i < count; i++ {
		k, err := decodeString(r)
		if err != nil {
			return nil, fmt.Errorf("reading map key: %w", err)
		}
		v, err := decodeValue(r)
		if err != nil {
			return nil, fmt.Errorf("reading map value for key %q: %w", k, err)
		}
		m[k] = v
	}
	return m, nil
}

func decodeNodeBody(r io.Reader) (graphvalue.Node, error) {
	elementID, err := decodeString(r)
	if err != nil {
		return graphvalue.Node{}, fmt.Errorf("reading node element id: %w", err)
	}
	var labelCount uint32
	if err := binary.Read(r, binary.BigEndian, &labelCount); err != nil {
		return graphvalue.Node{}, fmt.Errorf("reading node label count: %w", err)
	}
	if labelCount > maxCollectionLength {
		return graphvalue.Node{}, fmt.Errorf("node label count %d out of bounds", labelCount)
	}
	labels := make([]string, labelCount)
	for i := range labels {
		labels[i], err = decodeString(r)
		if err != nil {
			return graphvalue.Node{}, fmt.Errorf("reading node label %d: %w", i, err)
		}
	}
	props, err := decodeMapBody(r)
	if err != nil {
		return graphvalue.Node{}, fmt.Errorf("reading node properties: %w", err)
	}
	return graphvalue.Node{ElementID: elementID, Labels: labels, Props: props}, nil
}

func decodeRelationshipBody(r io.Reader) (graphvalue.Relationship, error) {
	fields := make([]string, 4)
	names := []string{"element id", "start element id", "end element id", "type"}
	var err error
	for i := range fields {
		fields[i], err = decodeString(r)
		if err != nil {
			return graphvalue.Relationship{}, fmt.Errorf("reading relationship %s: %w", names[i], err)
		}
	}
	props, err := decodeMapBody(r)
	if err != nil {
		return graphvalue.Relationship{}, fmt.Errorf("reading relationship properties: %w", err)
	}
	return graphvalue.Relationship{
		ElementID:      fields[0],
		StartElementID: fields[1],
		EndElementID:   fields[2],
		Type:           fields[3],
		Props:          props,
	}, nil
}

func decodePathBody(r io.Reader) (graphvalue.Path, error) {
	var nodeCount uint32
	if err := binary.Read(r, binary.BigEndian, &nodeCount); err != nil {
		return graphvalue.Path{}, fmt.Errorf("reading path node count: %w", err)
	}
	if nodeCount > maxCollectionLength {
		return graphvalue.Path{}, fmt.Errorf("path node count %d out of bounds", nodeCount)
	}
	nodes := make([]graphvalue.Node, nodeCount)
	for i := range nodes {
		n, err := decodeNodeBody(r)
		if err != nil {
			return graphvalue.Path{}, fmt.Errorf("reading path node %d: %w", i, err)
		}
		nodes[i] = n
	}

	var relCount uint32
	if err := binary.Read(r, binary.BigEndian, &relCount); err != nil {
		return graphvalue.Path{}, fmt.Errorf("reading path relationship count: %w", err)
	}
	if relCount > maxCollectionLength {
		return graphvalue.Path{}, fmt.Errorf("path relationship count %d out of bounds", relCount)
	}
	rels := make([]graphvalue.Relationship, relCount)
	for i := range rels {
		rel, err := decodeRelationshipBody(r)
		if err != nil {
			return graphvalue.Path{}, fmt.Errorf("reading path relationship %d: %w", i, err)
		}
		rels[i] = rel
	}
	return graphvalue.Path{Nodes: nodes, Rels: rels}, nil
}

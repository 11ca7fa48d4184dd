// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package bolt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/voltgraph/voltgraph-go/graphvalue"
)

// WriteFrame escreve um frame completo: [uint32 length][tag 1B][corpo].
// O comprimento cobre tag+corpo, não o prefixo em si.
func WriteFrame(w io.Writer, tag Tag, body []byte) error {
	length := uint32(len(body) + 1)
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("writing frame length: %w", err)
	}
	if _, err := w.Write([]byte{byte(tag)}); err != nil {
		return fmt.Errorf("writing frame tag: %w", err)
	}
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("writing frame body: %w", err)
		}
	}
	return nil
}

// WriteRun monta e escreve o frame RUN para o statement e parâmetros
// informados.
func WriteRun(w io.Writer, statement string, params map[string]graphvalue.Value) error {
	var buf bytes.Buffer
	if err := encodeString(&buf, statement); err != nil {
		return fmt.Errorf("encoding run statement: %w", err)
	}
	if err := encodeValue(&buf, graphvalue.Map(params)); err != nil {
		return fmt.Errorf("encoding run parameters: %w", err)
	}
	return WriteFrame(w, TagRun, buf.Bytes())
}

// WritePull escreve o frame PULL. n<0 solicita todos os records
// restantes.
func WritePull(w io.Writer, n int64) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, n); err != nil {
		return fmt.Errorf("encoding pull count: %w", err)
	}
	return WriteFrame(w, TagPull, buf.Bytes())
}

// WriteDiscard escreve o frame DISCARD, pedindo ao servidor para
// descartar o restante do stream em execução.
func WriteDiscard(w io.Writer) error {
	return WriteFrame(w, TagDiscard, nil)
}

func encodeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
		return fmt.Errorf("writing string length: %w", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("writing string bytes: %w", err)
	}
	return nil
}

// encodeValue codifica um graphvalue.Value recursivamente, com uma
// tag de tipo própria antes do corpo.
func encodeValue(w io.Writer, v graphvalue.Value) error {
	switch v.Kind {
	case graphvalue.KindNull:
		_, err := w.Write([]byte{byte(valueNull)})
		return err
	case graphvalue.KindBool:
		b, _ := v.AsBool()
		tag := valueBoolFalse
		if b {
			tag = valueBoolTrue
		}
		_, err := w.Write([]byte{byte(tag)})
		return err
	case graphvalue.KindInt64:
		i, _ := v.AsInt64()
		if _, err := w.Write([]byte{byte(valueInt64)}); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, i)
	case graphvalue.KindFloat64:
		f, _ := v.AsFloat64()
		if _, err := w.Write([]byte{byte(valueFloat64)}); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, math.Float64bits(f))
	case graphvalue.KindString:
		s, _ := v.AsString()
		if _, err := w.Write([]byte{byte(valueString)}); err != nil {
			return err
		}
		return encodeString(w, s)
	case graphvalue.KindBytes:
		b, _ := v.AsBytes()
		if _, err := w.Write([]byte{byte(valueBytes)}); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(b))); err != nil {
			return err
		}
		_, err := w.Write(b)
		return err
	case graphvalue.KindList:
		items, _ := v.AsList()
		if _, err := w.Write([]byte{byte(valueList)}); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(items))); err != nil {
			return err
		}
		for _, item := range items {
			if err := encodeValue(w, item); err != nil {
				return fmt.Errorf("encoding list item: %w", err)
			}
		}
		return nil
	case graphvalue.KindMap:
		m, _ := v.AsMap()
		if _, err := w.Write([]byte{byte(valueMap)}); err != nil {
			return err
		}
		return encodeMapBody(w, m)
	case graphvalue.KindNode:
		n, _ := v.AsNode()
		if _, err := w.Write([]byte{byte(valueNode)}); err != nil {
			return err
		}
		return encodeNodeBody(w, n)
	case graphvalue.KindRelationship:
		r, _ := v.AsRelationship()
		if _, err := w.Write([]byte{byte(valueRelationship)}); err != nil {
			return err
		}
		return encodeRelationshipBody(w, r)
	case graphvalue.KindPath:
		p, _ := v.AsPath()
		if _, err := w.Write([]byte{byte(valuePath)}); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(p.Nodes))); err != nil {
			return err
		}
		for _, n := range p.Nodes {
			if err := encodeNodeBody(w, n); err != nil {
				return fmt.Errorf("encoding path node: %w", err)
			}
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(p.Rels))); err != nil {
			return err
		}
		for _, r := range p.Rels {
			if err := encodeRelationshipBody(w, r); err != nil {
				return fmt.Errorf("encoding path relationship: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("encoding value: unknown kind %v", v.Kind)
	}
}

func encodeMapBody(w io.Writer, m map[string]graphvalue.Value) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
		return err
	}
	for k, val := range m {
		if err := encodeString(w, k); err != nil {
			return fmt.Errorf("encoding map key: %w", err)
		}
		if err := encodeValue(w, val); err != nil {
			return fmt.Errorf("encoding map value for key %q: %w", k, err)
		}
	}
	return nil
}

func encodeNodeBody(w io.Writer, n graphvalue.Node) error {
	if err := encodeString(w, n.ElementID); err != nil {
		return fmt.Errorf("encoding node element id: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(n.Labels))); err != nil {
		return err
	}
	for _, label := range n.Labels {
		if err := encodeString(w, label); err != nil {
			return fmt.Errorf("encoding node label: %w", err)
		}
	}
	return encodeMapBody(w, n.Props)
}

func encodeRelationshipBody(w io.Writer, r graphvalue.Relationship) error {
	for _, s := range []string{r.ElementID, r.StartElementID, r.EndElementID, r.Type} {
		if err := encodeString(w, s); err != nil {
			return fmt.Errorf("encoding relationship field: %w", err)
		}
	}
	return encodeMapBody(w, r.Props)
}

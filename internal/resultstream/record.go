// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resultstream

import (
	"github.com/voltgraph/voltgraph-go/graphvalue"
	"github.com/voltgraph/voltgraph-go/internal/arena"
)

// Record é uma linha de resultado decodificada. Sua validade está
// acoplada ao arena.Handle subjacente: sem Retain, os valores deixam
// de ser legíveis assim que o stream avança para o próximo record ou
// é fechado.
type Record struct {
	handle *arena.Handle
	stream *Stream
}

func newRecord(h *arena.Handle, s *Stream) *Record {
	return &Record{handle: h, stream: s}
}

// NFields retorna a quantidade de campos do record.
func (r *Record) NFields() int { return r.handle.NFields() }

// Field retorna o valor do campo i, ou um Value nulo se o record já
// foi invalidado ou o índice está fora do intervalo.
func (r *Record) Field(i int) graphvalue.Value { return r.handle.Field(i) }

// Values retorna uma cópia de todos os campos do record.
func (r *Record) Values() []graphvalue.Value { return r.handle.Fields() }

// Retain estende o tempo de vida do record além do próximo avanço do
// stream. Deve ser pareado com Release quando o chamador não precisar
// mais dele.
func (r *Record) Retain() {
	r.handle.Retain()
	if r.stream != nil {
		r.stream.trackRetained(r)
	}
}

// Release libera uma retenção previamente adquirida com Retain.
func (r *Record) Release() {
	r.handle.Release()
	if r.stream != nil && r.handle.Released() {
		r.stream.untrackRetained(r)
	}
}

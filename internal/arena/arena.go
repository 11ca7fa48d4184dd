// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package arena implementa a região de valores com contagem de
// referência que sustenta o tempo de vida de um record decodificado.
// Um Handle nasce com zero retenções externas e permanece acessível
// enquanto o stream ainda não avançou além dele; Retain/Release
// estendem ou encerram esse tempo de vida explicitamente.
package arena

import (
	"sync"

	"github.com/voltgraph/voltgraph-go/graphvalue"
)

// Handle guarda os campos de um record e decide, por contagem de
// referência, quando eles podem ser descartados.
type Handle struct {
	mu       sync.Mutex
	fields   []graphvalue.Value
	nfields  int
	retains  int32
	advanced bool
	released bool
}

// New cria um Handle para os campos fornecidos. O slice é adotado, não
// copiado; o chamador não deve escrevê-lo depois de passar a posse.
func New(fields []graphvalue.Value) *Handle {
	return &Handle{fields: fields, nfields: len(fields)}
}

// NFields retorna o número de campos do record, mesmo após liberado.
func (h *Handle) NFields() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nfields
}

// Field retorna o valor na posição i, ou Null se o handle já foi
// liberado ou o índice está fora do intervalo. Isso é uma rede de
// segurança best-effort: o contrato correto é nunca ler depois de
// liberado.
func (h *Handle) Field(i int) graphvalue.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released || i < 0 || i >= len(h.fields) {
		return graphvalue.Null()
	}
	return h.fields[i]
}

// Fields retorna uma cópia rasa do slice de campos, ou nil se liberado.
func (h *Handle) Fields() []graphvalue.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	out := make([]graphvalue.Value, len(h.fields))
	copy(out, h.fields)
	return out
}

// Retain incrementa a contagem de retenção externa.
func (h *Handle) Retain() {
	h.mu.Lock()
	h.retains++
	h.mu.Unlock()
}

// Release decrementa a contagem de retenção externa e libera os
// campos se não houver mais retenções e o stream já tiver avançado
// além deste record.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.retains > 0 {
		h.retains--
	}
	h.maybeReleaseLocked()
}

// AdvancePast marca que o stream avançou além deste record (ex.: uma
// nova chamada a fetch_next o tornou não-corrente). Libera os campos
// se não houver retenções pendentes.
func (h *Handle) AdvancePast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advanced = true
	h.maybeReleaseLocked()
}

// ForceRelease libera os campos incondicionalmente, ignorando
// contagem de retenção. Usado quando o stream é fechado: todo record
// obtido dele se torna inválido, retido ou não.
func (h *Handle) ForceRelease() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	h.fields = nil
}

// Released reporta se os campos já foram descartados.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *Handle) maybeReleaseLocked() {
	if h.released {
		return
	}
	if h.advanced && h.retains <= 0 {
		h.released = true
		h.fields = nil
	}
}

// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resultstream

import (
	"errors"
	"sync"

	"github.com/voltgraph/voltgraph-go/internal/arena"
)

// ErrBufferClosed é retornado por Push quando o buffer já foi fechado
// ou abortado e não aceita mais records.
var ErrBufferClosed = errors.New("resultstream: buffer closed")

// RecordBuffer é a fila limitada e com back-pressure entre o decoder
// (produtor) e o stream (consumidor). A capacidade é fixa; Push
// bloqueia enquanto a fila está cheia, espelhando o par mutex+cond do
// ring buffer de bytes usado no pipeline de transporte, mas operando
// sobre um slot por record em vez de uma janela de bytes.
type RecordBuffer struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	items []*arena.Handle
	cap   int

	closed      bool
	terminalErr error
}

// NewRecordBuffer cria um buffer com a capacidade informada. Capacidade
// menor que 1 é tratada como 1.
func NewRecordBuffer(capacity int) *RecordBuffer {
	if capacity < 1 {
		capacity = 1
	}
	b := &RecordBuffer{cap: capacity}
	b.notFull = sync.NewCond(&b.mu)
	b.notEmpty = sync.NewCond(&b.mu)
	return b
}

// Push insere um record decodificado, bloqueando se a fila estiver
// cheia. Retorna ErrBufferClosed se o buffer já foi fechado ou
// abortado nesse meio tempo.
func (b *RecordBuffer) Push(h *arena.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.items) >= b.cap && !b.closed {
		b.notFull.Wait()
	}
	if b.closed {
		return ErrBufferClosed
	}
	b.items = append(b.items, h)
	b.notEmpty.Signal()
	return nil
}

// PushError marca um erro terminal do produtor. Records já enfileirados
// ainda são drenados normalmente; o erro só é observado por Pop depois
// que a fila esvazia, e permanece pegajoso em chamadas subsequentes.
func (b *RecordBuffer) PushError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.terminalErr = err
	b.closed = true
	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
}

// Close sinaliza fim limpo do stream (sem erro). Idempotente.
func (b *RecordBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
}

// Pop retorna o próximo record em ordem FIFO. Quando a fila esvazia e
// o buffer está fechado, retorna (nil, nil) em fim limpo ou (nil, err)
// se um erro terminal foi sinalizado — e continua retornando o mesmo
// resultado terminal em chamadas subsequentes, sem bloquear.
func (b *RecordBuffer) Pop() (*arena.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.items) == 0 && !b.closed {
		b.notEmpty.Wait()
	}
	if len(b.items) > 0 {
		h := b.items[0]
		b.items[0] = nil
		b.items = b.items[1:]
		b.notFull.Signal()
		return h, nil
	}
	return nil, b.terminalErr
}

// Abort esvazia a fila imediatamente, invalidando todo record ainda
// não consumido, e fecha o buffer. Usado por Stream.Close.
func (b *RecordBuffer) Abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.items {
		h.ForceRelease()
	}
	b.items = nil
	b.closed = true
	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
}

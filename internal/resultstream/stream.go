// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package resultstream implementa o stream de resultados de um
// statement: a máquina de estados, o buffer com back-pressure entre o
// decoder e o consumidor, e o acoplamento entre o ciclo de vida de um
// record e a arena que guarda seus valores.
package resultstream

import (
	"context"
	"sync"

	"github.com/voltgraph/voltgraph-go/internal/arena"
)

type state uint8

const (
	stateHeaderPending state = iota
	stateStreaming
	stateEnd
	stateFailed
	stateClosed
)

// Stream é a fachada pública de um statement em execução. É seguro
// para uso concorrente, mas fetch_next (Next) deve ser serializado
// pelo chamador: o contrato não define o que acontece com duas
// chamadas concorrentes a Next no mesmo stream.
type Stream struct {
	decoder Decoder
	buffer  *RecordBuffer

	mu       sync.Mutex
	st       state
	keys     []string
	keysErr  error
	failure  *Error
	current  *Record
	retained map[*Record]struct{}

	headerReady chan struct{}
	closeOnce   sync.Once
}

// New inicia um stream de resultados sobre o decoder informado. Uma
// goroutine de bombeamento começa imediatamente a ler o cabeçalho e,
// em seguida, os records, empurrando-os para um buffer de capacidade
// bufferCapacity.
func New(decoder Decoder, bufferCapacity int) *Stream {
	s := &Stream{
		decoder:     decoder,
		buffer:      NewRecordBuffer(bufferCapacity),
		st:          stateHeaderPending,
		retained:    make(map[*Record]struct{}),
		headerReady: make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Stream) pump() {
	keys, err := s.decoder.ReadHeader()
	s.mu.Lock()
	s.keys = keys
	s.keysErr = err
	close(s.headerReady)
	s.mu.Unlock()

	if err != nil {
		s.buffer.PushError(err)
		return
	}

	for {
		fields, ok, err := s.decoder.ReadRecord()
		if err != nil {
			s.buffer.PushError(err)
			return
		}
		if !ok {
			s.buffer.Close()
			return
		}
		if pushErr := s.buffer.Push(arena.New(fields)); pushErr != nil {
			// Buffer foi abortado (stream fechado pelo consumidor);
			// para de bombear, não há mais ninguém para entregar.
			return
		}
	}
}

// Keys bloqueia até o cabeçalho do statement chegar e retorna os
// nomes de campo (nfields via len(keys)). Chamadas subsequentes
// retornam o mesmo resultado sem I/O adicional.
func (s *Stream) Keys(ctx context.Context) ([]string, error) {
	select {
	case <-s.headerReady:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keysErr != nil {
		if s.failure == nil {
			s.failure = classify(s.keysErr)
			s.st = stateFailed
		}
		return nil, s.failure
	}
	return s.keys, nil
}

// FieldName retorna o nome do campo no índice i.
func (s *Stream) FieldName(ctx context.Context, i int) (string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(keys) {
		return "", ErrFieldIndexOutOfRange
	}
	return keys[i], nil
}

// Next busca o próximo record (fetch_next). Retorna (nil, nil) em fim
// limpo de stream e (nil, err) em falha terminal; em ambos os casos,
// chamadas subsequentes repetem o mesmo resultado sem tocar o buffer
// de novo. O record anterior retornado por Next, se ainda não tiver
// sido retido, é invalidado antes que este avance.
func (s *Stream) Next(ctx context.Context) (*Record, error) {
	s.mu.Lock()
	if s.st == stateClosed {
		s.mu.Unlock()
		return nil, ErrStreamClosed
	}
	if s.st == stateFailed {
		err := s.failure
		s.mu.Unlock()
		return nil, err
	}
	if s.st == stateEnd {
		s.mu.Unlock()
		return nil, nil
	}
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if prev != nil {
		prev.handle.AdvancePast()
	}

	select {
	case <-s.headerReady:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	if s.keysErr != nil {
		s.failure = classify(s.keysErr)
		s.st = stateFailed
		err := s.failure
		s.mu.Unlock()
		return nil, err
	}
	s.st = stateStreaming
	s.mu.Unlock()

	h, err := s.buffer.Pop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failure = classify(err)
		s.st = stateFailed
		return nil, s.failure
	}
	if h == nil {
		s.st = stateEnd
		return nil, nil
	}
	rec := newRecord(h, s)
	s.current = rec
	return rec, nil
}

// Err retorna a falha terminal e pegajosa do stream, ou nil se ainda
// saudável. Não bloqueia nem realiza I/O.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure == nil {
		return nil
	}
	return s.failure
}

// Close encerra o stream e invalida todo record e valor obtidos dele,
// retido ou não. É seguro chamar Close mais de uma vez; só a primeira
// chamada tem efeito observável.
func (s *Stream) Close() error {
	var retErr error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		prev := s.current
		s.current = nil
		retainedSnapshot := make([]*Record, 0, len(s.retained))
		for r := range s.retained {
			retainedSnapshot = append(retainedSnapshot, r)
		}
		s.retained = nil
		s.st = stateClosed
		s.mu.Unlock()

		if prev != nil {
			prev.handle.ForceRelease()
		}
		for _, r := range retainedSnapshot {
			r.handle.ForceRelease()
		}
		s.buffer.Abort()
		retErr = s.decoder.Discard()
	})
	return retErr
}

func (s *Stream) trackRetained(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retained == nil {
		return // already closed
	}
	s.retained[r] = struct{}{}
}

func (s *Stream) untrackRetained(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retained == nil {
		return
	}
	delete(s.retained, r)
}

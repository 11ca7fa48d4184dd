// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package voltgraph

import (
	"context"
	"fmt"
	"io"

	"github.com/voltgraph/voltgraph-go/internal/connection"
	"github.com/voltgraph/voltgraph-go/internal/logging"
	"github.com/voltgraph/voltgraph-go/internal/resultstream"
)

// Result é o stream de resultados de um statement em execução. Fecha
// a conexão subjacente quando Close é chamado: um Result não é
// compartilhado entre statements.
type Result struct {
	stream *resultstream.Stream
	conn   *connection.Connection

	logCloser    io.Closer
	connLogDir   string
	driverLabel  string
	connectionID string
}

// Keys bloqueia até o cabeçalho do statement chegar e retorna os
// nomes de campo na ordem posicional dos records.
func (r *Result) Keys(ctx context.Context) ([]string, error) {
	return r.stream.Keys(ctx)
}

// Next busca o próximo record. Retorna (nil, nil) em fim limpo de
// stream. O record anterior, se não tiver sido retido com
// Record.Retain, é invalidado antes do avanço.
func (r *Result) Next(ctx context.Context) (*Record, error) {
	return r.stream.Next(ctx)
}

// Err retorna a falha terminal do stream, sem bloquear.
func (r *Result) Err() error {
	return r.stream.Err()
}

// Close encerra o stream e a conexão subjacente, invalidando todo
// record obtido dele. Se não houver falha terminal no stream, o
// arquivo de log dedicado da conexão (quando configurado) é removido;
// uma conexão que terminou em erro mantém seu log para inspeção.
func (r *Result) Close() error {
	streamErr := r.stream.Close()
	connErr := r.conn.Close()
	if r.logCloser != nil {
		r.logCloser.Close()
	}
	if r.stream.Err() == nil {
		logging.RemoveConnectionLog(r.connLogDir, r.driverLabel, r.connectionID)
	}
	if streamErr != nil {
		return streamErr
	}
	return connErr
}

// Collect consome o stream inteiro, retendo cada record antes de
// avançar, e retorna a lista completa. Indicado para resultados
// pequenos: para resultados grandes, prefira iterar com Next e
// liberar cada record assim que não for mais necessário.
func (r *Result) Collect(ctx context.Context) ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Next(ctx)
		if err != nil {
			return records, err
		}
		if rec == nil {
			return records, nil
		}
		rec.Retain()
		records = append(records, rec)
	}
}

// Single consome exatamente um record do stream e retorna erro se o
// stream não tiver exatamente um record.
func (r *Result) Single(ctx context.Context) (*Record, error) {
	rec, err := r.Next(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("voltgraph: expected exactly one record, got none")
	}
	rec.Retain()

	extra, err := r.Next(ctx)
	if err != nil {
		return rec, err
	}
	if extra != nil {
		return rec, fmt.Errorf("voltgraph: expected exactly one record, got more than one")
	}
	return rec, nil
}

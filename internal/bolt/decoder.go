// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package bolt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/voltgraph/voltgraph-go/graphvalue"
	"github.com/voltgraph/voltgraph-go/internal/resultstream"
)

// StreamDecoder lê o cabeçalho e os records de um statement em
// execução a partir de um io.Reader de frames, e envia DISCARD pelo
// io.Writer quando o consumidor desiste do stream antes do fim
// natural. Satisfaz resultstream.Decoder.
type StreamDecoder struct {
	r              io.Reader
	w              io.Writer
	maxFrameLength uint32
}

// NewStreamDecoder cria um decoder sobre o par leitor/escritor de uma
// conexão já autenticada, logo após o frame RUN ter sido enviado.
// maxFrameLength limita o tamanho de um frame recebido; zero aplica
// DefaultMaxFrameLength.
func NewStreamDecoder(r io.Reader, w io.Writer, maxFrameLength uint32) *StreamDecoder {
	return &StreamDecoder{r: r, w: w, maxFrameLength: maxFrameLength}
}

// ReadHeader lê o frame de sumário inicial (SUCCESS com a lista de
// nomes de campo sob a chave "fields") ou um FAILURE se o servidor
// rejeitou o statement antes de produzir qualquer record.
func (d *StreamDecoder) ReadHeader() ([]string, error) {
	frame, err := ReadFrame(d.r, d.maxFrameLength)
	if err != nil {
		return nil, err
	}
	switch frame.Tag {
	case TagSuccess:
		m, err := decodeMapBody(bytes.NewReader(frame.Body))
		if err != nil {
			return nil, resultstream.WrapProtocolError(fmt.Errorf("decoding header summary: %w", err))
		}
		return fieldsFromSummary(m), nil
	case TagFailure:
		return nil, failureFromBody(frame.Body)
	default:
		return nil, resultstream.WrapProtocolError(fmt.Errorf("unexpected frame tag %s while awaiting header", frame.Tag))
	}
}

// ReadRecord lê o próximo frame do stream: um RECORD vira uma linha de
// valores, um SUCCESS de encerramento vira fim limpo, e um FAILURE vira
// o erro terminal que o stream classificará como
// STATEMENT_EVALUATION_FAILED (ou OUT_OF_MEMORY, quando o código do
// servidor é "Memory.OutOfMemory").
func (d *StreamDecoder) ReadRecord() ([]graphvalue.Value, bool, error) {
	frame, err := ReadFrame(d.r, d.maxFrameLength)
	if err != nil {
		return nil, false, err
	}
	switch frame.Tag {
	case TagRecord:
		v, err := decodeValue(bytes.NewReader(frame.Body))
		if err != nil {
			return nil, false, resultstream.WrapProtocolError(fmt.Errorf("decoding record: %w", err))
		}
		items, ok := v.AsList()
		if !ok {
			return nil, false, resultstream.WrapProtocolError(fmt.Errorf("record frame did not encode a list"))
		}
		return items, true, nil
	case TagSuccess:
		return nil, false, nil
	case TagFailure:
		return nil, false, failureFromBody(frame.Body)
	case TagIgnored:
		return nil, false, resultstream.WrapProtocolError(fmt.Errorf("server ignored the statement"))
	default:
		return nil, false, resultstream.WrapProtocolError(fmt.Errorf("unexpected frame tag %s mid-stream", frame.Tag))
	}
}

// Discard envia DISCARD ao servidor para que ele pare de produzir
// records para um stream que o consumidor fechou antecipadamente.
func (d *StreamDecoder) Discard() error {
	if d.w == nil {
		return nil
	}
	return WriteDiscard(d.w)
}

func fieldsFromSummary(m map[string]graphvalue.Value) []string {
	raw, ok := m["fields"]
	if !ok {
		return nil
	}
	items, ok := raw.AsList()
	if !ok {
		return nil
	}
	fields := make([]string, len(items))
	for i, v := range items {
		fields[i], _ = v.AsString()
	}
	return fields
}

func failureFromBody(body []byte) error {
	m, err := decodeMapBody(bytes.NewReader(body))
	if err != nil {
		return resultstream.WrapProtocolError(fmt.Errorf("decoding failure summary: %w", err))
	}
	code, _ := m["code"].AsString()
	message, _ := m["message"].AsString()
	if code == "Memory.OutOfMemory" {
		return &resultstream.OutOfMemory{Message: message}
	}
	return &resultstream.ServerFailure{Code: code, Message: message}
}

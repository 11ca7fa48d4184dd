// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package bolt implementa o codec de fio usado para trocar statements
// e records com o servidor: um framing simples de tamanho prefixado
// sobre TCP/TLS, e uma codificação de valor com tag própria para os
// tipos escalares e as três formas de entidade de grafo. É
// deliberadamente mínimo — um colaborador do stream de resultados, não
// um protocolo de propósito geral.
package bolt

import "fmt"

// Magic identifica o início de uma conexão, antes de qualquer frame.
// Formato: 4 bytes fixos + 1 byte de versão de protocolo.
var Magic = [4]byte{'V', 'G', 'R', 'P'}

// ProtocolVersion é a única versão de protocolo que este cliente fala.
const ProtocolVersion byte = 1

// Tag identifica o tipo de uma mensagem dentro de um frame.
type Tag byte

const (
	TagRun     Tag = 0x01 // cliente → servidor: executa um statement
	TagPull    Tag = 0x02 // cliente → servidor: solicita mais records
	TagDiscard Tag = 0x03 // cliente → servidor: descarta o restante do stream
	TagSuccess Tag = 0x10 // servidor → cliente: cabeçalho ou sumário
	TagRecord  Tag = 0x11 // servidor → cliente: uma linha de resultado
	TagFailure Tag = 0x12 // servidor → cliente: statement rejeitado ou abortado
	TagIgnored Tag = 0x13 // servidor → cliente: mensagem ignorada após falha anterior
)

func (t Tag) String() string {
	switch t {
	case TagRun:
		return "RUN"
	case TagPull:
		return "PULL"
	case TagDiscard:
		return "DISCARD"
	case TagSuccess:
		return "SUCCESS"
	case TagRecord:
		return "RECORD"
	case TagFailure:
		return "FAILURE"
	case TagIgnored:
		return "IGNORED"
	default:
		return fmt.Sprintf("tag(0x%02x)", byte(t))
	}
}

// CompressionMode seleciona como o fluxo de frames de uma conexão é
// comprimido (prefixo de tamanho, tag e corpo juntos), espelhando o
// campo homônimo do protocolo de backup: Nenhuma por padrão, Zstd
// quando a configuração do cliente a escolhe. Não há negociação com o
// servidor; as duas pontas precisam usar o mesmo modo.
type CompressionMode byte

const (
	CompressionNone CompressionMode = 0
	CompressionZstd CompressionMode = 1
)

// valueTag identifica o tipo concreto de um Value codificado.
type valueTag byte

const (
	valueNull valueTag = iota
	valueBoolFalse
	valueBoolTrue
	valueInt64
	valueFloat64
	valueString
	valueBytes
	valueList
	valueMap
	valueNode
	valueRelationship
	valuePath
)

// DefaultMaxFrameLength limita o tamanho de um frame recebido quando o
// chamador não configura um teto próprio, para que um length prefixado
// corrompido ou hostil não peça uma alocação arbitrariamente grande.
const DefaultMaxFrameLength = 64 * 1024 * 1024

// maxCollectionLength limita o número de elementos decodificados de
// uma lista, mapa ou coleção de rótulos/propriedades num único valor.
const maxCollectionLength = 1 << 20

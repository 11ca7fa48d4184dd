// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package voltgraph

import (
	"errors"

	"github.com/voltgraph/voltgraph-go/internal/resultstream"
	"github.com/voltgraph/voltgraph-go/internal/trust"
)

// Error e ErrorKind classificam a falha terminal de um Result. São os
// mesmos tipos do pacote interno de stream, reexportados para que o
// chamador não precise importar um pacote interno para fazer
// errors.As(err, &voltgraph.Error{}).
type (
	Error     = resultstream.Error
	ErrorKind = resultstream.ErrorKind
)

const (
	KindStatementEvaluationFailed = resultstream.KindStatementEvaluationFailed
	KindProtocolError             = resultstream.KindProtocolError
	KindConnectionClosed          = resultstream.KindConnectionClosed
	KindOutOfMemory               = resultstream.KindOutOfMemory
)

// UntrustedHostError é retornado por Driver.Run quando o host não tem
// impressão digital conhecida, ou o certificado apresentado pelo
// servidor não confere com a conhecida, e o callback de confiança
// recusou a conexão (ou não há callback).
type UntrustedHostError = trust.UntrustedHostError

// IsStatementFailure reporta se err é uma falha terminal de avaliação
// de statement no servidor (sintaxe, tipo ou erro em tempo de
// execução), e não uma queda de transporte ou violação de protocolo.
func IsStatementFailure(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindStatementEvaluationFailed
}

// IsConnectionError reporta se err representa uma queda de transporte
// — candidata a uma nova tentativa de Dial, diferente de um statement
// que o servidor recusou deliberadamente ou de um host não confiável.
func IsConnectionError(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == KindConnectionClosed
	}
	var untrusted *UntrustedHostError
	if errors.As(err, &untrusted) {
		return false
	}
	return err != nil
}

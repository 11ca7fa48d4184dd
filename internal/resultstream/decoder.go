// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resultstream

import "github.com/voltgraph/voltgraph-go/graphvalue"

// Decoder é o colaborador que entrega o cabeçalho e os records de um
// statement em execução. internal/bolt fornece a implementação real
// sobre um socket TCP/TLS; testes usam um decoder de repetição sobre
// dados em memória. O Stream não conhece nada do formato de fio: ele
// só consome esta interface.
type Decoder interface {
	// ReadHeader bloqueia até os nomes de campo chegarem. É chamado
	// exatamente uma vez, antes do primeiro ReadRecord.
	ReadHeader() ([]string, error)

	// ReadRecord bloqueia até o próximo record chegar. ok=false sem
	// erro indica fim limpo do stream (end-of-stream).
	ReadRecord() (fields []graphvalue.Value, ok bool, err error)

	// Discard é chamado uma vez por Stream.Close, tenha o stream
	// chegado ou não ao fim natural; deve sinalizar ao servidor (ou a
	// um decoder de teste) que o restante dos records pode ser
	// descartado. Melhor esforço:
	// o erro retornado é reportado por Stream.Close mas não impede o
	// fechamento local.
	Discard() error
}

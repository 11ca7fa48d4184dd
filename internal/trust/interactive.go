// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package trust

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// InteractiveCallback constrói um Callback que pergunta ao usuário via
// out/in, no estilo das confirmações de linha de comando do agent:
// aceita "y" (confiar e gravar), "o" (confiar só desta vez) e qualquer
// outra entrada rejeita. Bloqueia até o usuário responder; não há
// prazo imposto por este pacote.
func InteractiveCallback(in io.Reader, out io.Writer) Callback {
	reader := bufio.NewReader(in)
	return func(host, fingerprint, knownFingerprint string, known bool) Action {
		if known {
			fmt.Fprintf(out, "WARNING: host key for %s has changed!\n", host)
			fmt.Fprintf(out, "  known fingerprint:     %s\n", knownFingerprint)
			fmt.Fprintf(out, "  presented fingerprint: %s\n", fingerprint)
		} else {
			fmt.Fprintf(out, "The authenticity of host %s cannot be established.\n", host)
			fmt.Fprintf(out, "Fingerprint: %s\n", fingerprint)
		}
		fmt.Fprint(out, "Trust this host? [y]es/[o]nce/[N]o: ")

		line, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return ActionTrustAlways
		case "o", "once":
			return ActionTrustOnce
		default:
			return ActionReject
		}
	}
}

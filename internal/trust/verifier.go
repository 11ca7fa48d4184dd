// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package trust

import (
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
)

// Action é a decisão do chamador diante de um host desconhecido ou de
// uma impressão digital que mudou desde a última conexão.
type Action uint8

const (
	// ActionReject recusa a conexão; o handshake TLS falha.
	ActionReject Action = iota
	// ActionTrustOnce aceita a conexão desta vez, mas não grava a
	// impressão digital no armazenamento.
	ActionTrustOnce
	// ActionTrustAlways aceita a conexão e grava a impressão digital,
	// para que conexões futuras a esse host a reconheçam sem perguntar.
	ActionTrustAlways
)

// Callback é chamado quando o host não tem impressão digital
// conhecida, ou quando a impressão digital apresentada difere da
// armazenada. Implementações residem no chamador (por exemplo, um
// prompt interativo de CLI); não há prazo imposto pelo núcleo — o
// handshake TLS permanece bloqueado até o callback retornar.
type Callback func(host string, fingerprint string, knownFingerprint string, known bool) Action

// Fingerprint calcula a impressão digital SHA-256 de um certificado
// DER bruto, no formato "sha256:" seguido de hexadecimal minúsculo.
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Verifier decide se a conexão com um host deve prosseguir, consultando
// o Store e, quando necessário, o Callback do chamador.
type Verifier struct {
	store    *Store
	callback Callback
}

// NewVerifier cria um Verifier sobre o armazenamento e o callback
// informados. callback é opcional: um Verifier sem callback rejeita
// todo host desconhecido ou com impressão digital divergente, sem
// nunca perguntar — útil para automação que não deve bloquear
// esperando uma decisão interativa.
func NewVerifier(store *Store, callback Callback) *Verifier {
	return &Verifier{store: store, callback: callback}
}

// Verify implementa o algoritmo de confiança no primeiro uso:
//  1. calcula a impressão digital do certificado apresentado;
//  2. consulta o armazenamento pelo host;
//  3. se desconhecido, chama o callback; TRUST_ALWAYS grava a entrada;
//  4. se conhecido e igual, aceita sem perguntar;
//  5. se conhecido e diferente, chama o callback antes de aceitar;
//  6. REJECT em qualquer ponto aborta com erro.
func (v *Verifier) Verify(host string, der []byte) error {
	fp := Fingerprint(der)

	known, ok, err := v.store.Lookup(host)
	if err != nil {
		return fmt.Errorf("looking up known fingerprint for %s: %w", host, err)
	}

	if ok && known == fp {
		return nil
	}

	if v.callback == nil {
		return &UntrustedHostError{Host: host, Fingerprint: fp, KnownFingerprint: known, HadKnown: ok}
	}

	action := v.callback(host, fp, known, ok)
	switch action {
	case ActionTrustAlways:
		if err := v.store.Replace(host, fp); err != nil {
			return fmt.Errorf("recording fingerprint for %s: %w", host, err)
		}
		return nil
	case ActionTrustOnce:
		return nil
	default:
		return &UntrustedHostError{Host: host, Fingerprint: fp, KnownFingerprint: known, HadKnown: ok}
	}
}

// UntrustedHostError é retornado quando a verificação TOFU é
// rejeitada, seja pela ausência de um callback que a aceite, seja pela
// decisão explícita ActionReject.
type UntrustedHostError struct {
	Host             string
	Fingerprint      string
	KnownFingerprint string
	HadKnown         bool
}

func (e *UntrustedHostError) Error() string {
	if e.HadKnown {
		return fmt.Sprintf("trust: host %s presented fingerprint %s, known fingerprint is %s", e.Host, e.Fingerprint, e.KnownFingerprint)
	}
	return fmt.Sprintf("trust: host %s presented unknown fingerprint %s", e.Host, e.Fingerprint)
}

// VerifyPeerCertificateFunc adapta Verify ao formato exigido por
// tls.Config.VerifyPeerCertificate. O chamador deve configurar
// InsecureSkipVerify = true para que esta função substitua, em vez de
// complementar, a verificação de cadeia padrão do pacote tls — a
// confiança no primeiro uso não depende de uma CA.
func (v *Verifier) VerifyPeerCertificateFunc(host string) func([][]byte, [][]*tls.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*tls.Certificate) error {
		if len(rawCerts) == 0 {
			return fmt.Errorf("trust: no certificate presented by %s", host)
		}
		return v.Verify(host, rawCerts[0])
	}
}

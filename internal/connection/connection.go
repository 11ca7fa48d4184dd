// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package connection estabelece e mantém a conexão TCP/TLS com o
// servidor de grafos: o dial com verificação de confiança no primeiro
// uso, a submissão de statements e o ciclo de reconexão com backoff
// exponencial, no mesmo formato do canal de controle do agent de
// backup.
package connection

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/voltgraph/voltgraph-go/graphvalue"
	"github.com/voltgraph/voltgraph-go/internal/bolt"
	"github.com/voltgraph/voltgraph-go/internal/resultstream"
	"github.com/voltgraph/voltgraph-go/internal/trust"
)

// Options controla o comportamento de dial e reconexão de uma
// Connection.
type Options struct {
	DialTimeout     time.Duration
	RetryMaxDelay   time.Duration
	RetryInitial    time.Duration
	RetryAttempts   int
	BufferCapacity  int
	Compression     bolt.CompressionMode
	MaxFrameBytes   int64 // 0 aplica bolt.DefaultMaxFrameLength
	DialRateLimiter *rate.Limiter // nil desabilita o limite
}

func (o Options) withDefaults() Options {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.RetryMaxDelay <= 0 {
		o.RetryMaxDelay = 30 * time.Second
	}
	if o.RetryInitial <= 0 {
		o.RetryInitial = 500 * time.Millisecond
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 5
	}
	if o.BufferCapacity <= 0 {
		o.BufferCapacity = 256
	}
	return o
}

// Connection é um socket TCP/TLS aberto para um único servidor. Não
// multiplexa statements concorrentes: Run não espera pelo statement
// anterior, então o chamador deve esgotar ou fechar o stream anterior
// antes de chamar Run de novo.
type Connection struct {
	addr     string
	tlsCfg   *tls.Config
	verifier *trust.Verifier
	opts     Options
	conn     net.Conn
	reader   io.Reader
	writer   io.WriteCloser
}

// Dial abre a conexão, executando o handshake TLS com verificação de
// confiança no primeiro uso via verifier. Espelha o par
// net.Dialer→tls.Client→Handshake do canal de controle do agent,
// adaptado de um loop de reconexão de longa duração para uma conexão
// de vida curta por Driver.
func Dial(ctx context.Context, addr string, verifier *trust.Verifier, opts Options) (*Connection, error) {
	opts = opts.withDefaults()

	if opts.DialRateLimiter != nil {
		if err := opts.DialRateLimiter.WaitN(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for dial rate limit: %w", err)
		}
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: opts.DialTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify:    true, // a cadeia padrão é substituída pela verificação TOFU abaixo
		VerifyPeerCertificate: verifier.VerifyPeerCertificateFunc(addr),
		ServerName:            host,
		MinVersion:            tls.VersionTLS12,
	}

	tlsConn := tls.Client(rawConn, tlsCfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("TLS handshake with %s: %w", addr, err)
	}

	if _, err := tlsConn.Write(bolt.Magic[:]); err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("writing protocol magic: %w", err)
	}
	if _, err := tlsConn.Write([]byte{bolt.ProtocolVersion}); err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("writing protocol version: %w", err)
	}

	// O modo de compressão é decidido pela configuração do cliente, nunca
	// negociado em tempo de execução com o servidor: as duas pontas devem
	// ser implantadas com o mesmo valor. Envolve o par leitor/escritor uma
	// única vez aqui, antes de qualquer frame RUN/PULL/DISCARD.
	reader, err := bolt.WrapReader(tlsConn, opts.Compression)
	if err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("negotiating compression: %w", err)
	}
	writer, err := bolt.WrapWriter(tlsConn, opts.Compression)
	if err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("negotiating compression: %w", err)
	}

	return &Connection{
		addr:     addr,
		tlsCfg:   tlsCfg,
		verifier: verifier,
		opts:     opts,
		conn:     tlsConn,
		reader:   reader,
		writer:   writer,
	}, nil
}

// Run envia um statement com parâmetros e retorna o stream de
// resultados correspondente. O chamador deve esgotar ou fechar o
// stream antes de chamar Run de novo nesta mesma conexão.
func (c *Connection) Run(statement string, params map[string]graphvalue.Value) (*resultstream.Stream, error) {
	if err := bolt.WriteRun(c.writer, statement, params); err != nil {
		return nil, fmt.Errorf("sending statement: %w", err)
	}
	decoder := bolt.NewStreamDecoder(c.reader, c.writer, uint32(c.opts.MaxFrameBytes))
	return resultstream.New(decoder, c.opts.BufferCapacity), nil
}

// Close encerra o escritor (liberando o frame zstd final pendente,
// quando há compressão) e então o socket subjacente.
func (c *Connection) Close() error {
	var writerErr error
	if c.writer != nil {
		writerErr = c.writer.Close()
	}
	if c.conn == nil {
		return writerErr
	}
	if err := c.conn.Close(); err != nil {
		return err
	}
	return writerErr
}

// DialWithRetry tenta Dial repetidamente com backoff exponencial
// limitado, no mesmo esquema do agent de backup: cada tentativa dobra
// o atraso anterior, limitado a RetryMaxDelay.
func DialWithRetry(ctx context.Context, addr string, verifier *trust.Verifier, opts Options) (*Connection, error) {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 0; attempt < opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt, opts.RetryInitial, opts.RetryMaxDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		conn, err := Dial(ctx, addr, verifier, opts)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all %d dial attempts to %s failed, last error: %w", opts.RetryAttempts, addr, lastErr)
}

func backoffDelay(attempt int, initial, max time.Duration) time.Duration {
	delay := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	if delay > max {
		delay = max
	}
	return delay
}

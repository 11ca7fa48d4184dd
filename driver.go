// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package voltgraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/voltgraph/voltgraph-go/internal/bolt"
	"github.com/voltgraph/voltgraph-go/internal/config"
	"github.com/voltgraph/voltgraph-go/internal/connection"
	"github.com/voltgraph/voltgraph-go/internal/logging"
	"github.com/voltgraph/voltgraph-go/internal/trust"
)

// Driver é o ponto de entrada do cliente: sabe como discar o servidor
// e com qual política de confiança, mas não mantém conexões abertas
// entre statements. Cada Run abre sua própria conexão e a devolve
// junto do Result; Result.Close a encerra.
//
// Não há pool de conexões: é responsabilidade do chamador serializar
// ou paralelizar Runs conforme a carga, abrindo quantos Drivers
// precisar.
type Driver struct {
	addr       string
	verifier   *trust.Verifier
	opts       connection.Options
	log        *slog.Logger
	label      string
	connLogDir string
	nextConn   atomic.Uint64
}

// NewDriver constrói um Driver a partir de uma configuração já
// validada e de um callback de confiança no primeiro uso — tipicamente
// trust.InteractiveCallback para uma CLI, ou um callback programático
// para uso embutido.
func NewDriver(cfg *config.ClientConfig, callback trust.Callback, log *slog.Logger) (*Driver, error) {
	if log == nil {
		log = slog.Default()
	}

	hostsPath := cfg.TLS.KnownHostsFile
	if hostsPath == "" {
		p, err := trust.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving default known-hosts path: %w", err)
		}
		hostsPath = p
	}
	store, err := trust.NewStore(hostsPath)
	if err != nil {
		return nil, fmt.Errorf("opening known-hosts store: %w", err)
	}
	verifier := trust.NewVerifier(store, callback)

	compression := bolt.CompressionNone
	if cfg.TLS.Compression == "zstd" {
		compression = bolt.CompressionZstd
	}

	var limiter *rate.Limiter
	if cfg.Limits.DialRateBytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Limits.DialRateBytesPerSec), int(cfg.Limits.DialRateBytesPerSec))
	}

	opts := connection.Options{
		RetryMaxDelay:   cfg.Retry.MaxDelay,
		RetryInitial:    cfg.Retry.InitialDelay,
		RetryAttempts:   cfg.Retry.MaxAttempts,
		BufferCapacity:  cfg.Limits.BufferCapacity,
		Compression:     compression,
		MaxFrameBytes:   cfg.Limits.MaxFrameBytesResolved,
		DialRateLimiter: limiter,
	}

	return &Driver{
		addr:       cfg.Server.Address,
		verifier:   verifier,
		opts:       opts,
		log:        log,
		label:      "voltgraph",
		connLogDir: cfg.Logging.ConnectionLogDir,
	}, nil
}

// Run disca uma nova conexão com reconexão por backoff exponencial,
// envia statement com params e retorna o Result correspondente. O
// chamador deve fechar o Result retornado, mesmo em caso de erro
// posterior ao Dial. Quando ConnectionLogDir está configurado, cada
// conexão grava seu próprio arquivo de log em nível DEBUG, removido
// automaticamente se o Result for fechado sem erro.
func (d *Driver) Run(ctx context.Context, statement string, params map[string]Value) (*Result, error) {
	connID := fmt.Sprintf("conn-%d", d.nextConn.Add(1))
	connLog, closer, _, err := logging.NewConnectionLogger(d.log, d.connLogDir, d.label, connID)
	if err != nil {
		return nil, fmt.Errorf("setting up connection log: %w", err)
	}

	start := time.Now()
	conn, err := connection.DialWithRetry(ctx, d.addr, d.verifier, d.opts)
	if err != nil {
		connLog.ErrorContext(ctx, "dial failed", "addr", d.addr, "error", err)
		closer.Close()
		return nil, fmt.Errorf("connecting to %s: %w", d.addr, err)
	}
	connLog.DebugContext(ctx, "connected", "addr", d.addr, "elapsed", time.Since(start))

	stream, err := conn.Run(statement, params)
	if err != nil {
		conn.Close()
		closer.Close()
		return nil, fmt.Errorf("running statement: %w", err)
	}

	return &Result{
		stream:       stream,
		conn:         conn,
		logCloser:    closer,
		connLogDir:   d.connLogDir,
		driverLabel:  d.label,
		connectionID: connID,
	}, nil
}
